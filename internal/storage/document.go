/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"designcanvas/internal/canvas"
)

const (
	// FileExt is the conventional extension of design files.
	FileExt        = ".design.json"
	BackupsDirName = "backups"

	backupStamp = "20060102-150405.000"
)

// Handle keeps track of a design loaded from or saved to disk.
type Handle struct {
	Path string
	Doc  canvas.Document
}

// Create writes doc to a new file at path. It refuses to overwrite an
// existing file.
func Create(path string, doc canvas.Document) (*Handle, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("path is required")
	}
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("create %s: %w", path, os.ErrExist)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create parent dir: %w", err)
	}
	h := &Handle{Path: path, Doc: doc}
	if err := Save(h); err != nil {
		return nil, err
	}
	return h, nil
}

// Open loads a design. If the file is unreadable, unparsable or fails schema
// validation, the latest backup is tried instead.
func Open(path string) (*Handle, error) {
	doc, err := readDocument(path)
	if err == nil {
		return &Handle{Path: path, Doc: doc}, nil
	}
	bdoc, berr := openFromLatestBackup(path)
	if berr != nil {
		return nil, fmt.Errorf("open design: %w; backup attempt: %v", err, berr)
	}
	return &Handle{Path: path, Doc: bdoc}, nil
}

// Save writes h.Doc with transactional semantics and a timestamped backup of
// the previous file (if present). Invalid documents are rejected before
// anything on disk changes.
func Save(h *Handle) error {
	if h == nil {
		return errors.New("nil Handle")
	}
	if h.Path == "" {
		return errors.New("invalid Handle: missing path")
	}
	if h.Doc.Version == 0 {
		h.Doc.Version = canvas.DocumentVersion
	}
	if h.Doc.Elements == nil {
		h.Doc.Elements = []canvas.ElementRecord{}
	}
	data, err := json.MarshalIndent(h.Doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal design: %w", err)
	}
	data = append(data, '\n')
	if err := Validate(data); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(h.Path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}

	if _, statErr := os.Stat(h.Path); statErr == nil {
		bdir := BackupDir(h.Path)
		if err := os.MkdirAll(bdir, 0o755); err != nil {
			return fmt.Errorf("ensure backups dir: %w", err)
		}
		bname := fmt.Sprintf("%s.%s.bak", filepath.Base(h.Path), time.Now().Format(backupStamp))
		if cerr := copyFile(h.Path, filepath.Join(bdir, bname)); cerr != nil {
			return fmt.Errorf("backup current design: %w", cerr)
		}
	}

	// write to a temp file in the same directory, then rename over the target
	dir := filepath.Dir(h.Path)
	temp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d-%d", filepath.Base(h.Path), os.Getpid(), rand.Int()))
	if werr := writeFileSync(temp, data); werr != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("write temp design: %w", werr)
	}
	// Windows cannot rename over an existing file
	if _, err := os.Stat(h.Path); err == nil {
		_ = os.Remove(h.Path)
	}
	if rerr := os.Rename(temp, h.Path); rerr != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace design: %w", rerr)
	}
	return nil
}

// SaveAs writes the design to newPath and points the handle there.
func SaveAs(h *Handle, newPath string) error {
	if h == nil {
		return errors.New("nil Handle")
	}
	if strings.TrimSpace(newPath) == "" {
		return errors.New("new path is empty")
	}
	old := h.Path
	h.Path = newPath
	if err := Save(h); err != nil {
		h.Path = old
		return err
	}
	return nil
}

// BackupDir is the folder holding backups and crash snapshots for path.
func BackupDir(path string) string {
	return filepath.Join(filepath.Dir(path), BackupsDirName)
}

// Backups lists the backups of path, oldest first.
func Backups(path string) ([]string, error) {
	bdir := BackupDir(path)
	ents, err := os.ReadDir(bdir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read backups dir: %w", err)
	}
	prefix := filepath.Base(path) + "."
	var out []string
	for _, e := range ents {
		name := e.Name()
		if strings.HasPrefix(name, prefix) && strings.HasSuffix(name, ".bak") {
			out = append(out, filepath.Join(bdir, name))
		}
	}
	sort.Strings(out) // timestamp in name yields lexicographic order
	return out, nil
}

// PruneBackups keeps the newest keep backups of path and removes the rest.
// keep <= 0 keeps everything.
func PruneBackups(path string, keep int) (int, error) {
	if keep <= 0 {
		return 0, nil
	}
	all, err := Backups(path)
	if err != nil {
		return 0, err
	}
	removed := 0
	for len(all)-removed > keep {
		if err := os.Remove(all[removed]); err != nil {
			return removed, fmt.Errorf("remove backup: %w", err)
		}
		removed++
	}
	return removed, nil
}

// AutosaveCrash writes the in-memory design next to the backups without
// touching the design file. Used when the process is about to die.
func AutosaveCrash(h *Handle) (string, error) {
	if h == nil || h.Path == "" {
		return "", errors.New("nil Handle")
	}
	bdir := BackupDir(h.Path)
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return "", fmt.Errorf("ensure backups dir: %w", err)
	}
	data, err := json.MarshalIndent(h.Doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal crash snapshot: %w", err)
	}
	name := fmt.Sprintf("%s.crash-%s.json", filepath.Base(h.Path), time.Now().Format(backupStamp))
	path := filepath.Join(bdir, name)
	if err := writeFileSync(path, data); err != nil {
		return "", fmt.Errorf("write crash snapshot: %w", err)
	}
	return path, nil
}

func readDocument(path string) (canvas.Document, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return canvas.Document{}, err
	}
	return DecodeDocument(b)
}

// DecodeDocument validates and parses a design document.
func DecodeDocument(data []byte) (canvas.Document, error) {
	if err := Validate(data); err != nil {
		return canvas.Document{}, err
	}
	var d canvas.Document
	if err := json.Unmarshal(data, &d); err != nil {
		return canvas.Document{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return d, nil
}

func openFromLatestBackup(path string) (canvas.Document, error) {
	candidates, err := Backups(path)
	if err != nil {
		return canvas.Document{}, err
	}
	if len(candidates) == 0 {
		return canvas.Document{}, errors.New("no backups found")
	}
	latest := candidates[len(candidates)-1]
	d, err := readDocument(latest)
	if err != nil {
		return canvas.Document{}, fmt.Errorf("read latest backup: %w", err)
	}
	return d, nil
}

// writeFileSync writes data to a file and flushes it to disk.
func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}

// copyFile copies src to dst, overwriting dst.
func copyFile(src, dst string) (err error) {
	sf, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sf.Close(); err == nil {
			err = cerr
		}
	}()
	df, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := df.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := io.Copy(df, sf); err != nil {
		return err
	}
	return df.Sync()
}
