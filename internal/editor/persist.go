/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"designcanvas/internal/canvas"
	"designcanvas/internal/export"
	applog "designcanvas/internal/log"
	"designcanvas/internal/storage"
)

// Path is the file the design was last opened from or saved to, or "".
func (e *Editor) Path() string {
	if e.handle == nil {
		return ""
	}
	return e.handle.Path
}

// Save writes the design. An empty path reuses the current file; a different
// path saves a copy there and continues editing it.
func (e *Editor) Save(ctx context.Context, path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		if e.handle == nil {
			return errors.New("no file to save to")
		}
		path = e.handle.Path
	}
	l := applog.WithOperation(e.log, "save")
	ctx = applog.WithDocument(ctx, path)
	doc := e.model.Snapshot()
	var err error
	switch {
	case e.handle == nil:
		h := &storage.Handle{Path: path, Doc: doc}
		if err = storage.Save(h); err == nil {
			e.handle = h
		}
	case path != e.handle.Path:
		e.handle.Doc = doc
		err = storage.SaveAs(e.handle, path)
	default:
		e.handle.Doc = doc
		err = storage.Save(e.handle)
	}
	if err != nil {
		l.ErrorContext(ctx, "save failed", slog.Any("err", err))
		e.toast(LevelError, "Save failed: %v", err)
		return err
	}
	e.dirty = false
	if e.keep > 0 {
		if n, perr := storage.PruneBackups(path, e.keep); perr != nil {
			l.WarnContext(ctx, "prune backups failed", slog.Any("err", perr))
		} else if n > 0 {
			l.DebugContext(ctx, "pruned backups", slog.Int("removed", n))
		}
	}
	if e.index != nil {
		if ierr := e.index.RecordDocument(ctx, path, doc); ierr != nil {
			l.WarnContext(ctx, "index update failed", slog.Any("err", ierr))
		}
	}
	l.InfoContext(ctx, "design saved", slog.Int("elements", len(doc.Elements)))
	e.toast(LevelSuccess, "Design saved")
	return nil
}

// Open loads a design, replacing the canvas and clearing undo history.
func (e *Editor) Open(ctx context.Context, path string) error {
	l := applog.WithOperation(e.log, "open")
	ctx = applog.WithDocument(ctx, path)
	h, err := storage.Open(path)
	if err != nil {
		l.ErrorContext(ctx, "open failed", slog.Any("err", err))
		e.toast(LevelError, "Could not open %s", filepath.Base(path))
		return err
	}
	if err := e.model.Restore(h.Doc); err != nil {
		l.ErrorContext(ctx, "restore failed", slog.Any("err", err))
		e.toast(LevelError, "Could not open %s", filepath.Base(path))
		return fmt.Errorf("restore design: %w", err)
	}
	e.handle = h
	e.hist.Clear(historyKey)
	e.pending = make(map[canvas.PointerID][]byte)
	e.dirty = false
	l.InfoContext(ctx, "design opened", slog.Int("elements", len(h.Doc.Elements)))
	return nil
}

// Export renders the visible elements to path; the format follows the
// extension. The export is recorded in the index when the design has a file.
func (e *Editor) Export(ctx context.Context, path string) (export.Format, error) {
	l := applog.WithOperation(e.log, "export")
	f, err := export.ExportFile(path, export.SceneOf(e.model), e.exportOptions())
	if err != nil {
		l.ErrorContext(ctx, "export failed", slog.String("out", path), slog.Any("err", err))
		e.toast(LevelError, "Export failed: %v", err)
		return f, err
	}
	e.recordExport(ctx, path, f)
	e.toast(LevelSuccess, "Canvas exported as %s", strings.ToUpper(string(f)))
	return f, nil
}

// ExportPreset writes <name>.<ext> into dir for every format of the preset.
func (e *Editor) ExportPreset(ctx context.Context, preset export.PresetName, dir, name string) ([]string, error) {
	paths, err := export.BatchExport(export.SceneOf(e.model), e.exportOptions(), export.BatchOptions{
		Preset: preset,
		OutDir: dir,
		Name:   name,
	})
	for _, p := range paths {
		if f, ferr := export.FormatFromPath(p); ferr == nil {
			e.recordExport(ctx, p, f)
		}
	}
	if err != nil {
		e.toast(LevelError, "Export failed: %v", err)
		return paths, err
	}
	e.toast(LevelSuccess, "Canvas exported with %s preset", preset)
	return paths, nil
}

func (e *Editor) exportOptions() export.Options {
	o := e.expOpt
	o.Grid = o.Grid && e.grid
	return o
}

func (e *Editor) recordExport(ctx context.Context, out string, f export.Format) {
	if e.index == nil || e.handle == nil {
		return
	}
	if err := e.index.RecordExport(ctx, e.handle.Path, out, string(f)); err != nil {
		e.log.WarnContext(ctx, "index export record failed", slog.Any("err", err))
	}
}

// CrashHandle returns the live design for a crash autosave. Unsaved designs
// are written under the temp dir.
func (e *Editor) CrashHandle() *storage.Handle {
	path := filepath.Join(os.TempDir(), "untitled"+storage.FileExt)
	if e.handle != nil {
		path = e.handle.Path
	}
	return &storage.Handle{Path: path, Doc: e.model.Snapshot()}
}
