/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"designcanvas/internal/canvas"
	applog "designcanvas/internal/log"
	"designcanvas/internal/version"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	IndexFileName = "index.sqlite"

	// schemaVersion tracks the SQLite schema of the index.
	// Bump this when you perform breaking schema changes and add migrations.
	schemaVersion = 2
)

// Index remembers saved designs and their exports across sessions.
type Index struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// RecentDocument is one row of the recent-designs list.
type RecentDocument struct {
	Path     string
	Name     string
	Width    float64
	Height   float64
	Elements int
	SavedAt  time.Time
}

// ExportRecord is one export of a design.
type ExportRecord struct {
	DocPath   string
	OutPath   string
	Format    string
	CreatedAt time.Time
}

// IndexPath returns the index database location inside dataDir.
func IndexPath(dataDir string) string {
	return filepath.Join(dataDir, IndexFileName)
}

// OpenIndex opens or creates the index in dataDir. A corrupt database file is
// moved to <dataDir>/backups and replaced by a fresh one; the index only
// holds derived data.
func OpenIndex(ctx context.Context, dataDir string) (*Index, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "index_open").With(
		slog.String("dir", dataDir),
	)
	if strings.TrimSpace(dataDir) == "" {
		return nil, errors.New("data dir is required")
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		l.Error("create data dir failed", slog.Any("err", err))
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	path := IndexPath(dataDir)
	db, err := openIndexDB(ctx, path)
	if err == nil {
		if healthy(ctx, db) {
			l.Info("index ready", slog.String("path", path))
			return &Index{db: db, path: path, now: time.Now}, nil
		}
		_ = db.Close()
		err = errors.New("quick_check failed")
	}
	l.Warn("index unusable, rebuilding", slog.Any("err", err))
	backupIndexFile(path)
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		_ = os.Remove(p)
	}
	db, err = openIndexDB(ctx, path)
	if err != nil {
		l.Error("index rebuild failed", slog.Any("err", err))
		return nil, err
	}
	return &Index{db: db, path: path, now: time.Now}, nil
}

func openIndexDB(ctx context.Context, path string) (*sql.DB, error) {
	// forward slashes for the SQLite URI
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	steps := []func(context.Context, *sql.DB) error{ensureMetaAndVersion, ensureIndexSchema, runMigrations}
	for _, step := range steps {
		if err := step(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return db, nil
}

func healthy(ctx context.Context, db *sql.DB) bool {
	var chk string
	if err := db.QueryRowContext(ctx, `PRAGMA quick_check;`).Scan(&chk); err != nil {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(chk), "ok")
}

func ensureMetaAndVersion(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS version (
			id          INTEGER PRIMARY KEY CHECK(id=1),
			schema      INTEGER NOT NULL,
			app         TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	now := time.Now().UTC().Format(time.RFC3339)
	appv := version.String()
	var curSchema int
	err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&curSchema)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// a fresh database starts at schema 1 and migrates up
		if _, err := db.ExecContext(ctx, `INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, 1, ?, ?, ?)`, appv, now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	default:
		if _, err := db.ExecContext(ctx, `UPDATE version SET app=?, updated_at=? WHERE id=1`, appv, now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}

// ensureIndexSchema creates the schema-1 tables.
func ensureIndexSchema(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			path      TEXT    PRIMARY KEY,
			name      TEXT    NOT NULL,
			width     REAL    NOT NULL,
			height    REAL    NOT NULL,
			elements  INTEGER NOT NULL,
			saved_at  INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_documents_saved ON documents(saved_at);`,
		`CREATE TABLE IF NOT EXISTS exports (
			id         INTEGER PRIMARY KEY,
			doc_path   TEXT    NOT NULL REFERENCES documents(path) ON DELETE CASCADE,
			out_path   TEXT    NOT NULL,
			format     TEXT    NOT NULL,
			created_at INTEGER NOT NULL
		);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure index schema: %w", err)
		}
	}
	return nil
}

// runMigrations applies incremental schema migrations up to schemaVersion.
func runMigrations(ctx context.Context, db *sql.DB) error {
	var cur int
	if err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	for cur < schemaVersion {
		next := cur + 1
		var stmts []string
		switch next {
		case 2:
			// text search over the text elements of each design
			stmts = []string{
				`CREATE INDEX IF NOT EXISTS idx_exports_doc ON exports(doc_path);`,
				`CREATE VIRTUAL TABLE IF NOT EXISTS fts_texts USING fts5(
					path UNINDEXED,
					text,
					tokenize = 'unicode61'
				);`,
			}
		}
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", next, err)
		}
		for _, q := range stmts {
			if _, err := tx.ExecContext(ctx, q); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("migration %d stmt failed: %w", next, err)
			}
		}
		if _, err := tx.ExecContext(ctx, `UPDATE version SET schema=?, updated_at=? WHERE id=1`, next, time.Now().UTC().Format(time.RFC3339)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d update version: %w", next, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d commit: %w", next, err)
		}
		cur = next
	}
	return nil
}

// backupIndexFile copies the index file into <dir>/backups before it is replaced.
func backupIndexFile(indexPath string) {
	data, err := os.ReadFile(indexPath)
	if err != nil {
		return
	}
	bdir := filepath.Join(filepath.Dir(indexPath), BackupsDirName)
	_ = os.MkdirAll(bdir, 0o755)
	bak := filepath.Join(bdir, fmt.Sprintf("%s.%s.bak", filepath.Base(indexPath), time.Now().Format(backupStamp)))
	_ = os.WriteFile(bak, data, 0o644)
}

// Path of the database file.
func (ix *Index) Path() string { return ix.path }

func (ix *Index) Close() error { return ix.db.Close() }

// RecordDocument upserts a saved design and refreshes its searchable text.
func (ix *Index) RecordDocument(ctx context.Context, path string, doc canvas.Document) error {
	key := indexKey(path)
	name := strings.TrimSuffix(filepath.Base(key), FileExt)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	_, err = tx.ExecContext(ctx, `INSERT INTO documents(path, name, width, height, elements, saved_at) VALUES(?,?,?,?,?,?)
		ON CONFLICT(path) DO UPDATE SET name=excluded.name, width=excluded.width, height=excluded.height,
			elements=excluded.elements, saved_at=excluded.saved_at;`,
		key, name, doc.Width, doc.Height, len(doc.Elements), ix.now().UnixNano())
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("upsert document: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM fts_texts WHERE path=?;`, key); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear text: %w", err)
	}
	if text := documentText(doc); text != "" {
		if _, err := tx.ExecContext(ctx, `INSERT INTO fts_texts(path, text) VALUES(?,?);`, key, text); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert text: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// RecordExport notes that docPath was exported to outPath. The design is
// registered first if the index does not know it yet.
func (ix *Index) RecordExport(ctx context.Context, docPath, outPath, format string) error {
	key := indexKey(docPath)
	var n int
	if err := ix.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents WHERE path=?`, key).Scan(&n); err != nil {
		return fmt.Errorf("lookup document: %w", err)
	}
	if n == 0 {
		if err := ix.RecordDocument(ctx, docPath, canvas.Document{}); err != nil {
			return err
		}
	}
	_, err := ix.db.ExecContext(ctx, `INSERT INTO exports(doc_path, out_path, format, created_at) VALUES(?,?,?,?);`,
		key, indexKey(outPath), format, ix.now().UnixNano())
	if err != nil {
		return fmt.Errorf("insert export: %w", err)
	}
	return nil
}

// Recent lists designs, most recently saved first. limit <= 0 means all.
func (ix *Index) Recent(ctx context.Context, limit int) ([]RecentDocument, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := ix.db.QueryContext(ctx, `SELECT path, name, width, height, elements, saved_at FROM documents
		ORDER BY saved_at DESC, path LIMIT ?;`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent: %w", err)
	}
	defer rows.Close()
	var out []RecentDocument
	for rows.Next() {
		var d RecentDocument
		var ts int64
		if err := rows.Scan(&d.Path, &d.Name, &d.Width, &d.Height, &d.Elements, &ts); err != nil {
			return nil, fmt.Errorf("scan recent: %w", err)
		}
		d.SavedAt = time.Unix(0, ts)
		out = append(out, d)
	}
	return out, rows.Err()
}

// Exports lists the exports of a design, newest first.
func (ix *Index) Exports(ctx context.Context, docPath string) ([]ExportRecord, error) {
	rows, err := ix.db.QueryContext(ctx, `SELECT doc_path, out_path, format, created_at FROM exports
		WHERE doc_path=? ORDER BY created_at DESC, id DESC;`, indexKey(docPath))
	if err != nil {
		return nil, fmt.Errorf("query exports: %w", err)
	}
	defer rows.Close()
	var out []ExportRecord
	for rows.Next() {
		var r ExportRecord
		var ts int64
		if err := rows.Scan(&r.DocPath, &r.OutPath, &r.Format, &ts); err != nil {
			return nil, fmt.Errorf("scan export: %w", err)
		}
		r.CreatedAt = time.Unix(0, ts)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Search returns the paths of designs whose text elements contain every
// word of query.
func (ix *Index) Search(ctx context.Context, query string) ([]string, error) {
	match := ftsQuery(query)
	if match == "" {
		return nil, nil
	}
	rows, err := ix.db.QueryContext(ctx, `SELECT path FROM fts_texts WHERE fts_texts MATCH ? ORDER BY rank;`, match)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan search: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Forget removes a design and its exports from the index.
func (ix *Index) Forget(ctx context.Context, path string) error {
	key := indexKey(path)
	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	for _, q := range []string{
		`DELETE FROM exports WHERE doc_path=?;`,
		`DELETE FROM fts_texts WHERE path=?;`,
		`DELETE FROM documents WHERE path=?;`,
	} {
		if _, err := tx.ExecContext(ctx, q, key); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("forget: %w", err)
		}
	}
	return tx.Commit()
}

// indexKey makes paths comparable across working directories.
func indexKey(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

func documentText(doc canvas.Document) string {
	var parts []string
	for _, r := range doc.Elements {
		if r.Text != nil {
			if s := strings.TrimSpace(*r.Text); s != "" {
				parts = append(parts, s)
			}
		}
	}
	return strings.Join(parts, "\n")
}

// ftsQuery quotes every word so user input cannot form FTS5 syntax.
func ftsQuery(q string) string {
	words := strings.Fields(q)
	for i, w := range words {
		words[i] = `"` + strings.ReplaceAll(w, `"`, `""`) + `"`
	}
	return strings.Join(words, " ")
}
