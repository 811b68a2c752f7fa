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

	"branchplanner/internal/domain"
	applog "branchplanner/internal/log"
	"branchplanner/internal/version"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

// schemaVersion tracks the local SQLite schema.
// Bump this when you perform breaking schema changes and add migrations.
const schemaVersion = 2

// language=SQL
// dialect=SQLite
const upsertStateSQL = `INSERT INTO state(namespace, payload, updated_at) VALUES (?, ?, ?)
ON CONFLICT(namespace) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`

// language=SQL
// dialect=SQLite
const selectStateSQL = `SELECT payload FROM state WHERE namespace = ?`

// language=SQL
// dialect=SQLite
const insertRevisionSQL = `INSERT INTO revisions(namespace, ts, payload) VALUES (?, ?, ?)`

// language=SQL
// dialect=SQLite
const listRevisionsSQL = `SELECT id, ts, payload FROM revisions WHERE namespace = ? ORDER BY id DESC LIMIT ?`

// language=SQL
// dialect=SQLite
const selectRevisionSQL = `SELECT id, ts, payload FROM revisions WHERE namespace = ? AND id = ?`

// language=SQL
// dialect=SQLite
const pruneRevisionsSQL = `DELETE FROM revisions WHERE namespace = ? AND id NOT IN (
	SELECT id FROM revisions WHERE namespace = ? ORDER BY id DESC LIMIT ?
)`

// Revision is one saved version of the document.
type Revision struct {
	ID    int64
	TS    time.Time
	State domain.AppState
}

// SQLiteStore keeps the document in <dir>/<namespace>.sqlite together with a
// revision log pruned to KeepRevisions entries.
type SQLiteStore struct {
	db            *sql.DB
	path          string
	namespace     string
	KeepRevisions int

	now func() time.Time
	log *slog.Logger
}

// OpenSQLite opens (or creates) the database, enables WAL mode and ensures the schema.
func OpenSQLite(dir, namespace string, keepRevisions int) (*SQLiteStore, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "sqlite_open").With(
		slog.String("dir", dir),
	)
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("storage dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		l.Error("create storage dir failed", slog.Any("err", err))
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	path := filepath.Join(dir, namespace+".sqlite")
	// Use a URI with shared cache and set busy timeout. Convert to forward slashes for SQLite URI.
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		l.Error("sqlite open failed", slog.Any("err", err))
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		l.Error("enable WAL failed", slog.Any("err", err))
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if err := ensureVersion(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure version failed", slog.Any("err", err))
		return nil, err
	}
	if err := ensureSchema(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure schema failed", slog.Any("err", err))
		return nil, err
	}
	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		l.Error("run migrations failed", slog.Any("err", err))
		return nil, err
	}
	l.Info("sqlite store ready", slog.String("path", path))
	return &SQLiteStore{
		db:            db,
		path:          path,
		namespace:     namespace,
		KeepRevisions: keepRevisions,
		now:           time.Now,
		log:           applog.WithComponent("storage").With(slog.String("driver", "sqlite")),
	}, nil
}

func ensureVersion(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS version (
			id          INTEGER PRIMARY KEY CHECK(id=1),
			schema      INTEGER NOT NULL,
			app         TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);`); err != nil {
		return fmt.Errorf("create table: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	appv := version.String()
	var cur int
	err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := db.ExecContext(ctx, `INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, ?, ?, ?, ?)`, schemaVersion, appv, now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	default:
		// keep existing schema for migrations
		if _, err := db.ExecContext(ctx, `UPDATE version SET app=?, updated_at=? WHERE id=1`, appv, now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}

func ensureSchema(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS state (
			namespace  TEXT PRIMARY KEY,
			payload    BLOB NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS revisions (
			id        INTEGER PRIMARY KEY,
			namespace TEXT NOT NULL,
			ts        TEXT NOT NULL,
			payload   BLOB NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_revisions_ns_id ON revisions(namespace, id);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
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
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", next, err)
		}
		var stmts []string
		if next == 2 {
			stmts = append(stmts, `CREATE INDEX IF NOT EXISTS idx_revisions_ns_id ON revisions(namespace, id);`)
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

// SchemaVersion reports the schema version recorded in the database.
func (s *SQLiteStore) SchemaVersion(ctx context.Context) (int, error) {
	var v int
	err := s.db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&v)
	return v, err
}

// Path is the database file.
func (s *SQLiteStore) Path() string { return s.path }

func (s *SQLiteStore) Load(ctx context.Context) (domain.AppState, bool, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, selectStateSQL, s.namespace).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.AppState{}, false, nil
	}
	if err != nil {
		return domain.AppState{}, false, fmt.Errorf("read state: %w", err)
	}
	st, err := Decode(payload)
	if err == nil {
		return st, true, nil
	}
	l := applog.WithOperation(s.log, "load")
	l.WarnContext(ctx, "document unusable, trying revisions", slog.Any("err", err))
	revs, rerr := s.Revisions(ctx, s.KeepRevisions)
	if rerr != nil || len(revs) == 0 {
		return domain.AppState{}, false, err
	}
	l.InfoContext(ctx, "document recovered from revision", slog.Int64("revision", revs[0].ID))
	return revs[0].State, true, nil
}

// Save upserts the current document and appends a revision in one transaction.
func (s *SQLiteStore) Save(ctx context.Context, state domain.AppState) error {
	data, err := Encode(state)
	if err != nil {
		return err
	}
	ts := s.now().UTC().Format(time.RFC3339Nano)
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	if _, err := tx.ExecContext(ctx, upsertStateSQL, s.namespace, data, ts); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("upsert state: %w", err)
	}
	if _, err := tx.ExecContext(ctx, insertRevisionSQL, s.namespace, ts, data); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("insert revision: %w", err)
	}
	if s.KeepRevisions > 0 {
		if _, err := tx.ExecContext(ctx, pruneRevisionsSQL, s.namespace, s.namespace, s.KeepRevisions); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("prune revisions: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	applog.WithOperation(s.log, "save").Debug("document saved", slog.Int("bytes", len(data)))
	return nil
}

// Revisions returns up to limit most recent revisions, newest first.
// Revisions that no longer decode are skipped.
func (s *SQLiteStore) Revisions(ctx context.Context, limit int) ([]Revision, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, listRevisionsSQL, s.namespace, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []Revision
	for rows.Next() {
		rev, ok, err := scanRevision(rows)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, rev)
		}
	}
	return out, rows.Err()
}

// Revision returns a single revision by id.
func (s *SQLiteStore) Revision(ctx context.Context, id int64) (Revision, bool, error) {
	rev, ok, err := scanRevision(s.db.QueryRowContext(ctx, selectRevisionSQL, s.namespace, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Revision{}, false, nil
	}
	return rev, ok, err
}

type scanner interface{ Scan(dest ...any) error }

func scanRevision(r scanner) (Revision, bool, error) {
	var (
		id      int64
		tsStr   string
		payload []byte
	)
	if err := r.Scan(&id, &tsStr, &payload); err != nil {
		return Revision{}, false, err
	}
	st, err := Decode(payload)
	if err != nil {
		return Revision{}, false, nil
	}
	ts, _ := time.Parse(time.RFC3339Nano, tsStr)
	return Revision{ID: id, TS: ts, State: st}, true, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
