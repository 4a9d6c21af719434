/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */

package storage

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"gocropper/internal/geom"
	applog "gocropper/internal/log"
	"gocropper/internal/version"
)

// schemaVersion is the current cache database schema version.
const schemaVersion = 2

// DefaultMaxBytes caps the cache when no explicit limit is configured.
const DefaultMaxBytes int64 = 64 * 1024 * 1024

// Key identifies one rendered image: the source, the preview it was rendered for,
// the selection it shows and the output size.
type Key struct {
	Image     string
	Binding   string
	Selection geom.Rect
	W, H      int
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s@%v %dx%d", shortHash(k.Image), k.Binding, k.Selection, k.W, k.H)
}

// Cache is a size-capped, least-recently-used store of rendered images.
type Cache struct {
	db       *sql.DB
	path     string
	maxBytes int64
	log      *slog.Logger
	now      func() time.Time
}

// Open creates or opens the cache database at path, enables WAL mode and brings the
// schema up to date. maxBytes <= 0 selects DefaultMaxBytes.
func Open(ctx context.Context, path string, maxBytes int64) (*Cache, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "cache_open").With(
		slog.String("path", path),
	)
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("cache path is required")
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		l.Error("create cache dir failed", slog.Any("err", err))
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		l.Error("sqlite open failed", slog.Any("err", err))
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		l.Error("enable WAL failed", slog.Any("err", err))
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if err := ensureMetaAndVersion(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure meta/version failed", slog.Any("err", err))
		return nil, err
	}
	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		l.Error("run migrations failed", slog.Any("err", err))
		return nil, err
	}
	l.Debug("cache ready", slog.Int64("max_bytes", maxBytes))
	return &Cache{db: db, path: path, maxBytes: maxBytes, log: l, now: time.Now}, nil
}

// Path returns the database file location.
func (c *Cache) Path() string { return c.path }

// MaxBytes returns the size cap enforced after every Put.
func (c *Cache) MaxBytes() int64 { return c.maxBytes }

// Close releases the database handle.
func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
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
	var cur int
	err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// fresh database: start at 0 so every migration runs
		if _, err := db.ExecContext(ctx, `INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, 0, ?, ?, ?)`, appv, now, now); err != nil {
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

// SchemaVersion reports the schema version recorded in the database.
func (c *Cache) SchemaVersion(ctx context.Context) (int, error) {
	var v int
	if err := c.db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&v); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return v, nil
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
		case 1:
			stmts = []string{
				`CREATE TABLE IF NOT EXISTS previews (
					id          INTEGER PRIMARY KEY,
					image       TEXT    NOT NULL,
					binding     TEXT    NOT NULL,
					sel_x       INTEGER NOT NULL,
					sel_y       INTEGER NOT NULL,
					sel_w       INTEGER NOT NULL,
					sel_h       INTEGER NOT NULL,
					w           INTEGER NOT NULL,
					h           INTEGER NOT NULL,
					blob        BLOB    NOT NULL,
					size        INTEGER NOT NULL DEFAULT 0,
					updated_at  TEXT    NOT NULL
				);`,
				`CREATE UNIQUE INDEX IF NOT EXISTS ux_previews_key ON previews(image, binding, sel_x, sel_y, sel_w, sel_h, w, h);`,
			}
		case 2:
			// LRU tracking in unix nanoseconds so ties within a second still order
			stmts = []string{
				`ALTER TABLE previews ADD COLUMN last_access INTEGER NOT NULL DEFAULT 0;`,
				`CREATE INDEX IF NOT EXISTS idx_previews_access ON previews(last_access);`,
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

// Get returns the stored bytes for k and marks the entry as recently used.
// A miss returns nil without an error.
func (c *Cache) Get(ctx context.Context, k Key) ([]byte, error) {
	s := k.Selection
	var blob []byte
	err := c.db.QueryRowContext(ctx, `SELECT blob FROM previews
		WHERE image=? AND binding=? AND sel_x=? AND sel_y=? AND sel_w=? AND sel_h=? AND w=? AND h=?`,
		k.Image, k.Binding, s.X, s.Y, s.W, s.H, k.W, k.H).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query preview: %w", err)
	}
	// touch
	_, _ = c.db.ExecContext(ctx, `UPDATE previews SET last_access=?
		WHERE image=? AND binding=? AND sel_x=? AND sel_y=? AND sel_w=? AND sel_h=? AND w=? AND h=?`,
		c.now().UnixNano(), k.Image, k.Binding, s.X, s.Y, s.W, s.H, k.W, k.H)
	return blob, nil
}

// Put upserts the bytes for k and evicts least-recently-used entries until the cache
// fits its cap again.
func (c *Cache) Put(ctx context.Context, k Key, blob []byte) error {
	if len(blob) == 0 {
		return errors.New("empty preview blob")
	}
	if int64(len(blob)) > c.maxBytes {
		c.log.Debug("preview larger than cache, not stored", slog.String("key", k.String()), slog.Int("size", len(blob)))
		return nil
	}
	s := k.Selection
	now := c.now()
	_, err := c.db.ExecContext(ctx, `INSERT INTO previews(image,binding,sel_x,sel_y,sel_w,sel_h,w,h,blob,size,updated_at,last_access)
		VALUES(?,?,?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT(image,binding,sel_x,sel_y,sel_w,sel_h,w,h) DO UPDATE SET blob=excluded.blob, size=excluded.size, updated_at=excluded.updated_at, last_access=excluded.last_access`,
		k.Image, k.Binding, s.X, s.Y, s.W, s.H, k.W, k.H, blob, len(blob), now.UTC().Format(time.RFC3339), now.UnixNano())
	if err != nil {
		return fmt.Errorf("upsert preview: %w", err)
	}
	return c.EvictToFit(ctx, c.maxBytes)
}

// GetOrCreate returns the cached bytes for k or renders them with gen and stores the result.
func (c *Cache) GetOrCreate(ctx context.Context, k Key, gen func(context.Context) ([]byte, error)) ([]byte, error) {
	if b, err := c.Get(ctx, k); err != nil {
		return nil, err
	} else if b != nil {
		return b, nil
	}
	if gen == nil {
		return nil, nil
	}
	data, err := gen(ctx)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	if err := c.Put(ctx, k, data); err != nil {
		return nil, err
	}
	return data, nil
}

// EvictToFit deletes least-recently-used rows until the total size is at most capBytes.
func (c *Cache) EvictToFit(ctx context.Context, capBytes int64) error {
	total, err := c.TotalBytes(ctx)
	if err != nil {
		return err
	}
	if total <= capBytes {
		return nil
	}
	rows, err := c.db.QueryContext(ctx, `SELECT id, size FROM previews ORDER BY last_access ASC, id ASC`)
	if err != nil {
		return fmt.Errorf("select victims: %w", err)
	}
	toDelete := make([]any, 0, 32)
	cur := total
	for rows.Next() {
		var id, sz int64
		if err := rows.Scan(&id, &sz); err != nil {
			_ = rows.Close()
			return err
		}
		toDelete = append(toDelete, id)
		cur -= sz
		if cur <= capBytes {
			break
		}
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return err
	}
	// the single connection must be free before writing
	if err := rows.Close(); err != nil {
		return err
	}
	if len(toDelete) == 0 {
		return nil
	}
	q := `DELETE FROM previews WHERE id IN (?` + strings.Repeat(",?", len(toDelete)-1) + `)`
	if _, err := c.db.ExecContext(ctx, q, toDelete...); err != nil {
		return fmt.Errorf("evict delete: %w", err)
	}
	c.log.Debug("evicted previews", slog.Int("count", len(toDelete)), slog.Int64("freed", total-cur))
	return nil
}

// TotalBytes returns the bytes tracked by previews.size.
func (c *Cache) TotalBytes(ctx context.Context) (int64, error) {
	var total int64
	if err := c.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(size),0) FROM previews`).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum previews size: %w", err)
	}
	return total, nil
}

// Count returns the number of stored entries.
func (c *Cache) Count(ctx context.Context) (int, error) {
	var n int
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM previews`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count previews: %w", err)
	}
	return n, nil
}

// Purge drops every entry of one source image, or all entries when image is empty.
func (c *Cache) Purge(ctx context.Context, image string) (int64, error) {
	var res sql.Result
	var err error
	if image == "" {
		res, err = c.db.ExecContext(ctx, `DELETE FROM previews`)
	} else {
		res, err = c.db.ExecContext(ctx, `DELETE FROM previews WHERE image=?`, image)
	}
	if err != nil {
		return 0, fmt.Errorf("purge previews: %w", err)
	}
	return res.RowsAffected()
}

// Fingerprint returns the hex SHA-256 of the file at path. Cache keys use it instead of
// the path.
func Fingerprint(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func shortHash(s string) string {
	if len(s) > 12 {
		return s[:12]
	}
	return s
}
