/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package cache is the always-written local persistence tier: a small
// embedded SQLite key/value store holding the latest serialized element map
// and portfolio, keyed by versioned cache keys. It survives offline use and
// backend outages; the persistence coordinator treats it as the fallback of
// last resort when loading.
package cache

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

	applog "sitecanvas/internal/log"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	CacheFileName = "cache.sqlite"

	// Versioned keys: bumping the suffix orphans stale entries instead of
	// migrating them.
	ProjectDataKey   = "sitecanvas_project_data_v1"
	PortfolioDataKey = "sitecanvas_portfolio_data_v1"

	schemaVersion = 1
)

var (
	// ErrNotFound is returned by Get for keys with no entry.
	ErrNotFound = errors.New("cache: key not found")

	// ErrQuotaExceeded is returned by Put when the write would push the
	// cache past its configured quota, or when the underlying database
	// reports it is out of space. Callers surface this to the operator;
	// the document in memory stays untouched.
	ErrQuotaExceeded = errors.New("cache: quota exceeded")
)

// Cache is safe for concurrent use through its single-connection pool.
type Cache struct {
	db       *sql.DB
	maxBytes int64
}

// Path returns the cache database file path under dir.
func Path(dir string) string {
	return filepath.Join(dir, CacheFileName)
}

// Open creates dir if needed, opens the cache database, enables WAL mode,
// and ensures the schema exists.
func Open(dir string) (*Cache, error) {
	l := applog.WithOperation(applog.WithComponent("cache"), "open").With(
		slog.String("dir", dir),
	)
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("cache dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		l.Error("create cache dir failed", slog.Any("err", err))
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	path := Path(dir)
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
	if err := ensureSchema(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure schema failed", slog.Any("err", err))
		return nil, err
	}

	l.Info("cache ready", slog.String("path", path))
	return &Cache{db: db}, nil
}

func ensureSchema(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS entries (
			key        TEXT PRIMARY KEY,
			value      BLOB NOT NULL,
			updated_at TEXT NOT NULL
		);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	if _, err := db.ExecContext(ctx,
		`INSERT INTO meta(key, value) VALUES('schema', ?)
		 ON CONFLICT(key) DO NOTHING`, fmt.Sprint(schemaVersion)); err != nil {
		return fmt.Errorf("seed schema version: %w", err)
	}
	return nil
}

// SetQuota caps the total stored payload size in bytes. Zero means no
// application-level quota; the filesystem can still run out underneath.
func (c *Cache) SetQuota(bytes int64) { c.maxBytes = bytes }

// Get returns the stored value for key, or ErrNotFound.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	var v []byte
	err := c.db.QueryRowContext(ctx, `SELECT value FROM entries WHERE key=?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("cache get %s: %w", key, err)
	}
	return v, nil
}

// Put stores value under key, replacing any previous entry. Quota failures
// are reported as ErrQuotaExceeded and leave the previous entry intact.
func (c *Cache) Put(ctx context.Context, key string, value []byte) error {
	if c.maxBytes > 0 {
		var other int64
		err := c.db.QueryRowContext(ctx,
			`SELECT COALESCE(SUM(LENGTH(value)), 0) FROM entries WHERE key<>?`, key).Scan(&other)
		if err != nil {
			return fmt.Errorf("cache size %s: %w", key, err)
		}
		if other+int64(len(value)) > c.maxBytes {
			return fmt.Errorf("cache put %s (%d bytes): %w", key, len(value), ErrQuotaExceeded)
		}
	}
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO entries(key, value, updated_at) VALUES(?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at`,
		key, value, now)
	if err != nil {
		if isFullError(err) {
			return fmt.Errorf("cache put %s: %w", key, ErrQuotaExceeded)
		}
		return fmt.Errorf("cache put %s: %w", key, err)
	}
	return nil
}

// Delete removes the entry for key. Missing keys are not an error.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM entries WHERE key=?`, key); err != nil {
		return fmt.Errorf("cache delete %s: %w", key, err)
	}
	return nil
}

// Clear removes all entries. Used by the reset flow.
func (c *Cache) Clear(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM entries`); err != nil {
		return fmt.Errorf("cache clear: %w", err)
	}
	return nil
}

// Size returns the total stored payload size in bytes.
func (c *Cache) Size(ctx context.Context) (int64, error) {
	var n int64
	if err := c.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(LENGTH(value)), 0) FROM entries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("cache size: %w", err)
	}
	return n, nil
}

// Close releases the database handle.
func (c *Cache) Close() error { return c.db.Close() }

// isFullError classifies out-of-space failures from the driver.
func isFullError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database or disk is full") ||
		strings.Contains(msg, "disk i/o error")
}
