// Package cache keeps raw PubMed XML fetched from E-utilities in SQLite so
// repeated single-record lookups skip the network.
package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection.
type DB struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// Stats summarizes the cache contents.
type Stats struct {
	Path    string `json:"path"`
	Records int    `json:"records"`
	Bytes   int64  `json:"bytes"`
}

// Open opens or creates a cache database at the given path, creating
// parent directories as needed.
func Open(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db, path: path, now: time.Now}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// Path returns the database file location.
func (d *DB) Path() string {
	return d.path
}

// createSchema creates the database schema if it doesn't exist.
func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS records (
			pmid TEXT PRIMARY KEY,
			xml TEXT NOT NULL,
			fetched_at INTEGER NOT NULL
		);
	`

	_, err := db.Exec(schema)
	return err
}

// Get returns the cached XML for pmid, if present.
func (d *DB) Get(ctx context.Context, pmid string) (string, bool, error) {
	var xml string
	err := d.db.QueryRowContext(ctx, `SELECT xml FROM records WHERE pmid = ?`, pmid).Scan(&xml)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("querying cache for %s: %w", pmid, err)
	}
	return xml, true, nil
}

// Put stores or replaces the XML for pmid.
func (d *DB) Put(ctx context.Context, pmid, xml string) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO records (pmid, xml, fetched_at) VALUES (?, ?, ?)
		ON CONFLICT(pmid) DO UPDATE SET xml = excluded.xml, fetched_at = excluded.fetched_at
	`, pmid, xml, d.now().Unix())
	if err != nil {
		return fmt.Errorf("caching %s: %w", pmid, err)
	}
	return nil
}

// Count returns the number of cached records.
func (d *DB) Count(ctx context.Context) (int, error) {
	var count int
	if err := d.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM records").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting records: %w", err)
	}
	return count, nil
}

// Stats returns the record count and total XML size.
func (d *DB) Stats(ctx context.Context) (Stats, error) {
	s := Stats{Path: d.path}
	err := d.db.QueryRowContext(ctx, "SELECT COUNT(*), COALESCE(SUM(LENGTH(xml)), 0) FROM records").Scan(&s.Records, &s.Bytes)
	if err != nil {
		return Stats{}, fmt.Errorf("reading cache stats: %w", err)
	}
	return s, nil
}

// Clear removes all records and returns how many were deleted.
func (d *DB) Clear(ctx context.Context) (int, error) {
	res, err := d.db.ExecContext(ctx, "DELETE FROM records")
	if err != nil {
		return 0, fmt.Errorf("clearing cache: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clearing cache: %w", err)
	}
	return int(n), nil
}

// PruneBefore removes records fetched before cutoff.
func (d *DB) PruneBefore(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := d.db.ExecContext(ctx, "DELETE FROM records WHERE fetched_at < ?", cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("pruning cache: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("pruning cache: %w", err)
	}
	return int(n), nil
}
