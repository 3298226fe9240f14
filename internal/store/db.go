// Package store persists job sources, canonical postings, and candidate
// profiles in sqlite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("store: not found")
	// ErrProfileNotFound means the user has no candidate profile. Callers
	// treat this as an empty-result state, not a failure.
	ErrProfileNotFound = errors.New("store: profile not found")
)

type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the sqlite database at path and runs
// migrations. Use ":memory:" for an ephemeral database in tests.
func Open(path string) (*Store, error) {
	// modernc sqlite uses DSN like: file:foo.db?_pragma=busy_timeout(5000)
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1) // sqlite wants a single writer
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) migrate() error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.QueryRow(`PRAGMA user_version;`).Scan(&v); err != nil {
		return err
	}
	if v >= 1 {
		return tx.Commit()
	}

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS postings (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  title TEXT NOT NULL,
  company TEXT NOT NULL,
  company_logo_url TEXT NOT NULL DEFAULT '',
  description TEXT NOT NULL,
  requirements TEXT NOT NULL DEFAULT '',
  location TEXT NOT NULL DEFAULT '',
  location_type TEXT NOT NULL DEFAULT 'unknown',
  salary_min REAL,
  salary_max REAL,
  salary_currency TEXT NOT NULL DEFAULT '',
  employment_type TEXT NOT NULL DEFAULT 'unknown',
  experience_level TEXT NOT NULL DEFAULT 'unknown',
  application_url TEXT NOT NULL DEFAULT '',
  source TEXT NOT NULL,
  source_id TEXT NOT NULL,
  source_url TEXT NOT NULL DEFAULT '',
  posted_at TEXT,
  last_synced TEXT NOT NULL,
  active INTEGER NOT NULL DEFAULT 1,
  required_skills TEXT NOT NULL DEFAULT '[]',
  preferred_skills TEXT NOT NULL DEFAULT '[]'
);`,
		// Dedup invariant: one row per (source, source_id).
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_postings_dedup
ON postings(source, source_id);`,
		`CREATE INDEX IF NOT EXISTS idx_postings_last_synced
ON postings(last_synced);`,
		`CREATE TABLE IF NOT EXISTS sources (
  name TEXT PRIMARY KEY,
  display_name TEXT NOT NULL,
  base_url TEXT NOT NULL,
  last_sync TEXT
);`,
		`CREATE TABLE IF NOT EXISTS profiles (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id TEXT NOT NULL,
  skills TEXT NOT NULL DEFAULT '[]',
  work_history TEXT NOT NULL DEFAULT '[]',
  education TEXT NOT NULL DEFAULT '[]',
  desired_location TEXT NOT NULL DEFAULT '',
  remote_preferred INTEGER NOT NULL DEFAULT 0,
  updated_at TEXT NOT NULL
);`,
		`CREATE INDEX IF NOT EXISTS idx_profiles_user
ON profiles(user_id, updated_at DESC);`,
		`PRAGMA user_version = 1;`,
	}
	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	return tx.Commit()
}
