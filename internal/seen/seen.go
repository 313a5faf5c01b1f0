// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package seen persists the identity keys of papers already reported,
// so consecutive runs do not summarize and mail the same paper twice.
package seen

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Zhaoyilunnn/gmail-scholar-summary/pkg/types"
)

const dbFile = "seen.db"

// Store manages the seen-papers SQLite database.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the database at cfg.DBDir/seen.db, creating
// the schema if it does not exist.
func NewStore(cfg types.SeenConfig) (*Store, error) {
	if cfg.DBDir == "" {
		return nil, fmt.Errorf("seen store directory not configured")
	}
	if err := os.MkdirAll(cfg.DBDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating seen store directory: %w", err)
	}

	dbPath := filepath.Join(cfg.DBDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening seen store: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS seen_papers (
		identity_key TEXT PRIMARY KEY,
		title TEXT,
		first_seen TEXT NOT NULL
	)`)
	return err
}

// LoadKnown returns the set of all identity keys recorded so far.
func (s *Store) LoadKnown() (map[string]bool, error) {
	rows, err := s.db.Query(`SELECT identity_key FROM seen_papers`)
	if err != nil {
		return nil, fmt.Errorf("loading seen papers: %w", err)
	}
	defer rows.Close()

	known := make(map[string]bool)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scanning seen paper: %w", err)
		}
		known[key] = true
	}
	return known, rows.Err()
}

// MarkSeen records the papers a completed run reported. Re-marking an
// already known identity is a no-op.
func (s *Store) MarkSeen(records []types.PaperRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("marking seen papers: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT OR IGNORE INTO seen_papers (identity_key, title, first_seen) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("marking seen papers: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, rec := range records {
		var title string
		if rec.Metadata != nil {
			title = rec.Metadata.Title
		}
		if _, err := stmt.Exec(rec.IdentityKey, title, now); err != nil {
			return fmt.Errorf("marking %s seen: %w", rec.IdentityKey, err)
		}
	}
	return tx.Commit()
}
