// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package corpus persists the reader's reference papers in a local SQLite
// database. The corpus is filled from Zotero or from YAML files and read by
// the reranker, newest additions first.
package corpus

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/paper-digest/pkg/types"
)

// DefaultDBPath is used when no database path is configured.
const DefaultDBPath = "data/corpus.db"

// Store manages the corpus database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the corpus database at path, creating its
// directory and schema when missing.
func Open(path string) (*Store, error) {
	if path == "" {
		path = DefaultDBPath
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating corpus directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
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
	statements := []string{
		`CREATE TABLE IF NOT EXISTS papers (
			item_key TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			abstract TEXT NOT NULL,
			authors TEXT,
			added_at TEXT NOT NULL,
			source TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_papers_added_at ON papers(added_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// UpsertSummary counts the outcome of an Upsert call.
type UpsertSummary struct {
	Stored  int
	Skipped int
}

// Upsert inserts or replaces papers under the given source label. Papers
// without an abstract cannot be compared and are skipped.
func (s *Store) Upsert(ctx context.Context, source string, papers []types.CorpusPaper) (UpsertSummary, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return UpsertSummary{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO papers (item_key, title, abstract, authors, added_at, source)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(item_key) DO UPDATE SET
			title=excluded.title, abstract=excluded.abstract, authors=excluded.authors,
			added_at=excluded.added_at, source=excluded.source`)
	if err != nil {
		return UpsertSummary{}, fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	var sum UpsertSummary
	for _, p := range papers {
		if p.Key == "" || p.Abstract == "" {
			sum.Skipped++
			continue
		}
		authorsJSON, _ := json.Marshal(p.Authors)
		if _, err := stmt.ExecContext(ctx,
			p.Key, p.Title, p.Abstract, string(authorsJSON),
			p.AddedAt.UTC().Format(time.RFC3339), source,
		); err != nil {
			return UpsertSummary{}, fmt.Errorf("upserting %s: %w", p.Key, err)
		}
		sum.Stored++
	}

	if err := tx.Commit(); err != nil {
		return UpsertSummary{}, fmt.Errorf("committing: %w", err)
	}
	return sum, nil
}

// List returns corpus papers newest first. A positive limit keeps only the
// newest limit papers.
func (s *Store) List(ctx context.Context, limit int) ([]types.CorpusPaper, error) {
	query := `SELECT item_key, title, abstract, authors, added_at FROM papers ORDER BY added_at DESC, item_key`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying corpus: %w", err)
	}
	defer rows.Close()

	var out []types.CorpusPaper
	for rows.Next() {
		var (
			p           types.CorpusPaper
			authorsJSON sql.NullString
			addedAt     string
		)
		if err := rows.Scan(&p.Key, &p.Title, &p.Abstract, &authorsJSON, &addedAt); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		if authorsJSON.Valid {
			json.Unmarshal([]byte(authorsJSON.String), &p.Authors)
		}
		p.AddedAt, _ = time.Parse(time.RFC3339, addedAt)
		out = append(out, p)
	}
	return out, rows.Err()
}

// Count returns the number of stored papers.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM papers`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting corpus: %w", err)
	}
	return n, nil
}

// DeleteSource removes every paper stored under source and returns how many
// were removed. Sync uses it to drop items deleted from the library.
func (s *Store) DeleteSource(ctx context.Context, source string) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM papers WHERE source = ?`, source)
	if err != nil {
		return 0, fmt.Errorf("deleting %s papers: %w", source, err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
