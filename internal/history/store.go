// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history persists run records in a local SQLite database so
// processed documents and their artifacts can be listed later.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/lecture-engine/pkg/types"
)

const (
	indexDir = "index"
	dbFile   = "lecture-engine.db"
)

// Store manages the run history SQLite database.
type Store struct {
	db         *sql.DB
	maxResults int
}

// NewStore opens or creates the history database at
// <outputDir>/index/lecture-engine.db, creating the schema if needed.
func NewStore(cfg types.HistoryConfig) (*Store, error) {
	dbDir := filepath.Join(cfg.OutputDir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{db: db, maxResults: maxResults}
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
	const stmt = `CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		source TEXT NOT NULL,
		selector TEXT,
		pages TEXT NOT NULL,
		batch_size INTEGER,
		model TEXT,
		extracted_path TEXT NOT NULL,
		summary_path TEXT,
		qa_path TEXT,
		created_at TEXT NOT NULL
	)`
	if _, err := s.db.Exec(stmt); err != nil {
		return fmt.Errorf("executing schema statement: %w", err)
	}
	return nil
}

// Insert stores one run record and returns its assigned ID.
func (s *Store) Insert(ctx context.Context, rec types.RunRecord) (int64, error) {
	pages, err := json.Marshal(rec.Pages)
	if err != nil {
		return 0, fmt.Errorf("encoding pages: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (source, selector, pages, batch_size, model,
			extracted_path, summary_path, qa_path, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Source, rec.Selector, string(pages), rec.BatchSize, rec.Model,
		rec.ExtractedPath, rec.SummaryPath, rec.QAPath,
		rec.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	return res.LastInsertId()
}

// List returns the most recent runs, newest first, bounded by the
// configured maximum.
func (s *Store) List(ctx context.Context) ([]types.RunRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source, selector, pages, batch_size, model,
			extracted_path, summary_path, qa_path, created_at
		 FROM runs ORDER BY id DESC LIMIT ?`, s.maxResults)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var records []types.RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Get returns the run with the given ID, or an error when it does not exist.
func (s *Store) Get(ctx context.Context, id int64) (types.RunRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, source, selector, pages, batch_size, model,
			extracted_path, summary_path, qa_path, created_at
		 FROM runs WHERE id = ?`, id)

	rec, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.RunRecord{}, fmt.Errorf("no run with id %d", id)
	}
	return rec, err
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (types.RunRecord, error) {
	var rec types.RunRecord
	var pages, createdAt string

	err := sc.Scan(&rec.ID, &rec.Source, &rec.Selector, &pages, &rec.BatchSize,
		&rec.Model, &rec.ExtractedPath, &rec.SummaryPath, &rec.QAPath, &createdAt)
	if err != nil {
		return types.RunRecord{}, err
	}

	if err := json.Unmarshal([]byte(pages), &rec.Pages); err != nil {
		return types.RunRecord{}, fmt.Errorf("decoding pages for run %d: %w", rec.ID, err)
	}
	if rec.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return types.RunRecord{}, fmt.Errorf("parsing created_at for run %d: %w", rec.ID, err)
	}
	return rec, nil
}
