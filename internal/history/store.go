// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history persists duplication-check runs in a local SQLite
// database so planners can review what was checked, when, and what it
// found, without re-querying the archive.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/archive-scout/internal/dupcheck"
	"github.com/pdiddy/archive-scout/pkg/types"
)

const dbFile = "history.db"

// Store manages the run-history SQLite database.
type Store struct {
	db         *sql.DB
	maxResults int
}

// NewStore opens or creates the history database at
// cfg.HistoryDir/history.db, creating the schema if needed.
func NewStore(cfg types.HistoryConfig) (*Store, error) {
	dir := cfg.HistoryDir
	if dir == "" {
		dir = ".archive-scout"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
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
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp TEXT NOT NULL,
			target_id TEXT NOT NULL,
			aperture TEXT NOT NULL,
			ra REAL,
			dec REAL,
			grating TEXT,
			filter TEXT,
			exposure_seconds REAL,
			result_sets INTEGER,
			rows_matched INTEGER,
			proposal_ids TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_target_id ON runs(target_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Run is one recorded duplication check for one target.
type Run struct {
	Timestamp       time.Time `json:"timestamp"`
	TargetID        string    `json:"target_id"`
	Aperture        string    `json:"aperture"`
	RA              float64   `json:"ra"`
	Dec             float64   `json:"dec"`
	Grating         string    `json:"grating"`
	Filter          string    `json:"filter"`
	ExposureSeconds float64   `json:"exposure_seconds"`
	ResultSets      int       `json:"result_sets"`
	RowsMatched     int       `json:"rows_matched"`
	ProposalIDs     []int     `json:"proposal_ids"`
}

// RecordReport stores one row per catalog target, folding the companion
// MOS result set (when present) into that target's counts.
func (s *Store) RecordReport(ctx context.Context, catalog []types.CandidateTarget, report *dupcheck.Report) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO runs (timestamp, target_id, aperture, ra, dec, grating, filter,
			exposure_seconds, result_sets, rows_matched, proposal_ids)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, t := range catalog {
		rows := report.Targets[t.ID]
		sets := 1
		matched := len(rows)
		if mos, ok := report.Targets[t.ID+dupcheck.MOSSuffix]; ok {
			sets++
			matched += len(mos)
			rows = append(rows[:len(rows):len(rows)], mos...)
		}

		proposals := make([]int, 0)
		seen := make(map[int]struct{})
		for _, row := range rows {
			if id, err := row.ProposalID(); err == nil {
				if _, dup := seen[id]; !dup {
					seen[id] = struct{}{}
					proposals = append(proposals, id)
				}
			}
		}
		proposalsJSON, _ := json.Marshal(proposals)

		_, err := stmt.ExecContext(ctx, now, t.ID, t.Aperture, t.RA, t.Dec,
			t.Grating, t.Filter, t.ExposureSeconds, sets, matched, string(proposalsJSON))
		if err != nil {
			return fmt.Errorf("inserting run for target %s: %w", t.ID, err)
		}
	}

	return tx.Commit()
}

// List returns the most recent runs, newest first. A limit of 0 uses the
// configured default.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = s.maxResults
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT timestamp, target_id, aperture, ra, dec, grating, filter,
			exposure_seconds, result_sets, rows_matched, proposal_ids
		 FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var ts, proposalsJSON string
		if err := rows.Scan(&ts, &r.TargetID, &r.Aperture, &r.RA, &r.Dec,
			&r.Grating, &r.Filter, &r.ExposureSeconds, &r.ResultSets,
			&r.RowsMatched, &proposalsJSON); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		if t, parseErr := time.Parse(time.RFC3339, ts); parseErr == nil {
			r.Timestamp = t
		}
		if proposalsJSON != "" {
			_ = json.Unmarshal([]byte(proposalsJSON), &r.ProposalIDs)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Clear removes all recorded runs.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM runs`); err != nil {
		return fmt.Errorf("clearing runs: %w", err)
	}
	return nil
}
