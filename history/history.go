// Package history persists completed runs to a local SQLite database.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/glebarez/go-sqlite"

	"github.com/kettleworks/foreman/agent"
)

// Store records finished runs. It implements agent.Recorder.
type Store struct {
	db *sql.DB
}

// RunSummary is one row of the run history.
type RunSummary struct {
	RunID       string
	Goal        string
	Success     bool
	Score       float64
	StartedAt   time.Time
	CompletedAt time.Time
}

// Open creates or opens the run database at dbPath.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening run database: %w", err)
	}

	schema := `CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		goal TEXT NOT NULL,
		success INTEGER NOT NULL,
		score REAL NOT NULL,
		plan_json TEXT NOT NULL,
		evaluation_json TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		completed_at DATETIME NOT NULL
	);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating runs table: %w", err)
	}
	return &Store{db: db}, nil
}

// SaveRun persists one completed run.
func (s *Store) SaveRun(ctx context.Context, rec agent.RunRecord) error {
	planJSON, err := json.Marshal(rec.Plan)
	if err != nil {
		return fmt.Errorf("encoding plan: %w", err)
	}
	evalJSON, err := json.Marshal(rec.Evaluation)
	if err != nil {
		return fmt.Errorf("encoding evaluation: %w", err)
	}

	var success bool
	var score float64
	if rec.Evaluation != nil {
		success = rec.Evaluation.OverallSuccess
		score = rec.Evaluation.OverallScore
	}

	query := `INSERT INTO runs (run_id, goal, success, score, plan_json, evaluation_json, started_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = s.db.ExecContext(ctx, query,
		rec.RunID, rec.Goal, success, score,
		string(planJSON), string(evalJSON),
		rec.StartedAt.UTC(), rec.CompletedAt.UTC())
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}
	return nil
}

// RecentRuns returns the most recent runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 10
	}
	query := `SELECT run_id, goal, success, score, started_at, completed_at
		FROM runs ORDER BY completed_at DESC LIMIT ?`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var r RunSummary
		if err := rows.Scan(&r.RunID, &r.Goal, &r.Success, &r.Score, &r.StartedAt, &r.CompletedAt); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Run returns the full stored record for one run.
func (s *Store) Run(ctx context.Context, runID string) (*agent.RunRecord, error) {
	query := `SELECT run_id, goal, plan_json, evaluation_json, started_at, completed_at
		FROM runs WHERE run_id = ?`
	row := s.db.QueryRowContext(ctx, query, runID)

	var rec agent.RunRecord
	var planJSON, evalJSON string
	if err := row.Scan(&rec.RunID, &rec.Goal, &planJSON, &evalJSON, &rec.StartedAt, &rec.CompletedAt); err != nil {
		return nil, fmt.Errorf("loading run %s: %w", runID, err)
	}
	if err := json.Unmarshal([]byte(planJSON), &rec.Plan); err != nil {
		return nil, fmt.Errorf("decoding plan for run %s: %w", runID, err)
	}
	if err := json.Unmarshal([]byte(evalJSON), &rec.Evaluation); err != nil {
		return nil, fmt.Errorf("decoding evaluation for run %s: %w", runID, err)
	}
	return &rec, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
