package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Run kinds recorded in the runs table.
const (
	RunKindImportDNB = "import-dnb"
	RunKindImportGaz = "import-gaz"
	RunKindMatch     = "match"
)

// Run is one finished import or match invocation.
type Run struct {
	ID         string    `json:"run_id" yaml:"run_id"`
	Kind       string    `json:"kind" yaml:"kind"`
	Category   string    `json:"category,omitempty" yaml:"category,omitempty"`
	Source     string    `json:"source,omitempty" yaml:"source,omitempty"`
	Threshold  *float64  `json:"threshold,omitempty" yaml:"threshold,omitempty"`
	Accepted   int64     `json:"accepted" yaml:"accepted"`
	Rejected   int64     `json:"rejected" yaml:"rejected"`
	Duplicates int64     `json:"duplicates" yaml:"duplicates"`
	Candidates int64     `json:"candidates" yaml:"candidates"`
	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at" yaml:"finished_at"`
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// RecordRun persists a finished run. An empty ID is replaced by a new one.
func (s *Store) RecordRun(ctx context.Context, run Run) (string, error) {
	if run.ID == "" {
		run.ID = NewRunID()
	}
	if run.Kind == "" {
		return "", fmt.Errorf("record run: kind is required")
	}
	_, err := s.execWithRetry(ctx, `INSERT INTO runs (
		run_id, kind, category, source, threshold, accepted, rejected, duplicates, candidates, started_at, finished_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.Kind,
		nullableString(run.Category),
		nullableString(run.Source),
		nullableFloat(run.Threshold),
		run.Accepted,
		run.Rejected,
		run.Duplicates,
		run.Candidates,
		formatTime(run.StartedAt),
		formatTime(run.FinishedAt),
	)
	if err != nil {
		return "", fmt.Errorf("record run %s: %w", run.ID, err)
	}
	return run.ID, nil
}

// RecentRuns returns up to limit runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	ctx = ensureContext(ctx)
	if limit <= 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, `SELECT run_id, kind, category, source, threshold,
		accepted, rejected, duplicates, candidates, started_at, finished_at
		FROM runs ORDER BY finished_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var (
			run                 Run
			category, source    sql.NullString
			threshold           sql.NullFloat64
			startedRaw, doneRaw string
		)
		if err := rows.Scan(&run.ID, &run.Kind, &category, &source, &threshold,
			&run.Accepted, &run.Rejected, &run.Duplicates, &run.Candidates, &startedRaw, &doneRaw); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.Category = category.String
		run.Source = source.String
		if threshold.Valid {
			t := threshold.Float64
			run.Threshold = &t
		}
		if started, err := parseTimeString(startedRaw); err == nil {
			run.StartedAt = started
		}
		if finished, err := parseTimeString(doneRaw); err == nil {
			run.FinishedAt = finished
		}
		out = append(out, run)
	}
	return out, rows.Err()
}
