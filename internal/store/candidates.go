package store

import (
	"context"
	"database/sql"
	"fmt"
)

// TextRow is one comparable text value and the row that owns it.
type TextRow struct {
	ID   int64
	Text string
}

// Candidate is a scored pair of DNB-side and Gaz-side rows.
type Candidate struct {
	DNBRowID int64
	GazRowID int64
	Score    float64
}

// MatchPair is a stored candidate expressed in external identifiers.
type MatchPair struct {
	DNBID string
	GazID string
	Score float64
}

// DNBTexts returns the DNB-side text values of category: preferred names for
// meta, variant names for name. Rows with NULL text are omitted.
func (s *Store) DNBTexts(ctx context.Context, category Category) ([]TextRow, error) {
	tables, err := category.tables()
	if err != nil {
		return nil, err
	}
	return s.loadTexts(ctx, tables.dnbTexts)
}

// GazTexts returns the Gaz-side text values of category: preferred titles for
// meta, name titles for name. Rows with NULL text are omitted.
func (s *Store) GazTexts(ctx context.Context, category Category) ([]TextRow, error) {
	tables, err := category.tables()
	if err != nil {
		return nil, err
	}
	return s.loadTexts(ctx, tables.gazTexts)
}

func (s *Store) loadTexts(ctx context.Context, query string) ([]TextRow, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("load texts: %w", err)
	}
	defer rows.Close()

	var out []TextRow
	for rows.Next() {
		var row TextRow
		if err := rows.Scan(&row.ID, &row.Text); err != nil {
			return nil, fmt.Errorf("scan text row: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// CandidateWriter streams the candidates of one category into the store. All
// writes share a single transaction that started by deleting the category's
// previous candidates, so readers never observe a mix of old and new sets.
type CandidateWriter struct {
	tx       *sql.Tx
	stmt     *sql.Stmt
	category Category
	written  int64
	done     bool
}

// ReplaceCandidates begins a transaction, deletes every stored candidate of
// category and returns a writer for the replacement set. The caller must call
// Commit or Rollback.
func (s *Store) ReplaceCandidates(ctx context.Context, category Category) (*CandidateWriter, error) {
	ctx = ensureContext(ctx)
	tables, err := category.tables()
	if err != nil {
		return nil, err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin candidate tx: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM "+tables.candidates); err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("clear %s: %w", tables.candidates, err)
	}
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s (%s, %s, jarow) VALUES (?, ?, ?)",
		tables.candidates, tables.dnbColumn, tables.gazColumn))
	if err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("prepare %s insert: %w", tables.candidates, err)
	}
	return &CandidateWriter{tx: tx, stmt: stmt, category: category}, nil
}

// Write appends one candidate.
func (w *CandidateWriter) Write(ctx context.Context, c Candidate) error {
	if w.done {
		return fmt.Errorf("candidate writer for %s already finished", w.category)
	}
	if _, err := w.stmt.ExecContext(ensureContext(ctx), c.DNBRowID, c.GazRowID, c.Score); err != nil {
		return fmt.Errorf("insert %s candidate (%d, %d): %w", w.category, c.DNBRowID, c.GazRowID, err)
	}
	w.written++
	return nil
}

// Written returns the number of candidates written so far.
func (w *CandidateWriter) Written() int64 { return w.written }

// Commit publishes the replacement set and returns its size.
func (w *CandidateWriter) Commit() (int64, error) {
	if w.done {
		return w.written, fmt.Errorf("candidate writer for %s already finished", w.category)
	}
	w.done = true
	_ = w.stmt.Close()
	if err := w.tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit %s candidates: %w", w.category, err)
	}
	return w.written, nil
}

// Rollback discards the replacement set, leaving the previous candidates in
// place. It is safe to call after Commit.
func (w *CandidateWriter) Rollback() error {
	if w.done {
		return nil
	}
	w.done = true
	_ = w.stmt.Close()
	if err := w.tx.Rollback(); err != nil && err != sql.ErrTxDone {
		return fmt.Errorf("rollback %s candidates: %w", w.category, err)
	}
	return nil
}

// PurgeCandidates deletes every stored candidate of category and returns the
// number of rows removed.
func (s *Store) PurgeCandidates(ctx context.Context, category Category) (int64, error) {
	tables, err := category.tables()
	if err != nil {
		return 0, err
	}
	res, err := s.execWithRetry(ctx, "DELETE FROM "+tables.candidates)
	if err != nil {
		return 0, fmt.Errorf("purge %s: %w", tables.candidates, err)
	}
	return res.RowsAffected()
}

// ListCandidates returns the stored candidates of category as external id
// pairs ordered by DNB id, Gaz id and descending score.
func (s *Store) ListCandidates(ctx context.Context, category Category) ([]MatchPair, error) {
	ctx = ensureContext(ctx)
	tables, err := category.tables()
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, "SELECT dnb_id, gaz_id, score FROM "+tables.view+" ORDER BY dnb_id, gaz_id, score DESC")
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", tables.view, err)
	}
	defer rows.Close()

	var out []MatchPair
	for rows.Next() {
		var pair MatchPair
		if err := rows.Scan(&pair.DNBID, &pair.GazID, &pair.Score); err != nil {
			return nil, fmt.Errorf("scan %s row: %w", tables.view, err)
		}
		out = append(out, pair)
	}
	return out, rows.Err()
}

// CountCandidates returns how many stored candidates of category qualify at
// threshold under the category's comparator.
func (s *Store) CountCandidates(ctx context.Context, category Category, threshold float64) (int64, error) {
	ctx = ensureContext(ctx)
	tables, err := category.tables()
	if err != nil {
		return 0, err
	}
	query := fmt.Sprintf("SELECT COUNT(1) FROM %s WHERE score %s ?", tables.view, category.Comparator())
	n, err := countRows(s.db.QueryRowContext(ctx, query, threshold))
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", tables.view, err)
	}
	return n, nil
}
