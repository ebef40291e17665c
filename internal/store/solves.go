package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Outcome classifies how a solve request settled.
type Outcome string

const (
	OutcomeOK    Outcome = "ok"
	OutcomeEmpty Outcome = "empty"
	OutcomeError Outcome = "error"
	OutcomeStale Outcome = "stale"
)

// SolveRecord is one row of the solve log.
type SolveRecord struct {
	ID           int64         `json:"id"`
	Seq          int64         `json:"seq"`
	RequestToken string        `json:"request_token"`
	UMF          string        `json:"umf"`
	Outcome      Outcome       `json:"outcome"`
	Solutions    int           `json:"solutions"`
	BestError    *float64      `json:"best_error,omitempty"`
	Message      string        `json:"message,omitempty"`
	Duration     time.Duration `json:"duration"`
	CreatedAt    time.Time     `json:"created_at"`
}

// AppendSolve writes a settled request to the log and returns its row ID.
func (s *Store) AppendSolve(ctx context.Context, rec SolveRecord) (int64, error) {
	created := rec.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	var best sql.NullFloat64
	if rec.BestError != nil {
		best = sql.NullFloat64{Float64: *rec.BestError, Valid: true}
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO solves
		(seq, request_token, umf, outcome, solutions, best_error, message, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.Seq,
		rec.RequestToken,
		rec.UMF,
		string(rec.Outcome),
		rec.Solutions,
		best,
		rec.Message,
		rec.Duration.Milliseconds(),
		created.UnixMilli(),
	)
	if err != nil {
		return 0, fmt.Errorf("append solve %d: %w", rec.Seq, err)
	}
	return res.LastInsertId()
}

// RecentSolves returns up to limit log rows, newest first.
func (s *Store) RecentSolves(ctx context.Context, limit int) ([]SolveRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, seq, request_token, umf, outcome, solutions, best_error, message, duration_ms, created_at
		FROM solves
		ORDER BY seq DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query solves: %w", err)
	}
	defer rows.Close()

	records := []SolveRecord{}
	for rows.Next() {
		var (
			rec        SolveRecord
			outcome    string
			best       sql.NullFloat64
			durationMS int64
			createdMS  int64
		)
		if err := rows.Scan(&rec.ID, &rec.Seq, &rec.RequestToken, &rec.UMF, &outcome,
			&rec.Solutions, &best, &rec.Message, &durationMS, &createdMS); err != nil {
			return nil, fmt.Errorf("scan solve: %w", err)
		}
		rec.Outcome = Outcome(outcome)
		if best.Valid {
			v := best.Float64
			rec.BestError = &v
		}
		rec.Duration = time.Duration(durationMS) * time.Millisecond
		rec.CreatedAt = time.UnixMilli(createdMS)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate solves: %w", err)
	}
	return records, nil
}

// LastSeq returns the highest logged sequence number, or 0 for an empty log.
// A new session resumes its clock from here so log order survives restarts.
func (s *Store) LastSeq(ctx context.Context) (int64, error) {
	var seq sql.NullInt64
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(seq) FROM solves`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("query last seq: %w", err)
	}
	return seq.Int64, nil
}
