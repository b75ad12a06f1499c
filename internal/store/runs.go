package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrRunNotFound is returned by GetRun for unknown IDs.
var ErrRunNotFound = errors.New("enrichment run not found")

// timeLayout is fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// CreateRun inserts a run and its results in one transaction. An empty
// run ID is filled with a time-ordered UUID.
func (db *DB) CreateRun(r *Run, results []RunResult) error {
	if r.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("generating run id: %w", err)
		}
		r.ID = id.String()
	}
	passes, err := json.MarshalToString(r.Passes)
	if err != nil {
		return err
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(
		`INSERT INTO enrichment_runs (id, started_at, source, products, succeeded, avg_score, passes)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.StartedAt.UTC().Format(timeLayout), r.Source, r.Products, r.Succeeded, r.AvgScore, passes,
	); err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO enrichment_results (run_id, product_id, score, applied, suggestions)
		VALUES (?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for _, res := range results {
		applied, err := json.MarshalToString(res.Applied)
		if err != nil {
			return err
		}
		suggestions, err := json.MarshalToString(res.Suggestions)
		if err != nil {
			return err
		}
		if _, err := stmt.Exec(r.ID, res.ProductID, res.Score, applied, suggestions); err != nil {
			return fmt.Errorf("inserting result for %s: %w", res.ProductID, err)
		}
	}
	return tx.Commit()
}

// ListRuns returns the most recent runs first, at most limit (0 for all).
func (db *DB) ListRuns(limit int) ([]Run, error) {
	query := "SELECT id, started_at, source, products, succeeded, avg_score, passes FROM enrichment_runs ORDER BY started_at DESC, id DESC"
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

// GetRun returns a run by ID.
func (db *DB) GetRun(id string) (*Run, error) {
	row := db.conn.QueryRow(
		"SELECT id, started_at, source, products, succeeded, avg_score, passes FROM enrichment_runs WHERE id = ?",
		id,
	)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return r, err
}

// RunResults returns the per-product results of a run in insertion order.
func (db *DB) RunResults(runID string) ([]RunResult, error) {
	rows, err := db.conn.Query(
		"SELECT run_id, product_id, score, applied, suggestions FROM enrichment_results WHERE run_id = ? ORDER BY id",
		runID,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []RunResult
	for rows.Next() {
		var res RunResult
		var applied, suggestions string
		if err := rows.Scan(&res.RunID, &res.ProductID, &res.Score, &applied, &suggestions); err != nil {
			return nil, err
		}
		if err := json.UnmarshalFromString(applied, &res.Applied); err != nil {
			return nil, fmt.Errorf("decoding applied passes: %w", err)
		}
		if err := json.UnmarshalFromString(suggestions, &res.Suggestions); err != nil {
			return nil, fmt.Errorf("decoding suggestions: %w", err)
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*Run, error) {
	var r Run
	var startedAt, passes string
	if err := s.Scan(&r.ID, &startedAt, &r.Source, &r.Products, &r.Succeeded, &r.AvgScore, &passes); err != nil {
		return nil, err
	}
	t, err := time.Parse(timeLayout, startedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing started_at: %w", err)
	}
	r.StartedAt = t
	if err := json.UnmarshalFromString(passes, &r.Passes); err != nil {
		return nil, fmt.Errorf("decoding passes: %w", err)
	}
	return &r, nil
}
