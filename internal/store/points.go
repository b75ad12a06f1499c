package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/blackwell-systems/contentlens/internal/analytics"
)

// InsertPoints appends metric points in one transaction.
func (db *DB) InsertPoints(points []analytics.Point) error {
	if len(points) == 0 {
		return nil
	}
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(
		`INSERT INTO metric_points (metric_name, value, recorded_at, dimensions, metadata)
		VALUES (?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for _, p := range points {
		dims, err := encodeMap(p.Dimensions)
		if err != nil {
			return err
		}
		meta, err := encodeMap(p.Metadata)
		if err != nil {
			return err
		}
		if _, err := stmt.Exec(p.MetricName, p.Value, p.Timestamp.UTC().Format(timeLayout), dims, meta); err != nil {
			return fmt.Errorf("inserting point %s: %w", p.MetricName, err)
		}
	}
	return tx.Commit()
}

// ListPoints returns stored points for name, or every point when name is
// empty, ordered by insertion.
func (db *DB) ListPoints(name string) ([]analytics.Point, error) {
	query := "SELECT metric_name, value, recorded_at, dimensions, metadata FROM metric_points"
	var args []any
	if name != "" {
		query += " WHERE metric_name = ?"
		args = append(args, name)
	}
	query += " ORDER BY id"

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []analytics.Point
	for rows.Next() {
		var p analytics.Point
		var recordedAt string
		var dims, meta sql.NullString
		if err := rows.Scan(&p.MetricName, &p.Value, &recordedAt, &dims, &meta); err != nil {
			return nil, err
		}
		if p.Timestamp, err = time.Parse(timeLayout, recordedAt); err != nil {
			return nil, fmt.Errorf("parsing recorded_at: %w", err)
		}
		if p.Dimensions, err = decodeMap(dims); err != nil {
			return nil, err
		}
		if p.Metadata, err = decodeMap(meta); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// PruneMetricPoints deletes points recorded before cutoff and returns how
// many were removed.
func (db *DB) PruneMetricPoints(cutoff time.Time) (int64, error) {
	res, err := db.conn.Exec(
		"DELETE FROM metric_points WHERE recorded_at < ?",
		cutoff.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func encodeMap(m map[string]string) (sql.NullString, error) {
	if len(m) == 0 {
		return sql.NullString{}, nil
	}
	s, err := json.MarshalToString(m)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: s, Valid: true}, nil
}

func decodeMap(s sql.NullString) (map[string]string, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	var m map[string]string
	if err := json.UnmarshalFromString(s.String, &m); err != nil {
		return nil, fmt.Errorf("decoding map column: %w", err)
	}
	return m, nil
}
