package store

import "fmt"

// currentSchemaVersion is the latest schema version.
const currentSchemaVersion = 1

// Migrate runs forward migrations to bring the database schema up to date.
func (db *DB) Migrate() error {
	if _, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	version := 0
	row := db.conn.QueryRow("SELECT version FROM schema_version LIMIT 1")
	if err := row.Scan(&version); err != nil {
		// No rows means a fresh database.
		version = 0
	}

	if version < 1 {
		if err := db.migrateV1(); err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
	}
	return nil
}

// migrateV1 creates the run and metric point tables.
func (db *DB) migrateV1() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS enrichment_runs (
			id          TEXT PRIMARY KEY,
			started_at  TEXT NOT NULL,
			source      TEXT NOT NULL,
			products    INTEGER NOT NULL,
			succeeded   INTEGER NOT NULL,
			avg_score   REAL NOT NULL,
			passes      TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS enrichment_results (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id       TEXT NOT NULL REFERENCES enrichment_runs(id) ON DELETE CASCADE,
			product_id   TEXT NOT NULL,
			score        REAL NOT NULL,
			applied      TEXT NOT NULL,
			suggestions  TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS metric_points (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			metric_name  TEXT NOT NULL,
			value        REAL NOT NULL,
			recorded_at  TEXT NOT NULL,
			dimensions   TEXT,
			metadata     TEXT
		)`,

		`CREATE INDEX IF NOT EXISTS idx_results_run ON enrichment_results(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_points_name ON metric_points(metric_name)`,
		`CREATE INDEX IF NOT EXISTS idx_points_recorded ON metric_points(recorded_at)`,
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("executing %q: %w", stmt[:40], err)
		}
	}

	if _, err := tx.Exec("DELETE FROM schema_version"); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", currentSchemaVersion); err != nil {
		return err
	}
	return tx.Commit()
}
