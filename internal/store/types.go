// Package store persists enrichment runs and metric points in SQLite so the
// CLI can rebuild analytics state between invocations.
package store

import "time"

// Run is one enrichment batch as recorded by the CLI.
type Run struct {
	ID        string    `json:"id"`
	StartedAt time.Time `json:"started_at"`
	Source    string    `json:"source"`
	Products  int       `json:"products"`
	Succeeded int       `json:"succeeded"`
	AvgScore  float64   `json:"avg_score"`
	Passes    []string  `json:"passes"`
}

// RunResult is the persisted outcome for one product within a run.
type RunResult struct {
	RunID       string   `json:"run_id"`
	ProductID   string   `json:"product_id"`
	Score       float64  `json:"score"`
	Applied     []string `json:"applied"`
	Suggestions []string `json:"suggestions"`
}
