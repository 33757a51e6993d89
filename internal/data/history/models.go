// Package history persists per-run diagnostic counts in SQLite so trends can
// be shown across scans.
package history

import "time"

const SchemaVersion = 1

// Run is the summary of one scan or watch re-check.
type Run struct {
	ProjectKey      string    `json:"project_key"`
	RunID           string    `json:"run_id"`
	Timestamp       time.Time `json:"timestamp"`
	FileCount       int       `json:"file_count"`
	PackageCount    int       `json:"package_count"`
	AlreadyDeclared int       `json:"already_declared"`
	Undeclared      int       `json:"undeclared"`
	Shadowed        int       `json:"shadowed"`
}

// Errors is the number of failing diagnostics in the run.
func (r Run) Errors() int {
	return r.AlreadyDeclared + r.Undeclared
}

type TrendPoint struct {
	Timestamp     time.Time `json:"timestamp"`
	RunID         string    `json:"run_id"`
	Errors        int       `json:"errors"`
	Shadowed      int       `json:"shadowed"`
	DeltaErrors   int       `json:"delta_errors"`
	DeltaShadowed int       `json:"delta_shadowed"`
	DeltaFiles    int       `json:"delta_files"`
	AvgErrors     float64   `json:"avg_errors"`
	WindowHours   float64   `json:"window_hours"`
}

type TrendReport struct {
	SchemaVersion int          `json:"schema_version"`
	Since         time.Time    `json:"since"`
	Until         time.Time    `json:"until"`
	Window        string       `json:"window"`
	RunCount      int          `json:"run_count"`
	Points        []TrendPoint `json:"points"`
}
