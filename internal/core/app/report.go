package app

import (
	"sort"
	"time"

	"scopecheck/internal/engine/resolver"
)

// PackageResult is the outcome of checking one package.
type PackageResult struct {
	Dir         string                `json:"dir"`
	Name        string                `json:"name"`
	Files       []string              `json:"files"`
	Diagnostics []resolver.Diagnostic `json:"diagnostics"`
}

func (p PackageResult) key() packageKey {
	return packageKey{Dir: p.Dir, Name: p.Name}
}

type Report struct {
	RunID       string                `json:"run_id"`
	StartedAt   time.Time             `json:"started_at"`
	Duration    time.Duration         `json:"duration_ns"`
	Files       int                   `json:"files"`
	Packages    int                   `json:"packages"`
	Diagnostics []resolver.Diagnostic `json:"diagnostics"`
}

// Errors counts diagnostics that fail a run.
func (r *Report) Errors() int {
	if r == nil {
		return 0
	}
	return resolver.CountErrors(r.Diagnostics)
}

// CountByKind tallies diagnostics per kind.
func (r *Report) CountByKind() map[resolver.Kind]int {
	counts := make(map[resolver.Kind]int)
	if r == nil {
		return counts
	}
	for _, d := range r.Diagnostics {
		counts[d.Kind]++
	}
	return counts
}

func (a *App) buildReport(runID string, started time.Time) *Report {
	a.resultsMu.RLock()
	keys := make([]packageKey, 0, len(a.results))
	for k := range a.results {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].less(keys[j]) })

	report := &Report{
		RunID:       runID,
		StartedAt:   started,
		Packages:    len(keys),
		Diagnostics: []resolver.Diagnostic{},
	}
	for _, k := range keys {
		res := a.results[k]
		report.Files += len(res.Files)
		report.Diagnostics = append(report.Diagnostics, res.Diagnostics...)
	}
	a.resultsMu.RUnlock()

	resolver.SortDiagnostics(report.Diagnostics)
	report.Duration = time.Since(started)
	return report
}
