package app

import (
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"scopecheck/internal/core/errors"
	"scopecheck/internal/data/history"
	"scopecheck/internal/engine/resolver"
)

// projectKey names the scanned tree in the history store.
func (a *App) projectKey() string {
	roots := make([]string, 0, len(a.Config.WatchPaths))
	for _, p := range a.Config.WatchPaths {
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
		roots = append(roots, filepath.Clean(p))
	}
	return strings.Join(roots, ",")
}

func (a *App) recordRun(r *Report) {
	if a.history == nil || r == nil {
		return
	}
	counts := r.CountByKind()
	run := history.Run{
		ProjectKey:      a.projectKey(),
		RunID:           r.RunID,
		Timestamp:       r.StartedAt.UTC(),
		FileCount:       r.Files,
		PackageCount:    r.Packages,
		AlreadyDeclared: counts[resolver.KindAlreadyDeclared],
		Undeclared:      counts[resolver.KindUndeclared],
		Shadowed:        counts[resolver.KindShadowed],
	}
	if err := a.history.SaveRun(run); err != nil {
		if history.IsCorruptError(err) {
			slog.Error("history database is corrupt, remove it to start over", "path", a.history.Path(), "error", err)
			return
		}
		slog.Warn("failed to record run history", "run_id", r.RunID, "error", err)
	}
}

// Trend builds a trend report from the recorded runs since the given time.
func (a *App) Trend(since time.Time) (history.TrendReport, error) {
	if a.history == nil {
		return history.TrendReport{}, errors.New(errors.CodeNotSupported, "run history is disabled")
	}
	runs, err := a.history.LoadRuns(a.projectKey(), since)
	if err != nil {
		return history.TrendReport{}, errors.Wrap(err, errors.CodeInternal, "load run history")
	}
	report, err := history.BuildTrendReport(runs, a.Config.History.Window)
	if err != nil {
		return history.TrendReport{}, errors.Wrap(err, errors.CodeNotFound, "build trend report")
	}
	return report, nil
}
