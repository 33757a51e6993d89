package app

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"scopecheck/internal/core/watcher"
	"scopecheck/internal/shared/observability"
	"scopecheck/internal/shared/util"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// StartWatcher watches the configured paths and re-checks changed packages
// until ctx is cancelled.
func (a *App) StartWatcher(ctx context.Context) error {
	w, err := watcher.NewWatcher(
		a.Config.Watch.Debounce,
		a.Config.Exclude.Dirs,
		a.Config.Exclude.Files,
		func(paths []string) { a.HandleChanges(ctx, paths) },
	)
	if err != nil {
		return err
	}
	w.SetFileFilter(a.acceptFile)
	a.activeWatcher = w
	return w.Watch(a.Config.WatchPaths)
}

// HandleChanges re-checks every package directory touched by paths,
// replaces their cached results and publishes the merged report.
// Re-checks of one directory are throttled by its rate limiter.
func (a *App) HandleChanges(ctx context.Context, paths []string) *Report {
	runID := uuid.NewString()
	ctx, span := observability.Tracer.Start(ctx, "app.HandleChanges", trace.WithAttributes(
		attribute.String("run_id", runID),
		attribute.Int("changed", len(paths)),
	))
	defer span.End()

	slog.Info("detected changes", "count", len(paths))
	started := time.Now()

	dirSet := make(map[string]bool)
	for _, path := range paths {
		if !a.acceptFile(path) {
			continue
		}
		dirSet[filepath.Dir(path)] = true
	}
	for _, dir := range util.SortedStringKeys(dirSet) {
		waited, err := a.limiters.Get(dir).Wait(ctx)
		if waited {
			observability.RescansThrottledTotal.Inc()
		}
		if err != nil {
			slog.Debug("re-check cancelled", "dir", dir, "error", err)
			return nil
		}
		if err := a.recheckDir(ctx, dir); err != nil {
			slog.Warn("failed to re-check package", "dir", dir, "error", err)
		}
	}

	report := a.buildReport(runID, started)
	a.recordRun(report)
	slog.Info("re-check finished",
		"dirs", len(dirSet),
		"packages", report.Packages,
		"errors", report.Errors(),
		"duration", time.Since(started),
	)
	a.emitUpdate(report)
	return report
}

// recheckDir replaces the cached results for every package in dir. A
// removed directory simply drops them.
func (a *App) recheckDir(ctx context.Context, dir string) error {
	var files []string
	if _, err := os.Stat(dir); err == nil {
		files, err = a.listDir(dir)
		if err != nil {
			return err
		}
	}

	results, err := a.checkPackages(ctx, a.loadPackages(files))

	a.resultsMu.Lock()
	for k := range a.results {
		if k.Dir == dir {
			delete(a.results, k)
		}
	}
	for _, res := range results {
		a.results[res.key()] = res
	}
	a.resultsMu.Unlock()
	return err
}
