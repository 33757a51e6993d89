package app

import (
	"context"
	"fmt"
	"go/build"
	"log/slog"
	"sync"
	"time"

	"scopecheck/internal/core/config"
	"scopecheck/internal/core/watcher"
	"scopecheck/internal/data/history"
	"scopecheck/internal/engine/parser"
	"scopecheck/internal/engine/resolver"
	"scopecheck/internal/shared/observability"
	"scopecheck/internal/shared/util"

	"github.com/gobwas/glob"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// limiterTTL is how long a package directory's rescan limiter survives
// without events.
const limiterTTL = 10 * time.Minute

type App struct {
	Config       *config.Config
	Parser       *parser.Parser
	Resolver     *resolver.Resolver
	IncludeTests bool

	excludeDirs  []glob.Glob
	excludeFiles []glob.Glob
	buildCtx     build.Context

	// Last result per package, keyed by packageKey. Watch re-checks replace
	// entries for the directories they touch.
	results   map[packageKey]PackageResult
	resultsMu sync.RWMutex

	limiters *util.LimiterRegistry
	history  *history.Store

	updateMu sync.RWMutex
	onUpdate func(*Report)

	activeWatcher *watcher.Watcher
}

func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	excludeDirs, err := compileGlobs(cfg.Exclude.Dirs, "exclude dir")
	if err != nil {
		return nil, err
	}
	excludeFiles, err := compileGlobs(cfg.Exclude.Files, "exclude file")
	if err != nil {
		return nil, err
	}

	var store *history.Store
	if cfg.History.Enabled {
		store, err = history.Open(cfg.History.Path)
		if err != nil {
			return nil, err
		}
	}

	return &App{
		Config:       cfg,
		Parser:       parser.NewParser(),
		Resolver:     resolver.New(resolverOptions(cfg.Resolve)),
		IncludeTests: cfg.Resolve.IncludeTests,
		excludeDirs:  excludeDirs,
		excludeFiles: excludeFiles,
		buildCtx:     buildContext(cfg.Build),
		results:      make(map[packageKey]PackageResult),
		limiters:     util.NewLimiterRegistry(cfg.Performance.RescanRate, cfg.Performance.RescanBurst, limiterTTL),
		history:      store,
	}, nil
}

func resolverOptions(r config.Resolve) resolver.Options {
	return resolver.Options{
		Predeclared:     r.Predeclared,
		Ignore:          r.Ignore,
		Strict:          r.StrictScopes,
		ReportShadowing: r.ReportShadowing,
	}
}

func buildContext(b config.Build) build.Context {
	ctx := build.Default
	if b.GOOS != "" {
		ctx.GOOS = b.GOOS
	}
	if b.GOARCH != "" {
		ctx.GOARCH = b.GOARCH
	}
	ctx.BuildTags = append([]string(nil), b.Tags...)
	return ctx
}

func compileGlobs(patterns []string, label string) ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid %s pattern %q: %w", label, p, err)
		}
		out = append(out, g)
	}
	return out, nil
}

// SetUpdateHandler registers fn to receive the report produced after every
// watch-triggered re-check.
func (a *App) SetUpdateHandler(fn func(*Report)) {
	a.updateMu.Lock()
	defer a.updateMu.Unlock()
	a.onUpdate = fn
}

func (a *App) emitUpdate(r *Report) {
	a.updateMu.RLock()
	fn := a.onUpdate
	a.updateMu.RUnlock()
	if fn != nil {
		fn(r)
	}
}

// Scan checks every package under paths and replaces all cached results.
func (a *App) Scan(ctx context.Context, paths []string) (*Report, error) {
	runID := uuid.NewString()
	ctx, span := observability.Tracer.Start(ctx, "app.Scan", trace.WithAttributes(
		attribute.String("run_id", runID),
		attribute.StringSlice("paths", paths),
	))
	defer span.End()

	started := time.Now()
	files, err := a.ScanDirectories(paths)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	groups := a.loadPackages(files)
	results, err := a.checkPackages(ctx, groups)

	a.resultsMu.Lock()
	a.results = make(map[packageKey]PackageResult, len(results))
	for _, res := range results {
		a.results[res.key()] = res
	}
	a.resultsMu.Unlock()

	report := a.buildReport(runID, started)
	span.SetAttributes(
		attribute.Int("packages", report.Packages),
		attribute.Int("diagnostics", len(report.Diagnostics)),
	)
	a.recordRun(report)
	slog.Debug("scan finished", "run_id", runID, "files", report.Files, "packages", report.Packages, "duration", report.Duration)
	if err != nil {
		span.RecordError(err)
		return report, err
	}
	return report, nil
}

func (a *App) Close() error {
	a.limiters.Close()
	var err error
	if a.activeWatcher != nil {
		err = a.activeWatcher.Close()
	}
	if a.history != nil {
		if closeErr := a.history.Close(); err == nil {
			err = closeErr
		}
	}
	return err
}
