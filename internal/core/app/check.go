package app

import (
	"context"
	"log/slog"
	"runtime"
	"sync"

	"scopecheck/internal/core/errors"
	"scopecheck/internal/engine/resolver"
	"scopecheck/internal/shared/observability"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type checkJob struct {
	index int
	group *packageGroup
}

// checkPackages resolves groups on a bounded pool of workers. Results keep
// the order of groups. Parsed trees are released once checked. The first
// scope-discipline failure is returned alongside all results.
func (a *App) checkPackages(ctx context.Context, groups []*packageGroup) ([]PackageResult, error) {
	results := make([]PackageResult, len(groups))
	if len(groups) == 0 {
		return results, nil
	}

	workers := a.Config.Performance.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(groups) {
		workers = len(groups)
	}

	jobs := make(chan checkJob)
	var (
		wg       sync.WaitGroup
		errMu    sync.Mutex
		firstErr error
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				res, err := a.checkPackage(ctx, job.group)
				results[job.index] = res
				if err != nil {
					errMu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					errMu.Unlock()
				}
			}
		}()
	}

	for i, g := range groups {
		jobs <- checkJob{index: i, group: g}
	}
	close(jobs)
	wg.Wait()

	return results, firstErr
}

func (a *App) checkPackage(ctx context.Context, g *packageGroup) (PackageResult, error) {
	defer g.close()

	ctx, span := observability.Tracer.Start(ctx, "app.checkPackage", trace.WithAttributes(
		attribute.String("dir", g.key.Dir),
		attribute.String("package", g.key.Name),
	))
	defer span.End()

	res := PackageResult{
		Dir:         g.key.Dir,
		Name:        g.key.Name,
		Files:       make([]string, 0, len(g.files)),
		Diagnostics: []resolver.Diagnostic{},
	}
	for _, f := range g.files {
		res.Files = append(res.Files, f.Path)
	}

	diags, err := a.Resolver.CheckPackage(ctx, g.files)
	if diags != nil {
		res.Diagnostics = diags
	}
	if err != nil {
		slog.Error("package check failed", "dir", g.key.Dir, "package", g.key.Name, "error", err)
		return res, errors.AddContext(err, errors.CtxPath, g.key.Dir)
	}
	return res, nil
}
