package resolver

import (
	"context"
	"time"

	"scopecheck/internal/core/errors"
	"scopecheck/internal/engine/parser"
	"scopecheck/internal/engine/scope"
	"scopecheck/internal/shared/observability"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type Options struct {
	// Predeclared names are visible everywhere as variables.
	Predeclared []string
	// Ignore lists names never reported as undeclared.
	Ignore []string
	// Strict makes an unbalanced scope exit a hard error.
	Strict          bool
	ReportShadowing bool
}

// Resolver checks name resolution for Go packages. It holds no per-package
// state and may be shared between goroutines; every CheckPackage call uses
// its own scope stack.
type Resolver struct {
	opts   Options
	ignore map[string]bool
}

func New(opts Options) *Resolver {
	ignore := make(map[string]bool, len(opts.Ignore))
	for _, name := range opts.Ignore {
		ignore[name] = true
	}
	return &Resolver{opts: opts, ignore: ignore}
}

// CheckPackage resolves every identifier in files, which must all belong to
// the same package. Top-level declarations of all files share one package
// scope, so references across files resolve. The returned error reports a
// broken scope discipline, not problems in the checked source.
func (r *Resolver) CheckPackage(ctx context.Context, files []*parser.File) ([]Diagnostic, error) {
	pkg := ""
	if len(files) > 0 {
		pkg = files[0].PackageName
	}
	_, span := observability.Tracer.Start(ctx, "resolver.CheckPackage", trace.WithAttributes(
		attribute.String("package", pkg),
		attribute.Int("files", len(files)),
	))
	defer span.End()

	start := time.Now()
	c := r.newChecker()

	enterUniverse(c.stack, r.opts.Predeclared)
	c.enter()
	for _, f := range files {
		c.setFile(f)
		c.declarePackageLevel(f.Root())
	}
	for _, f := range files {
		c.setFile(f)
		c.enter()
		c.declareImports(f.Root())
		c.walkTopLevel(f.Root())
		c.exit()
	}
	c.exit()
	c.exit()

	if c.err == nil && c.stack.Depth() != 0 {
		c.err = errors.New(errors.CodeInternal, "scope stack not empty after package check")
	}

	SortDiagnostics(c.diags)
	for _, d := range c.diags {
		observability.DiagnosticsTotal.WithLabelValues(string(d.Kind)).Inc()
	}
	observability.ObserveScopeDepth(c.maxDepth)
	observability.PackageCheckDuration.Observe(time.Since(start).Seconds())
	span.SetAttributes(attribute.Int("diagnostics", len(c.diags)))

	if c.err != nil {
		span.RecordError(c.err)
		return c.diags, errors.AddContext(c.err, errors.CtxOperation, "check_package")
	}
	return c.diags, nil
}

func (r *Resolver) newChecker() *checker {
	c := &checker{r: r}
	if r.opts.Strict {
		c.stack = scope.NewStrictStack[Symbol]()
	} else {
		c.stack = scope.NewStack[Symbol]()
	}
	c.walker = c.newWalker()
	return c
}
