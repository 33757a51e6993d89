package observability

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics definitions
var (
	ParsingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "scopecheck_parse_seconds",
		Help:    "Time spent parsing a source file.",
		Buckets: prometheus.DefBuckets,
	}, []string{"language"})

	PackageCheckDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "scopecheck_package_check_seconds",
		Help:    "Time spent resolving names across one package.",
		Buckets: prometheus.DefBuckets,
	})

	DiagnosticsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scopecheck_diagnostics_total",
		Help: "Total number of diagnostics emitted, by kind.",
	}, []string{"kind"})

	ScopeDepthMax = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "scopecheck_scope_depth_max",
		Help: "Deepest scope nesting seen by any package check since start.",
	})

	FilesScannedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scopecheck_files_scanned_total",
		Help: "Total number of source files parsed.",
	})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scopecheck_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})

	RescansThrottledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scopecheck_rescans_throttled_total",
		Help: "Total number of watch-triggered re-checks delayed by the rate limiter.",
	})
)

var (
	depthMu  sync.Mutex
	maxDepth int
)

// ObserveScopeDepth raises ScopeDepthMax to depth if it is deeper than any
// depth seen so far. Safe for concurrent package checks.
func ObserveScopeDepth(depth int) {
	depthMu.Lock()
	defer depthMu.Unlock()
	if depth > maxDepth {
		maxDepth = depth
		ScopeDepthMax.Set(float64(depth))
	}
}

// ServeMetrics exposes the default registry on addr until ctx is cancelled.
func ServeMetrics(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("serving metrics", "address", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
