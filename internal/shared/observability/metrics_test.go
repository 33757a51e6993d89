package observability

import (
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func gaugeValue(t *testing.T, name string) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() == name && len(mf.GetMetric()) > 0 {
			return mf.GetMetric()[0].GetGauge().GetValue()
		}
	}
	t.Fatalf("metric %s not registered", name)
	return 0
}

func TestObserveScopeDepth_KeepsMaximum(t *testing.T) {
	var wg sync.WaitGroup
	for depth := 1; depth <= 40; depth++ {
		wg.Add(1)
		go func(d int) {
			defer wg.Done()
			ObserveScopeDepth(d)
		}(depth)
	}
	wg.Wait()
	ObserveScopeDepth(3)

	if got := gaugeValue(t, "scopecheck_scope_depth_max"); got != 40 {
		t.Fatalf("scope depth gauge = %v, want 40", got)
	}
}
