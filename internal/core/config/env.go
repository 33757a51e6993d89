package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvOverrides applies environment variable overrides to the configuration.
// Pattern: SCOPECHECK_[SECTION]_[KEY] (e.g., SCOPECHECK_OUTPUT_FORMAT).
func ApplyEnvOverrides(cfg *Config) {
	setEnvDuration(&cfg.Watch.Debounce, "SCOPECHECK_WATCH_DEBOUNCE")

	setEnvBool(&cfg.Resolve.IncludeTests, "SCOPECHECK_RESOLVE_INCLUDE_TESTS")
	setEnvBool(&cfg.Resolve.StrictScopes, "SCOPECHECK_RESOLVE_STRICT_SCOPES")
	setEnvBool(&cfg.Resolve.ReportShadowing, "SCOPECHECK_RESOLVE_REPORT_SHADOWING")

	setEnvString(&cfg.Build.GOOS, "SCOPECHECK_BUILD_GOOS")
	setEnvString(&cfg.Build.GOARCH, "SCOPECHECK_BUILD_GOARCH")

	setEnvString(&cfg.Output.Format, "SCOPECHECK_OUTPUT_FORMAT")
	cfg.Output.Format = strings.ToLower(cfg.Output.Format)
	setEnvString(&cfg.Output.Path, "SCOPECHECK_OUTPUT_PATH")

	setEnvString(&cfg.Observability.MetricsAddress, "SCOPECHECK_OBSERVABILITY_METRICS_ADDRESS")
	setEnvString(&cfg.Observability.TracingEndpoint, "SCOPECHECK_OBSERVABILITY_TRACING_ENDPOINT")

	setEnvInt(&cfg.Performance.Workers, "SCOPECHECK_PERFORMANCE_WORKERS")

	setEnvBool(&cfg.History.Enabled, "SCOPECHECK_HISTORY_ENABLED")
	setEnvString(&cfg.History.Path, "SCOPECHECK_HISTORY_PATH")
}

func setEnvString(target *string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		slog.Debug("applying env override", "key", key, "value", val)
		*target = strings.TrimSpace(val)
	}
}

func setEnvInt(target *int, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = i
		}
	}
}

func setEnvBool(target *bool, key string) {
	if val, ok := os.LookupEnv(key); ok {
		b, err := strconv.ParseBool(strings.ToLower(val))
		if err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = b
		}
	}
}

func setEnvDuration(target *time.Duration, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = d
		}
	}
}
