package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"scopecheck/internal/core/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scopecheck.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	content := `
watch_paths = ["./src"]

[exclude]
dirs = [".git", "gen*"]
files = ["*.pb.go"]

[watch]
debounce = "1s"

[resolve]
predeclared = ["assert"]
ignore = ["C"]
include_tests = true
strict_scopes = true
report_shadowing = true

[output]
format = "JSON"
color = false

[observability]
metrics_address = ":9102"

[performance]
workers = 2
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(cfg.WatchPaths) != 1 || cfg.WatchPaths[0] != "./src" {
		t.Errorf("unexpected watch paths: %v", cfg.WatchPaths)
	}
	if cfg.Watch.Debounce != time.Second {
		t.Errorf("expected 1s debounce, got %v", cfg.Watch.Debounce)
	}
	if len(cfg.Exclude.Dirs) != 2 || cfg.Exclude.Files[0] != "*.pb.go" {
		t.Errorf("unexpected excludes: %+v", cfg.Exclude)
	}
	if !cfg.Resolve.IncludeTests || !cfg.Resolve.StrictScopes || !cfg.Resolve.ReportShadowing {
		t.Errorf("unexpected resolve settings: %+v", cfg.Resolve)
	}
	if cfg.Resolve.Predeclared[0] != "assert" || cfg.Resolve.Ignore[0] != "C" {
		t.Errorf("unexpected name lists: %+v", cfg.Resolve)
	}
	if cfg.Output.Format != "json" {
		t.Errorf("expected normalized json format, got %q", cfg.Output.Format)
	}
	if cfg.Output.ColorEnabled() {
		t.Error("expected color disabled")
	}
	if cfg.Observability.MetricsAddress != ":9102" {
		t.Errorf("unexpected metrics address %q", cfg.Observability.MetricsAddress)
	}
	if cfg.Performance.Workers != 2 {
		t.Errorf("expected 2 workers, got %d", cfg.Performance.Workers)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `version = 1`))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Watch.Debounce != 500*time.Millisecond {
		t.Errorf("Expected default debounce 500ms, got %v", cfg.Watch.Debounce)
	}
	if cfg.Output.Format != "text" || !cfg.Output.ColorEnabled() {
		t.Errorf("unexpected output defaults: %+v", cfg.Output)
	}
	if len(cfg.WatchPaths) != 1 || cfg.WatchPaths[0] != "." {
		t.Errorf("unexpected default watch paths: %v", cfg.WatchPaths)
	}
	if cfg.Performance.Workers < 1 {
		t.Errorf("expected at least one worker, got %d", cfg.Performance.Workers)
	}
	if cfg.History.Enabled || cfg.History.Path != ".scopecheck/history.db" || cfg.History.Window != 24*time.Hour {
		t.Errorf("unexpected history defaults: %+v", cfg.History)
	}
}

func TestLoadError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.toml"))
	if !errors.IsCode(err, errors.CodeNotFound) {
		t.Errorf("Expected NOT_FOUND for nonexistent file, got %v", err)
	}

	_, err = Load(writeConfig(t, "bad = toml = format"))
	if !errors.IsCode(err, errors.CodeValidationError) {
		t.Errorf("Expected VALIDATION_ERROR for malformed TOML, got %v", err)
	}
}

func TestLoadValidation(t *testing.T) {
	cases := map[string]string{
		"format":  "[output]\nformat = \"xml\"",
		"version": "version = 3",
		"glob":    "[exclude]\ndirs = [\"[\"]",
		"ignore":  "[resolve]\nignore = [\" \"]",
		"workers": "[performance]\nworkers = 1000",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, content))
			if !errors.IsCode(err, errors.CodeValidationError) {
				t.Errorf("expected VALIDATION_ERROR, got %v", err)
			}
		})
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("SCOPECHECK_OUTPUT_FORMAT", "JSON")
	t.Setenv("SCOPECHECK_PERFORMANCE_WORKERS", "3")
	t.Setenv("SCOPECHECK_RESOLVE_INCLUDE_TESTS", "true")
	t.Setenv("SCOPECHECK_WATCH_DEBOUNCE", "2s")

	cfg := DefaultConfig()
	ApplyEnvOverrides(cfg)

	if cfg.Output.Format != "json" {
		t.Errorf("expected json, got %q", cfg.Output.Format)
	}
	if cfg.Performance.Workers != 3 {
		t.Errorf("expected 3 workers, got %d", cfg.Performance.Workers)
	}
	if !cfg.Resolve.IncludeTests {
		t.Error("expected include_tests override")
	}
	if cfg.Watch.Debounce != 2*time.Second {
		t.Errorf("expected 2s debounce, got %v", cfg.Watch.Debounce)
	}
}
