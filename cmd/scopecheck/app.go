package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"scopecheck/internal/core/app"
	"scopecheck/internal/core/config"
	"scopecheck/internal/shared/observability"
	"scopecheck/internal/shared/util"
	"scopecheck/internal/shared/version"
	"scopecheck/internal/ui/cli"
	"scopecheck/internal/ui/report"
)

const defaultConfigPath = "./scopecheck.toml"

type options struct {
	configPath string
	once       bool
	format     string
	outPath    string
	verbose    bool
	version    bool
	history    bool
	ui         bool
	paths      []string
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("scopecheck", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", defaultConfigPath, "Path to config file")
	fs.BoolVar(&opts.once, "once", false, "Run single check and exit")
	fs.StringVar(&opts.format, "format", "", "Report format: text, json, sarif or tsv (overrides config)")
	fs.StringVar(&opts.outPath, "out", "", "Write the report to this file instead of stdout")
	fs.BoolVar(&opts.verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&opts.version, "version", false, "Print version and exit")
	fs.BoolVar(&opts.history, "history", false, "Print the recorded run trend as JSON and exit")
	fs.BoolVar(&opts.ui, "ui", false, "Show watch results in an interactive terminal view")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	opts.paths = fs.Args()
	return opts, nil
}

// run is main without the process exit. It returns 1 when a one-shot check
// finds errors and 2 on usage or setup failures.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return 2
	}

	if opts.version {
		fmt.Fprintf(stdout, "scopecheck v%s\n", version.Version)
		return 0
	}

	logLevel := slog.LevelInfo
	if opts.verbose {
		logLevel = slog.LevelDebug
	}
	logOut := stderr
	if opts.ui && !opts.once {
		// The terminal view owns the screen.
		logOut = io.Discard
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{
		Level: logLevel,
	})))

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 2
	}
	if len(opts.paths) > 0 {
		cfg.WatchPaths = opts.paths
	}
	if opts.format != "" {
		cfg.Output.Format = strings.ToLower(opts.format)
	}
	if opts.outPath != "" {
		cfg.Output.Path = opts.outPath
	}

	shutdown, err := observability.SetupTracing(ctx, cfg.Observability.TracingEndpoint)
	if err != nil {
		slog.Error("failed to set up tracing", "error", err)
		return 2
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			slog.Warn("tracing shutdown failed", "error", err)
		}
	}()

	if addr := cfg.Observability.MetricsAddress; addr != "" {
		go func() {
			if err := observability.ServeMetrics(ctx, addr); err != nil {
				slog.Error("metrics server failed", "error", err)
			}
		}()
	}

	a, err := app.New(cfg)
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		return 2
	}
	defer a.Close()

	if opts.history {
		return printTrend(a, cfg, stdout)
	}

	rep, err := a.Scan(ctx, cfg.WatchPaths)
	if err != nil {
		slog.Error("initial scan failed", "error", err)
		if rep == nil {
			return 2
		}
	}
	if opts.ui && !opts.once {
		return runUI(ctx, a, rep)
	}

	if err := emit(cfg, rep, stdout); err != nil {
		slog.Error("failed to write report", "error", err)
		return 2
	}

	if opts.once {
		if rep.Errors() > 0 {
			return 1
		}
		return 0
	}

	a.SetUpdateHandler(func(r *app.Report) {
		if err := emit(cfg, r, stdout); err != nil {
			slog.Error("failed to write report", "error", err)
		}
	})
	if err := a.StartWatcher(ctx); err != nil {
		slog.Error("failed to start watcher", "error", err)
		return 2
	}
	slog.Info("watching for changes", "paths", cfg.WatchPaths)

	<-ctx.Done()
	return 0
}

func runUI(ctx context.Context, a *app.App, rep *app.Report) int {
	if err := a.StartWatcher(ctx); err != nil {
		slog.Error("failed to start watcher", "error", err)
		return 2
	}
	if err := cli.RunUI(ctx, a, rep); err != nil {
		slog.Error("terminal view failed", "error", err)
		return 2
	}
	return 0
}

func printTrend(a *app.App, cfg *config.Config, stdout io.Writer) int {
	trend, err := a.Trend(time.Now().Add(-cfg.History.Window))
	if err != nil {
		slog.Error("failed to build trend report", "error", err)
		return 2
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(trend); err != nil {
		slog.Error("failed to write trend report", "error", err)
		return 2
	}
	return 0
}

// loadConfig falls back to defaults when the default config file is absent.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err == nil {
		return cfg, nil
	}
	if path == defaultConfigPath {
		if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
			slog.Debug("no config file, using defaults", "path", path)
			cfg = config.DefaultConfig()
			config.ApplyEnvOverrides(cfg)
			return cfg, config.Validate(cfg)
		}
	}
	return nil, err
}

func emit(cfg *config.Config, r *app.Report, stdout io.Writer) error {
	opts := report.Options{
		Format: cfg.Output.Format,
		Color:  cfg.Output.ColorEnabled() && cfg.Output.Path == "",
	}
	if len(cfg.WatchPaths) > 0 {
		opts.ProjectRoot = cfg.WatchPaths[0]
	}

	if cfg.Output.Path == "" {
		return report.Render(stdout, r, opts)
	}
	var buf bytes.Buffer
	if err := report.Render(&buf, r, opts); err != nil {
		return err
	}
	return util.WriteFileWithDirs(cfg.Output.Path, buf.Bytes(), 0o644)
}
