package config

import (
	"time"
)

type Config struct {
	Version       int           `toml:"version"`
	WatchPaths    []string      `toml:"watch_paths"`
	Exclude       Exclude       `toml:"exclude"`
	Watch         Watch         `toml:"watch"`
	Resolve       Resolve       `toml:"resolve"`
	Build         Build         `toml:"build"`
	Output        Output        `toml:"output"`
	Observability Observability `toml:"observability"`
	Performance   Performance   `toml:"performance"`
	History       History       `toml:"history"`
}

type Exclude struct {
	Dirs  []string `toml:"dirs"`
	Files []string `toml:"files"`
}

type Watch struct {
	Debounce time.Duration `toml:"debounce"`
}

type Resolve struct {
	// Predeclared names are added to the universe scope as variables.
	Predeclared []string `toml:"predeclared"`
	// Ignore lists names that are never reported as undeclared.
	Ignore          []string `toml:"ignore"`
	IncludeTests    bool     `toml:"include_tests"`
	StrictScopes    bool     `toml:"strict_scopes"`
	ReportShadowing bool     `toml:"report_shadowing"`
}

// Build selects the files of a package the way the go tool does. Empty
// fields fall back to the host platform.
type Build struct {
	GOOS   string   `toml:"goos"`
	GOARCH string   `toml:"goarch"`
	Tags   []string `toml:"tags"`
}

type Output struct {
	Format string `toml:"format"` // text, json, sarif or tsv
	Color  *bool  `toml:"color"`
	// Path receives the report instead of stdout when set.
	Path string `toml:"path"`
}

func (o Output) ColorEnabled() bool {
	return o.Color == nil || *o.Color
}

type Observability struct {
	MetricsAddress  string `toml:"metrics_address"`
	TracingEndpoint string `toml:"tracing_endpoint"`
}

type Performance struct {
	Workers int `toml:"workers"`
	// RescanRate caps watch-triggered package re-checks per second.
	RescanRate  float64 `toml:"rescan_rate"`
	RescanBurst int     `toml:"rescan_burst"`
}

// History stores one summary row per run in a SQLite file.
type History struct {
	Enabled bool          `toml:"enabled"`
	Path    string        `toml:"path"`
	Window  time.Duration `toml:"window"`
}

func DefaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}
