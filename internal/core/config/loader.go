package config

import (
	"os"
	"runtime"
	"strings"
	"time"

	"scopecheck/internal/core/errors"

	"github.com/BurntSushi/toml"
)

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeNotFound, "read config"), errors.CtxPath, path)
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeValidationError, "decode config"), errors.CtxPath, path)
	}

	applyDefaults(&cfg)
	ApplyEnvOverrides(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, errors.AddContext(err, errors.CtxPath, path)
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}
	if len(cfg.WatchPaths) == 0 {
		cfg.WatchPaths = []string{"."}
	}
	if len(cfg.Exclude.Dirs) == 0 {
		cfg.Exclude.Dirs = []string{".git", "vendor", "node_modules", "testdata", "_*"}
	}
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}
	if strings.TrimSpace(cfg.Output.Format) == "" {
		cfg.Output.Format = "text"
	}
	cfg.Output.Format = strings.ToLower(strings.TrimSpace(cfg.Output.Format))
	if cfg.Performance.Workers <= 0 {
		cfg.Performance.Workers = runtime.NumCPU()
	}
	if cfg.Performance.RescanRate <= 0 {
		cfg.Performance.RescanRate = 4
	}
	if cfg.Performance.RescanBurst <= 0 {
		cfg.Performance.RescanBurst = 8
	}
	if strings.TrimSpace(cfg.History.Path) == "" {
		cfg.History.Path = ".scopecheck/history.db"
	}
	if cfg.History.Window <= 0 {
		cfg.History.Window = 24 * time.Hour
	}
}
