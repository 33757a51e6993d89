package config

import (
	"fmt"
	"strings"

	"scopecheck/internal/core/errors"

	"github.com/gobwas/glob"
)

// Validate checks a defaulted configuration.
func Validate(cfg *Config) error {
	for _, check := range []func(*Config) error{
		validateVersion,
		validateExclude,
		validateResolve,
		validateOutput,
		validatePerformance,
	} {
		if err := check(cfg); err != nil {
			return errors.Wrap(err, errors.CodeValidationError, "invalid config")
		}
	}
	return nil
}

func validateVersion(cfg *Config) error {
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported config version %d; supported version is 1", cfg.Version)
	}
	return nil
}

func validateExclude(cfg *Config) error {
	for i, pattern := range cfg.Exclude.Dirs {
		if _, err := glob.Compile(pattern); err != nil {
			return fmt.Errorf("exclude.dirs[%d] %q: %w", i, pattern, err)
		}
	}
	for i, pattern := range cfg.Exclude.Files {
		if _, err := glob.Compile(pattern); err != nil {
			return fmt.Errorf("exclude.files[%d] %q: %w", i, pattern, err)
		}
	}
	return nil
}

func validateResolve(cfg *Config) error {
	for field, names := range map[string][]string{
		"resolve.predeclared": cfg.Resolve.Predeclared,
		"resolve.ignore":      cfg.Resolve.Ignore,
	} {
		for i, name := range names {
			if strings.TrimSpace(name) == "" {
				return fmt.Errorf("%s[%d] must not be empty", field, i)
			}
		}
	}
	return nil
}

func validateOutput(cfg *Config) error {
	switch cfg.Output.Format {
	case "text", "json", "sarif", "tsv":
		return nil
	}
	return fmt.Errorf("output.format must be one of: text, json, sarif, tsv; got %q", cfg.Output.Format)
}

func validatePerformance(cfg *Config) error {
	if cfg.Performance.Workers > 256 {
		return fmt.Errorf("performance.workers must be <= 256, got %d", cfg.Performance.Workers)
	}
	return nil
}
