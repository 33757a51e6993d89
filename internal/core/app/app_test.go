package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"scopecheck/internal/core/config"
	"scopecheck/internal/core/errors"
	"scopecheck/internal/engine/resolver"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newTestApp(t *testing.T, root string, mutate func(*config.Config)) *App {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.WatchPaths = []string{root}
	cfg.Performance.Workers = 2
	if mutate != nil {
		mutate(cfg)
	}
	a, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestScan(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "main.go"), "package main\n\nfunc main() { run() }\n")
	writeFile(t, filepath.Join(root, "run.go"), "package main\n\nfunc run() { _ = missing }\n")
	writeFile(t, filepath.Join(root, "lib", "lib.go"), "package lib\n\nfunc A() {}\n")
	writeFile(t, filepath.Join(root, "vendor", "dep", "dep.go"), "package dep\n\nfunc B() { _ = nope }\n")
	writeFile(t, filepath.Join(root, "README.md"), "not go")

	a := newTestApp(t, root, nil)
	report, err := a.Scan(context.Background(), []string{root})
	require.NoError(t, err)

	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 3, report.Files)
	assert.Equal(t, 2, report.Packages)
	require.Len(t, report.Diagnostics, 1)
	assert.Equal(t, "missing", report.Diagnostics[0].Name)
	assert.Equal(t, filepath.Join(root, "run.go"), report.Diagnostics[0].Location.File)
	assert.Equal(t, 1, report.Errors())
	assert.Equal(t, map[resolver.Kind]int{resolver.KindUndeclared: 1}, report.CountByKind())
}

func TestScan_TestFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.go"), "package a\n\nfunc A() {}\n")
	writeFile(t, filepath.Join(root, "a_test.go"), "package a\n\nfunc helper() { A() }\n")
	writeFile(t, filepath.Join(root, "ext_test.go"), "package a_test\n\nfunc use() { _ = a }\n")

	a := newTestApp(t, root, nil)
	report, err := a.Scan(context.Background(), []string{root})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Files)
	assert.Empty(t, report.Diagnostics)

	a = newTestApp(t, root, func(c *config.Config) { c.Resolve.IncludeTests = true })
	report, err = a.Scan(context.Background(), []string{root})
	require.NoError(t, err)
	assert.Equal(t, 3, report.Files)
	assert.Equal(t, 2, report.Packages)
	require.Len(t, report.Diagnostics, 1)
	assert.Equal(t, "a", report.Diagnostics[0].Name)
}

func TestScan_ExcludeFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.go"), "package a\n")
	writeFile(t, filepath.Join(root, "zz_generated.go"), "package a\n\nvar _ = broken\n")

	a := newTestApp(t, root, func(c *config.Config) { c.Exclude.Files = []string{"zz_*.go"} })
	report, err := a.Scan(context.Background(), []string{root})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Files)
	assert.Empty(t, report.Diagnostics)
}

func TestScan_BuildConstraints(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "file.go"), "package file\n\nfunc Open() { open() }\n")
	writeFile(t, filepath.Join(root, "open_unix.go"), "//go:build linux\n\npackage file\n\nfunc open() {}\n")
	writeFile(t, filepath.Join(root, "open_other.go"), "//go:build windows\n\npackage file\n\nfunc open() {}\n")
	writeFile(t, filepath.Join(root, "sys_darwin.go"), "package file\n\nfunc sys() {}\n")
	writeFile(t, filepath.Join(root, "sys_linux.go"), "package file\n\nfunc sys() {}\n")
	writeFile(t, filepath.Join(root, "tagged.go"), "//go:build extra\n\npackage file\n\nvar _ = onlyWithTag\n")

	for _, goos := range []string{"linux", "windows"} {
		t.Run(goos, func(t *testing.T) {
			a := newTestApp(t, root, func(c *config.Config) { c.Build.GOOS = goos })
			report, err := a.Scan(context.Background(), []string{root})
			require.NoError(t, err)
			assert.Empty(t, report.Diagnostics)
		})
	}

	a := newTestApp(t, root, func(c *config.Config) {
		c.Build.GOOS = "linux"
		c.Build.Tags = []string{"extra"}
	})
	report, err := a.Scan(context.Background(), []string{root})
	require.NoError(t, err)
	assert.Equal(t, 4, report.Files)
	require.Len(t, report.Diagnostics, 1)
	assert.Equal(t, "onlyWithTag", report.Diagnostics[0].Name)
}

func TestNew_InvalidGlob(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Exclude.Dirs = []string{"[unclosed"}
	_, err := New(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid exclude dir pattern")
}

func TestHandleChanges(t *testing.T) {
	root := t.TempDir()
	main := filepath.Join(root, "main.go")
	writeFile(t, main, "package main\n\nfunc main() { _ = value }\n")
	writeFile(t, filepath.Join(root, "other", "o.go"), "package other\n\nfunc O() { _ = gone }\n")

	a := newTestApp(t, root, nil)
	report, err := a.Scan(context.Background(), []string{root})
	require.NoError(t, err)
	require.Len(t, report.Diagnostics, 2)

	var published *Report
	a.SetUpdateHandler(func(r *Report) { published = r })

	writeFile(t, filepath.Join(root, "value.go"), "package main\n\nconst value = 1\n")
	report = a.HandleChanges(context.Background(), []string{filepath.Join(root, "value.go"), filepath.Join(root, "notes.txt")})
	require.NotNil(t, report)
	assert.Same(t, report, published)
	assert.Equal(t, 3, report.Files)
	require.Len(t, report.Diagnostics, 1)
	assert.Equal(t, "gone", report.Diagnostics[0].Name)

	require.NoError(t, os.RemoveAll(filepath.Join(root, "other")))
	report = a.HandleChanges(context.Background(), []string{filepath.Join(root, "other", "o.go")})
	require.NotNil(t, report)
	assert.Equal(t, 1, report.Packages)
	assert.Empty(t, report.Diagnostics)
}

func TestHandleChanges_Cancelled(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.go"), "package a\n")

	a := newTestApp(t, root, func(c *config.Config) {
		c.Performance.RescanRate = 0.001
		c.Performance.RescanBurst = 1
	})
	path := filepath.Join(root, "a.go")
	require.NotNil(t, a.HandleChanges(context.Background(), []string{path}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Nil(t, a.HandleChanges(ctx, []string{path}))
}

func TestHistory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.go"), "package a\n\nfunc A() { _ = b }\n")

	a := newTestApp(t, root, func(c *config.Config) {
		c.History.Enabled = true
		c.History.Path = filepath.Join(t.TempDir(), "runs.db")
	})
	_, err := a.Scan(context.Background(), []string{root})
	require.NoError(t, err)

	writeFile(t, filepath.Join(root, "b.go"), "package a\n\nvar b = 1\n")
	_, err = a.Scan(context.Background(), []string{root})
	require.NoError(t, err)

	trend, err := a.Trend(time.Time{})
	require.NoError(t, err)
	require.Equal(t, 2, trend.RunCount)
	assert.Equal(t, 1, trend.Points[0].Errors)
	assert.Equal(t, 0, trend.Points[1].Errors)
	assert.Equal(t, -1, trend.Points[1].DeltaErrors)
	assert.Equal(t, 1, trend.Points[1].DeltaFiles)
}

func TestHistory_Disabled(t *testing.T) {
	a := newTestApp(t, t.TempDir(), nil)
	_, err := a.Trend(time.Time{})
	assert.True(t, errors.IsCode(err, errors.CodeNotSupported))
}
