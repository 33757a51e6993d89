package app

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"scopecheck/internal/engine/parser"
)

// packageKey identifies a package by directory and package clause, so an
// external _test package is checked apart from the package it tests.
type packageKey struct {
	Dir  string
	Name string
}

func (k packageKey) less(o packageKey) bool {
	if k.Dir != o.Dir {
		return k.Dir < o.Dir
	}
	return k.Name < o.Name
}

type packageGroup struct {
	key   packageKey
	files []*parser.File
}

func (g *packageGroup) close() {
	for _, f := range g.files {
		f.Close()
	}
}

// ScanDirectories returns all source files under paths that pass the
// exclude globs, the test-file filter and the build constraints.
func (a *App) ScanDirectories(paths []string) ([]string, error) {
	var files []string
	for _, root := range paths {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if d.IsDir() {
				if path != root && a.excludedDir(path) {
					return filepath.SkipDir
				}
				return nil
			}

			if a.includeFile(path) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	sort.Strings(files)
	return files, nil
}

// acceptFile is also the watcher's file filter.
func (a *App) acceptFile(path string) bool {
	if !a.Parser.Supports(path) {
		return false
	}
	if !a.IncludeTests && a.Parser.IsTestFile(path) {
		return false
	}
	base := filepath.Base(path)
	for _, g := range a.excludeFiles {
		if g.Match(base) {
			return false
		}
	}
	return true
}

// includeFile reports whether path belongs to the checked build: it must be
// accepted and match the GOOS/GOARCH suffixes and //go:build line of the
// configured build context. Files for other platforms would otherwise
// redeclare the same package-level names.
func (a *App) includeFile(path string) bool {
	if !a.acceptFile(path) {
		return false
	}
	ok, err := a.buildCtx.MatchFile(filepath.Dir(path), filepath.Base(path))
	if err != nil {
		slog.Debug("skipping file with unreadable build constraints", "path", path, "error", err)
		return false
	}
	return ok
}

func (a *App) excludedDir(path string) bool {
	base := filepath.Base(path)
	for _, g := range a.excludeDirs {
		if g.Match(base) {
			return true
		}
	}
	return false
}

// listDir returns the accepted source files directly inside dir.
func (a *App) listDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if a.includeFile(path) {
			files = append(files, path)
		}
	}
	return files, nil
}

// loadPackages parses files and groups them by package. Files that cannot
// be read or parsed are logged and skipped.
func (a *App) loadPackages(paths []string) []*packageGroup {
	byKey := make(map[packageKey]*packageGroup)
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			slog.Warn("failed to read file", "path", path, "error", err)
			continue
		}
		file, err := a.Parser.Parse(path, content)
		if err != nil {
			slog.Warn("failed to parse file", "path", path, "error", err)
			continue
		}

		key := packageKey{Dir: filepath.Dir(path), Name: file.PackageName}
		g, ok := byKey[key]
		if !ok {
			g = &packageGroup{key: key}
			byKey[key] = g
		}
		g.files = append(g.files, file)
	}

	groups := make([]*packageGroup, 0, len(byKey))
	for _, g := range byKey {
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].key.less(groups[j].key) })
	return groups
}
