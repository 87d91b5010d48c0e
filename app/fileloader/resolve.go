package fileloader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrMissingSourceFile indicates that none of the accepted source file
// candidates exist in the data directory. This is fatal for the load step.
var ErrMissingSourceFile = errors.New("no survey data file found")

// ResolveSourceFile checks an ordered list of candidate file names (or glob
// patterns) inside dir and returns the path of the first one that exists.
// Plain names are checked directly; names containing glob metacharacters are
// matched against the directory listing with deterministic (sorted) order
// within a pattern. The candidate order is the priority order: first match
// wins.
func ResolveSourceFile(dir string, candidates []string) (string, error) {
	if dir == "" {
		dir = "."
	}

	var entries []string // lazily listed, only if a pattern candidate appears

	for _, cand := range candidates {
		if cand == "" {
			continue
		}

		if !isGlobPattern(cand) {
			path := filepath.Join(dir, cand)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path, nil
			}
			continue
		}

		if entries == nil {
			var err error
			entries, err = listFiles(dir)
			if err != nil {
				return "", fmt.Errorf("failed to list data directory %q: %w", dir, err)
			}
		}

		for _, name := range entries {
			ok, err := doublestar.Match(cand, name)
			if err != nil {
				return "", fmt.Errorf("bad source pattern %q: %w", cand, err)
			}
			if ok {
				return filepath.Join(dir, name), nil
			}
		}
	}

	return "", fmt.Errorf("%w: tried %v in %q", ErrMissingSourceFile, candidates, dir)
}

// isGlobPattern reports whether the candidate contains glob metacharacters.
func isGlobPattern(s string) bool {
	for _, c := range s {
		switch c {
		case '*', '?', '[', '{':
			return true
		}
	}
	return false
}

// listFiles returns the sorted names of regular files in dir.
func listFiles(dir string) ([]string, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(dirEntries))
	for _, e := range dirEntries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}
