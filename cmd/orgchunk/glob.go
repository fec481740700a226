package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// expandGlobs expands all glob patterns into a sorted, deduplicated list of
// regular files. Relative patterns are resolved against root, and the
// returned paths keep that root prefix. Patterns prefixed with "!" exclude.
func expandGlobs(root string, patterns []string) ([]string, error) {
	var includes, excludes []string
	for _, pattern := range patterns {
		if after, ok := strings.CutPrefix(pattern, "!"); ok {
			excludes = append(excludes, after)
		} else {
			includes = append(includes, pattern)
		}
	}
	if len(includes) == 0 {
		return nil, nil
	}

	fileSet := make(map[string]bool)
	for _, pattern := range includes {
		matches, err := expandOne(root, pattern)
		if err != nil {
			return nil, fmt.Errorf("expand glob %q: %w", pattern, err)
		}
		for _, m := range matches {
			fileSet[m] = true
		}
	}
	for _, pattern := range excludes {
		matches, err := expandOne(root, pattern)
		if err != nil {
			return nil, fmt.Errorf("expand exclusion glob %q: %w", pattern, err)
		}
		for _, m := range matches {
			delete(fileSet, m)
		}
	}

	files := make([]string, 0, len(fileSet))
	for f := range fileSet {
		files = append(files, f)
	}
	sort.Strings(files)
	return files, nil
}

func expandOne(root, pattern string) ([]string, error) {
	abs := pattern
	if !filepath.IsAbs(pattern) {
		abs = filepath.Join(root, pattern)
	}
	matches, err := doublestar.FilepathGlob(abs)
	if err != nil {
		return nil, err
	}
	var results []string
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		results = append(results, m)
	}
	return results, nil
}
