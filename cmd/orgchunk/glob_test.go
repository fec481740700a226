package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTestFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, []byte("* Heading\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestExpandGlobsIncludesAndSorts(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, filepath.Join(root, "b.org"))
	writeTestFile(t, filepath.Join(root, "a.org"))
	writeTestFile(t, filepath.Join(root, "notes", "c.org"))

	files, err := expandGlobs(root, []string{"**/*.org"})
	if err != nil {
		t.Fatalf("expandGlobs: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("expected 3 files, got %d: %v", len(files), files)
	}
	for i := 1; i < len(files); i++ {
		if files[i-1] > files[i] {
			t.Fatalf("expected sorted output, got %v", files)
		}
	}
}

func TestExpandGlobsExcludesPattern(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, filepath.Join(root, "keep.org"))
	writeTestFile(t, filepath.Join(root, "skip.org"))

	files, err := expandGlobs(root, []string{"*.org", "!skip.org"})
	if err != nil {
		t.Fatalf("expandGlobs: %v", err)
	}
	if len(files) != 1 || filepath.Base(files[0]) != "keep.org" {
		t.Fatalf("expected only keep.org, got %v", files)
	}
}

func TestExpandGlobsNoIncludesReturnsNil(t *testing.T) {
	root := t.TempDir()
	files, err := expandGlobs(root, []string{"!skip.org"})
	if err != nil {
		t.Fatalf("expandGlobs: %v", err)
	}
	if files != nil {
		t.Fatalf("expected nil, got %v", files)
	}
}
