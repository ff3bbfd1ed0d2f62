package cli

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/toyz/locations/internal/parser"
)

// DirectoryScanner expands directory arguments into package directories
type DirectoryScanner struct{}

// NewDirectoryScanner creates a new directory scanner
func NewDirectoryScanner() *DirectoryScanner {
	return &DirectoryScanner{}
}

// Expand resolves directories and Go-style "./..." patterns into absolute
// directory paths, sorted and without duplicates.
func (s *DirectoryScanner) Expand(patterns []string) ([]string, error) {
	seen := map[string]bool{}
	var dirs []string
	add := func(dir string) {
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}

	for _, pattern := range patterns {
		base, recursive := strings.CutSuffix(pattern, "/...")
		if pattern == "..." {
			base, recursive = ".", true
		}
		if base == "" {
			base = "."
		}

		root, err := filepath.Abs(base)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve path %s: %w", base, err)
		}
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("failed to access %s: %w", pattern, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%s is not a directory", pattern)
		}

		if !recursive {
			add(root)
			continue
		}
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				return nil
			}
			if path != root && skipDir(d.Name()) {
				return filepath.SkipDir
			}
			add(path)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", root, err)
		}
	}

	slices.Sort(dirs)
	return dirs, nil
}

// ScanDirectories returns the expanded directories that hold Go source files
func (s *DirectoryScanner) ScanDirectories(patterns []string) ([]string, error) {
	dirs, err := s.Expand(patterns)
	if err != nil {
		return nil, err
	}

	var packages []string
	for _, dir := range dirs {
		ok, err := hasSourceFiles(dir)
		if err != nil {
			return nil, err
		}
		if ok {
			packages = append(packages, dir)
		}
	}
	return packages, nil
}

// skipDir follows the go tool: hidden, underscore, vendor and testdata
// directories are not packages of the module.
func skipDir(name string) bool {
	return strings.HasPrefix(name, ".") ||
		strings.HasPrefix(name, "_") ||
		name == "vendor" ||
		name == "testdata"
}

func hasSourceFiles(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}
	for _, entry := range entries {
		if !entry.IsDir() && parser.IsSourceFile(entry.Name()) {
			return true, nil
		}
	}
	return false, nil
}
