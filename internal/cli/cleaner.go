package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/toyz/locations/internal/parser"
	"github.com/toyz/locations/internal/templates"
)

// Cleaner handles cleaning up generated files
type Cleaner struct {
	scanner *DirectoryScanner
}

// NewCleaner creates a new cleaner
func NewCleaner() *Cleaner {
	return &Cleaner{
		scanner: NewDirectoryScanner(),
	}
}

// CleanGeneratedFiles removes generated descriptor files from the given
// directories and patterns, returning the removed paths.
func (c *Cleaner) CleanGeneratedFiles(patterns []string) ([]string, error) {
	dirs, err := c.scanner.Expand(patterns)
	if err != nil {
		return nil, err
	}

	var removed []string
	for _, dir := range dirs {
		path, ok, err := removeGenerated(dir)
		if err != nil {
			return removed, fmt.Errorf("failed to clean directory %s: %w", dir, err)
		}
		if ok {
			removed = append(removed, path)
		}
	}
	return removed, nil
}

// removeGenerated deletes dir's generated file when it carries the locgen
// header. Hand-written files of the same name are left alone.
func removeGenerated(dir string) (string, bool, error) {
	path := filepath.Join(dir, parser.GeneratedFileName)
	generated, err := isGenerated(path)
	if err != nil || !generated {
		return path, false, err
	}
	if err := os.Remove(path); err != nil {
		return path, false, fmt.Errorf("failed to remove file %s: %w", path, err)
	}
	return path, true, nil
}

func isGenerated(path string) (bool, error) {
	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check file %s: %w", path, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	if !scanner.Scan() {
		return false, scanner.Err()
	}
	return strings.TrimSpace(scanner.Text()) == templates.GeneratedHeader, nil
}
