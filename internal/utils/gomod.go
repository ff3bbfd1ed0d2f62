package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/mod/modfile"
)

// ModuleInfo is what the generator needs to know about a go.mod file
type ModuleInfo struct {
	Path      string            // module path
	Dir       string            // directory holding go.mod
	GoVersion string            // go directive, if any
	Requires  map[string]string // required module path -> version
}

// DependsOn reports whether the module is path or requires it.
func (m *ModuleInfo) DependsOn(path string) bool {
	if m.Path == path {
		return true
	}
	_, ok := m.Requires[path]
	return ok
}

// ParseGoMod reads and parses the go.mod file at goModPath
func ParseGoMod(goModPath string) (*ModuleInfo, error) {
	cleanPath := filepath.Clean(goModPath)
	if filepath.Base(cleanPath) != "go.mod" {
		return nil, fmt.Errorf("file is not a go.mod file: %s", goModPath)
	}

	content, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read go.mod file: %w", err)
	}

	modFile, err := modfile.Parse(cleanPath, content, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to parse go.mod file: %w", err)
	}
	if modFile.Module == nil {
		return nil, fmt.Errorf("no module declaration found in %s", cleanPath)
	}

	info := &ModuleInfo{
		Path:     modFile.Module.Mod.Path,
		Dir:      filepath.Dir(cleanPath),
		Requires: make(map[string]string, len(modFile.Require)),
	}
	if modFile.Go != nil {
		info.GoVersion = modFile.Go.Version
	}
	for _, req := range modFile.Require {
		info.Requires[req.Mod.Path] = req.Mod.Version
	}
	return info, nil
}

// FindGoModFile searches for go.mod starting from startDir and walking up
func FindGoModFile(startDir string) (string, error) {
	currentDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", startDir, err)
	}

	for {
		goModPath := filepath.Join(currentDir, "go.mod")
		if _, err := os.Stat(goModPath); err == nil {
			return goModPath, nil
		} else if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("failed to check %s: %w", goModPath, err)
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	return "", fmt.Errorf("go.mod file not found")
}
