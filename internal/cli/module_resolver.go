package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/toyz/locations/internal/utils"
)

// ModuleResolver handles resolving Go module information
type ModuleResolver struct {
	workDir string
}

// NewModuleResolver creates a resolver rooted at the working directory
func NewModuleResolver() *ModuleResolver {
	return &ModuleResolver{}
}

// NewModuleResolverAt creates a resolver that searches for go.mod from dir
func NewModuleResolverAt(dir string) *ModuleResolver {
	return &ModuleResolver{workDir: dir}
}

func (r *ModuleResolver) dir() (string, error) {
	if r.workDir != "" {
		return filepath.Abs(r.workDir)
	}
	return os.Getwd()
}

// Resolve reads the enclosing go.mod. A non-empty customModule replaces the
// module path, and is enough on its own when no go.mod exists.
func (r *ModuleResolver) Resolve(customModule string) (*utils.ModuleInfo, error) {
	dir, err := r.dir()
	if err != nil {
		return nil, fmt.Errorf("failed to get current directory: %w", err)
	}

	goModPath, err := utils.FindGoModFile(dir)
	if err != nil {
		if customModule != "" {
			return &utils.ModuleInfo{Path: customModule, Dir: dir, Requires: map[string]string{}}, nil
		}
		return nil, fmt.Errorf("failed to determine module name: %w (consider using --module flag)", err)
	}

	info, err := utils.ParseGoMod(goModPath)
	if err != nil {
		return nil, err
	}
	if customModule != "" {
		info.Path = customModule
	}
	return info, nil
}

// BuildPackagePath builds the import path of packageDir inside module
func (r *ModuleResolver) BuildPackagePath(module *utils.ModuleInfo, packageDir string) (string, error) {
	absPackageDir, err := filepath.Abs(packageDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve package directory: %w", err)
	}

	relPath, err := filepath.Rel(module.Dir, absPackageDir)
	if err != nil {
		return "", fmt.Errorf("failed to calculate relative path: %w", err)
	}

	importPath := filepath.ToSlash(relPath)
	if importPath == "." {
		return module.Path, nil
	}
	if importPath == ".." || strings.HasPrefix(importPath, "../") {
		return "", fmt.Errorf("package %s is outside module %s", packageDir, module.Path)
	}
	return module.Path + "/" + importPath, nil
}
