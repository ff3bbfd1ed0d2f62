package cli

import (
	"fmt"
	"time"

	"github.com/toyz/locations/internal/generator"
	"github.com/toyz/locations/internal/parser"
	"github.com/toyz/locations/internal/utils"
)

// RuntimeModulePath is the module generated code imports
const RuntimeModulePath = "github.com/toyz/locations"

// GenerationSummary contains information about a generation run
type GenerationSummary struct {
	ModulePath        string
	PackagesProcessed int
	LocationsFound    int
	FieldsBound       int
	GeneratedFiles    []string
	RemovedFiles      []string
	Duration          time.Duration
}

// Generator coordinates the CLI generation process
type Generator struct {
	scanner        *DirectoryScanner
	moduleResolver *ModuleResolver
	codeGenerator  *generator.Generator
	diagnostics    *utils.DiagnosticSystem
	customModule   string
	summary        GenerationSummary
}

// NewGenerator creates a new CLI generator reporting through diagnostics
func NewGenerator(diagnostics *utils.DiagnosticSystem) *Generator {
	if diagnostics == nil {
		diagnostics = utils.NewQuietDiagnostics()
	}
	return &Generator{
		scanner:        NewDirectoryScanner(),
		moduleResolver: NewModuleResolver(),
		codeGenerator:  generator.NewGenerator(),
		diagnostics:    diagnostics,
	}
}

// SetCustomModule sets a custom module name for import resolution
func (g *Generator) SetCustomModule(moduleName string) {
	g.customModule = moduleName
}

// SetModuleResolver replaces the resolver, mainly for tests
func (g *Generator) SetModuleResolver(resolver *ModuleResolver) {
	g.moduleResolver = resolver
}

// GetSummary returns the summary of the last run
func (g *Generator) GetSummary() GenerationSummary {
	return g.summary
}

// Generate executes the generation process for the given directories
func (g *Generator) Generate(directories []string) error {
	return g.Run(Config{
		Directories: directories,
		ModuleName:  g.customModule,
		Verbose:     g.diagnostics.Level() >= utils.DiagnosticVerbose,
	})
}

// Run executes the complete generation process
func (g *Generator) Run(config Config) error {
	startTime := time.Now()
	g.summary = GenerationSummary{}
	defer func() { g.summary.Duration = time.Since(startTime) }()

	g.diagnostics.Debug("Scanning directories: %v", config.Directories)

	g.diagnostics.StartProgress("Resolving module")
	module, err := g.moduleResolver.Resolve(config.ModuleName)
	if err != nil {
		g.diagnostics.EndProgress(false, "")
		g.diagnostics.Warn("%v", err)
	} else {
		g.diagnostics.EndProgress(true, module.Path)
		g.summary.ModulePath = module.Path
		if !module.DependsOn(RuntimeModulePath) {
			g.diagnostics.Warn("module %s does not require %s; generated files will not build until it does", module.Path, RuntimeModulePath)
		}
	}

	dirs, err := g.scanner.ScanDirectories(config.Directories)
	if err != nil {
		return fmt.Errorf("failed to scan directories: %w", err)
	}
	if len(dirs) == 0 {
		g.diagnostics.Warn("no Go packages found in %v", config.Directories)
		return nil
	}

	for _, dir := range dirs {
		if err := g.processPackage(dir, module); err != nil {
			return err
		}
	}
	return nil
}

func (g *Generator) processPackage(dir string, module *utils.ModuleInfo) error {
	display := dir
	if module != nil {
		if importPath, err := g.moduleResolver.BuildPackagePath(module, dir); err == nil {
			display = importPath
		}
	}

	metadata, err := parser.NewParser().ParseDirectory(dir)
	if err != nil {
		return fmt.Errorf("package %s: %w", display, err)
	}
	g.summary.PackagesProcessed++

	file, err := g.codeGenerator.GenerateFile(metadata)
	if err != nil {
		return fmt.Errorf("package %s: %w", display, err)
	}

	if len(file.Locations) == 0 {
		path, removed, err := removeGenerated(dir)
		if err != nil {
			return fmt.Errorf("package %s: %w", display, err)
		}
		if removed {
			g.summary.RemovedFiles = append(g.summary.RemovedFiles, path)
			g.diagnostics.Verbose("%s: no locations left, removed %s", display, path)
		}
		return nil
	}

	for _, location := range metadata.Locations {
		g.summary.LocationsFound++
		g.summary.FieldsBound += len(location.Fields)
	}

	if err := utils.WriteGoFile(file.FilePath, file.Content); err != nil {
		return fmt.Errorf("package %s: %w", display, err)
	}
	g.summary.GeneratedFiles = append(g.summary.GeneratedFiles, file.FilePath)
	g.diagnostics.Verbose("%s: %d location(s) written to %s", display, len(file.Locations), file.FilePath)
	return nil
}
