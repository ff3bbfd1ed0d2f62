package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/toyz/locations/internal/annotations"
	"github.com/toyz/locations/internal/cli"
	"github.com/toyz/locations/internal/utils"
)

func main() {
	if utils.ColorsDisabledByEnv() {
		utils.DisableColors()
	}
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("locgen", flag.ContinueOnError)
	flags.SetOutput(stderr)

	var (
		moduleFlag  = flags.String("module", "", "Custom module name (defaults to the go.mod module)")
		verboseFlag = flags.Bool("verbose", false, "Enable verbose output and detailed error reporting")
		quietFlag   = flags.Bool("quiet", false, "Only show errors and final results")
		cleanFlag   = flags.Bool("clean", false, "Delete all generated locations_gen.go files from the specified directories")
		helpFlag    = flags.Bool("help", false, "Show help information")
	)

	flags.Usage = func() {
		fmt.Fprintf(stderr, "Usage: locgen [options] <directory-paths...>\n\n")
		fmt.Fprintf(stderr, "Locations Code Generator\n")
		fmt.Fprintf(stderr, "Scans Go packages for locations:: annotations and writes typed location descriptors.\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		flags.PrintDefaults()
		fmt.Fprintf(stderr, "\nArguments:\n")
		fmt.Fprintf(stderr, "  directory-paths    One or more directories to scan for annotated Go files\n")
		fmt.Fprintf(stderr, "                     Supports Go-style patterns like './...' for recursive scanning\n")
		fmt.Fprintf(stderr, "\nAnnotations:\n")
		for _, line := range annotations.Usage() {
			fmt.Fprintf(stderr, "  %s\n", line)
		}
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  locgen ./...                                  # Scan everything recursively\n")
		fmt.Fprintf(stderr, "  locgen ./internal/routes                      # Scan one package\n")
		fmt.Fprintf(stderr, "  locgen --module github.com/myorg/myapp ./...  # Specify custom module name\n")
		fmt.Fprintf(stderr, "  locgen --clean ./...                          # Delete generated files\n")
	}

	if err := flags.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	if *helpFlag {
		flags.Usage()
		return 0
	}

	dirs := flags.Args()
	if len(dirs) == 0 {
		fmt.Fprintf(stderr, "Error: At least one directory path is required\n\n")
		flags.Usage()
		return 1
	}

	var diagnostics *utils.DiagnosticSystem
	switch {
	case *quietFlag:
		diagnostics = utils.NewQuietDiagnostics()
	case *verboseFlag:
		diagnostics = utils.NewVerboseDiagnostics()
	default:
		diagnostics = utils.NewDiagnosticSystem(utils.DiagnosticInfo)
	}
	diagnostics.SetOutput(stdout, stderr)

	diagnostics.Section("Locations Code Generator")

	if *cleanFlag {
		diagnostics.StartProgress("Cleaning generated files")
		removed, err := cli.NewCleaner().CleanGeneratedFiles(dirs)
		if err != nil {
			diagnostics.EndProgress(false, "")
			diagnostics.Error("Clean operation failed: %v", err)
			return 1
		}
		diagnostics.EndProgress(true, "")
		for _, file := range removed {
			diagnostics.Verbose("removed %s", file)
		}
		diagnostics.Success("Removed %d generated file(s)", len(removed))
		return 0
	}

	if *verboseFlag {
		diagnostics.Subsection("Configuration")
		diagnostics.List("Target directories: %s", strings.Join(dirs, ", "))
		if *moduleFlag != "" {
			diagnostics.List("Custom module: %s", *moduleFlag)
		}
	}

	generator := cli.NewGenerator(diagnostics)
	if *moduleFlag != "" {
		generator.SetCustomModule(*moduleFlag)
	}

	diagnostics.Subsection("Code Generation")
	if err := generator.Generate(dirs); err != nil {
		diagnostics.Error("Generation failed: %v", err)
		return 1
	}

	summary := generator.GetSummary()
	diagnostics.Summary("Generation Complete!", map[string]any{
		"Packages processed": summary.PackagesProcessed,
		"Locations found":    summary.LocationsFound,
		"Fields bound":       summary.FieldsBound,
		"Files written":      len(summary.GeneratedFiles),
		"Files removed":      len(summary.RemovedFiles),
		"Duration":           summary.Duration.Round(time.Millisecond),
	})

	if *verboseFlag && len(summary.GeneratedFiles) > 0 {
		diagnostics.Subsection("Generated Files")
		for _, file := range summary.GeneratedFiles {
			diagnostics.List("%s", file)
		}
	}
	return 0
}
