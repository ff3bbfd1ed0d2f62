package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	previous := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = previous })

	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func sampleModule(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"go.mod": "module example.com/app\n\ngo 1.25\n\nrequire github.com/toyz/locations v0.1.0\n",
		"routes/routes.go": `package routes

//locations::location /users/{id}
type User struct {
	ID string
}
`,
	}
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func TestRun_Help(t *testing.T) {
	code, _, stderr := runCLI(t, "--help")
	assert.Equal(t, 0, code)
	assert.Contains(t, stderr, "Usage: locgen")
	assert.Contains(t, stderr, "-module")
	assert.Contains(t, stderr, "//locations::location /path")
}

func TestRun_NoArguments(t *testing.T) {
	code, _, stderr := runCLI(t)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "At least one directory path is required")
}

func TestRun_UnknownFlag(t *testing.T) {
	code, _, _ := runCLI(t, "--bogus", ".")
	assert.Equal(t, 2, code)
}

func TestRun_MissingDirectory(t *testing.T) {
	code, _, stderr := runCLI(t, filepath.Join(t.TempDir(), "missing"))
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Generation failed")
}

func TestRun_GenerateAndClean(t *testing.T) {
	root := sampleModule(t)
	generated := filepath.Join(root, "routes", "locations_gen.go")

	code, stdout, _ := runCLI(t, root+"/...")
	require.Equal(t, 0, code)
	assert.FileExists(t, generated)
	assert.Contains(t, stdout, "Generation Complete!")
	assert.Contains(t, stdout, "Locations found: 1")

	code, stdout, _ = runCLI(t, "--clean", root+"/...")
	require.Equal(t, 0, code)
	assert.NoFileExists(t, generated)
	assert.Contains(t, stdout, "Removed 1 generated file(s)")
}

func TestRun_Quiet(t *testing.T) {
	root := sampleModule(t)

	code, stdout, stderr := runCLI(t, "--quiet", filepath.Join(root, "routes"))
	require.Equal(t, 0, code)
	assert.Empty(t, stdout)
	assert.Empty(t, stderr)
}
