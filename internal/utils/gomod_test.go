package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGoMod(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "go.mod")
	require.NoError(t, os.WriteFile(path, []byte(`module example.com/app

go 1.25

require (
	github.com/toyz/locations v0.3.0
	github.com/labstack/echo/v4 v4.13.4 // indirect
)
`), 0o644))

	info, err := ParseGoMod(path)
	require.NoError(t, err)
	assert.Equal(t, "example.com/app", info.Path)
	assert.Equal(t, dir, info.Dir)
	assert.Equal(t, "1.25", info.GoVersion)
	assert.Equal(t, "v0.3.0", info.Requires["github.com/toyz/locations"])
	assert.True(t, info.DependsOn("github.com/labstack/echo/v4"))
	assert.True(t, info.DependsOn("example.com/app"))
	assert.False(t, info.DependsOn("github.com/gin-gonic/gin"))
}

func TestParseGoMod_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := ParseGoMod(filepath.Join(dir, "mod.txt"))
	assert.ErrorContains(t, err, "not a go.mod file")

	_, err = ParseGoMod(filepath.Join(dir, "go.mod"))
	assert.ErrorContains(t, err, "failed to read go.mod file")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte("go 1.25\n"), 0o644))
	_, err = ParseGoMod(filepath.Join(dir, "go.mod"))
	assert.ErrorContains(t, err, "no module declaration")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module\n"), 0o644))
	_, err = ParseGoMod(filepath.Join(dir, "go.mod"))
	assert.ErrorContains(t, err, "failed to parse go.mod file")
}

func TestFindGoModFile(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "go.mod"), []byte("module example.com/app\n"), 0o644))

	path, err := FindGoModFile(nested)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "go.mod"), path)
}
