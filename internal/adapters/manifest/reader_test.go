package manifest_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/devd/internal/adapters/manifest"
	"go.trai.ch/devd/internal/core/domain"
)

func writeManifest(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, domain.ManifestFileName), []byte(content), domain.FilePerm))
}

func TestReader_Read(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeManifest(t, dir, `{
		"name": "devd-plugin-livereload",
		"version": "1.4.2",
		"main": "lib/plugin.js",
		"engines": {"node": ">=18", "devd": "^2.0.0"}
	}`)

	m, err := manifest.NewReader().Read(dir)
	require.NoError(t, err)
	assert.Equal(t, domain.Manifest{
		Name:    "devd-plugin-livereload",
		Version: "1.4.2",
		Range:   "^2.0.0",
		Main:    "lib/plugin.js",
	}, m)
}

func TestReader_Defaults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeManifest(t, dir, `{"name": "x", "version": "0.1.0"}`)

	m, err := manifest.NewReader().Read(dir)
	require.NoError(t, err)
	assert.Equal(t, "*", m.Range)
	assert.Equal(t, "index.js", m.Main)
}

func TestReader_MissingManifestIsNotAnError(t *testing.T) {
	t.Parallel()

	m, err := manifest.NewReader().Read(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, m.Version)
	assert.Equal(t, "*", m.Range)
}

func TestReader_MissingDirectory(t *testing.T) {
	t.Parallel()

	m, err := manifest.NewReader().Read(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, m.Version)
}

func TestReader_Malformed(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeManifest(t, dir, `{"version": `)

	_, err := manifest.NewReader().Read(dir)
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrManifestInvalid.Error())
}
