package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	conf, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), conf)
	assert.Equal(t, 1, conf.BorderWidth)
	assert.Equal(t, 24, conf.CursorSize)
}

func TestLoadToml(t *testing.T) {
	path := writeFile(t, "config.toml", `
border_width = 3
useless_gaps = 8
cursor_theme = "Adwaita"
cursor_size = 32
library_dirs = ["/usr/share/waytile", "/home/me/.waytile"]
`)
	conf, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, conf.BorderWidth)
	assert.Equal(t, 8, conf.UselessGaps)
	assert.Equal(t, "Adwaita", conf.CursorTheme)
	assert.Equal(t, 32, conf.CursorSize)
	assert.Len(t, conf.LibraryDirs, 2)
}

func TestLoadYaml(t *testing.T) {
	path := writeFile(t, "config.yaml", `
border_width: 2
useless_gaps: 4
`)
	conf, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, conf.BorderWidth)
	assert.Equal(t, 4, conf.UselessGaps)
}

func TestLoadMalformed(t *testing.T) {
	path := writeFile(t, "config.toml", "border_width = [what")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestSanitizeClampsBadValues(t *testing.T) {
	path := writeFile(t, "config.toml", `
border_width = -4
useless_gaps = -2
opacity = 3.0
cursor_size = 0
`)
	conf, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0, conf.BorderWidth)
	assert.Equal(t, 0, conf.UselessGaps)
	assert.Equal(t, 1.0, conf.Opacity)
	assert.Equal(t, 24, conf.CursorSize)
}
