package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateFileWithinBaseDirs(t *testing.T) {
	base := t.TempDir()
	v := &PathValidator{AllowedBaseDirs: []string{base}}

	got, err := v.ValidateFile(filepath.Join(base, "logs", "dex.log"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "logs", "dex.log"), got)

	_, err = v.ValidateFile(filepath.Join(filepath.Dir(base), "elsewhere.log"))
	assert.Error(t, err)
}

func TestValidateFileRejects(t *testing.T) {
	v := NewPermissivePathValidator()

	dir := t.TempDir()
	tests := map[string]string{
		"empty":     "",
		"traversal": "/tmp/../etc/passwd",
		"null byte": "/tmp/dex\x00.log",
		"bad tilde": "~root/dex.log",
		"directory": dir,
	}
	for name, path := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := v.ValidateFile(path)
			assert.Error(t, err)
		})
	}
}

func TestValidateFileExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	v := NewPathValidator()
	got, err := v.ValidateFile("~/.dex/dex.log")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".dex", "dex.log"), got)
}

func TestDefaultPaths(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("TMPDIR", t.TempDir())
	v := NewPathValidator()

	logPath, err := v.LogPath("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".dex", "dex.log"), logPath)

	cfgPath, err := v.ConfigPath("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config", "dex", "config.toml"), cfgPath)

	_, err = v.ConfigPath(filepath.Join(home, "Documents", "config.toml"))
	assert.Error(t, err, "outside the allowed directories")
}

func TestTempDirAllowedByDefault(t *testing.T) {
	v := NewPathValidator()
	_, err := v.LogPath(filepath.Join(os.TempDir(), "dex-test.log"))
	assert.NoError(t, err)
}
