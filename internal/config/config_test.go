package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDefaultOpener(t *testing.T) {
	expected := map[string]string{
		"darwin":  "open",
		"linux":   "xdg-open",
		"windows": "start",
	}

	opener := getDefaultOpener()

	if expectedOpener, ok := expected[runtime.GOOS]; ok {
		if opener != expectedOpener {
			t.Errorf("getDefaultOpener() = %s, want %s for %s", opener, expectedOpener, runtime.GOOS)
		}
	} else if opener != "open" {
		t.Errorf("getDefaultOpener() = %s, want 'open' for unknown OS", opener)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.API.BaseURL != DefaultBaseURL {
		t.Errorf("API.BaseURL = %s, want %s", cfg.API.BaseURL, DefaultBaseURL)
	}
	if cfg.API.HTTPTimeout != 15*time.Second {
		t.Errorf("API.HTTPTimeout = %v, want 15s", cfg.API.HTTPTimeout)
	}
	if cfg.API.UserAgent == "" {
		t.Error("API.UserAgent should not be empty")
	}

	if cfg.List.DefaultLimit != 50 {
		t.Errorf("List.DefaultLimit = %d, want 50", cfg.List.DefaultLimit)
	}
	assert.Equal(t, []int{10, 20, 50, 100}, cfg.List.LimitOptions)
	assert.ElementsMatch(t, []string{"nestjs-pokedex-api.vercel.app", "raw.githubusercontent.com"}, cfg.Images.AllowedHosts)

	if cfg.Media.DefaultOpener == "" {
		t.Error("Media.DefaultOpener should not be empty")
	}

	if cfg.Keys.Modifier != "ctrl" {
		t.Errorf("Keys.Modifier = %s, want 'ctrl'", cfg.Keys.Modifier)
	}
	if cfg.Keys.Bindings.Quit != "q" {
		t.Errorf("Keys.Bindings.Quit = %s, want 'q'", cfg.Keys.Bindings.Quit)
	}
	if cfg.Log.Level != "off" {
		t.Errorf("Log.Level = %s, want 'off'", cfg.Log.Level)
	}
	require.NoError(t, cfg.Validate())
}

func TestLoad_DefaultConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, DefaultBaseURL, cfg.API.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.API.HTTPTimeout)
	assert.Equal(t, 50, cfg.List.DefaultLimit)
}

func TestLoad_FromFile(t *testing.T) {
	tmpDir := t.TempDir()

	configPath := filepath.Join(tmpDir, "test-config.toml")
	configContent := `
[api]
base_url = "http://localhost:3000"
http_timeout = "60s"

[list]
default_limit = 20

[ui.colors]
primary = "#FF0000"
`

	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0o644))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:3000", cfg.API.BaseURL)
	assert.Equal(t, 60*time.Second, cfg.API.HTTPTimeout)
	assert.Equal(t, 20, cfg.List.DefaultLimit)
	assert.Equal(t, "#FF0000", cfg.UI.Colors.Primary)

	// Siblings of overridden keys keep their defaults
	assert.Equal(t, "#4ECDC4", cfg.UI.Colors.Secondary)
	assert.NotEmpty(t, cfg.API.UserAgent)
	assert.Equal(t, []int{10, 20, 50, 100}, cfg.List.LimitOptions)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("DEX_API_BASE_URL", "http://env.invalid")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://env.invalid", cfg.API.BaseURL)
}

func TestLoad_RejectsInvalidLimit(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(configPath, []byte("[list]\ndefault_limit = 7\n"), 0o644))

	_, err := Load(configPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "default_limit")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"empty base url", func(c *Config) { c.API.BaseURL = " " }, "base_url"},
		{"ftp base url", func(c *Config) { c.API.BaseURL = "ftp://pokedex.invalid" }, "base_url"},
		{"zero timeout", func(c *Config) { c.API.HTTPTimeout = 0 }, "http_timeout"},
		{"no limit options", func(c *Config) { c.List.LimitOptions = nil }, "limit_options"},
		{"negative option", func(c *Config) { c.List.LimitOptions = []int{-1, 50} }, "non-positive"},
		{"unknown backend", func(c *Config) { c.Search.Backend = "lucene" }, "search.backend"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSave(t *testing.T) {
	tmpDir := t.TempDir()

	cfg := defaultConfig()
	cfg.API.BaseURL = "http://saved.invalid"
	cfg.API.HTTPTimeout = 45 * time.Second
	cfg.API.UserAgent = "test-save-agent"
	cfg.Keys.Modifier = "alt"

	savePath := filepath.Join(tmpDir, "nested", "saved-config.toml")
	require.NoError(t, Save(cfg, savePath))

	_, statErr := os.Stat(savePath)
	require.NoError(t, statErr, "Save() did not create config file")

	loaded, err := Load(savePath)
	require.NoError(t, err)

	assert.Equal(t, cfg.API.BaseURL, loaded.API.BaseURL)
	assert.Equal(t, cfg.API.HTTPTimeout, loaded.API.HTTPTimeout)
	assert.Equal(t, cfg.API.UserAgent, loaded.API.UserAgent)
	assert.Equal(t, cfg.Keys.Modifier, loaded.Keys.Modifier)
	assert.Equal(t, cfg.List.LimitOptions, loaded.List.LimitOptions)
}

func TestGenerateDefaultConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "generated.toml")
	require.NoError(t, GenerateDefaultConfig(configPath))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	if cfg.Keys.Modifier != "ctrl" {
		t.Errorf("Generated config has Keys.Modifier = %s, want 'ctrl'", cfg.Keys.Modifier)
	}
	assert.Equal(t, "bleve", cfg.Search.Backend)
}

func TestTestConfig(t *testing.T) {
	cfg := TestConfig()

	require.NotNil(t, cfg)
	if cfg.API.UserAgent != "dex-test/1.0" {
		t.Errorf("TestConfig API.UserAgent = %s, want 'dex-test/1.0'", cfg.API.UserAgent)
	}
	assert.NoError(t, cfg.Validate())
}
