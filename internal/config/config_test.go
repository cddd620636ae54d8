package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultFromEmbedded(t *testing.T) {
	cfg := NewDefaultFromEmbedded()
	require.NotNil(t, cfg)

	assert.Equal(t, "file", cfg.Storage.Backend)
	assert.Equal(t, "workbench", cfg.Storage.Namespace)
	assert.Equal(t, "builtin", cfg.Catalog.Source)
	assert.Equal(t, "server", cfg.Dispatch.Provider)
	assert.Equal(t, 2, cfg.Server.MaxRetries)
	assert.Equal(t, "error", cfg.Log.Level)
	assert.Equal(t, "https://api.anthropic.com/v1", cfg.Providers.Anthropic.BaseUrl)
	assert.NoError(t, cfg.Validate())
}

func TestStoragePath(t *testing.T) {
	tests := []struct {
		backend  string
		path     string
		expected string
	}{
		{"file", "", "~/.workbench/state.json"},
		{"sqlite", "", "~/.workbench/state.db"},
		{"SQLite", "", "~/.workbench/state.db"},
		{"sqlite", "/tmp/x.db", "/tmp/x.db"},
		{"redis", "", "~/.workbench/state.json"},
	}

	for _, tt := range tests {
		t.Run(tt.backend+tt.path, func(t *testing.T) {
			cfg := Config{Storage: Storage{Backend: tt.backend, Path: tt.path}}
			assert.Equal(t, tt.expected, cfg.StoragePath())
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"defaults", func(c *Config) {}, ""},
		{"bad backend", func(c *Config) { c.Storage.Backend = "s3" }, "invalid storage.backend"},
		{"bad source", func(c *Config) { c.Catalog.Source = "web" }, "invalid catalog.source"},
		{"bad provider", func(c *Config) { c.Dispatch.Provider = "cohere" }, "invalid dispatch.provider"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "invalid log.level"},
		{"too many retries", func(c *Config) { c.Server.MaxRetries = 9 }, "invalid server.max_retries"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultFromEmbedded()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name           string
		content        string
		expectError    bool
		validateConfig func(t *testing.T, cfg *Config)
	}{
		{
			name: "user file merges over defaults",
			content: `[storage]
backend = "sqlite"
path = "/tmp/wb.db"

[dispatch]
provider = "mock"
temperature = 0.2
`,
			validateConfig: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "sqlite", cfg.Storage.Backend)
				assert.Equal(t, "/tmp/wb.db", cfg.Storage.Path)
				assert.Equal(t, "mock", cfg.Dispatch.Provider)
				assert.Equal(t, 0.2, cfg.Dispatch.Temperature)
				// untouched keys keep their defaults
				assert.Equal(t, "workbench", cfg.Storage.Namespace)
				assert.Equal(t, 2048, cfg.Dispatch.MaxTokens)
			},
		},
		{
			name:        "malformed file",
			content:     "[storage\nbackend = \"file",
			expectError: true,
		},
		{
			name:        "invalid enumeration",
			content:     "[log]\nlevel = \"chatty\"\n",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "config.toml")
			require.NoError(t, os.WriteFile(configPath, []byte(tt.content), 0644))

			manager := NewManager()
			err := manager.Load(configPath)

			if tt.expectError {
				require.Error(t, err)
				var notFound viper.ConfigFileNotFoundError
				assert.False(t, errors.As(err, &notFound))
				return
			}
			require.NoError(t, err)
			tt.validateConfig(t, manager.Config())
		})
	}
}

func TestLoad_CreatesMissingFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "config.toml")

	manager := NewManager()
	require.NoError(t, manager.Load(configPath))

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Equal(t, defaultConfigTOML, string(data))
	assert.Equal(t, "file", manager.Config().Storage.Backend)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "sk-env")
	t.Setenv("WORKBENCH_SERVER_URL", "http://chat.internal:8080")
	t.Setenv("WORKBENCH_REDIS_ADDR", "redis.internal:6379")

	manager := NewManager()
	require.NoError(t, manager.Load(filepath.Join(t.TempDir(), "config.toml")))

	cfg := manager.Config()
	assert.Equal(t, "sk-env", cfg.Providers.Anthropic.APIKey)
	assert.Equal(t, "http://chat.internal:8080", cfg.Server.URL)
	assert.Equal(t, "redis.internal:6379", cfg.Storage.RedisAddr)
}

func TestSave(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.toml")

	manager := NewManager()
	require.NoError(t, manager.Load(configPath))

	manager.Viper().Set("storage.backend", "redis")
	manager.Viper().Set("server.max_retries", 4)
	require.NoError(t, manager.Save())
	assert.Equal(t, "redis", manager.Config().Storage.Backend)

	reloaded := NewManager()
	require.NoError(t, reloaded.Load(configPath))
	assert.Equal(t, "redis", reloaded.Config().Storage.Backend)
	assert.Equal(t, 4, reloaded.Config().Server.MaxRetries)
}

func TestSave_NoConfigFile(t *testing.T) {
	err := NewManager().Save()
	assert.ErrorContains(t, err, "no config file path set")
}
