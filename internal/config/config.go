package config

import (
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

//go:embed data/default_config.toml
var defaultConfigTOML string

// DefaultDir is the directory holding the config file and local state
const DefaultDir = "~/.workbench"

// DefaultPath is the config file used when --config is not given
const DefaultPath = DefaultDir + "/config.toml"

// Manager handles configuration loading and management
type Manager struct {
	v      *viper.Viper
	cfg    *Config
	logger *slog.Logger
}

// NewManager creates a new configuration manager with default settings
func NewManager() *Manager {
	v := viper.New()

	v.RegisterAlias("anthropic-key", "providers.anthropic.api_key")

	// bind well-known environment variables
	_ = v.BindEnv("providers.anthropic.api_key", "ANTHROPIC_API_KEY")
	_ = v.BindEnv("server.url", "WORKBENCH_SERVER_URL")
	_ = v.BindEnv("storage.redis_addr", "WORKBENCH_REDIS_ADDR")

	return &Manager{
		v:   v,
		cfg: &Config{}, // defaults loaded from embedded TOML in Load()
	}
}

// WithLogger sets the logger for the configuration manager
func (m *Manager) WithLogger(logger *slog.Logger) *Manager {
	m.logger = logger
	return m
}

// Load loads configuration from the specified TOML file, merging with defaults
func (m *Manager) Load(configPath string) error {
	if m.logger != nil {
		m.logger.Debug("Attempting to load config file", "path", configPath)
	}

	m.v.SetConfigType("toml")

	if err := m.v.ReadConfig(strings.NewReader(defaultConfigTOML)); err != nil {
		return fmt.Errorf("failed to load embedded defaults: %w", err)
	}

	m.v.SetConfigFile(configPath)

	// merge user config file over defaults
	err := m.v.MergeInConfig()
	if err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		var pathError *os.PathError
		if !errors.As(err, &configFileNotFoundError) && !errors.As(err, &pathError) {
			return err
		}
		if pathError != nil && !os.IsNotExist(pathError) {
			return err
		}
		if m.logger != nil {
			m.logger.Debug("Config file not found")
		}

		if err := m.createDefaultConfigFile(configPath); err != nil {
			return fmt.Errorf("failed to create default config file: %w", err)
		}

		m.v.SetConfigFile(configPath)
	} else if m.logger != nil {
		m.logger.Info("Configuration loaded successfully", "path", m.v.ConfigFileUsed())
	}

	if err := m.v.Unmarshal(&m.cfg); err != nil {
		return err
	}

	return m.cfg.Validate()
}

// Config returns the current configuration
func (m *Manager) Config() *Config {
	return m.cfg
}

// Viper returns the underlying Viper instance for flag binding
func (m *Manager) Viper() *viper.Viper {
	return m.v
}

// Save writes the current configuration state back to the config file
func (m *Manager) Save() error {
	configFile := m.v.ConfigFileUsed()
	if configFile == "" {
		return fmt.Errorf("no config file path set")
	}

	if err := os.MkdirAll(filepath.Dir(configFile), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		if err := m.v.SafeWriteConfigAs(configFile); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}
	} else {
		if err := m.v.WriteConfigAs(configFile); err != nil {
			return fmt.Errorf("failed to update config file: %w", err)
		}
	}

	// reload the configuration struct to reflect the changes
	if err := m.v.Unmarshal(&m.cfg); err != nil {
		return fmt.Errorf("failed to reload configuration after save: %w", err)
	}

	return nil
}

// NewDefaultFromEmbedded creates a Config struct populated from embedded TOML
func NewDefaultFromEmbedded() *Config {
	v := viper.New()
	v.SetConfigType("toml")

	if err := v.ReadConfig(strings.NewReader(defaultConfigTOML)); err != nil {
		panic(fmt.Sprintf("failed to load embedded defaults: %v", err))
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		panic(fmt.Sprintf("failed to unmarshal embedded config: %v", err))
	}
	return cfg
}

// Validate checks the enumerated and ranged settings of a loaded config
func (c *Config) Validate() error {
	checks := []struct {
		key     string
		value   string
		allowed []string
	}{
		{"storage.backend", c.Storage.Backend, StorageBackends},
		{"catalog.source", c.Catalog.Source, CatalogSources},
		{"dispatch.provider", c.Dispatch.Provider, DispatchProviders},
		{"log.level", c.Log.Level, LogLevels},
	}
	for _, check := range checks {
		if err := validateOneOf(check.allowed)(check.value); err != nil {
			return fmt.Errorf("invalid %s: %w", check.key, err)
		}
	}

	if err := validateIntRange(0, 5)(c.Server.MaxRetries); err != nil {
		return fmt.Errorf("invalid server.max_retries: %w", err)
	}
	return nil
}

// StoragePath returns the configured state location, or the per-backend
// default under DefaultDir when none is set
func (c *Config) StoragePath() string {
	if c.Storage.Path != "" {
		return c.Storage.Path
	}
	switch strings.ToLower(c.Storage.Backend) {
	case "sqlite":
		return DefaultDir + "/state.db"
	default:
		return DefaultDir + "/state.json"
	}
}

// createDefaultConfigFile creates the default config.toml file if it doesn't exist
func (m *Manager) createDefaultConfigFile(configPath string) error {
	if _, err := os.Stat(configPath); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to check config file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(defaultConfigTOML), 0600); err != nil {
		return fmt.Errorf("failed to write default config file: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Created default config.toml at %s\n", configPath)
	fmt.Fprintf(os.Stderr, "For a guided setup, run: workbench init\n")

	if m.logger != nil {
		m.logger.Info("Created default config file", "path", configPath)
	}

	return nil
}
