package config

// Config represents the complete configuration structure for workbench
type Config struct {
	Storage   Storage   `mapstructure:"storage"`
	Catalog   Catalog   `mapstructure:"catalog"`
	Server    Server    `mapstructure:"server"`
	Dispatch  Dispatch  `mapstructure:"dispatch"`
	Providers Providers `mapstructure:"providers"`
	Log       Log       `mapstructure:"log"`
}

// Storage selects the persistence backend for templates, projects and snippets
type Storage struct {
	Backend   string `mapstructure:"backend"` // "file", "sqlite", "redis" or "memory"
	Path      string `mapstructure:"path"`
	RedisAddr string `mapstructure:"redis_addr"`
	RedisDB   int    `mapstructure:"redis_db"`
	Namespace string `mapstructure:"namespace"`
}

// Catalog selects where built-in templates come from
type Catalog struct {
	Source     string `mapstructure:"source"` // "builtin" or "server"
	CustomPath string `mapstructure:"custom_path"`
}

// Server describes the chat server collaborator
type Server struct {
	URL        string `mapstructure:"url"`
	Timeout    int    `mapstructure:"timeout"` // seconds
	MaxRetries int    `mapstructure:"max_retries"`
}

// Dispatch contains settings for sending compiled prompts
type Dispatch struct {
	Provider     string  `mapstructure:"provider"` // "server", "anthropic" or "mock"
	Model        string  `mapstructure:"model"`
	SystemPrompt string  `mapstructure:"system_prompt"`
	MaxTokens    int     `mapstructure:"max_tokens"`
	Temperature  float64 `mapstructure:"temperature"`
}

// Providers contains configuration for direct LLM providers
type Providers struct {
	Anthropic Anthropic `mapstructure:"anthropic"`
}

// BaseProvider contains common fields shared across providers
type BaseProvider struct {
	APIKey  string `mapstructure:"api_key"`
	BaseUrl string `mapstructure:"base_url"`
}

type Anthropic struct {
	BaseProvider `mapstructure:",squash"`
}

// Log contains logging preferences
type Log struct {
	Level string `mapstructure:"level"`
}

// storage backends and catalog sources accepted by the schema
var (
	StorageBackends   = []string{"file", "sqlite", "redis", "memory"}
	CatalogSources    = []string{"builtin", "server"}
	DispatchProviders = []string{"server", "anthropic", "mock"}
	LogLevels         = []string{"debug", "info", "warn", "error"}
)
