package config

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// ConfigFieldInfo contains metadata about a configuration field
type ConfigFieldInfo struct {
	Type        reflect.Type
	Description string
	Default     interface{}
	Validation  func(interface{}) error
	Secret      bool
}

// ConfigSchema holds the registry of valid configuration paths and aliases
type ConfigSchema struct {
	ValidPaths map[string]ConfigFieldInfo
	Aliases    map[string]string
}

// validateFloat64Range returns a validation function for float64 values within a range
func validateFloat64Range(min, max float64) func(interface{}) error {
	return func(value interface{}) error {
		if v, ok := value.(float64); ok {
			if v < min || v > max {
				return fmt.Errorf("value must be between %.2f and %.2f", min, max)
			}
			return nil
		}
		return fmt.Errorf("expected float64, got %T", value)
	}
}

// validateIntRange returns a validation function for int values within a range
func validateIntRange(min, max int) func(interface{}) error {
	return func(value interface{}) error {
		if v, ok := value.(int); ok {
			if v < min || v > max {
				return fmt.Errorf("value must be between %d and %d", min, max)
			}
			return nil
		}
		return fmt.Errorf("expected int, got %T", value)
	}
}

// validateOneOf returns a validation function accepting only the listed strings
func validateOneOf(allowed []string) func(interface{}) error {
	return func(value interface{}) error {
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", value)
		}
		for _, a := range allowed {
			if strings.EqualFold(s, a) {
				return nil
			}
		}
		return fmt.Errorf("value must be one of: %s", strings.Join(allowed, ", "))
	}
}

// DefaultConfigSchema returns the default configuration schema
func DefaultConfigSchema() *ConfigSchema {
	return &ConfigSchema{
		ValidPaths: map[string]ConfigFieldInfo{
			// Storage
			"storage.backend": {
				Type:        reflect.TypeOf(""),
				Description: "Where templates, projects and snippets are kept (file/sqlite/redis/memory)",
				Default:     "file",
				Validation:  validateOneOf(StorageBackends),
			},
			"storage.path": {
				Type:        reflect.TypeOf(""),
				Description: "State file for the file and sqlite backends (empty for the default)",
				Default:     "",
			},
			"storage.redis_addr": {
				Type:        reflect.TypeOf(""),
				Description: "Redis address for the redis backend",
				Default:     "127.0.0.1:6379",
			},
			"storage.redis_db": {
				Type:        reflect.TypeOf(int(0)),
				Description: "Redis database number",
				Default:     0,
				Validation:  validateIntRange(0, 15),
			},
			"storage.namespace": {
				Type:        reflect.TypeOf(""),
				Description: "Key namespace shared by the sqlite and redis backends",
				Default:     "workbench",
			},

			// Catalog
			"catalog.source": {
				Type:        reflect.TypeOf(""),
				Description: "Built-in template source (builtin/server)",
				Default:     "builtin",
				Validation:  validateOneOf(CatalogSources),
			},
			"catalog.custom_path": {
				Type:        reflect.TypeOf(""),
				Description: "YAML file with extra built-in templates",
				Default:     "~/.workbench/custom_prompts.yaml",
			},

			// Server
			"server.url": {
				Type:        reflect.TypeOf(""),
				Description: "Chat server base URL",
				Default:     "http://127.0.0.1:5000",
			},
			"server.timeout": {
				Type:        reflect.TypeOf(int(0)),
				Description: "Timeout in seconds for chat server requests",
				Default:     60,
				Validation:  validateIntRange(1, 600),
			},
			"server.max_retries": {
				Type:        reflect.TypeOf(int(0)),
				Description: "Maximum number of retry attempts for failed requests (max: 5)",
				Default:     2,
				Validation:  validateIntRange(0, 5),
			},

			// Dispatch
			"dispatch.provider": {
				Type:        reflect.TypeOf(""),
				Description: "Where compiled prompts are sent (server/anthropic/mock)",
				Default:     "server",
				Validation:  validateOneOf(DispatchProviders),
			},
			"dispatch.model": {
				Type:        reflect.TypeOf(""),
				Description: "Model used by direct providers",
				Default:     "claude-sonnet-4-20250514",
			},
			"dispatch.system_prompt": {
				Type:        reflect.TypeOf(""),
				Description: "System prompt for direct providers",
				Default:     "",
			},
			"dispatch.max_tokens": {
				Type:        reflect.TypeOf(int(0)),
				Description: "Maximum number of tokens in the response",
				Default:     2048,
				Validation:  validateIntRange(1, 100000),
			},
			"dispatch.temperature": {
				Type:        reflect.TypeOf(float64(0)),
				Description: "Temperature for response randomness (0.0-1.0)",
				Default:     0.7,
				Validation:  validateFloat64Range(0.0, 1.0),
			},

			// Providers
			"providers.anthropic.api_key": {
				Type:        reflect.TypeOf(""),
				Description: "Anthropic API key for Claude models",
				Default:     "",
				Secret:      true,
			},
			"providers.anthropic.base_url": {
				Type:        reflect.TypeOf(""),
				Description: "Anthropic API base URL",
				Default:     "https://api.anthropic.com/v1",
			},

			// Logging
			"log.level": {
				Type:        reflect.TypeOf(""),
				Description: "Log level (debug/info/warn/error)",
				Default:     "error",
				Validation:  validateOneOf(LogLevels),
			},
		},

		Aliases: map[string]string{
			"backend":       "storage.backend",
			"server":        "server.url",
			"provider":      "dispatch.provider",
			"model":         "dispatch.model",
			"system":        "dispatch.system_prompt",
			"max-tokens":    "dispatch.max_tokens",
			"temperature":   "dispatch.temperature",
			"temp":          "dispatch.temperature",
			"max-retries":   "server.max_retries",
			"timeout":       "server.timeout",
			"anthropic-key": "providers.anthropic.api_key",
			"log-level":     "log.level",
		},
	}
}

// ResolveKey resolves an alias to its canonical path or returns the path if already canonical
func (s *ConfigSchema) ResolveKey(key string) (string, error) {
	if canonicalPath, exists := s.Aliases[key]; exists {
		return canonicalPath, nil
	}

	if _, exists := s.ValidPaths[key]; exists {
		return key, nil
	}

	suggestions := s.FindSimilarKeys(key)
	if len(suggestions) > 0 {
		return "", fmt.Errorf("invalid config key %q. Did you mean one of: %s", key, strings.Join(suggestions, ", "))
	}

	return "", fmt.Errorf("invalid config key %q. Use 'workbench config list' to see valid keys", key)
}

// ValidateValue validates a value against the field's type and validation rules
func (s *ConfigSchema) ValidateValue(path string, value interface{}) error {
	fieldInfo, exists := s.ValidPaths[path]
	if !exists {
		return fmt.Errorf("unknown config path: %s", path)
	}

	valueType := reflect.TypeOf(value)
	if valueType != fieldInfo.Type {
		return fmt.Errorf("expected %s, got %v", fieldInfo.Type.String(), valueType)
	}

	if fieldInfo.Validation != nil {
		return fieldInfo.Validation(value)
	}

	return nil
}

// GetFieldInfo returns information about a configuration field
func (s *ConfigSchema) GetFieldInfo(path string) (ConfigFieldInfo, error) {
	fieldInfo, exists := s.ValidPaths[path]
	if !exists {
		return ConfigFieldInfo{}, fmt.Errorf("unknown config path: %s", path)
	}
	return fieldInfo, nil
}

// ListCanonicalKeys returns only the canonical configuration paths
func (s *ConfigSchema) ListCanonicalKeys() []string {
	keys := make([]string, 0, len(s.ValidPaths))
	for path := range s.ValidPaths {
		keys = append(keys, path)
	}
	sort.Strings(keys)
	return keys
}

// ListAliases returns only the alias keys
func (s *ConfigSchema) ListAliases() []string {
	aliases := make([]string, 0, len(s.Aliases))
	for alias := range s.Aliases {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)
	return aliases
}

// AliasesFor returns the aliases pointing at a canonical path
func (s *ConfigSchema) AliasesFor(path string) []string {
	var aliases []string
	for alias, target := range s.Aliases {
		if target == path {
			aliases = append(aliases, alias)
		}
	}
	sort.Strings(aliases)
	return aliases
}

// FindSimilarKeys finds keys similar to the input using simple string matching
func (s *ConfigSchema) FindSimilarKeys(key string) []string {
	lowerKey := strings.ToLower(key)
	if lowerKey == "" {
		return nil
	}

	var suggestions []string
	for _, path := range s.ListCanonicalKeys() {
		segments := strings.Split(path, ".")
		last := segments[len(segments)-1]
		if strings.Contains(path, lowerKey) || strings.Contains(lowerKey, last) {
			suggestions = append(suggestions, path)
		}
	}

	for _, alias := range s.ListAliases() {
		if strings.Contains(alias, lowerKey) || strings.Contains(lowerKey, alias) {
			suggestions = append(suggestions, alias)
		}
	}

	if len(suggestions) > 5 {
		suggestions = suggestions[:5]
	}

	return suggestions
}
