package registry

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/chriscorrea/workbench/internal/config"
	"github.com/chriscorrea/workbench/internal/llm/anthropic"
	"github.com/chriscorrea/workbench/internal/llm/common"
	"github.com/chriscorrea/workbench/internal/llm/mock"
)

// ServerProvider names dispatch through the chat server instead of a direct provider
const ServerProvider = "server"

// AllProviders contains the direct LLM providers
var AllProviders = map[string]common.Provider{
	"anthropic": anthropic.New(),
	"mock":      mock.New(),
}

// CreateProvider creates a provider client using the central registry
// this will return an error if provider is not registered or creation fails
func CreateProvider(name string, cfg *config.Config, logger *slog.Logger) (common.LLM, error) {
	provider, exists := AllProviders[name]
	if !exists {
		return nil, fmt.Errorf("unsupported provider '%s'. Available providers: %s", name, strings.Join(GetAvailableProviders(), ", "))
	}

	return provider.CreateClient(cfg, logger)
}

// NewDispatcher returns the dispatcher selected by dispatch.provider;
// server is used as-is for the "server" provider
func NewDispatcher(cfg *config.Config, server common.Dispatcher, logger *slog.Logger) (common.Dispatcher, error) {
	name := strings.ToLower(cfg.Dispatch.Provider)
	if name == "" || name == ServerProvider {
		if server == nil {
			return nil, fmt.Errorf("no chat server configured")
		}
		return server, nil
	}

	client, err := CreateProvider(name, cfg, logger)
	if err != nil {
		return nil, err
	}

	return common.NewLLMDispatcher(client, name, cfg.Dispatch.Model, BuildProviderOptions(name, cfg), logger), nil
}

// BuildProviderOptions builds provider-specific options using the central registry
// returns nil if the provider is not registered
func BuildProviderOptions(name string, cfg *config.Config) []interface{} {
	provider, exists := AllProviders[name]
	if !exists {
		return nil
	}

	return provider.BuildOptions(cfg)
}

// GetAvailableProviders returns the sorted names of every dispatch target
func GetAvailableProviders() []string {
	providers := make([]string, 0, len(AllProviders)+1)
	for name := range AllProviders {
		providers = append(providers, name)
	}
	providers = append(providers, ServerProvider)
	sort.Strings(providers)
	return providers
}

// ProviderRequiresAPIKey checks if provider requires API key
// returns false if the provider is not registered
func ProviderRequiresAPIKey(name string) bool {
	provider, exists := AllProviders[name]
	if !exists {
		return false
	}

	return provider.RequiresAPIKey()
}
