// Package anthropic sends compiled prompts straight to the Anthropic Messages API.
//
// API Reference: https://docs.anthropic.com/en/api/messages
// Authentication: providers.anthropic.api_key or the ANTHROPIC_API_KEY environment variable
package anthropic

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/chriscorrea/workbench/internal/config"
	"github.com/chriscorrea/workbench/internal/llm/common"
)

const missingKeyHelp = `You can set the API key using the environment variable ANTHROPIC_API_KEY or via workbench config set anthropic-key=<your_api_key>
Get an API key from https://console.anthropic.com/settings/keys`

// Provider implements common.Provider for Anthropic
type Provider struct{}

var _ common.Provider = (*Provider)(nil)

// New creates a new Anthropic provider instance
func New() *Provider {
	return &Provider{}
}

// CreateClient returns a client for the Messages API; it fails without an API key
func (p *Provider) CreateClient(cfg *config.Config, logger *slog.Logger) (common.LLM, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	if cfg.Providers.Anthropic.APIKey == "" {
		return nil, fmt.Errorf("Anthropic API key is required.\n\n%s", missingKeyHelp)
	}

	opts := []common.ClientOption{
		common.WithLogger(logger),
		common.WithMaxRetries(cfg.Server.MaxRetries),
	}
	if cfg.Providers.Anthropic.BaseUrl != "" {
		opts = append(opts, common.WithBaseURL(cfg.Providers.Anthropic.BaseUrl))
	}
	if cfg.Server.Timeout > 0 {
		opts = append(opts, common.WithTimeout(time.Duration(cfg.Server.Timeout)*time.Second))
	}

	return common.NewProviderClient(p, cfg.Providers.Anthropic.APIKey, DefaultBaseURL, opts...), nil
}

// BuildOptions creates Anthropic generation options from the dispatch settings
func (p *Provider) BuildOptions(cfg *config.Config) []interface{} {
	var functionalOpts []GenerateOption

	if cfg.Dispatch.SystemPrompt != "" {
		functionalOpts = append(functionalOpts, WithSystem(cfg.Dispatch.SystemPrompt))
	}
	if cfg.Dispatch.Temperature > 0 {
		functionalOpts = append(functionalOpts, WithTemperature(cfg.Dispatch.Temperature))
	}
	if cfg.Dispatch.MaxTokens > 0 {
		functionalOpts = append(functionalOpts, WithMaxTokens(cfg.Dispatch.MaxTokens))
	}

	return []interface{}{NewGenerateOptions(functionalOpts...)}
}

// RequiresAPIKey returns true; Anthropic requires an API key
func (p *Provider) RequiresAPIKey() bool {
	return true
}

// ProviderName returns the name of this provider
func (p *Provider) ProviderName() string {
	return "anthropic"
}

// BuildRequest creates a Messages API request from messages and options
func (p *Provider) BuildRequest(messages []common.Message, modelName string, options interface{}, logger *slog.Logger) (interface{}, error) {
	opts, ok := options.(*GenerateOptions)
	if !ok || opts == nil {
		opts = &GenerateOptions{}
	}

	common.LogAPIRequest(logger, "Anthropic", modelName, messages, &opts.GenerateOptions)

	// system messages travel in the top-level system field
	var systemParts []string
	var conversation []common.Message
	for _, msg := range messages {
		if msg.Role == "system" {
			systemParts = append(systemParts, msg.Content)
			continue
		}
		conversation = append(conversation, msg)
	}

	system := strings.Join(systemParts, "\n\n")
	if system == "" {
		system = opts.System
	}

	request := &MessagesRequest{
		Model:         modelName,
		Messages:      conversation,
		System:        system,
		MaxTokens:     DefaultMaxTokens,
		Temperature:   opts.Temperature,
		StopSequences: opts.StopSequences,
		Stream:        common.BoolPtr(false),
	}
	if opts.MaxTokens != nil {
		request.MaxTokens = *opts.MaxTokens
	}

	return request, nil
}

// ParseResponse extracts the text content and usage from a Messages API response
func (p *Provider) ParseResponse(body []byte, logger *slog.Logger) (string, *common.Usage, error) {
	var resp MessagesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		common.LogJSONUnmarshalError(logger, err, string(body))
		return "", nil, fmt.Errorf("failed to unmarshal Anthropic response: %w", err)
	}

	var parts []string
	for _, item := range resp.Content {
		if item.Type == "text" {
			parts = append(parts, item.Text)
		}
	}
	if len(parts) == 0 {
		return "", nil, fmt.Errorf("no text content in Anthropic response")
	}

	var usage *common.Usage
	if resp.Usage.InputTokens > 0 || resp.Usage.OutputTokens > 0 {
		usage = &common.Usage{
			PromptTokens:     resp.Usage.InputTokens,
			CompletionTokens: resp.Usage.OutputTokens,
			TotalTokens:      resp.Usage.InputTokens + resp.Usage.OutputTokens,
		}
	}

	return strings.Join(parts, ""), usage, nil
}

// HandleError creates Anthropic-specific error messages from HTTP error responses
func (p *Provider) HandleError(statusCode int, body []byte) error {
	switch statusCode {
	case http.StatusUnauthorized:
		return fmt.Errorf("Anthropic API authentication failed.\n\n%s", missingKeyHelp)
	case http.StatusTooManyRequests:
		return fmt.Errorf("Anthropic API rate limit exceeded; try again later")
	}

	var errorResp common.ErrorResponse
	if err := json.Unmarshal(body, &errorResp); err != nil {
		return fmt.Errorf("Anthropic API request failed with status %d: %s", statusCode, string(body))
	}
	if errorResp.Error.Message != "" {
		return fmt.Errorf("Anthropic API error: %s", errorResp.Error.Message)
	}
	return fmt.Errorf("an unknown API error occurred (status %d)", statusCode)
}

// HandleConnectionError returns the original error for a hosted service
func (p *Provider) HandleConnectionError(err error) error {
	return err
}

// EndpointPath is the Messages API endpoint relative to the base URL
func (p *Provider) EndpointPath() string {
	return "messages"
}

// CustomizeRequest swaps bearer auth for x-api-key and pins the API version
func (p *Provider) CustomizeRequest(req *http.Request) error {
	if auth := req.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		req.Header.Del("Authorization")
		req.Header.Set("x-api-key", strings.TrimPrefix(auth, "Bearer "))
	}

	req.Header.Set("anthropic-version", APIVersion)
	return nil
}
