package anthropic

import "github.com/chriscorrea/workbench/internal/llm/common"

const (
	// DefaultBaseURL is used when providers.anthropic.base_url is empty
	DefaultBaseURL = "https://api.anthropic.com/v1"

	// APIVersion is sent as the anthropic-version header
	APIVersion = "2023-06-01"

	// DefaultMaxTokens is sent when no limit is configured; the API requires one
	DefaultMaxTokens = 1024
)

// MessagesRequest represents the request payload for Anthropic's Messages API
type MessagesRequest struct {
	Model         string           `json:"model"`
	MaxTokens     int              `json:"max_tokens"`
	Messages      []common.Message `json:"messages"`
	System        string           `json:"system,omitempty"`
	Temperature   *float64         `json:"temperature,omitempty"`
	StopSequences []string         `json:"stop_sequences,omitempty"`
	Stream        *bool            `json:"stream,omitempty"`
}

// MessagesResponse represents Anthropic's Messages API response
type MessagesResponse struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Role       string         `json:"role"`
	Content    []ContentItem  `json:"content"`
	Model      string         `json:"model"`
	StopReason string         `json:"stop_reason"`
	Usage      AnthropicUsage `json:"usage"`
}

// ContentItem represents a content item in Anthropic's response
type ContentItem struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// AnthropicUsage represents usage information in Anthropic's format
type AnthropicUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}
