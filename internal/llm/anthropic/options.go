package anthropic

import "github.com/chriscorrea/workbench/internal/llm/common"

// GenerateOptions contains Anthropic-specific generation parameters
type GenerateOptions struct {
	common.GenerateOptions

	System        string   // system prompt for Anthropic (separate from messages)
	StopSequences []string // anthropic uses "stop_sequences" instead of "stop"
}

// GenerateOption configures Anthropic-specific generation parameters
type GenerateOption func(*GenerateOptions)

// NewGenerateOptions creates new GenerateOptions with functional options applied
func NewGenerateOptions(opts ...GenerateOption) *GenerateOptions {
	config := &GenerateOptions{}
	for _, opt := range opts {
		opt(config)
	}
	return config
}

// WithSystem sets the system prompt
func WithSystem(system string) GenerateOption {
	return func(c *GenerateOptions) {
		c.System = system
	}
}

// WithStopSequences sets stop sequences
func WithStopSequences(sequences []string) GenerateOption {
	return func(c *GenerateOptions) {
		c.StopSequences = sequences
	}
}

// WithTemperature sets response randomness (0.0-1.0 for Anthropic)
func WithTemperature(temp float64) GenerateOption {
	return func(c *GenerateOptions) {
		common.WithTemperature(temp)(&c.GenerateOptions)
	}
}

// WithMaxTokens sets maximum tokens to generate
func WithMaxTokens(maxTokens int) GenerateOption {
	return func(c *GenerateOptions) {
		common.WithMaxTokens(maxTokens)(&c.GenerateOptions)
	}
}
