package common

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// ErrEmptyMessage is returned when there is nothing to dispatch
var ErrEmptyMessage = errors.New("message or attachments required")

// LLMDispatcher sends prompts straight to a provider client
type LLMDispatcher struct {
	client   LLM
	provider string
	model    string
	options  []interface{}
	logger   *slog.Logger
}

var _ Dispatcher = (*LLMDispatcher)(nil)

// NewLLMDispatcher wraps client; options are the provider's BuildOptions result
func NewLLMDispatcher(client LLM, provider, model string, options []interface{}, logger *slog.Logger) *LLMDispatcher {
	if logger == nil {
		logger = NewBaseClient("", "").Logger
	}
	return &LLMDispatcher{
		client:   client,
		provider: provider,
		model:    model,
		options:  options,
		logger:   logger,
	}
}

// Dispatch renders attachments ahead of the prompt and generates a reply
func (d *LLMDispatcher) Dispatch(ctx context.Context, text string, attachments []Attachment) (Reply, error) {
	if strings.TrimSpace(text) == "" && len(attachments) == 0 {
		return Reply{}, ErrEmptyMessage
	}

	messages := []Message{{Role: "user", Content: RenderAttachments(text, attachments)}}
	d.logger.Debug("Dispatching prompt", "provider", d.provider, "model", d.model, "attachments", len(attachments))

	content, err := d.client.Generate(ctx, messages, d.model, d.options...)
	if err != nil {
		return Reply{}, fmt.Errorf("%s dispatch failed: %w", d.provider, err)
	}

	return Reply{Text: content, Provider: d.provider}, nil
}

// RenderAttachments places each attachment in a document block before text
func RenderAttachments(text string, attachments []Attachment) string {
	if len(attachments) == 0 {
		return text
	}

	var b strings.Builder
	for _, a := range attachments {
		name := strings.ReplaceAll(a.Name, `"`, "&quot;")
		fmt.Fprintf(&b, "<document name=\"%s\">\n%s\n</document>\n\n", name, strings.TrimRight(a.Content, "\n"))
	}
	b.WriteString(text)
	return strings.TrimRight(b.String(), "\n")
}
