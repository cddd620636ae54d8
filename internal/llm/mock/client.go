package mock

import (
	"context"

	"github.com/chriscorrea/workbench/internal/llm/common"
)

// Client implements common.LLM by echoing the last user message
type Client struct{}

var _ common.LLM = (*Client)(nil)

// Generate returns the content of the last user message unchanged
func (c *Client) Generate(ctx context.Context, messages []common.Message, modelName string, options ...interface{}) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			return messages[i].Content, nil
		}
	}
	return "", nil
}
