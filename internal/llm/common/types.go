package common

import "context"

// Message represents a message in a conversation
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Usage represents token usage information
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Attachment is a named piece of text sent alongside a prompt
type Attachment struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// Reply is the answer to a dispatched prompt
type Reply struct {
	Text      string `json:"response"`
	Provider  string `json:"provider,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

// Dispatcher sends a compiled prompt somewhere that answers it
type Dispatcher interface {
	Dispatch(ctx context.Context, text string, attachments []Attachment) (Reply, error)
}

// ErrorResponse represents a standard API error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains detailed error information
type ErrorDetail struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
