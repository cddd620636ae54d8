package common

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/chriscorrea/workbench/internal/config"
)

// LLM turns a conversation into reply text. The dispatcher wraps one of
// these for every direct dispatch target.
type LLM interface {
	Generate(ctx context.Context, messages []Message, modelName string, options ...interface{}) (string, error)
}

// Provider is a direct dispatch target: a hosted model API the workbench can
// send a compiled prompt to without the prompt server in between.
//
// The first four methods are consulted by the registry and `workbench init`.
// The rest describe the wire format and are driven by ProviderClient.
type Provider interface {
	ProviderName() string
	RequiresAPIKey() bool
	CreateClient(cfg *config.Config, logger *slog.Logger) (LLM, error)
	// BuildOptions maps dispatch settings (system prompt, temperature, max
	// tokens) onto the provider's own option values
	BuildOptions(cfg *config.Config) []interface{}

	// EndpointPath is joined onto the base URL for every prompt request
	EndpointPath() string
	BuildRequest(messages []Message, modelName string, options interface{}, logger *slog.Logger) (interface{}, error)
	// CustomizeRequest adjusts headers, typically auth, before each attempt
	CustomizeRequest(req *http.Request) error
	ParseResponse(body []byte, logger *slog.Logger) (content string, usage *Usage, err error)
	// HandleError turns a non-200 reply into an error a user can act on
	HandleError(statusCode int, body []byte) error
	// HandleConnectionError does the same when no reply arrived at all
	HandleConnectionError(err error) error
}
