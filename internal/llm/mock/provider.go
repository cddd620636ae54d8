// Package mock is an offline dispatch target. It replies with the compiled
// prompt itself, so templates can be filled and dispatched end to end with
// no prompt server and no API key.
package mock

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/chriscorrea/workbench/internal/config"
	"github.com/chriscorrea/workbench/internal/llm/common"
)

// Provider registers the echo client under the name "mock"
type Provider struct{}

var _ common.Provider = (*Provider)(nil)

func New() *Provider {
	return &Provider{}
}

func (p *Provider) ProviderName() string {
	return "mock"
}

func (p *Provider) RequiresAPIKey() bool {
	return false
}

// CreateClient ignores cfg; the echo has nothing to configure
func (p *Provider) CreateClient(cfg *config.Config, logger *slog.Logger) (common.LLM, error) {
	return &Client{}, nil
}

// BuildOptions returns nil: system prompt, temperature and max tokens have
// no effect on an echo
func (p *Provider) BuildOptions(cfg *config.Config) []interface{} {
	return nil
}

// Client never goes over HTTP, so the wire-format half of common.Provider
// below is inert. It still describes a plausible request so the type can be
// exercised through common.ProviderClient in tests.

func (p *Provider) EndpointPath() string {
	return "echo"
}

func (p *Provider) BuildRequest(messages []common.Message, modelName string, options interface{}, logger *slog.Logger) (interface{}, error) {
	return map[string]interface{}{"model": modelName, "messages": messages}, nil
}

func (p *Provider) CustomizeRequest(req *http.Request) error {
	return nil
}

// ParseResponse treats the whole body as the reply text
func (p *Provider) ParseResponse(body []byte, logger *slog.Logger) (string, *common.Usage, error) {
	return string(body), nil, nil
}

func (p *Provider) HandleError(statusCode int, body []byte) error {
	return fmt.Errorf("mock reply failed with status %d: %s", statusCode, body)
}

func (p *Provider) HandleConnectionError(err error) error {
	return err
}
