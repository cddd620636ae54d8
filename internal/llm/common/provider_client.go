package common

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// ProviderClient sends a compiled prompt straight to a hosted model API.
// The Provider owns the wire format; ProviderClient owns transport, retries
// and logging.
type ProviderClient struct {
	*BaseClient
	provider Provider
}

var _ LLM = (*ProviderClient)(nil)

// NewProviderClient returns a client that speaks to baseURL in provider's format
func NewProviderClient(provider Provider, apiKey, baseURL string, opts ...ClientOption) *ProviderClient {
	return &ProviderClient{
		BaseClient: NewBaseClient(apiKey, baseURL, opts...),
		provider:   provider,
	}
}

// Generate sends messages to the provider and returns the reply text.
// options carries at most one value: the provider's consolidated options
// from BuildOptions.
func (c *ProviderClient) Generate(ctx context.Context, messages []Message, modelName string, options ...interface{}) (string, error) {
	var opts interface{}
	if len(options) > 0 {
		opts = options[0]
	}
	if len(options) > 1 {
		c.Logger.Warn("Extra dispatch options ignored",
			"provider", c.provider.ProviderName(),
			"count", len(options))
	}

	payload, err := c.encode(messages, modelName, opts)
	if err != nil {
		return "", err
	}

	status, body, err := c.send(ctx, payload)
	if err != nil {
		return "", c.provider.HandleConnectionError(err)
	}
	if status != http.StatusOK {
		return "", c.provider.HandleError(status, body)
	}

	text, usage, err := c.provider.ParseResponse(body, c.Logger)
	if err != nil {
		return "", err
	}

	if usage != nil {
		LogTokenUsage(c.Logger, "", *usage)
	}
	LogRequestCompletion(c.Logger, len(text))
	return text, nil
}

// encode builds the provider's request body; BuildRequest errors pass through unwrapped
func (c *ProviderClient) encode(messages []Message, modelName string, opts interface{}) ([]byte, error) {
	request, err := c.provider.BuildRequest(messages, modelName, opts, c.Logger)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("encode %s prompt request: %w", c.provider.ProviderName(), err)
	}
	return payload, nil
}

// send posts payload to the provider endpoint, resending on transient
// failures, and returns the final status with the whole reply body
func (c *ProviderClient) send(ctx context.Context, payload []byte) (int, []byte, error) {
	url := JoinURL(c.BaseURL, c.provider.EndpointPath())
	LogRequestExecution(c.Logger, url, c.MaxRetries)

	attempt := func(ctx context.Context) (*http.Response, error) {
		req, err := CreateJSONRequest(ctx, url, c.APIKey, payload)
		if err != nil {
			return nil, err
		}
		if err := c.provider.CustomizeRequest(req); err != nil {
			return nil, err
		}
		return c.HTTPClient.Do(req)
	}

	resp, err := SendWithRetry(ctx, attempt, c.MaxRetries, c.Logger, c.Backoff)
	if err != nil {
		LogRequestFailure(c.Logger, err, c.MaxRetries)
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read %s reply: %w", c.provider.ProviderName(), err)
	}

	LogHTTPResponse(c.Logger, resp.StatusCode, len(body))
	LogRawResponse(c.Logger, string(body), resp.StatusCode)
	return resp.StatusCode, body, nil
}
