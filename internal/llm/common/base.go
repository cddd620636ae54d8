package common

import (
	"io"
	"log/slog"
	"net/http"
	"time"
)

// DefaultTimeout bounds a single HTTP attempt
const DefaultTimeout = 60 * time.Second

// BaseClient contains common client configuration shared by provider and server clients
type BaseClient struct {
	APIKey     string
	HTTPClient *http.Client
	BaseURL    string
	Logger     *slog.Logger
	MaxRetries int
	Backoff    BackoffFunc
}

// ClientOption configures a BaseClient using the functional options pattern
type ClientOption func(*BaseClient)

// WithLogger sets the logger for any client
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *BaseClient) {
		c.Logger = logger
	}
}

// WithMaxRetries sets maximum retry attempts for any client
func WithMaxRetries(retries int) ClientOption {
	return func(c *BaseClient) {
		c.MaxRetries = retries
	}
}

// WithHTTPClient sets the HTTP client for any client
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *BaseClient) {
		c.HTTPClient = client
	}
}

// WithBaseURL sets the base URL for any client
func WithBaseURL(url string) ClientOption {
	return func(c *BaseClient) {
		c.BaseURL = url
	}
}

// WithBackoff sets the delay schedule between retries
func WithBackoff(backoff BackoffFunc) ClientOption {
	return func(c *BaseClient) {
		c.Backoff = backoff
	}
}

// WithTimeout replaces the HTTP client with one using the given per-attempt timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *BaseClient) {
		if timeout > 0 {
			c.HTTPClient = &http.Client{Timeout: timeout}
		}
	}
}

// NewBaseClient creates a base client with sensible defaults
func NewBaseClient(apiKey, defaultBaseURL string, opts ...ClientOption) *BaseClient {
	c := &BaseClient{
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: DefaultTimeout},
		BaseURL:    defaultBaseURL,
		MaxRetries: 2,
		Backoff:    defaultBackoff,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.Logger == nil {
		c.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if c.MaxRetries > MaxRetryLimit {
		c.MaxRetries = MaxRetryLimit
	}

	return c
}
