package common

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// NewJSONRequest creates a JSON API request; the bearer header is only
// set when apiKey is not empty
func NewJSONRequest(ctx context.Context, method, url, apiKey string, jsonData []byte) (*http.Request, error) {
	var body io.Reader
	if jsonData != nil {
		body = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if jsonData != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if apiKey != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", apiKey))
	}

	return req, nil
}

// CreateJSONRequest creates a POST request with auth headers
func CreateJSONRequest(ctx context.Context, url, apiKey string, jsonData []byte) (*http.Request, error) {
	return NewJSONRequest(ctx, http.MethodPost, url, apiKey, jsonData)
}

// JoinURL appends an endpoint path to a base URL
func JoinURL(baseURL, path string) string {
	return strings.TrimSuffix(baseURL, "/") + "/" + strings.TrimPrefix(path, "/")
}
