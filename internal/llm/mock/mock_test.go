package mock

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chriscorrea/workbench/internal/config"
	"github.com/chriscorrea/workbench/internal/llm/common"
)

func TestClient_Echo(t *testing.T) {
	client, err := New().CreateClient(config.NewDefaultFromEmbedded(), nil)
	require.NoError(t, err)

	out, err := client.Generate(context.Background(), []common.Message{
		{Role: "system", Content: "ignored"},
		{Role: "user", Content: "first"},
		{Role: "assistant", Content: "reply"},
		{Role: "user", Content: "second"},
	}, "any")
	require.NoError(t, err)
	assert.Equal(t, "second", out)

	out, err = client.Generate(context.Background(), nil, "any")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestClient_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := (&Client{}).Generate(ctx, []common.Message{{Role: "user", Content: "x"}}, "any")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProvider(t *testing.T) {
	p := New()
	assert.Equal(t, "mock", p.ProviderName())
	assert.False(t, p.RequiresAPIKey())
	assert.Nil(t, p.BuildOptions(nil))
}

func TestProvider_OverHTTP(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		expected string
		errText  string
	}{
		{"body is the reply", http.StatusOK, "echoed prompt", ""},
		{"non-200 is an error", http.StatusBadGateway, "", "mock reply failed with status 502"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/echo", r.URL.Path)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte("echoed prompt"))
			}))
			defer server.Close()

			client := common.NewProviderClient(New(), "", server.URL, common.WithMaxRetries(0))
			out, err := client.Generate(context.Background(), []common.Message{{Role: "user", Content: "x"}}, "any")

			if tt.errText != "" {
				assert.ErrorContains(t, err, tt.errText)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out)
		})
	}
}
