package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/chriscorrea/workbench/internal/prompt"
	"github.com/chriscorrea/workbench/internal/store"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chatServer fakes the chat server endpoints the commands talk to
type chatServer struct {
	mu          sync.Mutex
	catalog     store.TemplateCatalog
	projects    []store.Project
	activations []map[string]string
	chats       []map[string]interface{}
	chatStatus  int
}

func newChatServer(t *testing.T) (*chatServer, *httptest.Server) {
	t.Helper()

	cs := &chatServer{
		catalog: store.TemplateCatalog{
			Categories: []prompt.Category{
				{ID: "writing", Name: "Writing"},
				{ID: "coding", Name: "Coding"},
			},
			Templates: []prompt.Template{
				{
					ID:          "summarize",
					Name:        "Summarize",
					Description: "Summarize a text",
					Category:    "writing",
					Body:        "Summarize [text]\nAudience: [audience]",
					Fields: []prompt.Field{
						{Name: "text", Label: "Text", Type: prompt.TypeTextarea, Required: true},
						{Name: "audience", Type: prompt.TypeText},
					},
				},
				{
					ID:          "review",
					Name:        "Code Review",
					Description: "Review code",
					Category:    "coding",
					Body:        "Review this [language] code for [focus]",
					Fields: []prompt.Field{
						{Name: "language", Type: prompt.TypeSelect, Required: true, Options: []string{"Go", "Rust"}},
						{Name: "focus", Type: prompt.TypeMultiselect, Options: []string{"bugs", "style", "speed"}},
					},
				},
				{
					ID:          "mystery",
					Name:        "Mystery",
					Description: "Uncategorized",
					Category:    "unknown",
					Body:        "Just [thing]",
				},
			},
		},
		projects: []store.Project{
			{UUID: "p-beta", Name: "Beta", ConversationUUID: "c-beta"},
			{UUID: "p-alpha", Name: "Alpha", ConversationUUID: "c-alpha"},
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/templates", func(w http.ResponseWriter, r *http.Request) {
		cs.mu.Lock()
		defer cs.mu.Unlock()
		_ = json.NewEncoder(w).Encode(cs.catalog)
	})
	mux.HandleFunc("/api/projects", func(w http.ResponseWriter, r *http.Request) {
		cs.mu.Lock()
		defer cs.mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"projects": cs.projects})
	})
	mux.HandleFunc("/api/projects/set-active", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		cs.mu.Lock()
		cs.activations = append(cs.activations, body)
		cs.mu.Unlock()

		_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": true})
	})
	mux.HandleFunc("/api/chat", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		cs.mu.Lock()
		cs.chats = append(cs.chats, body)
		status := cs.chatStatus
		cs.mu.Unlock()

		if status != 0 {
			w.WriteHeader(status)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "model overloaded"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"response": fmt.Sprintf("echo: %s", body["message"])})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return cs, srv
}

func (cs *chatServer) lastChat() map[string]interface{} {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if len(cs.chats) == 0 {
		return nil
	}
	return cs.chats[len(cs.chats)-1]
}

func (cs *chatServer) activationCount() int {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return len(cs.activations)
}

// setupWorkbench writes a config pointing at serverURL with file storage in
// a temp dir and installs it as the command state
func setupWorkbench(t *testing.T, serverURL, catalogSource string) string {
	t.Helper()
	dir := t.TempDir()

	configTOML := fmt.Sprintf(`[storage]
backend = "file"
path = %q

[catalog]
source = %q
custom_path = %q

[server]
url = %q
timeout = 5
max_retries = 0

[dispatch]
provider = "server"
`, filepath.Join(dir, "state.json"), catalogSource, filepath.Join(dir, "custom_prompts.yaml"), serverURL)

	configPath := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(configPath, []byte(configTOML), 0644))
	useManager(t, configPath)

	originalTTY, originalStdin := stdinIsTerminal, attachmentStdin
	stdinIsTerminal = func() bool { return false }
	attachmentStdin = func() *os.File { return nil }
	t.Cleanup(func() {
		stdinIsTerminal, attachmentStdin = originalTTY, originalStdin
	})

	return dir
}

// runCommand executes a command tree with args and returns stdout and stderr
func runCommand(t *testing.T, cmd *cobra.Command, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}
