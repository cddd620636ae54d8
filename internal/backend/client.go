// Package backend talks to the chat server: the template and project
// catalogs, project activation, and prompt dispatch.
package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/chriscorrea/workbench/internal/llm/common"
	"github.com/chriscorrea/workbench/internal/store"
)

// server endpoints
const (
	templatesPath  = "/api/templates"
	projectsPath   = "/api/projects"
	setActivePath  = "/api/projects/set-active"
	chatPath       = "/api/chat"
	providerServer = "server"
)

// FetchError reports a failed catalog or activation request
type FetchError struct {
	Resource string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Resource, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// StatusError is a non-2xx answer from the chat server
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("chat server returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("chat server returned %d", e.StatusCode)
}

// Client is an HTTP client for the chat server
type Client struct {
	*common.BaseClient

	mu           sync.RWMutex
	conversation string
}

var (
	_ store.TemplateSource   = (*Client)(nil)
	_ store.ProjectSource    = (*Client)(nil)
	_ store.ProjectActivator = (*Client)(nil)
	_ common.Dispatcher      = (*Client)(nil)
)

// New creates a chat server client for baseURL
func New(baseURL string, opts ...common.ClientOption) *Client {
	return &Client{BaseClient: common.NewBaseClient("", baseURL, opts...)}
}

type templatesResponse struct {
	store.TemplateCatalog
	Error string `json:"error,omitempty"`
}

// FetchTemplates loads the server's template catalog
func (c *Client) FetchTemplates(ctx context.Context) (store.TemplateCatalog, error) {
	var resp templatesResponse
	if err := c.do(ctx, http.MethodGet, templatesPath, nil, &resp); err != nil {
		return store.TemplateCatalog{}, &FetchError{Resource: "templates", Err: err}
	}
	if resp.Error != "" {
		return store.TemplateCatalog{}, &FetchError{Resource: "templates", Err: fmt.Errorf("%s", resp.Error)}
	}

	c.Logger.Debug("Fetched template catalog", "templates", len(resp.Templates), "categories", len(resp.Categories))
	return resp.TemplateCatalog, nil
}

type projectsResponse struct {
	Projects []store.Project `json:"projects"`
	Error    string          `json:"error,omitempty"`
}

// FetchProjects loads the project catalog, one entry per project uuid
// sorted by case-insensitive name
func (c *Client) FetchProjects(ctx context.Context) ([]store.Project, error) {
	var resp projectsResponse
	if err := c.do(ctx, http.MethodGet, projectsPath, nil, &resp); err != nil {
		return nil, &FetchError{Resource: "projects", Err: err}
	}
	if resp.Error != "" {
		return nil, &FetchError{Resource: "projects", Err: fmt.Errorf("%s", resp.Error)}
	}

	projects := normalizeProjects(resp.Projects)
	c.Logger.Debug("Fetched project catalog", "projects", len(projects))
	return projects, nil
}

type setActiveRequest struct {
	ProjectUUID      string `json:"project_uuid"`
	ConversationUUID string `json:"conversation_uuid"`
}

type setActiveResponse struct {
	Success          bool   `json:"success"`
	ConversationUUID string `json:"conversation_uuid"`
	Error            string `json:"error,omitempty"`
}

// ActivateProject tells the server which project and conversation to chat in;
// an empty projectUUID clears the selection
func (c *Client) ActivateProject(ctx context.Context, projectUUID, conversationUUID string) (bool, error) {
	if projectUUID == "" {
		conversationUUID = ""
	}

	var resp setActiveResponse
	err := c.do(ctx, http.MethodPost, setActivePath, setActiveRequest{
		ProjectUUID:      projectUUID,
		ConversationUUID: conversationUUID,
	}, &resp)
	if err != nil {
		return false, &FetchError{Resource: "project activation", Err: err}
	}
	if !resp.Success {
		return false, nil
	}

	if resp.ConversationUUID != "" {
		conversationUUID = resp.ConversationUUID
	}
	c.mu.Lock()
	c.conversation = conversationUUID
	c.mu.Unlock()

	return true, nil
}

// Conversation returns the conversation dispatches are sent to
func (c *Client) Conversation() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.conversation
}

type chatRequest struct {
	Message          string              `json:"message"`
	Attachments      []common.Attachment `json:"attachments,omitempty"`
	ConversationUUID string              `json:"conversation_uuid,omitempty"`
}

type chatResponse struct {
	Response  string `json:"response"`
	SessionID string `json:"session_id"`
	Error     string `json:"error,omitempty"`
}

// Dispatch sends a compiled prompt to the server's chat endpoint
func (c *Client) Dispatch(ctx context.Context, text string, attachments []common.Attachment) (common.Reply, error) {
	if strings.TrimSpace(text) == "" && len(attachments) == 0 {
		return common.Reply{}, common.ErrEmptyMessage
	}

	var resp chatResponse
	err := c.do(ctx, http.MethodPost, chatPath, chatRequest{
		Message:          text,
		Attachments:      attachments,
		ConversationUUID: c.Conversation(),
	}, &resp)
	if err != nil {
		return common.Reply{}, fmt.Errorf("%s dispatch failed: %w", providerServer, err)
	}

	return common.Reply{Text: resp.Response, Provider: providerServer, SessionID: resp.SessionID}, nil
}

// do sends a JSON request with retries and decodes a 2xx body into out
func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var payload []byte
	if in != nil {
		var err error
		if payload, err = json.Marshal(in); err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	url := common.JoinURL(c.BaseURL, path)
	common.LogRequestExecution(c.Logger, url, c.MaxRetries)

	attempt := func(ctx context.Context) (*http.Response, error) {
		req, err := common.NewJSONRequest(ctx, method, url, c.APIKey, payload)
		if err != nil {
			return nil, err
		}
		return c.HTTPClient.Do(req)
	}

	resp, err := common.SendWithRetry(ctx, attempt, c.MaxRetries, c.Logger, c.Backoff)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	common.LogHTTPResponse(c.Logger, resp.StatusCode, len(body))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errBody struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(body, &errBody)
		return &StatusError{StatusCode: resp.StatusCode, Message: errBody.Error}
	}

	if err := json.Unmarshal(body, out); err != nil {
		common.LogJSONUnmarshalError(c.Logger, err, string(body))
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

// normalizeProjects keeps the first entry per uuid and orders by name
func normalizeProjects(projects []store.Project) []store.Project {
	seen := make(map[string]bool, len(projects))
	result := make([]store.Project, 0, len(projects))
	for _, p := range projects {
		if p.UUID == "" || seen[p.UUID] {
			continue
		}
		seen[p.UUID] = true
		if p.Name == "" {
			p.Name = "Unnamed Project"
		}
		result = append(result, p)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return strings.ToLower(result[i].Name) < strings.ToLower(result[j].Name)
	})
	return result
}
