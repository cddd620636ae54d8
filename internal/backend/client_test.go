package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chriscorrea/workbench/internal/llm/common"
	"github.com/chriscorrea/workbench/internal/store"
)

func noDelay(int) time.Duration { return 0 }

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...common.ClientOption) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	opts = append([]common.ClientOption{common.WithBackoff(noDelay), common.WithMaxRetries(0)}, opts...)
	return New(server.URL, opts...)
}

func TestFetchError(t *testing.T) {
	cause := errors.New("connection refused")
	err := &FetchError{Resource: "projects", Err: cause}

	assert.Equal(t, "fetch projects: connection refused", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestStatusError(t *testing.T) {
	assert.Equal(t, "chat server returned 500: boom", (&StatusError{StatusCode: 500, Message: "boom"}).Error())
	assert.Equal(t, "chat server returned 404", (&StatusError{StatusCode: 404}).Error())
}

func TestFetchTemplates(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, templatesPath, r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		_, _ = w.Write([]byte(`{
			"templates": [{"id": "summarize", "name": "Summarize", "category": "writing",
				"template": "Summarize {{text}}", "variables": [{"name": "text", "type": "textarea", "required": true}]}],
			"categories": [{"id": "writing", "name": "Writing"}]
		}`))
	})

	catalog, err := client.FetchTemplates(context.Background())
	require.NoError(t, err)
	require.Len(t, catalog.Templates, 1)
	assert.Equal(t, "summarize", catalog.Templates[0].ID)
	assert.Equal(t, "Summarize {{text}}", catalog.Templates[0].Body)
	require.Len(t, catalog.Templates[0].Fields, 1)
	assert.Equal(t, "text", catalog.Templates[0].Fields[0].Name)
	require.Len(t, catalog.Categories, 1)
	assert.Equal(t, "Writing", catalog.Categories[0].Name)
}

func TestFetchTemplates_Failures(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		contains string
	}{
		{"server error", http.StatusInternalServerError, `{"error":"db down"}`, "chat server returned 500: db down"},
		{"error field", http.StatusOK, `{"error":"catalog missing","templates":[]}`, "catalog missing"},
		{"bad json", http.StatusOK, `<html>`, "failed to decode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.FetchTemplates(context.Background())
			require.Error(t, err)
			var fetchErr *FetchError
			require.ErrorAs(t, err, &fetchErr)
			assert.Equal(t, "templates", fetchErr.Resource)
			assert.ErrorContains(t, err, tt.contains)
		})
	}
}

func TestFetchProjects(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, projectsPath, r.URL.Path)
		_, _ = w.Write([]byte(`{"projects": [
			{"uuid": "p2", "name": "zeta", "conversation_uuid": "c2"},
			{"uuid": "p1", "name": "Alpha", "conversation_uuid": "c1"},
			{"uuid": "p2", "name": "zeta", "conversation_uuid": "older"},
			{"uuid": "p3", "name": "", "conversation_uuid": "c3"},
			{"uuid": "", "name": "orphan"}
		]}`))
	})

	projects, err := client.FetchProjects(context.Background())
	require.NoError(t, err)
	require.Len(t, projects, 3)
	assert.Equal(t, "Alpha", projects[0].Name)
	assert.Equal(t, "Unnamed Project", projects[1].Name)
	assert.Equal(t, "zeta", projects[2].Name)
	assert.Equal(t, "c2", projects[2].ConversationUUID)
}

func TestFetchProjects_ErrorField(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error": "not logged in", "projects": []}`))
	})

	projects, err := client.FetchProjects(context.Background())
	assert.Nil(t, projects)
	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "projects", fetchErr.Resource)
	assert.ErrorContains(t, err, "not logged in")
}

func TestFetchProjects_Retries(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"projects": [{"uuid": "p1", "name": "One"}]}`))
	}, common.WithMaxRetries(2))

	projects, err := client.FetchProjects(context.Background())
	require.NoError(t, err)
	assert.Len(t, projects, 1)
	assert.Equal(t, int32(3), calls.Load())
}

func TestActivateProject(t *testing.T) {
	var received setActiveRequest
	success := true
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, setActivePath, r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		_ = json.NewEncoder(w).Encode(setActiveResponse{Success: success})
	})
	ctx := context.Background()

	ok, err := client.ActivateProject(ctx, "p1", "c1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, setActiveRequest{ProjectUUID: "p1", ConversationUUID: "c1"}, received)
	assert.Equal(t, "c1", client.Conversation())

	// clearing the project drops the conversation too
	ok, err = client.ActivateProject(ctx, "", "c1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, setActiveRequest{}, received)
	assert.Empty(t, client.Conversation())

	// a refusal leaves the current conversation alone
	_, _ = client.ActivateProject(ctx, "p1", "c1")
	success = false
	ok, err = client.ActivateProject(ctx, "p2", "c2")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "c1", client.Conversation())
}

func TestActivateProject_Failure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": "project_uuid required"}`))
	})

	ok, err := client.ActivateProject(context.Background(), "p1", "c1")
	assert.False(t, ok)
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadRequest, statusErr.StatusCode)
	assert.Equal(t, "project_uuid required", statusErr.Message)
}

func TestDispatch(t *testing.T) {
	var received chatRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case setActivePath:
			_, _ = w.Write([]byte(`{"success": true}`))
		case chatPath:
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
			_, _ = w.Write([]byte(`{"response": "Here is a summary.", "session_id": "s-42"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	ctx := context.Background()

	_, err := client.ActivateProject(ctx, "p1", "c1")
	require.NoError(t, err)

	attachments := []common.Attachment{{Name: "notes.txt", Content: "hello"}}
	reply, err := client.Dispatch(ctx, "Summarize this", attachments)
	require.NoError(t, err)

	assert.Equal(t, common.Reply{Text: "Here is a summary.", Provider: "server", SessionID: "s-42"}, reply)
	assert.Equal(t, "Summarize this", received.Message)
	assert.Equal(t, attachments, received.Attachments)
	assert.Equal(t, "c1", received.ConversationUUID)
}

func TestDispatch_EmptyMessage(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	})

	_, err := client.Dispatch(context.Background(), "  \n", nil)
	assert.ErrorIs(t, err, common.ErrEmptyMessage)
	assert.Zero(t, calls.Load())
}

func TestDispatch_ServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": "upstream timeout"}`))
	})

	_, err := client.Dispatch(context.Background(), "hello", nil)
	require.Error(t, err)
	assert.ErrorContains(t, err, "server dispatch failed")
	assert.ErrorContains(t, err, "upstream timeout")
}

func TestDispatch_Cancelled(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"response": "late"}`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.Dispatch(ctx, "hello", nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNormalizeProjects(t *testing.T) {
	assert.Empty(t, normalizeProjects(nil))

	projects := normalizeProjects([]store.Project{
		{UUID: "b", Name: "beta"},
		{UUID: "a", Name: "Beta"},
		{UUID: "c", Name: "alpha"},
	})
	names := []string{projects[0].UUID, projects[1].UUID, projects[2].UUID}
	// equal names keep their original order
	assert.Equal(t, []string{"c", "b", "a"}, names)
}
