package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chriscorrea/workbench/internal/storage"
)

var testProjects = []Project{
	{UUID: "p-alpha", Name: "Alpha", ConversationUUID: "c-alpha"},
	{UUID: "p-beta", Name: "Beta", ConversationUUID: "c-beta"},
	{UUID: "p-gamma", Name: "Gamma", ConversationUUID: "c-gamma"},
}

func newTestProjects(t *testing.T, kv storage.KV) (*Projects, *recordingActivator) {
	t.Helper()
	activator := &recordingActivator{}
	s := NewProjects(kv, fakeProjectSource{projects: testProjects}, activator, nil)
	require.True(t, s.LoadCatalog(context.Background()))
	return s, activator
}

func TestProjects_ClosedByDefault(t *testing.T) {
	s, _ := newTestProjects(t, storage.NewMemory())

	for _, p := range testProjects {
		assert.False(t, s.IsEnabled(p.UUID), p.UUID)
	}
	assert.False(t, s.IsEnabled("anything"))
	assert.Empty(t, s.ActiveProjects())

	s.SetEnabled(map[string]bool{})
	assert.False(t, s.IsEnabled("p-alpha"), "an empty map enables nothing")

	s.SetEnabled(map[string]bool{"p-beta": true, "p-gamma": false})
	assert.True(t, s.IsEnabled("p-beta"))
	assert.False(t, s.IsEnabled("p-gamma"))
	assert.Equal(t, []Project{testProjects[1]}, s.ActiveProjects())
}

func TestProjects_SetActive(t *testing.T) {
	kv := storage.NewMemory()
	s, activator := newTestProjects(t, kv)
	ctx := context.Background()

	assert.True(t, s.SetActive(ctx, "p-beta", ""))
	assert.Equal(t, "p-beta", s.ActiveUUID())
	assert.Equal(t, "c-beta", s.ConversationUUID(), "catalog conversation is the default")
	assert.Equal(t, "p-beta", s.LastProject())

	assert.True(t, s.SetActive(ctx, "p-alpha", "c-other"))
	assert.Equal(t, "c-other", s.ConversationUUID())

	p, ok := s.Active()
	require.True(t, ok)
	assert.Equal(t, "Alpha", p.Name)

	assert.True(t, s.SetActive(ctx, NoProject, ""))
	assert.Empty(t, s.ActiveUUID())
	assert.Empty(t, s.ConversationUUID())
	assert.Equal(t, NoProject, s.LastProject())
	_, ok = s.Active()
	assert.False(t, ok)

	assert.Equal(t, []activation{
		{"p-beta", "c-beta"},
		{"p-alpha", "c-other"},
		{"", ""},
	}, activator.calls)
}

func TestProjects_SetActiveNotificationFailure(t *testing.T) {
	activator := &recordingActivator{err: errors.New("server down")}
	s := NewProjects(storage.NewMemory(), fakeProjectSource{projects: testProjects}, activator, nil)
	s.LoadCatalog(context.Background())

	assert.False(t, s.SetActive(context.Background(), "p-alpha", ""))
	assert.Equal(t, "p-alpha", s.ActiveUUID())
	assert.Equal(t, "p-alpha", s.LastProject())
}

func TestProjects_Initialize(t *testing.T) {
	tests := []struct {
		name     string
		enabled  map[string]bool
		last     string
		expected string
	}{
		{"nothing enabled", nil, "p-alpha", ""},
		{"never chosen", map[string]bool{"p-alpha": true}, "", ""},
		{"explicitly none", map[string]bool{"p-alpha": true}, NoProject, ""},
		{"last still enabled", map[string]bool{"p-alpha": true, "p-beta": true}, "p-beta", "p-beta"},
		{"last disabled since", map[string]bool{"p-alpha": true}, "p-beta", ""},
		{"last no longer listed", map[string]bool{"p-alpha": true, "p-gone": true}, "p-gone", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := storage.NewMemory()
			s, activator := newTestProjects(t, kv)
			if tt.enabled != nil {
				s.SetEnabled(tt.enabled)
			}
			if tt.last != "" {
				require.NoError(t, kv.Set(KeyLastProject, tt.last))
			}

			s.Initialize(context.Background())

			assert.Equal(t, tt.expected, s.ActiveUUID())
			if tt.expected == "" {
				assert.Empty(t, activator.calls, "initialize never picks another project")
				assert.Equal(t, tt.last, s.LastProject(), "last project is left alone")
				return
			}
			assert.Equal(t, []activation{{tt.expected, "c-beta"}}, activator.calls)
		})
	}
}

func TestProjects_InitializeCatalogFailure(t *testing.T) {
	kv := storage.NewMemory()
	s := NewProjects(kv, fakeProjectSource{err: errors.New("timeout")}, nil, nil)
	s.SetEnabled(map[string]bool{"p-alpha": true})
	require.NoError(t, kv.Set(KeyLastProject, "p-alpha"))

	s.Initialize(context.Background())

	assert.Empty(t, s.Catalog())
	assert.Empty(t, s.ActiveUUID())
}

func TestProjects_SaveSettings(t *testing.T) {
	ctx := context.Background()

	t.Run("activates the last project when newly enabled", func(t *testing.T) {
		kv := storage.NewMemory()
		require.NoError(t, kv.Set(KeyLastProject, "p-gamma"))
		s, _ := newTestProjects(t, kv)

		active := s.SaveSettings(ctx, map[string]bool{"p-alpha": true, "p-gamma": true})
		assert.Equal(t, "p-gamma", active)
		assert.Equal(t, "c-gamma", s.ConversationUUID())
	})

	t.Run("falls back to the first enabled in catalog order", func(t *testing.T) {
		kv := storage.NewMemory()
		require.NoError(t, kv.Set(KeyLastProject, NoProject))
		s, _ := newTestProjects(t, kv)

		active := s.SaveSettings(ctx, map[string]bool{"p-gamma": true, "p-beta": true})
		assert.Equal(t, "p-beta", active)
		assert.Equal(t, "p-beta", s.LastProject())
	})

	t.Run("keeps an active project that stays enabled", func(t *testing.T) {
		s, activator := newTestProjects(t, storage.NewMemory())
		s.SetEnabled(map[string]bool{"p-alpha": true})
		s.SetActive(ctx, "p-alpha", "")

		active := s.SaveSettings(ctx, map[string]bool{"p-alpha": true, "p-beta": true})
		assert.Equal(t, "p-alpha", active)
		assert.Len(t, activator.calls, 1)
	})

	t.Run("replaces an active project that was disabled", func(t *testing.T) {
		s, _ := newTestProjects(t, storage.NewMemory())
		s.SetEnabled(map[string]bool{"p-alpha": true, "p-beta": true})
		s.SetActive(ctx, "p-alpha", "")

		active := s.SaveSettings(ctx, map[string]bool{"p-beta": true, "p-gamma": true})
		assert.Equal(t, "p-beta", active)
	})

	t.Run("clears the selection when everything is disabled", func(t *testing.T) {
		s, activator := newTestProjects(t, storage.NewMemory())
		s.SetEnabled(map[string]bool{"p-alpha": true})
		s.SetActive(ctx, "p-alpha", "")

		active := s.SaveSettings(ctx, map[string]bool{})
		assert.Empty(t, active)
		assert.Equal(t, NoProject, s.LastProject())
		assert.Equal(t, activation{"", ""}, activator.calls[len(activator.calls)-1])
	})

	t.Run("nothing enabled and nothing active is a no-op", func(t *testing.T) {
		s, activator := newTestProjects(t, storage.NewMemory())

		assert.Empty(t, s.SaveSettings(ctx, nil))
		assert.Empty(t, activator.calls)
		assert.Empty(t, s.LastProject())
	})
}
