package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/chriscorrea/workbench/internal/app"
	"github.com/chriscorrea/workbench/internal/prompt"
	"github.com/chriscorrea/workbench/internal/store"

	"github.com/AlecAivazis/survey/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFill_Print(t *testing.T) {
	_, srv := newChatServer(t)
	setupWorkbench(t, srv.URL, "server")

	tests := []struct {
		name           string
		args           []string
		expectedOut    string
		expectedStderr string
		errorContains  string
	}{
		{
			name:        "optional label line elided",
			args:        []string{"summarize", "--set", "text=the quarterly report"},
			expectedOut: "Summarize the quarterly report\n",
		},
		{
			name:        "optional filled",
			args:        []string{"summarize", "-s", "text=notes", "-s", "audience=execs"},
			expectedOut: "Summarize notes\nAudience: execs\n",
		},
		{
			name:        "value containing equals",
			args:        []string{"summarize", "--set", "text=a=b"},
			expectedOut: "Summarize a=b\n",
		},
		{
			name:           "missing required warns",
			args:           []string{"summarize"},
			expectedOut:    "Summarize [text]\n",
			expectedStderr: "missing required fields: text",
		},
		{
			name:        "undeclared placeholder",
			args:        []string{"mystery", "--set", "thing=magic"},
			expectedOut: "Just magic\n",
		},
		{
			name:          "unknown field",
			args:          []string{"summarize", "--set", "tone=dry"},
			errorContains: `has no field "tone"`,
		},
		{
			name:          "bad assignment",
			args:          []string{"summarize", "--set", "text"},
			errorContains: "expected name=value",
		},
		{
			name:          "unknown template",
			args:          []string{"nope"},
			errorContains: "not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, stderr, err := runCommand(t, newTemplateCmd(), append([]string{"fill"}, tt.args...)...)
			if tt.errorContains != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedOut, stdout)
			if tt.expectedStderr != "" {
				assert.Contains(t, stderr, tt.expectedStderr)
			}
		})
	}
}

func TestFill_DisabledTemplate(t *testing.T) {
	_, srv := newChatServer(t)
	setupWorkbench(t, srv.URL, "server")

	_, _, err := runCommand(t, newTemplateCmd(), "disable", "summarize")
	require.NoError(t, err)

	_, _, err = runCommand(t, newTemplateCmd(), "fill", "summarize", "--set", "text=x")
	assert.ErrorIs(t, err, app.ErrTemplateDisabled)
}

func TestFill_Stats(t *testing.T) {
	_, srv := newChatServer(t)
	setupWorkbench(t, srv.URL, "server")

	_, stderr, err := runCommand(t, newTemplateCmd(), "fill", "summarize", "--stats")
	require.NoError(t, err)
	for _, expected := range []string{"Template:", "summarize", "Est. Tokens:", "Missing Required:", "text"} {
		assert.Contains(t, stderr, expected)
	}
}

func TestFill_Send(t *testing.T) {
	cs, srv := newChatServer(t)
	dir := setupWorkbench(t, srv.URL, "server")

	notes := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(notes, []byte("line one\nline two\n"), 0644))

	stdout, _, err := runCommand(t, newTemplateCmd(), "fill", "summarize", "--set", "text=the notes", "--attach", notes, "--send")
	require.NoError(t, err)
	assert.Equal(t, "echo: Summarize the notes\n", stdout)

	chat := cs.lastChat()
	require.NotNil(t, chat)
	assert.Equal(t, "Summarize the notes", chat["message"])
	assert.NotContains(t, chat, "conversation_uuid", "no project is active")

	attachments, ok := chat["attachments"].([]interface{})
	require.True(t, ok)
	require.Len(t, attachments, 1)
	attachment := attachments[0].(map[string]interface{})
	assert.Equal(t, "notes.txt", attachment["name"])
	assert.Equal(t, "line one\nline two", attachment["content"])

	// a successful send counts as a use
	for _, e := range listEntries(t) {
		if e.ID == "summarize" {
			assert.Equal(t, 1, e.UseCount)
		}
	}
}

func TestFill_SendWithActiveProject(t *testing.T) {
	cs, srv := newChatServer(t)
	setupWorkbench(t, srv.URL, "server")

	_, _, err := runCommand(t, newProjectCmd(), "enable", "p-alpha")
	require.NoError(t, err)

	_, _, err = runCommand(t, newTemplateCmd(), "fill", "summarize", "--set", "text=status", "--send")
	require.NoError(t, err)

	chat := cs.lastChat()
	require.NotNil(t, chat)
	assert.Equal(t, "c-alpha", chat["conversation_uuid"])
}

func TestFill_SendInvalid(t *testing.T) {
	cs, srv := newChatServer(t)
	setupWorkbench(t, srv.URL, "server")

	_, stderr, err := runCommand(t, newTemplateCmd(), "fill", "summarize", "--send")
	var invalid *app.InvalidError
	require.ErrorAs(t, err, &invalid)
	assert.Contains(t, stderr, "Cannot send")
	assert.Contains(t, stderr, "Text: Text is required")
	assert.Nil(t, cs.lastChat())

	for _, e := range listEntries(t) {
		assert.Zero(t, e.UseCount)
	}
}

func TestFill_SendServerError(t *testing.T) {
	cs, srv := newChatServer(t)
	setupWorkbench(t, srv.URL, "server")
	cs.chatStatus = 500

	_, _, err := runCommand(t, newTemplateCmd(), "fill", "summarize", "--set", "text=x", "--send")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
	assert.Contains(t, err.Error(), "model overloaded")

	for _, e := range listEntries(t) {
		assert.Zero(t, e.UseCount, "failed sends are not counted")
	}
}

func TestFill_Interactive(t *testing.T) {
	_, srv := newChatServer(t)
	setupWorkbench(t, srv.URL, "server")
	stdinIsTerminal = func() bool { return true }

	asked := stubAskOne(t, map[string]interface{}{
		"language": "Go",
		"focus":    []string{"bugs", "speed"},
	})

	stdout, _, err := runCommand(t, newTemplateCmd(), "fill", "review")
	require.NoError(t, err)
	assert.Equal(t, "Review this Go code for bugs, speed\n", stdout)
	assert.Equal(t, []string{"language:", "focus (optional):"}, *asked)

	t.Run("fields given with --set are not asked", func(t *testing.T) {
		asked := stubAskOne(t, map[string]interface{}{"focus": []string{"style"}})

		stdout, _, err := runCommand(t, newTemplateCmd(), "fill", "review", "--set", "language=Rust")
		require.NoError(t, err)
		assert.Equal(t, "Review this Rust code for style\n", stdout)
		assert.Equal(t, []string{"focus (optional):"}, *asked)
	})

	t.Run("undeclared placeholders are asked", func(t *testing.T) {
		asked := stubAskOne(t, map[string]interface{}{"thing": "rabbits"})

		stdout, _, err := runCommand(t, newTemplateCmd(), "fill", "mystery")
		require.NoError(t, err)
		assert.Equal(t, "Just rabbits\n", stdout)
		assert.Equal(t, []string{"thing:"}, *asked)
	})
}

func TestAskField_OptionalSelect(t *testing.T) {
	stubAskOne(t, map[string]interface{}{"tone": skipOption})

	value, err := askField(prompt.Field{Name: "tone", Type: prompt.TypeSelect, Options: []string{"dry", "warm"}}, "")
	require.NoError(t, err)
	assert.Empty(t, value)
}

func TestFieldValidator(t *testing.T) {
	url := prompt.Field{Name: "link", Type: prompt.TypeURL, Required: true}
	choice := prompt.Field{Name: "tone", Type: prompt.TypeSelect, Required: true}
	multi := prompt.Field{Name: "tags", Type: prompt.TypeMultiselect, Required: true}

	tests := []struct {
		name    string
		field   prompt.Field
		answer  interface{}
		wantErr bool
	}{
		{"valid url", url, "https://go.dev", false},
		{"invalid url", url, "not a url", true},
		{"required text empty", url, "", true},
		{"select answer", choice, survey.OptionAnswer{Value: "dry"}, false},
		{"skip option counts as empty", choice, survey.OptionAnswer{Value: skipOption}, true},
		{"multiselect answer", multi, []survey.OptionAnswer{{Value: "a"}, {Value: "b"}}, false},
		{"multiselect nothing chosen", multi, []survey.OptionAnswer{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := fieldValidator(tt.field)(tt.answer)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseAssignments(t *testing.T) {
	values, err := parseAssignments([]string{"a=1", " b =two words", "c="})
	require.NoError(t, err)
	assert.Equal(t, prompt.Values{"a": "1", "b": "two words", "c": ""}, values)

	_, err = parseAssignments([]string{"=x"})
	assert.Error(t, err)
}

func TestResolveSnippet(t *testing.T) {
	list := []string{"Be concise.", "Use bullet points."}

	got, err := resolveSnippet(list, "2")
	require.NoError(t, err)
	assert.Equal(t, "Use bullet points.", got)

	got, err = resolveSnippet(list, "Be concise.")
	require.NoError(t, err)
	assert.Equal(t, "Be concise.", got)

	_, err = resolveSnippet(list, "3")
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = resolveSnippet(list, "Nope")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
