package cmd

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runDescribe(t *testing.T, key string) (string, error) {
	t.Helper()
	cmd := &cobra.Command{}
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	err := describeConfigCmd.RunE(cmd, []string{key})
	return stdout.String(), err
}

func TestDescribeCommand(t *testing.T) {
	manager := useManager(t, filepath.Join(t.TempDir(), "config.toml"))
	manager.Viper().Set("storage.backend", "sqlite")
	manager.Viper().Set("providers.anthropic.api_key", "sk-ant-secret-value")

	tests := []struct {
		name       string
		key        string
		expected   []string
		unexpected []string
	}{
		{
			name: "canonical key",
			key:  "storage.backend",
			expected: []string{
				"Configuration Key: storage.backend",
				"Type: string",
				"Description: Where templates, projects and snippets are kept",
				"Current Value: sqlite",
				"Aliases: backend",
			},
			unexpected: []string{"Alias: "},
		},
		{
			name: "alias",
			key:  "temp",
			expected: []string{
				"Configuration Key: dispatch.temperature",
				"Alias: temp",
				"Type: float64",
				"Aliases: temperature",
			},
		},
		{
			name:       "masked secret",
			key:        "anthropic-key",
			expected:   []string{"Current Value: sk-an..."},
			unexpected: []string{"secret-value"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := runDescribe(t, tt.key)
			require.NoError(t, err)
			for _, expected := range tt.expected {
				assert.Contains(t, output, expected)
			}
			for _, unexpected := range tt.unexpected {
				assert.NotContains(t, output, unexpected)
			}
		})
	}

	t.Run("unknown key", func(t *testing.T) {
		_, err := runDescribe(t, "nonsense")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid config key")
	})
}

func TestDescribeCommand_NoManager(t *testing.T) {
	original := state
	state = &rootCmdState{}
	defer func() { state = original }()

	_, err := runDescribe(t, "backend")
	assert.Error(t, err)
}
