package cmd

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/chriscorrea/workbench/internal/config"

	"github.com/spf13/cobra"
)

// setCmd represents the set command
var setCmd = &cobra.Command{
	Use:   "set <key>=<value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value in the config file.

The key should be in dot notation format (e.g., dispatch.temperature),
but short aliases are also supported:
  backend        → storage.backend
  server         → server.url
  anthropic-key  → providers.anthropic.api_key

Examples:
  workbench config set storage.backend=sqlite
  workbench config set dispatch.system_prompt="You are helpful"
  workbench config set catalog.source=server
  workbench config set provider=anthropic
  workbench config set anthropic-key=sk-ant-65433210`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		argument := args[0]
		parts := strings.SplitN(argument, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid format: expected key=value, got %q", argument)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if key == "" {
			return fmt.Errorf("key cannot be empty")
		}

		schema := config.DefaultConfigSchema()

		// aliases resolve to their canonical path
		canonicalKey, err := schema.ResolveKey(key)
		if err != nil {
			return err
		}

		fieldInfo, err := schema.GetFieldInfo(canonicalKey)
		if err != nil {
			return err
		}

		convertedValue, err := convertValueToType(value, fieldInfo.Type)
		if err != nil {
			return fmt.Errorf("failed to convert value %q for key %q: %w", value, canonicalKey, err)
		}

		if err := schema.ValidateValue(canonicalKey, convertedValue); err != nil {
			return fmt.Errorf("validation failed for key %q: %w", canonicalKey, err)
		}

		manager := state.manager
		if manager == nil {
			return fmt.Errorf("config manager not initialized")
		}
		viper := manager.Viper()

		viper.Set(canonicalKey, convertedValue)

		if err := manager.Save(); err != nil {
			return fmt.Errorf("failed to save configuration: %w", err)
		}

		if key != canonicalKey {
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration updated: %s (%s) = %v\n", key, canonicalKey, convertedValue)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration updated: %s = %v\n", canonicalKey, convertedValue)
		}

		return nil
	},
}

// convertValueToType converts a string value to the specified type
func convertValueToType(value string, targetType reflect.Type) (interface{}, error) {
	// quoted values are unquoted; a failed unquote keeps the raw value
	if len(value) >= 2 && (value[0] == '"' || value[0] == '\'' || value[0] == '`') {
		if unquoted, err := strconv.Unquote(value); err == nil {
			value = unquoted
		}
	}

	switch targetType.Kind() {
	case reflect.String:
		return value, nil

	case reflect.Bool:
		return strconv.ParseBool(strings.ToLower(value))

	case reflect.Int:
		intVal, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, err
		}
		return int(intVal), nil

	case reflect.Float64:
		return strconv.ParseFloat(value, 64)

	default:
		return nil, fmt.Errorf("unsupported type: %s", targetType.String())
	}
}

func init() {
	configCmd.AddCommand(setCmd)
}
