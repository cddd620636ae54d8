package cmd

import (
	"fmt"
	"strings"

	"github.com/chriscorrea/workbench/internal/config"

	"github.com/spf13/cobra"
)

var describeConfigCmd = &cobra.Command{
	Use:   "describe <key>",
	Short: "Show detailed information about a configuration key",
	Long: `Show the type, description and current value of a configuration key.

The key can be either a canonical path or a convenience alias.

Examples:
  workbench config describe backend
  workbench config describe storage.redis_addr`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if state.manager == nil {
			return fmt.Errorf("configuration not loaded")
		}

		key := args[0]
		schema := config.DefaultConfigSchema()

		canonicalKey, err := schema.ResolveKey(key)
		if err != nil {
			return err
		}
		fieldInfo, err := schema.GetFieldInfo(canonicalKey)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Configuration Key: %s\n", canonicalKey)
		if key != canonicalKey {
			fmt.Fprintf(out, "Alias: %s\n", key)
		}
		fmt.Fprintf(out, "Type: %s\n", fieldInfo.Type.String())
		fmt.Fprintf(out, "Description: %s\n", fieldInfo.Description)
		fmt.Fprintf(out, "Current Value: %s\n", maskSensitiveValue(canonicalKey, getConfigValue(canonicalKey), 80))

		var others []string
		for _, alias := range schema.AliasesFor(canonicalKey) {
			if alias != key {
				others = append(others, alias)
			}
		}
		if len(others) > 0 {
			fmt.Fprintf(out, "\nAliases: %s\n", strings.Join(others, ", "))
		}

		return nil
	},
}

func init() {
	configCmd.AddCommand(describeConfigCmd)
}
