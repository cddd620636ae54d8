package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/chriscorrea/workbench/internal/registry"

	"github.com/spf13/cobra"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage workbench configuration",
	Long: `Manage workbench configuration settings. This command provides subcommands
to view and modify configuration values.

Examples:
  workbench config                         # Show current configuration status
  workbench config list                    # Show every alias and its value
  workbench config set backend=sqlite      # Set a configuration value

      workbench config set server=http://localhost:5000
      workbench config set dispatch.provider=anthropic
      workbench config set temperature=0.7
  `,
	RunE: func(cmd *cobra.Command, args []string) error {
		if state.manager == nil {
			return fmt.Errorf("config manager not initialized")
		}
		cfg := state.manager.Config()
		sprint := NewOutputStyle(cmd.OutOrStdout()).sprinters()

		fmt.Fprintln(cmd.OutOrStdout(), "Configuration loaded successfully")

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		if file := state.manager.Viper().ConfigFileUsed(); file != "" {
			fmt.Fprintf(w, "%s:\t%s\n", sprint.key("Config file"), sprint.value(file))
		}

		storage := cfg.Storage.Backend
		switch storage {
		case "file", "sqlite":
			storage = fmt.Sprintf("%s (%s)", storage, cfg.StoragePath())
		case "redis":
			storage = fmt.Sprintf("%s (%s db %d)", storage, cfg.Storage.RedisAddr, cfg.Storage.RedisDB)
		}
		fmt.Fprintf(w, "%s:\t%s\n", sprint.key("Storage"), sprint.value(storage))
		fmt.Fprintf(w, "%s:\t%s\n", sprint.key("Catalog"), sprint.value(cfg.Catalog.Source))
		fmt.Fprintf(w, "%s:\t%s\n", sprint.key("Server"), sprint.value(cfg.Server.URL))

		name := cfg.Dispatch.Provider
		if name == "" {
			name = registry.ServerProvider
		}
		provider := name
		if name != registry.ServerProvider {
			provider = fmt.Sprintf("%s (%s)", name, cfg.Dispatch.Model)
		}
		fmt.Fprintf(w, "%s:\t%s\n", sprint.key("Provider"), sprint.value(provider))
		if registry.ProviderRequiresAPIKey(name) && cfg.Providers.Anthropic.APIKey == "" {
			fmt.Fprintf(w, "%s:\t%s\n", sprint.key("API key"), sprint.value("<not set>"))
		}

		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
