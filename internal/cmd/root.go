package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/chriscorrea/workbench/internal/app"
	"github.com/chriscorrea/workbench/internal/config"
	"github.com/chriscorrea/workbench/internal/logger"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// current version (hardcoded for now, could be replaced with build flags)
const version = "0.1.0"

// rootCmdState holds the config manager and logger for the command
type rootCmdState struct {
	manager *config.Manager
	logger  *slog.Logger
	verbose bool
}

// state is the global state instance for the root command
var state = &rootCmdState{}

// expandHomePath expands ~ to the user's home directory
func expandHomePath(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	if len(path) == 1 {
		return home, nil
	}

	return filepath.Join(home, path[1:]), nil
}

// isTerminal reports whether f is attached to a terminal
func isTerminal(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "workbench",
	Version: version,
	Short:   "Fill prompt templates and send them to a chat backend",
	Long: `Workbench manages a catalog of prompt templates: pick one, fill in its fields,
preview the compiled prompt and send it to your chat server or straight to an LLM.

Favorites, usage counts, enabled templates, projects and snippets are kept in
local state (a JSON file by default; SQLite or Redis optionally).`,
	SilenceUsage: true, // Don't show usage after errors

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// get the debug flag value and create logger
		debug, err := cmd.Flags().GetBool("debug")
		if err != nil {
			return fmt.Errorf("failed to get debug flag: %w", err)
		}
		state.logger = logger.New(debug)

		state.verbose, err = cmd.Flags().GetBool("verbose")
		if err != nil {
			return fmt.Errorf("failed to get verbose flag: %w", err)
		}

		// no colors when output is piped
		if !isTerminal(os.Stdout) {
			color.NoColor = true
		}

		// instantiate the config manager with logger
		state.manager = config.NewManager().WithLogger(state.logger)

		configPath, err := cmd.Flags().GetString("config")
		if err != nil {
			return fmt.Errorf("failed to get config flag: %w", err)
		}
		if configPath == "" {
			configPath = config.DefaultPath
		}

		configPath, err = expandHomePath(configPath)
		if err != nil {
			return fmt.Errorf("failed to expand home path: %w", err)
		}

		if err := state.manager.Load(configPath); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		// the configured level applies once the config is known
		state.logger, err = logger.FromConfig(debug, state.manager.Config().Log.Level)
		if err != nil {
			return err
		}
		state.manager.WithLogger(state.logger)

		return nil
	},
}

// Execute runs the root command and exits with the code matching its error
// this is called by main.main() – it only needs to happen once to the rootCmd
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(app.ExitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to the config file (default ~/.workbench/config.toml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Display dispatch parameters and prompt statistics")
	rootCmd.PersistentFlags().BoolP("debug", "D", false, "Enable detailed debug logging")

	rootCmd.AddCommand(newTemplateCmd())
	rootCmd.AddCommand(newProjectCmd())
	rootCmd.AddCommand(newSnippetCmd())
	rootCmd.AddCommand(createVersionCommand())
}

// createVersionCommand creates the version subcommand
func createVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display the current version of workbench.",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprint(cmd.OutOrStdout(), "workbench version ", version, "\n")
			return nil
		},
	}
}
