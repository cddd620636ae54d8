package cmd

import (
	"fmt"

	"github.com/chriscorrea/workbench/internal/config"
	"github.com/chriscorrea/workbench/internal/registry"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// askOne is the survey prompt used by interactive commands; tests replace it
var askOne = func(p survey.Prompt, response interface{}, opts ...survey.AskOpt) error {
	return survey.AskOne(p, response, opts...)
}

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize workbench config through an interactive process",
	Long: `Initialize your workbench configuration:
• Choose where favorites, projects and snippets are stored
• Point workbench at your chat server
• Pick where compiled prompts are sent
• Store an Anthropic API key for direct dispatch

Your configuration will be saved to ~/.workbench/config.toml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if state.manager == nil {
			return fmt.Errorf("config manager not initialized")
		}

		cyan := color.New(color.FgCyan).SprintFunc()
		magenta := color.New(color.FgMagenta).SprintFunc()
		green := color.New(color.FgGreen).SprintFunc()

		fmt.Fprintf(cmd.ErrOrStderr(), "\n%s\n", cyan("Welcome to workbench"))
		fmt.Fprintf(cmd.ErrOrStderr(), "\n%s\n", "Let's get you set up; this will only take a minute!")

		if err := runInitSurvey(state.manager); err != nil {
			return err
		}

		if err := state.manager.Save(); err != nil {
			return fmt.Errorf("failed to save configuration: %w", err)
		}

		configPath := state.manager.Viper().ConfigFileUsed()
		if configPath == "" {
			configPath = config.DefaultPath
		}

		fmt.Fprintf(cmd.ErrOrStderr(), "\n%s All set! Your configuration has been saved to %s\n",
			green("✔"), magenta(configPath))
		fmt.Fprintf(cmd.ErrOrStderr(), "\nBrowse templates with: %s\n", magenta("workbench template list"))
		fmt.Fprintf(cmd.ErrOrStderr(), "For more options, run: %s\n\n", magenta("workbench --help"))

		return nil
	},
}

// runInitSurvey asks for each setting and stages the answers in viper
func runInitSurvey(manager *config.Manager) error {
	v := manager.Viper()
	cfg := manager.Config()

	var backend string
	if err := askOne(&survey.Select{
		Message: "Where should local state be stored?",
		Options: config.StorageBackends,
		Default: cfg.Storage.Backend,
		Help:    "file keeps a JSON document, sqlite a single database file, redis a shared server",
	}, &backend); err != nil {
		return fmt.Errorf("survey error: %w", err)
	}
	v.Set("storage.backend", backend)

	if backend == "redis" {
		var addr string
		if err := askOne(&survey.Input{
			Message: "Redis address:",
			Default: cfg.Storage.RedisAddr,
		}, &addr, survey.WithValidator(survey.Required)); err != nil {
			return fmt.Errorf("survey error: %w", err)
		}
		v.Set("storage.redis_addr", addr)
	}

	var serverURL string
	if err := askOne(&survey.Input{
		Message: "Chat server URL:",
		Default: cfg.Server.URL,
		Help:    "Projects, server-side templates and chat dispatch use this server",
	}, &serverURL, survey.WithValidator(survey.Required)); err != nil {
		return fmt.Errorf("survey error: %w", err)
	}
	v.Set("server.url", serverURL)

	var source string
	if err := askOne(&survey.Select{
		Message: "Where should built-in templates come from?",
		Options: config.CatalogSources,
		Default: cfg.Catalog.Source,
	}, &source); err != nil {
		return fmt.Errorf("survey error: %w", err)
	}
	v.Set("catalog.source", source)

	provider := cfg.Dispatch.Provider
	if provider == "" {
		provider = registry.ServerProvider
	}
	if err := askOne(&survey.Select{
		Message: "Send compiled prompts to:",
		Options: registry.GetAvailableProviders(),
		Default: provider,
		Help:    "server posts to the chat server; anthropic calls the Messages API directly",
	}, &provider); err != nil {
		return fmt.Errorf("survey error: %w", err)
	}
	v.Set("dispatch.provider", provider)

	if !registry.ProviderRequiresAPIKey(provider) {
		return nil
	}

	var apiKey string
	if err := askOne(&survey.Password{
		Message: "Enter your Anthropic API key:",
	}, &apiKey); err != nil {
		return fmt.Errorf("survey error: %w", err)
	}
	if apiKey != "" {
		v.Set("providers.anthropic.api_key", apiKey)
	}

	var model string
	if err := askOne(&survey.Input{
		Message: "Model:",
		Default: cfg.Dispatch.Model,
	}, &model, survey.WithValidator(survey.Required)); err != nil {
		return fmt.Errorf("survey error: %w", err)
	}
	v.Set("dispatch.model", model)

	return nil
}

func init() {
	rootCmd.AddCommand(initCmd)
}
