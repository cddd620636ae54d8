package verbose

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/chriscorrea/workbench/internal/config"
	"github.com/chriscorrea/workbench/internal/prompt"

	"github.com/fatih/color"
)

// OutputConfig contains parameters for verbose output formatting
type OutputConfig struct {
	Writer       io.Writer
	KeyColor     *color.Color
	ValueColor   *color.Color
	WarnColor    *color.Color
	EnableColors bool
}

// DefaultOutputConfig returns a default configuration for verbose output
func DefaultOutputConfig(writer io.Writer) *OutputConfig {
	return &OutputConfig{
		Writer:       writer,
		KeyColor:     color.New(color.FgCyan, color.Bold),
		ValueColor:   color.New(color.FgMagenta),
		WarnColor:    color.New(color.FgYellow, color.Bold),
		EnableColors: true,
	}
}

type param struct {
	Key   string
	Value string
}

// PrintPreviewStats displays the size of a compiled prompt and what is still unfilled
func PrintPreviewStats(t prompt.Template, p prompt.Preview, outputCfg *OutputConfig) {
	if outputCfg == nil {
		outputCfg = DefaultOutputConfig(os.Stderr)
	}

	w := tabwriter.NewWriter(outputCfg.Writer, 0, 0, 3, ' ', 0)

	params := []param{
		{Key: "Template", Value: t.ID},
		{Key: "Fields", Value: fmt.Sprintf("%d", len(t.Fields))},
		{Key: "Characters", Value: fmt.Sprintf("%d", p.CharacterCount)},
		{Key: "Est. Tokens", Value: fmt.Sprintf("~%d", p.EstimatedTokens)},
	}
	printPairs(w, outputCfg, params)

	if len(p.MissingRequired) > 0 {
		printWarning(w, outputCfg, "Missing Required", strings.Join(p.MissingRequired, ", "))
	} else if p.HasUnfilled {
		printRow(w, outputCfg, "Unfilled", strings.Join(p.Unfilled, ", "), "", "")
	}

	fmt.Fprintf(w, "\n")
	w.Flush()
}

// PrintDispatchParameters displays where a prompt is about to be sent
func PrintDispatchParameters(cfg *config.Config, conversation string, outputCfg *OutputConfig) {
	if outputCfg == nil {
		outputCfg = DefaultOutputConfig(os.Stderr)
	}

	w := tabwriter.NewWriter(outputCfg.Writer, 0, 0, 3, ' ', 0)

	provider := cfg.Dispatch.Provider
	if provider == "" {
		provider = "server"
	}

	var params []param
	if strings.EqualFold(provider, "server") {
		params = []param{
			{Key: "Provider", Value: provider},
			{Key: "Server", Value: cfg.Server.URL},
		}
		if conversation != "" {
			params = append(params, param{Key: "Conversation", Value: conversation})
		}
	} else {
		params = []param{
			{Key: "Provider", Value: provider},
			{Key: "Model", Value: cfg.Dispatch.Model},
			{Key: "Temperature", Value: fmt.Sprintf("%.2f", cfg.Dispatch.Temperature)},
			{Key: "Max Output Tokens", Value: fmt.Sprintf("%d", cfg.Dispatch.MaxTokens)},
		}
	}
	printPairs(w, outputCfg, params)

	if sysPrompt := cfg.Dispatch.SystemPrompt; sysPrompt != "" && !strings.EqualFold(provider, "server") {
		if len(sysPrompt) > 65 {
			sysPrompt = sysPrompt[:62] + "..."
		}
		printRow(w, outputCfg, "System Prompt", sysPrompt, "", "")
	}

	fmt.Fprintf(w, "\n")
	w.Flush()
}

// printPairs prints params two to a row
func printPairs(w io.Writer, outputCfg *OutputConfig, params []param) {
	for i := 0; i < len(params); i += 2 {
		p1 := params[i]
		if (i + 1) < len(params) {
			p2 := params[i+1]
			printRow(w, outputCfg, p1.Key, p1.Value, p2.Key, p2.Value)
		} else {
			printRow(w, outputCfg, p1.Key, p1.Value, "", "")
		}
	}
}

func printWarning(w io.Writer, outputCfg *OutputConfig, key, value string) {
	sprint := outputCfg.WarnColor.SprintFunc()
	if !outputCfg.EnableColors {
		sprint = fmt.Sprint
	}
	fmt.Fprintf(w, "%s:\t%s\n", sprint(key), sprint(value))
}

// printRow prints a multi-column row for one or two key-value pairs
// and handles color formatting and alignment via tabwriter
func printRow(w io.Writer, outputCfg *OutputConfig, key1, value1, key2, value2 string) {
	keySprint := outputCfg.KeyColor.SprintFunc()
	valueSprint := outputCfg.ValueColor.SprintFunc()

	if !outputCfg.EnableColors {
		keySprint = fmt.Sprint
		valueSprint = fmt.Sprint
	}

	if key2 != "" {
		fmt.Fprintf(w, "%s:\t%s\t%s:\t%s\n",
			keySprint(key1),
			valueSprint(value1),
			keySprint(key2),
			valueSprint(value2),
		)
	} else {
		fmt.Fprintf(w, "%s:\t%s\n",
			keySprint(key1),
			valueSprint(value1),
		)
	}
}
