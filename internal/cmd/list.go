package cmd

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/chriscorrea/workbench/internal/config"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// ConfigDisplayInfo holds information for displaying config item
type ConfigDisplayInfo struct {
	Key         string
	Value       string
	Description string
	IsAlias     bool
	Target      string // the canonical path an alias points to
}

// OutputStyle contains color configuration for list output
type OutputStyle struct {
	Writer       io.Writer
	KeyColor     *color.Color
	ValueColor   *color.Color
	HeaderColor  *color.Color
	GroupColor   *color.Color
	AliasColor   *color.Color
	EnableColors bool
}

// NewOutputStyle creates new output style configuration
func NewOutputStyle(writer io.Writer) *OutputStyle {
	return &OutputStyle{
		Writer:       writer,
		KeyColor:     color.New(color.FgCyan, color.Bold),
		ValueColor:   color.New(color.FgMagenta),
		HeaderColor:  color.New(color.FgYellow, color.Bold, color.Underline),
		GroupColor:   color.New(color.FgGreen, color.Bold),
		AliasColor:   color.New(color.FgBlue),
		EnableColors: true,
	}
}

type styleSprinters struct {
	key, value, header, group, alias func(a ...interface{}) string
}

// sprinters returns the style's sprint funcs, plain when colors are off
func (s *OutputStyle) sprinters() styleSprinters {
	if !s.EnableColors {
		return styleSprinters{fmt.Sprint, fmt.Sprint, fmt.Sprint, fmt.Sprint, fmt.Sprint}
	}
	return styleSprinters{
		key:    s.KeyColor.SprintFunc(),
		value:  s.ValueColor.SprintFunc(),
		header: s.HeaderColor.SprintFunc(),
		group:  s.GroupColor.SprintFunc(),
		alias:  s.AliasColor.SprintFunc(),
	}
}

// configGroups orders the sections of config list; each maps to a top-level table
var configGroups = []struct {
	Name   string
	Prefix string
}{
	{"Storage", "storage."},
	{"Catalog", "catalog."},
	{"Server", "server."},
	{"Dispatch", "dispatch."},
	{"Providers", "providers."},
	{"Log", "log."},
}

// groupFor returns the section name for a canonical path
func groupFor(canonicalPath string) string {
	for _, g := range configGroups {
		if strings.HasPrefix(canonicalPath, g.Prefix) {
			return g.Name
		}
	}
	return "Other"
}

// listConfigCmd represents the config list cmd
var listConfigCmd = &cobra.Command{
	Use:   "list",
	Short: "List configuration values",
	Long: `List configuration values.

By default, shows the short aliases accepted by 'workbench config set'.
Use --canonical to see every configuration key.

Examples:
  workbench config list              # Show aliases view (default)
  workbench config list --canonical  # Show canonical configuration paths`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if state.manager == nil {
			return fmt.Errorf("config manager not initialized")
		}
		schema := config.DefaultConfigSchema()

		showCanonical, _ := cmd.Flags().GetBool("canonical")

		style := NewOutputStyle(cmd.OutOrStdout())
		if showCanonical {
			return displayCanonicalView(schema, style)
		}
		return displayAliasesView(schema, style)
	},
}

// displayAliasesView shows the aliases grouped by the section they point into
func displayAliasesView(schema *config.ConfigSchema, style *OutputStyle) error {
	groups := make(map[string][]ConfigDisplayInfo)

	aliases := schema.ListAliases()
	sort.Strings(aliases)

	for _, alias := range aliases {
		canonicalPath := schema.Aliases[alias]
		fieldInfo, err := schema.GetFieldInfo(canonicalPath)
		if err != nil {
			continue
		}

		group := groupFor(canonicalPath)
		groups[group] = append(groups[group], ConfigDisplayInfo{
			Key:         alias,
			Value:       maskSensitiveValue(alias, getConfigValue(canonicalPath), 25),
			Description: fieldInfo.Description,
			IsAlias:     true,
			Target:      canonicalPath,
		})
	}

	return printGroups(style, groups, true)
}

// displayCanonicalView shows the complete config structure
func displayCanonicalView(schema *config.ConfigSchema, style *OutputStyle) error {
	groups := make(map[string][]ConfigDisplayInfo)

	canonicalKeys := schema.ListCanonicalKeys()
	sort.Strings(canonicalKeys)

	for _, key := range canonicalKeys {
		fieldInfo, err := schema.GetFieldInfo(key)
		if err != nil {
			continue
		}

		group := groupFor(key)
		groups[group] = append(groups[group], ConfigDisplayInfo{
			Key:         key,
			Value:       maskSensitiveValue(key, getConfigValue(key), 40),
			Description: fieldInfo.Description,
		})
	}

	return printGroups(style, groups, false)
}

func printGroups(style *OutputStyle, groups map[string][]ConfigDisplayInfo, withDescription bool) error {
	w := tabwriter.NewWriter(style.Writer, 0, 0, 3, ' ', 0)

	order := make([]string, 0, len(configGroups)+1)
	for _, g := range configGroups {
		order = append(order, g.Name)
	}
	order = append(order, "Other")

	for _, groupName := range order {
		items := groups[groupName]
		if len(items) == 0 {
			continue
		}

		printSectionHeader(w, style, groupName, withDescription)
		for _, item := range items {
			printConfigRow(w, style, item, withDescription)
		}
		fmt.Fprintf(w, "\n")
	}

	return w.Flush()
}

// printSectionHeader prints a section header for grouped config items
func printSectionHeader(w io.Writer, style *OutputStyle, groupName string, withDescription bool) {
	sprint := style.sprinters()

	fmt.Fprintf(w, "%s\n", sprint.group(fmt.Sprintf("▶ %s", groupName)))
	if !withDescription {
		fmt.Fprintf(w, "%s\t%s\n", sprint.key("Key"), sprint.value("Value"))
		fmt.Fprintf(w, "%s\t%s\n", sprint.key(strings.Repeat("-", 30)), sprint.value(strings.Repeat("-", 40)))
		return
	}

	fmt.Fprintf(w, "%s\t%s\t%s\n",
		sprint.key("Key"),
		sprint.value("Value"),
		"Description") // plain text due to formatting/spacing issue
	fmt.Fprintf(w, "%s\t%s\t%s\n",
		sprint.key(strings.Repeat("-", 20)),
		sprint.value(strings.Repeat("-", 15)),
		strings.Repeat("-", 40))
}

// printConfigRow prints a single configuration row
func printConfigRow(w io.Writer, style *OutputStyle, item ConfigDisplayInfo, withDescription bool) {
	sprint := style.sprinters()

	if !withDescription {
		fmt.Fprintf(w, "%s\t%s\n", sprint.key(item.Key), sprint.value(item.Value))
		return
	}

	description := item.Description
	if len(description) > 50 {
		description = description[:47] + "..."
	}

	fmt.Fprintf(w, "%s\t%s\t%s\n",
		sprint.key(item.Key),
		sprint.value(item.Value),
		description)
}

// getConfigValue retrieves the current value for a configuration key using Viper
func getConfigValue(canonicalPath string) string {
	value := state.manager.Viper().Get(canonicalPath)

	if value == nil {
		return "<not set>"
	}
	if str, ok := value.(string); ok && str == "" {
		return "<not set>"
	}

	return fmt.Sprintf("%v", value)
}

// maskSensitiveValue masks API keys and truncates values longer than limit
func maskSensitiveValue(key, value string, limit int) string {
	if value == "<not set>" || value == "" {
		return "<not set>"
	}

	keyLower := strings.ToLower(key)
	if strings.Contains(keyLower, "api") || strings.Contains(keyLower, "key") {
		if len(value) <= 5 {
			return strings.Repeat("*", len(value))
		}
		return value[:5] + "..."
	}

	if len(value) > limit {
		return value[:limit-3] + "..."
	}
	return value
}

func init() {
	configCmd.AddCommand(listConfigCmd)
	listConfigCmd.Flags().Bool("aliases", false, "Show aliases view (default behavior)")
	listConfigCmd.Flags().Bool("canonical", false, "Show canonical configuration paths")
	listConfigCmd.MarkFlagsMutuallyExclusive("aliases", "canonical")
}
