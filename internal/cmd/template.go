package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/chriscorrea/workbench/internal/prompt"
	"github.com/chriscorrea/workbench/internal/store"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// newTemplateCmd creates the template command tree
func newTemplateCmd() *cobra.Command {
	templateCmd := &cobra.Command{
		Use:     "template",
		Aliases: []string{"templates", "t"},
		Short:   "Browse, fill and manage prompt templates",
		Long: `Browse, fill and manage prompt templates.

Built-in templates come from the configured catalog (catalog.source); custom
templates are stored locally and replace a built-in with the same id.

Examples:
  workbench template list
  workbench template show explain_concept
  workbench template fill explain_concept --set concept="entropy"
  workbench template disable-all --except general_chat`,
	}

	templateCmd.AddCommand(
		newTemplateListCmd(),
		newTemplateShowCmd(),
		newTemplateFillCmd(),
		newTemplateAddCmd(),
		newTemplateDeleteCmd(),
		newTemplateFavoriteCmd(),
		newTemplateEnableCmd(true),
		newTemplateEnableCmd(false),
		newTemplateEnableAllCmd(),
		newTemplateDisableAllCmd(),
		newTemplateBackupCmd(),
		newTemplateRestoreCmd(),
	)
	return templateCmd
}

func newTemplateListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List templates grouped by category",
		Long: `List templates grouped by category.

Disabled templates are hidden unless --all is given. Favorites are marked
with a star.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			showAll, _ := cmd.Flags().GetBool("all")
			favoritesOnly, _ := cmd.Flags().GetBool("favorites")
			category, _ := cmd.Flags().GetString("category")
			asJSON, _ := cmd.Flags().GetBool("json")

			sess, err := openSession()
			if err != nil {
				return err
			}
			defer sess.Close()
			sess.loadTemplates(commandContext(cmd.Context()), cmd.ErrOrStderr())

			var entries []store.Entry
			for _, e := range sess.templates.List() {
				if !showAll && !e.IsEnabled {
					continue
				}
				if favoritesOnly && !e.IsFavorite {
					continue
				}
				if category != "" && sess.templates.Category(e.Category).ID != category {
					continue
				}
				entries = append(entries, e)
			}

			if asJSON {
				if entries == nil {
					entries = []store.Entry{}
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}

			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No templates found.")
				return nil
			}

			printTemplateList(cmd.OutOrStdout(), NewOutputStyle(cmd.OutOrStdout()), sess.templates, entries)
			return nil
		},
	}

	cmd.Flags().BoolP("all", "a", false, "Include disabled templates")
	cmd.Flags().BoolP("favorites", "f", false, "Only show favorites")
	cmd.Flags().StringP("category", "c", "", "Only show templates in this category id")
	cmd.Flags().Bool("json", false, "Print the templates as JSON")
	return cmd
}

// printTemplateList prints entries grouped by category in catalog order,
// unknown categories last under Other
func printTemplateList(out io.Writer, style *OutputStyle, templates *store.Templates, entries []store.Entry) {
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	sprint := style.sprinters()

	groups := make(map[string][]store.Entry)
	for _, e := range entries {
		id := templates.Category(e.Category).ID
		groups[id] = append(groups[id], e)
	}

	order := make([]prompt.Category, 0, len(templates.Categories())+1)
	order = append(order, templates.Categories()...)
	order = append(order, prompt.OtherCategory)

	for _, category := range order {
		items := groups[category.ID]
		if len(items) == 0 {
			continue
		}
		delete(groups, category.ID)

		fmt.Fprintf(w, "%s\n", sprint.group(fmt.Sprintf("▶ %s", category.Name)))
		for _, e := range items {
			marker := " "
			if e.IsFavorite {
				marker = "★"
			}

			var notes []string
			if e.IsCustom {
				notes = append(notes, "custom")
			}
			if !e.IsEnabled {
				notes = append(notes, "disabled")
			}
			if e.UseCount > 0 {
				notes = append(notes, fmt.Sprintf("used %d×", e.UseCount))
			}

			fmt.Fprintf(w, "  %s %s\t%s\t%s\n",
				sprint.alias(marker),
				sprint.key(e.ID),
				e.Name,
				sprint.value(strings.Join(notes, ", ")))
		}
		fmt.Fprintf(w, "\n")
	}

	w.Flush()
}

func newTemplateShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a template's body and fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession()
			if err != nil {
				return err
			}
			defer sess.Close()
			sess.loadTemplates(commandContext(cmd.Context()), cmd.ErrOrStderr())

			entry, ok := sess.templates.Get(args[0])
			if !ok {
				return fmt.Errorf("template %q: %w", args[0], store.ErrNotFound)
			}

			printTemplate(cmd.OutOrStdout(), NewOutputStyle(cmd.OutOrStdout()), sess.templates, entry)
			return nil
		},
	}
}

func printTemplate(out io.Writer, style *OutputStyle, templates *store.Templates, e store.Entry) {
	sprint := style.sprinters()
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)

	fmt.Fprintf(w, "%s\n", sprint.header(e.Name))
	if e.Description != "" {
		fmt.Fprintf(w, "%s\n", e.Description)
	}
	fmt.Fprintf(w, "\n%s:\t%s\n", sprint.key("ID"), sprint.value(e.ID))
	fmt.Fprintf(w, "%s:\t%s\n", sprint.key("Category"), sprint.value(templates.CategoryName(e.Category)))
	if len(e.Tags) > 0 {
		fmt.Fprintf(w, "%s:\t%s\n", sprint.key("Tags"), sprint.value(strings.Join(e.Tags, ", ")))
	}
	fmt.Fprintf(w, "%s:\t%s\n", sprint.key("Favorite"), sprint.value(yesNo(e.IsFavorite)))
	fmt.Fprintf(w, "%s:\t%s\n", sprint.key("Enabled"), sprint.value(yesNo(e.IsEnabled)))
	fmt.Fprintf(w, "%s:\t%s\n", sprint.key("Uses"), sprint.value(fmt.Sprintf("%d", e.UseCount)))

	if len(e.Fields) > 0 {
		fmt.Fprintf(w, "\n%s\n", sprint.group("▶ Fields"))
		for _, f := range e.Fields {
			required := "optional"
			if f.Required {
				required = "required"
			}
			detail := string(f.Type)
			if len(f.Options) > 0 {
				detail += ": " + strings.Join(f.Options, " | ")
			}
			fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n", sprint.key(f.Name), f.DisplayLabel(), required, sprint.value(detail))
		}
	}
	w.Flush()

	fmt.Fprintf(out, "\n%s\n%s\n", sprint.group("▶ Template"), e.Body)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func newTemplateAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Save a custom template from a YAML or JSON file",
		Long: `Save a custom template from a YAML or JSON file.

The file holds a single template with the same keys as the catalog:
id, name, description, category, tags, template and variables. A template
without an id gets a generated one; an existing id is replaced.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("file")

			t, err := readTemplateFile(path)
			if err != nil {
				return err
			}
			if err := prompt.ValidateTemplate(t); err != nil {
				return fmt.Errorf("invalid template: %w", err)
			}

			sess, err := openSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			saved := sess.templates.Save(t)
			fmt.Fprintf(cmd.OutOrStdout(), "Saved custom template %s (%s)\n", saved.ID, saved.Name)
			if !prompt.HasPlaceholders(saved.Body) {
				fmt.Fprintf(cmd.ErrOrStderr(), "Note: %s has no [placeholders]; fill will print it unchanged\n", saved.ID)
			}
			return nil
		},
	}

	cmd.Flags().StringP("file", "f", "", "Template file (YAML or JSON)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// readTemplateFile decodes one template; JSON is read as YAML
func readTemplateFile(path string) (prompt.Template, error) {
	var t prompt.Template

	data, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("failed to read template file: %w", err)
	}
	if err := yaml.Unmarshal(data, &t); err != nil {
		return t, fmt.Errorf("failed to parse template file %s: %w", path, err)
	}
	return t, nil
}

func newTemplateDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a custom template",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			id := args[0]
			if !containsTemplate(sess.templates.Customs(), id) {
				return fmt.Errorf("custom template %q: %w (built-in templates cannot be deleted)", id, store.ErrNotFound)
			}
			if !sess.templates.Delete(id) {
				return fmt.Errorf("failed to delete template %q", id)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Deleted custom template %s\n", id)
			return nil
		},
	}
}

func containsTemplate(templates []prompt.Template, id string) bool {
	for _, t := range templates {
		if t.ID == id {
			return true
		}
	}
	return false
}

func newTemplateFavoriteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "favorite <id>",
		Aliases: []string{"fav"},
		Short:   "Toggle a template's favorite flag",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession()
			if err != nil {
				return err
			}
			defer sess.Close()
			sess.loadTemplates(commandContext(cmd.Context()), cmd.ErrOrStderr())

			id := args[0]
			if _, ok := sess.templates.Get(id); !ok {
				return fmt.Errorf("template %q: %w", id, store.ErrNotFound)
			}

			if sess.templates.ToggleFavorite(id) {
				fmt.Fprintf(cmd.OutOrStdout(), "★ %s added to favorites\n", id)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s removed from favorites\n", id)
			}
			return nil
		},
	}
}

// newTemplateEnableCmd creates the enable or the disable command
func newTemplateEnableCmd(enable bool) *cobra.Command {
	use, short, verb := "enable <id>...", "Enable templates", "Enabled"
	if !enable {
		use, short, verb = "disable <id>...", "Disable templates", "Disabled"
	}

	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession()
			if err != nil {
				return err
			}
			defer sess.Close()
			sess.loadTemplates(commandContext(cmd.Context()), cmd.ErrOrStderr())

			flags := make(map[string]bool, len(args))
			for _, id := range args {
				if _, ok := sess.templates.Get(id); !ok {
					return fmt.Errorf("template %q: %w", id, store.ErrNotFound)
				}
				flags[id] = enable
			}
			sess.templates.SetEnabledBulk(flags)

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", verb, strings.Join(args, ", "))
			return nil
		},
	}
}

func newTemplateEnableAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "enable-all",
		Short: "Enable every template (clears the enabled-state configuration)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			sess.templates.EnableAll()
			fmt.Fprintln(cmd.OutOrStdout(), "All templates enabled")
			return nil
		},
	}
}

func newTemplateDisableAllCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "disable-all",
		Short: "Disable every template, optionally keeping some",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			keep, _ := cmd.Flags().GetStringSlice("except")

			sess, err := openSession()
			if err != nil {
				return err
			}
			defer sess.Close()
			sess.loadTemplates(commandContext(cmd.Context()), cmd.ErrOrStderr())

			sess.templates.DisableAllExcept(keep...)
			fmt.Fprintf(cmd.OutOrStdout(), "Disabled all templates; %d enabled\n", len(sess.templates.EnabledIDs()))
			return nil
		},
	}

	cmd.Flags().StringSlice("except", nil, "Template ids to keep enabled")
	return cmd
}

func newTemplateBackupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backup [dir]",
		Short: "Export templates and their settings to a JSON file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}

			sess, err := openSession()
			if err != nil {
				return err
			}
			defer sess.Close()
			sess.loadTemplates(commandContext(cmd.Context()), cmd.ErrOrStderr())

			backup := sess.templates.Backup(time.Now())
			path, err := store.WriteBackup(dir, backup)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Backed up %d templates (%d custom) to %s\n",
				len(backup.AllTemplates), len(backup.CustomTemplates), path)
			return nil
		},
	}
}

func newTemplateRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <file>",
		Short: "Re-import custom templates and settings from a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			backup, err := store.ReadBackup(args[0])
			if err != nil {
				return err
			}

			var invalid []string
			valid := backup.CustomTemplates[:0:0]
			for _, t := range backup.CustomTemplates {
				if err := prompt.ValidateTemplate(t); err != nil {
					invalid = append(invalid, fmt.Sprintf("%s (%v)", t.ID, err))
					continue
				}
				valid = append(valid, t)
			}
			backup.CustomTemplates = valid

			sess, err := openSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			restored := sess.templates.Restore(backup)
			fmt.Fprintf(cmd.OutOrStdout(), "Restored %d custom templates from %s\n", restored, args[0])
			for _, skipped := range invalid {
				fmt.Fprintf(cmd.ErrOrStderr(), "Skipped invalid template %s\n", skipped)
			}
			return nil
		},
	}
}
