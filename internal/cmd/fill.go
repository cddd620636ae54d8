package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/chriscorrea/workbench/internal/app"
	wbio "github.com/chriscorrea/workbench/internal/io"
	"github.com/chriscorrea/workbench/internal/llm/common"
	"github.com/chriscorrea/workbench/internal/prompt"
	"github.com/chriscorrea/workbench/internal/store"
	"github.com/chriscorrea/workbench/internal/verbose"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// skipOption stands for "no value" in the select prompt of an optional field
const skipOption = "(none)"

// seams for tests
var (
	stdinIsTerminal = func() bool { return isTerminal(os.Stdin) }
	attachmentStdin = func() *os.File { return os.Stdin }
)

func newTemplateFillCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fill <id>",
		Short: "Fill a template's fields and print or send the compiled prompt",
		Long: `Fill a template's fields and print the compiled prompt.

Values given with --set are used as-is; on a terminal, the remaining fields
are asked for interactively. Optional fields left empty are elided from the
prompt. With --send the prompt is dispatched to the configured provider
together with any --attach files and piped stdin.

Examples:
  workbench template fill explain_concept --set concept="eventual consistency"
  workbench template fill code_review --attach main.go --send
  git diff | workbench template fill code_review --send`,
		Args: cobra.ExactArgs(1),
		RunE: runFill,
	}

	cmd.Flags().StringArrayP("set", "s", nil, "Field value as name=value (repeatable)")
	cmd.Flags().StringArrayP("attach", "a", nil, "File to send as an attachment (repeatable)")
	cmd.Flags().Bool("send", false, "Dispatch the compiled prompt")
	cmd.Flags().Bool("stats", false, "Print prompt statistics to stderr")
	return cmd
}

func runFill(cmd *cobra.Command, args []string) error {
	sets, _ := cmd.Flags().GetStringArray("set")
	files, _ := cmd.Flags().GetStringArray("attach")
	send, _ := cmd.Flags().GetBool("send")
	stats, _ := cmd.Flags().GetBool("stats")

	given, err := parseAssignments(sets)
	if err != nil {
		return err
	}

	ctx := commandContext(cmd.Context())
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()

	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	var dispatcher common.Dispatcher
	var projects *store.Projects
	if send {
		if dispatcher, err = sess.dispatcher(); err != nil {
			return err
		}
		// the active project pairs the prompt with its conversation
		if sess.usesServer() {
			projects = sess.projects
		}
	}

	wb := app.New(sess.templates, projects, dispatcher, sess.logger)
	if !wb.Start(ctx) {
		sess.warnCatalog(stderr)
	}

	t, err := wb.Select(args[0])
	if err != nil {
		return err
	}

	for _, name := range sortedKeys(given) {
		if err := wb.Set(name, given[name]); err != nil {
			return err
		}
	}

	if stdinIsTerminal() {
		if err := collectValues(wb, t, given); err != nil {
			return err
		}
	}

	preview, err := wb.Preview()
	if err != nil {
		return err
	}

	if stats || state.verbose {
		outCfg := verbose.DefaultOutputConfig(stderr)
		outCfg.EnableColors = !color.NoColor
		verbose.PrintPreviewStats(t, preview, outCfg)
	}

	if !send {
		if len(preview.MissingRequired) > 0 {
			fmt.Fprintf(stderr, "%s missing required fields: %s\n",
				color.YellowString("Warning:"), strings.Join(preview.MissingRequired, ", "))
		}
		fmt.Fprintln(stdout, preview.Compiled)
		return nil
	}

	attachments, err := wbio.ReadAttachments(attachmentStdin(), files)
	if err != nil {
		return err
	}

	if state.verbose {
		outCfg := verbose.DefaultOutputConfig(stderr)
		outCfg.EnableColors = !color.NoColor
		verbose.PrintDispatchParameters(sess.cfg, sess.server.Conversation(), outCfg)
	}

	stop := func() {}
	if isTerminal(os.Stderr) {
		stop = app.StartSpinner(ctx, stderr, sess.cfg.Dispatch.Provider, "Sending")
	}
	reply, err := wb.Submit(ctx, attachments)
	stop()

	if err != nil {
		var invalid *app.InvalidError
		if errors.As(err, &invalid) {
			printInvalid(stderr, t, invalid.Result)
		}
		return err
	}

	fmt.Fprintln(stdout, reply.Text)
	return nil
}

// parseAssignments splits name=value pairs; the value may itself contain '='
func parseAssignments(pairs []string) (prompt.Values, error) {
	values := prompt.Values{}
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --set %q: expected name=value", pair)
		}
		values[name] = value
	}
	return values, nil
}

// collectValues asks for every field not given on the command line, then
// for placeholders without a field definition
func collectValues(wb *app.Workbench, t prompt.Template, given prompt.Values) error {
	current := wb.Values()

	for _, f := range t.Fields {
		if _, ok := given[f.Name]; ok {
			continue
		}
		value, err := askField(f, current[f.Name])
		if err != nil {
			return err
		}
		if err := wb.Set(f.Name, value); err != nil {
			return err
		}
	}

	for _, name := range prompt.Extract(t.Body) {
		if _, declared := t.Field(name); declared {
			continue
		}
		if _, ok := given[name]; ok {
			continue
		}
		value, err := askField(prompt.Field{Name: name, Type: prompt.TypeText, Required: true}, current[name])
		if err != nil {
			return err
		}
		if err := wb.Set(name, value); err != nil {
			return err
		}
	}

	return nil
}

// askField prompts for one field with the survey widget matching its type
func askField(f prompt.Field, current string) (string, error) {
	message := f.DisplayLabel()
	if !f.Required {
		message += " (optional)"
	}
	message += ":"

	help := f.HelpText
	if help == "" && f.Placeholder != "" {
		help = "e.g. " + f.Placeholder
	}
	validate := survey.WithValidator(fieldValidator(f))

	var value string
	switch f.Type {
	case prompt.TypeSelect:
		options := f.Options
		if !f.Required {
			options = append([]string{skipOption}, options...)
		}
		q := &survey.Select{Message: message, Options: options, Help: help}
		if containsString(options, current) {
			q.Default = current
		}
		if err := askOne(q, &value, validate); err != nil {
			return "", fmt.Errorf("survey error: %w", err)
		}
		if value == skipOption {
			value = ""
		}

	case prompt.TypeMultiselect:
		var choices []string
		q := &survey.MultiSelect{Message: message, Options: f.Options, Help: help}
		var selected []string
		for _, choice := range prompt.SplitSelections(current) {
			if containsString(f.Options, choice) {
				selected = append(selected, choice)
			}
		}
		if len(selected) > 0 {
			q.Default = selected
		}
		if err := askOne(q, &choices, validate); err != nil {
			return "", fmt.Errorf("survey error: %w", err)
		}
		value = prompt.JoinSelections(choices)

	case prompt.TypeTextarea:
		q := &survey.Multiline{Message: message, Default: current, Help: help}
		if err := askOne(q, &value, validate); err != nil {
			return "", fmt.Errorf("survey error: %w", err)
		}

	default:
		q := &survey.Input{Message: message, Default: current, Help: help}
		if err := askOne(q, &value, validate); err != nil {
			return "", fmt.Errorf("survey error: %w", err)
		}
	}

	return value, nil
}

// fieldValidator adapts prompt.Validate to the answers survey hands back
func fieldValidator(f prompt.Field) survey.Validator {
	return func(ans interface{}) error {
		var value string
		switch a := ans.(type) {
		case string:
			value = a
		case survey.OptionAnswer:
			if a.Value != skipOption {
				value = a.Value
			}
		case []survey.OptionAnswer:
			choices := make([]string, 0, len(a))
			for _, o := range a {
				choices = append(choices, o.Value)
			}
			value = prompt.JoinSelections(choices)
		}
		return prompt.Validate(f, value)
	}
}

// printInvalid lists validation messages in field order
func printInvalid(w io.Writer, t prompt.Template, result prompt.Result) {
	fmt.Fprintln(w, color.RedString("Cannot send, fix these fields first:"))
	for _, f := range t.Fields {
		if msg, ok := result.Errors[f.Name]; ok {
			fmt.Fprintf(w, "  %s: %s\n", f.DisplayLabel(), msg)
		}
	}
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func sortedKeys(values prompt.Values) []string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
