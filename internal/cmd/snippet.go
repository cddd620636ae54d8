package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/chriscorrea/workbench/internal/store"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
)

// newSnippetCmd creates the snippet command tree
func newSnippetCmd() *cobra.Command {
	snippetCmd := &cobra.Command{
		Use:     "snippet",
		Aliases: []string{"snippets", "sn"},
		Short:   "Manage reusable text snippets",
		Long: `Manage reusable text snippets.

Snippets are short fragments ("Be concise.") kept in a fixed order. Commands
that take a snippet accept either its number from 'snippet list' or its text.`,
	}

	snippetCmd.AddCommand(
		newSnippetListCmd(),
		newSnippetAddCmd(),
		newSnippetEditCmd(),
		newSnippetRemoveCmd(),
		newSnippetMoveCmd(true),
		newSnippetMoveCmd(false),
		newSnippetResetCmd(),
	)
	return snippetCmd
}

// resolveSnippet maps a 1-based number or the literal text to a stored snippet
func resolveSnippet(snippets []string, arg string) (string, error) {
	if n, err := strconv.Atoi(arg); err == nil {
		if n < 1 || n > len(snippets) {
			return "", fmt.Errorf("snippet %d %w (have %d)", n, store.ErrNotFound, len(snippets))
		}
		return snippets[n-1], nil
	}
	for _, s := range snippets {
		if s == arg {
			return s, nil
		}
	}
	return "", fmt.Errorf("snippet %q %w", arg, store.ErrNotFound)
}

func newSnippetListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List snippets in order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			sprint := NewOutputStyle(cmd.OutOrStdout()).sprinters()
			for i, s := range sess.snippets.List() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", sprint.key(fmt.Sprintf("%2d.", i+1)), s)
			}
			return nil
		},
	}
}

func newSnippetAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <text>...",
		Short: "Append a snippet",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			text := strings.Join(args, " ")
			if err := sess.snippets.Add(text); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added snippet %d\n", len(sess.snippets.List()))
			return nil
		},
	}
}

func newSnippetEditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit <n|text> <new text>...",
		Short: "Replace a snippet, keeping its position",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			old, err := resolveSnippet(sess.snippets.List(), args[0])
			if err != nil {
				return err
			}
			if err := sess.snippets.Update(old, strings.Join(args[1:], " ")); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Snippet updated")
			return nil
		},
	}
}

func newSnippetRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <n|text>",
		Aliases: []string{"delete"},
		Short:   "Remove a snippet",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			text, err := resolveSnippet(sess.snippets.List(), args[0])
			if err != nil {
				return err
			}
			if err := sess.snippets.Delete(text); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %q\n", text)
			return nil
		},
	}
}

// newSnippetMoveCmd creates the up or the down command
func newSnippetMoveCmd(up bool) *cobra.Command {
	use, short := "up <n|text>", "Move a snippet one place up"
	if !up {
		use, short = "down <n|text>", "Move a snippet one place down"
	}

	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			text, err := resolveSnippet(sess.snippets.List(), args[0])
			if err != nil {
				return err
			}

			var moved bool
			if up {
				moved = sess.snippets.MoveUp(text)
			} else {
				moved = sess.snippets.MoveDown(text)
			}
			if !moved {
				fmt.Fprintf(cmd.OutOrStdout(), "%q is already at the edge\n", text)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Moved %q\n", text)
			return nil
		},
	}
}

func newSnippetResetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Replace all snippets with the defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			yes, _ := cmd.Flags().GetBool("yes")
			if !yes && stdinIsTerminal() {
				confirmed := false
				if err := askOne(&survey.Confirm{
					Message: "Replace all snippets with the defaults?",
				}, &confirmed); err != nil {
					return fmt.Errorf("survey error: %w", err)
				}
				if !confirmed {
					return nil
				}
			}

			sess, err := openSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			sess.snippets.Reset()
			fmt.Fprintf(cmd.OutOrStdout(), "Restored %d default snippets\n", len(store.DefaultSnippets))
			return nil
		},
	}

	cmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
	return cmd
}
