package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/chriscorrea/workbench/internal/store"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// newProjectCmd creates the project command tree
func newProjectCmd() *cobra.Command {
	projectCmd := &cobra.Command{
		Use:     "project",
		Aliases: []string{"projects", "p"},
		Short:   "Choose which chat-server projects are available and active",
		Long: `Choose which chat-server projects are available and active.

Projects come from the chat server. None is enabled until you enable it; the
active project (and its conversation) is sent along with every prompt
dispatched to the server.`,
	}

	projectCmd.AddCommand(
		newProjectListCmd(),
		newProjectEnableCmd(true),
		newProjectEnableCmd(false),
		newProjectUseCmd(),
		newProjectStatusCmd(),
	)
	return projectCmd
}

// loadProjects fetches the project catalog and warns when it is unavailable
func (s *session) loadProjects(ctx context.Context, w io.Writer) bool {
	if s.projects.LoadCatalog(ctx) {
		return true
	}
	fmt.Fprintf(w, "%s project list unavailable from %s\n", color.YellowString("Warning:"), s.cfg.Server.URL)
	return false
}

func newProjectListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List projects with their enabled state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			if !sess.loadProjects(commandContext(cmd.Context()), cmd.ErrOrStderr()) {
				return nil
			}

			catalog := sess.projects.Catalog()
			if len(catalog) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No projects found.")
				return nil
			}

			sprint := NewOutputStyle(cmd.OutOrStdout()).sprinters()
			last := sess.projects.LastProject()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
			for _, p := range catalog {
				mark := " "
				if sess.projects.IsEnabled(p.UUID) {
					mark = "✔"
				}
				note := ""
				if p.UUID == last {
					note = "last used"
				}
				fmt.Fprintf(w, "%s %s\t%s\t%s\n", sprint.alias(mark), sprint.key(p.Name), p.UUID, sprint.value(note))
			}
			return w.Flush()
		},
	}
}

// newProjectEnableCmd creates the enable or the disable command
func newProjectEnableCmd(enable bool) *cobra.Command {
	use, short := "enable <uuid>...", "Make projects available for selection"
	if !enable {
		use, short = "disable <uuid>...", "Hide projects from selection"
	}

	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd.Context())

			sess, err := openSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			sess.projects.Initialize(ctx)
			if len(sess.projects.Catalog()) == 0 {
				return fmt.Errorf("no projects available from %s", sess.cfg.Server.URL)
			}

			enabled := sess.projects.Enabled()
			for _, uuid := range args {
				if _, ok := sess.projects.Find(uuid); !ok {
					return fmt.Errorf("project %q: %w", uuid, store.ErrNotFound)
				}
				enabled[uuid] = enable
			}

			active := sess.projects.SaveSettings(ctx, enabled)
			fmt.Fprintf(cmd.OutOrStdout(), "Enabled projects: %d\n", len(sess.projects.ActiveProjects()))
			printActiveProject(cmd.OutOrStdout(), sess.projects, active)
			return nil
		},
	}
}

func newProjectUseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "use [uuid|none]",
		Short: "Set the active project",
		Long: `Set the active project; "none" clears it.

Without an argument on a terminal, pick from the enabled projects.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd.Context())

			sess, err := openSession()
			if err != nil {
				return err
			}
			defer sess.Close()
			sess.loadProjects(ctx, cmd.ErrOrStderr())

			var uuid string
			if len(args) == 1 {
				uuid = args[0]
			} else {
				if !stdinIsTerminal() {
					return fmt.Errorf("project uuid required")
				}
				if uuid, err = pickProject(sess.projects); err != nil {
					return err
				}
			}

			if uuid != store.NoProject && !sess.projects.IsEnabled(uuid) {
				return fmt.Errorf("project %q is not enabled; run 'workbench project enable %s' first", uuid, uuid)
			}

			if !sess.projects.SetActive(ctx, uuid, "") {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s chat server did not confirm the change\n", color.YellowString("Warning:"))
			}
			printActiveProject(cmd.OutOrStdout(), sess.projects, sess.projects.ActiveUUID())
			return nil
		},
	}
}

// pickProject asks for one of the enabled projects or none
func pickProject(projects *store.Projects) (string, error) {
	active := projects.ActiveProjects()
	if len(active) == 0 {
		return "", fmt.Errorf("no enabled projects")
	}

	options := []string{store.NoProject}
	byOption := map[string]string{store.NoProject: store.NoProject}
	for _, p := range active {
		option := fmt.Sprintf("%s (%s)", p.Name, p.UUID)
		options = append(options, option)
		byOption[option] = p.UUID
	}

	var choice string
	if err := askOne(&survey.Select{Message: "Active project:", Options: options}, &choice); err != nil {
		return "", fmt.Errorf("survey error: %w", err)
	}
	return byOption[choice], nil
}

func newProjectStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the active project and conversation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			sess.projects.Initialize(commandContext(cmd.Context()))

			sprint := NewOutputStyle(cmd.OutOrStdout()).sprinters()
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)

			fmt.Fprintf(w, "%s:\t%s\n", sprint.key("Server"), sprint.value(sess.cfg.Server.URL))
			fmt.Fprintf(w, "%s:\t%s\n", sprint.key("Projects"),
				sprint.value(fmt.Sprintf("%d enabled of %d", len(sess.projects.ActiveProjects()), len(sess.projects.Catalog()))))

			if p, ok := sess.projects.Active(); ok {
				name := p.Name
				if name == "" {
					name = p.UUID
				}
				fmt.Fprintf(w, "%s:\t%s\n", sprint.key("Active"), sprint.value(name))
				fmt.Fprintf(w, "%s:\t%s\n", sprint.key("Conversation"), sprint.value(orNone(sess.projects.ConversationUUID())))
			} else {
				fmt.Fprintf(w, "%s:\t%s\n", sprint.key("Active"), sprint.value(store.NoProject))
			}
			return w.Flush()
		},
	}
}

func printActiveProject(w io.Writer, projects *store.Projects, active string) {
	if active == "" {
		fmt.Fprintln(w, "Active project: none")
		return
	}
	name := active
	if p, ok := projects.Find(active); ok && strings.TrimSpace(p.Name) != "" {
		name = fmt.Sprintf("%s (%s)", p.Name, p.UUID)
	}
	fmt.Fprintf(w, "Active project: %s\n", name)
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
