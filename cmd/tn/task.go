package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/amonks/tasknotes/internal/editor"
	"github.com/amonks/tasknotes/internal/listflags"
	"github.com/amonks/tasknotes/internal/palette"
	"github.com/amonks/tasknotes/internal/ui"
	"github.com/amonks/tasknotes/task"
	"github.com/spf13/cobra"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks",
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	Args:  cobra.NoArgs,
	RunE:  runTaskList,
}

var taskAddCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Add a task",
	Long: `Add a task.

When stdin is a terminal and no task flags are given, $EDITOR opens on a
template. Pass -d - to read the description from stdin.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTaskAdd,
}

var taskShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskShow,
}

var taskEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskEdit,
}

var taskDeleteCmd = &cobra.Command{
	Use:     "delete <id>...",
	Aliases: []string{"rm"},
	Short:   "Delete tasks",
	Args:    cobra.MinimumNArgs(1),
	RunE:    runTaskDelete,
}

var taskToggleCmd = &cobra.Command{
	Use:   "toggle <id>...",
	Short: "Toggle task completion",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTaskToggle,
}

var (
	taskListJSON      bool
	taskListPending   bool
	taskListCompleted bool

	taskAddDescription string
	taskAddDue         string
	taskAddPriority    string
	taskAddColor       string
	taskAddEdit        bool
	taskAddNoEdit      bool

	taskShowJSON bool

	taskEditTitle       string
	taskEditDescription string
	taskEditDue         string
	taskEditPriority    string
	taskEditColor       string
	taskEditClearColor  bool
	taskEditEdit        bool
	taskEditNoEdit      bool

	taskDeleteYes bool
)

func init() {
	rootCmd.AddCommand(taskCmd)
	taskCmd.AddCommand(taskListCmd, taskAddCmd, taskShowCmd, taskEditCmd, taskDeleteCmd, taskToggleCmd)

	listflags.AddJSONFlag(taskListCmd, &taskListJSON)
	listflags.AddCompletionFlags(taskListCmd, &taskListPending, &taskListCompleted)

	addDescriptionFlagAliases(taskAddCmd, taskEditCmd)

	taskAddCmd.Flags().StringVarP(&taskAddDescription, "description", "d", "", "Task description (use '-' to read from stdin)")
	taskAddCmd.Flags().StringVar(&taskAddDue, "due", "", "Due date (YYYY-MM-DD)")
	taskAddCmd.Flags().StringVarP(&taskAddPriority, "priority", "p", string(task.DefaultPriority), "Priority (low, medium, high)")
	taskAddCmd.Flags().StringVar(&taskAddColor, "color", "", "Task color (#rrggbb)")
	taskAddCmd.Flags().BoolVarP(&taskAddEdit, "edit", "e", false, "Open $EDITOR (default if interactive and no task flags)")
	taskAddCmd.Flags().BoolVar(&taskAddNoEdit, "no-edit", false, "Do not open $EDITOR")

	listflags.AddJSONFlag(taskShowCmd, &taskShowJSON)

	taskEditCmd.Flags().StringVar(&taskEditTitle, "title", "", "New title")
	taskEditCmd.Flags().StringVarP(&taskEditDescription, "description", "d", "", "New description (use '-' to read from stdin)")
	taskEditCmd.Flags().StringVar(&taskEditDue, "due", "", "New due date (YYYY-MM-DD, empty to clear)")
	taskEditCmd.Flags().StringVarP(&taskEditPriority, "priority", "p", "", "New priority (low, medium, high)")
	taskEditCmd.Flags().StringVar(&taskEditColor, "color", "", "New color (#rrggbb)")
	taskEditCmd.Flags().BoolVar(&taskEditClearColor, "clear-color", false, "Remove the color")
	taskEditCmd.Flags().BoolVarP(&taskEditEdit, "edit", "e", false, "Open $EDITOR (default if interactive and no update flags)")
	taskEditCmd.Flags().BoolVar(&taskEditNoEdit, "no-edit", false, "Do not open $EDITOR")

	taskDeleteCmd.Flags().BoolVarP(&taskDeleteYes, "yes", "y", false, "Do not ask for confirmation")
}

// filterTasks keeps open tasks, completed tasks, or all of them.
func filterTasks(tasks []task.Task, pending, completed bool) []task.Task {
	if !pending && !completed {
		return tasks
	}
	filtered := make([]task.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Completed == completed {
			filtered = append(filtered, t)
		}
	}
	return filtered
}

func taskListFilter(pending, completed bool) string {
	switch {
	case pending:
		return "pending"
	case completed:
		return "completed"
	default:
		return ""
	}
}

func runTaskList(cmd *cobra.Command, args []string) error {
	return runWithApp(cmd, func(ctx context.Context, a *app) error {
		store, err := a.openTasks(ctx)
		if err != nil {
			return err
		}
		all := store.Tasks()
		tasks := filterTasks(all, taskListPending, taskListCompleted)

		if taskListJSON {
			if tasks == nil {
				tasks = []task.Task{}
			}
			return writeJSON(a.stdout, tasks)
		}

		if len(tasks) == 0 {
			fmt.Fprintln(a.stdout, taskEmptyListMessage(len(all), taskListFilter(taskListPending, taskListCompleted)))
			return nil
		}
		fmt.Fprint(a.stdout, formatTaskTable(a, tasks, store.IDIndex().PrefixLengths()))
		return nil
	})
}

// taskColumns lays out task list. The unlabeled columns hold the
// checkbox and the color swatch.
var taskColumns = []ui.Column{
	{Header: ""},
	{Header: "ID"},
	{Header: "PRIORITY"},
	{Header: ""},
	{Header: "TITLE", MaxWidth: ui.TitleWidth},
	{Header: "DUE"},
}

func formatTaskTable(a *app, tasks []task.Task, prefixLengths map[string]int) string {
	now := a.now()
	builder := ui.NewTableBuilder(taskColumns, len(tasks))
	for _, t := range tasks {
		prefixLen := ui.PrefixLength(prefixLengths, t.ID)
		builder.AddRow(
			a.styles.Checkbox(t.Completed),
			ui.HighlightID(ui.ShortID(t.ID, 8), prefixLen),
			a.styles.Priority(t.Priority),
			a.styles.Swatch(t.DisplayColor()),
			t.Title,
			formatTaskDue(a, t, now),
		)
	}
	return builder.String()
}

func formatTaskDue(a *app, t task.Task, now time.Time) string {
	if t.DueDate == nil {
		return "-"
	}
	due := a.formatDate(*t.DueDate)
	if t.IsOverdue(now) {
		return a.styles.Overdue(due + " (overdue)")
	}
	return due
}

func runTaskAdd(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("description") {
		desc, err := resolveFromStdin("description", taskAddDescription, os.Stdin)
		if err != nil {
			return err
		}
		taskAddDescription = desc
	}

	hasFlags := len(args) > 0 || hasChangedFlags(cmd, "description", "due", "priority", "color")
	useEditor := taskAddEdit || (!taskAddNoEdit && !hasFlags && editor.IsInteractive())

	t := task.Task{Description: taskAddDescription}
	if len(args) > 0 {
		t.Title = strings.TrimSpace(args[0])
	}
	priority, err := task.ParsePriority(taskAddPriority)
	if err != nil {
		return err
	}
	t.Priority = priority
	due, err := task.ParseDueDate(taskAddDue)
	if err != nil {
		return err
	}
	t.DueDate = due
	if cmd.Flags().Changed("color") {
		color, err := palette.Parse(taskAddColor)
		if err != nil {
			return err
		}
		t.Color = &color
	}

	if useEditor {
		data := editor.DataFromTask(t)
		data.IsUpdate = false
		parsed, err := editor.EditTask(data)
		if err != nil {
			return err
		}
		t = parsed.Apply(t)
	}

	if err := task.Validate(t); err != nil {
		return err
	}

	return runWithApp(cmd, func(ctx context.Context, a *app) error {
		store, err := a.openTasks(ctx)
		if err != nil {
			return err
		}
		t.Timestamp = a.now()
		created := store.Upsert(t)
		prefixLen := store.IDIndex().PrefixLength(created.ID)
		fmt.Fprintf(a.stdout, "Created task %s: %s\n", ui.HighlightID(created.ID, prefixLen), created.Title)
		return nil
	})
}

func runTaskShow(cmd *cobra.Command, args []string) error {
	return runWithApp(cmd, func(ctx context.Context, a *app) error {
		store, err := a.openTasks(ctx)
		if err != nil {
			return err
		}
		t, err := store.Resolve(args[0])
		if err != nil {
			return lookupError(err)
		}

		if taskShowJSON {
			return writeJSON(a.stdout, t)
		}
		fmt.Fprint(a.stdout, formatTaskDetail(a, t, terminalWidth()))
		return nil
	})
}

func formatTaskDetail(a *app, t task.Task, width int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s\n", a.styles.Checkbox(t.Completed), a.styles.Swatch(t.DisplayColor()), a.styles.Title(t.Title))
	fmt.Fprintf(&b, "%s\n", a.styles.Muted(t.ID+"  "+a.formatDate(t.Timestamp)))
	fmt.Fprintf(&b, "Priority: %s\n", a.styles.Priority(t.Priority))
	fmt.Fprintf(&b, "Due:      %s\n", formatTaskDue(a, t, a.now()))
	if strings.TrimSpace(t.Description) != "" {
		b.WriteString("\n")
		b.WriteString(ui.Wrap(t.Description, width, 2))
		b.WriteString("\n")
	}
	return b.String()
}

func runTaskEdit(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("description") {
		desc, err := resolveFromStdin("description", taskEditDescription, os.Stdin)
		if err != nil {
			return err
		}
		taskEditDescription = desc
	}
	if taskEditClearColor && cmd.Flags().Changed("color") {
		return fmt.Errorf("--color and --clear-color cannot be combined")
	}

	hasFlags := hasChangedFlags(cmd, "title", "description", "due", "priority", "color", "clear-color")
	useEditor := shouldUseEditor(hasFlags, taskEditEdit, taskEditNoEdit, editor.IsInteractive())
	if !hasFlags && !useEditor {
		return fmt.Errorf("nothing to change: pass --title, --description, --due, --priority, --color, --clear-color or --edit")
	}

	return runWithApp(cmd, func(ctx context.Context, a *app) error {
		store, err := a.openTasks(ctx)
		if err != nil {
			return err
		}
		t, err := store.Resolve(args[0])
		if err != nil {
			return lookupError(err)
		}

		if cmd.Flags().Changed("title") {
			t.Title = strings.TrimSpace(taskEditTitle)
		}
		if cmd.Flags().Changed("description") {
			t.Description = taskEditDescription
		}
		if cmd.Flags().Changed("due") {
			due, err := task.ParseDueDate(taskEditDue)
			if err != nil {
				return err
			}
			t.DueDate = due
		}
		if cmd.Flags().Changed("priority") {
			priority, err := task.ParsePriority(taskEditPriority)
			if err != nil {
				return err
			}
			t.Priority = priority
		}
		if cmd.Flags().Changed("color") {
			color, err := palette.Parse(taskEditColor)
			if err != nil {
				return err
			}
			t.Color = &color
		}
		if taskEditClearColor {
			t.Color = nil
		}

		if useEditor {
			parsed, err := editor.EditTask(editor.DataFromTask(t))
			if err != nil {
				return err
			}
			t = parsed.Apply(t)
		}

		if err := task.Validate(t); err != nil {
			return err
		}
		t.Timestamp = a.now()
		updated := store.Upsert(t)
		fmt.Fprintf(a.stdout, "Updated task %s: %s\n", ui.HighlightID(updated.ID, store.IDIndex().PrefixLength(updated.ID)), updated.Title)
		return nil
	})
}

func runTaskDelete(cmd *cobra.Command, args []string) error {
	return runWithApp(cmd, func(ctx context.Context, a *app) error {
		store, err := a.openTasks(ctx)
		if err != nil {
			return err
		}

		targets := make([]task.Task, 0, len(args))
		for _, arg := range args {
			t, err := store.Resolve(arg)
			if err != nil {
				return lookupError(err)
			}
			targets = append(targets, t)
		}

		prompter := StdioPrompter{In: os.Stdin, Out: a.stdout}
		for _, t := range targets {
			ok, err := confirmDelete(prompter, taskDeleteYes, fmt.Sprintf("Delete task %q?", t.Title))
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintf(a.stdout, "Kept task %s\n", ui.ShortID(t.ID, 8))
				continue
			}
			store.Delete(t.ID)
			fmt.Fprintf(a.stdout, "Deleted task %s: %s\n", ui.ShortID(t.ID, 8), t.Title)
		}
		return nil
	})
}

func runTaskToggle(cmd *cobra.Command, args []string) error {
	return runWithApp(cmd, func(ctx context.Context, a *app) error {
		store, err := a.openTasks(ctx)
		if err != nil {
			return err
		}

		for _, arg := range args {
			t, err := store.Resolve(arg)
			if err != nil {
				return lookupError(err)
			}
			store.ToggleCompletion(t.ID)

			verb := "Reopened"
			if toggled, ok := store.Get(t.ID); ok && toggled.Completed {
				verb = "Completed"
			}
			fmt.Fprintf(a.stdout, "%s task %s: %s\n", verb, ui.ShortID(t.ID, 8), t.Title)
		}
		return nil
	})
}
