package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/amonks/tasknotes/internal/editor"
	"github.com/amonks/tasknotes/internal/listflags"
	"github.com/amonks/tasknotes/internal/palette"
	"github.com/amonks/tasknotes/internal/ui"
	"github.com/amonks/tasknotes/note"
	"github.com/spf13/cobra"
)

var noteCmd = &cobra.Command{
	Use:   "note",
	Short: "Manage notes",
}

var noteListCmd = &cobra.Command{
	Use:   "list",
	Short: "List notes",
	Args:  cobra.NoArgs,
	RunE:  runNoteList,
}

var noteAddCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Add a note",
	Long: `Add a note.

When stdin is a terminal and no content flags are given, $EDITOR opens on a
template. Pass -c - to read the content from stdin.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runNoteAdd,
}

var noteShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a note",
	Args:  cobra.ExactArgs(1),
	RunE:  runNoteShow,
}

var noteEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a note",
	Args:  cobra.ExactArgs(1),
	RunE:  runNoteEdit,
}

var noteDeleteCmd = &cobra.Command{
	Use:     "delete <id>...",
	Aliases: []string{"rm"},
	Short:   "Delete notes",
	Args:    cobra.MinimumNArgs(1),
	RunE:    runNoteDelete,
}

var (
	noteListJSON bool

	noteAddContent string
	noteAddColor   string
	noteAddEdit    bool
	noteAddNoEdit  bool

	noteShowJSON bool

	noteEditTitle      string
	noteEditContent    string
	noteEditColor      string
	noteEditClearColor bool
	noteEditEdit       bool
	noteEditNoEdit     bool

	noteDeleteYes bool
)

func init() {
	rootCmd.AddCommand(noteCmd)
	noteCmd.AddCommand(noteListCmd, noteAddCmd, noteShowCmd, noteEditCmd, noteDeleteCmd)

	listflags.AddJSONFlag(noteListCmd, &noteListJSON)

	addContentFlagAliases(noteAddCmd, noteEditCmd)

	noteAddCmd.Flags().StringVarP(&noteAddContent, "content", "c", "", "Note content (use '-' to read from stdin)")
	noteAddCmd.Flags().StringVar(&noteAddColor, "color", "", "Note color (#rrggbb)")
	noteAddCmd.Flags().BoolVarP(&noteAddEdit, "edit", "e", false, "Open $EDITOR (default if interactive and no content flags)")
	noteAddCmd.Flags().BoolVar(&noteAddNoEdit, "no-edit", false, "Do not open $EDITOR")

	listflags.AddJSONFlag(noteShowCmd, &noteShowJSON)

	noteEditCmd.Flags().StringVar(&noteEditTitle, "title", "", "New title")
	noteEditCmd.Flags().StringVarP(&noteEditContent, "content", "c", "", "New content (use '-' to read from stdin)")
	noteEditCmd.Flags().StringVar(&noteEditColor, "color", "", "New color (#rrggbb)")
	noteEditCmd.Flags().BoolVar(&noteEditClearColor, "clear-color", false, "Remove the color")
	noteEditCmd.Flags().BoolVarP(&noteEditEdit, "edit", "e", false, "Open $EDITOR (default if interactive and no update flags)")
	noteEditCmd.Flags().BoolVar(&noteEditNoEdit, "no-edit", false, "Do not open $EDITOR")

	noteDeleteCmd.Flags().BoolVarP(&noteDeleteYes, "yes", "y", false, "Do not ask for confirmation")
}

func runNoteList(cmd *cobra.Command, args []string) error {
	return runWithApp(cmd, func(ctx context.Context, a *app) error {
		store, err := a.openNotes(ctx)
		if err != nil {
			return err
		}
		notes := store.Notes()

		if noteListJSON {
			if notes == nil {
				notes = []note.Note{}
			}
			return writeJSON(a.stdout, notes)
		}

		if len(notes) == 0 {
			fmt.Fprintln(a.stdout, noteEmptyListMessage())
			return nil
		}
		fmt.Fprint(a.stdout, formatNoteTable(a, notes, store.IDIndex().PrefixLengths()))
		return nil
	})
}

// noteColumns lays out note list.
var noteColumns = []ui.Column{
	{Header: "ID"},
	{Header: "TITLE", MaxWidth: ui.TitleWidth},
	{Header: "DATE"},
	{Header: "COLOR"},
}

func formatNoteTable(a *app, notes []note.Note, prefixLengths map[string]int) string {
	builder := ui.NewTableBuilder(noteColumns, len(notes))
	for _, n := range notes {
		prefixLen := ui.PrefixLength(prefixLengths, n.ID)
		builder.AddRow(
			ui.HighlightID(ui.ShortID(n.ID, 8), prefixLen),
			n.Title,
			a.formatDate(n.Timestamp),
			a.styles.Swatch(n.DisplayColor())+" "+n.DisplayColor().Hex(),
		)
	}
	return builder.String()
}

func runNoteAdd(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("content") {
		content, err := resolveFromStdin("content", noteAddContent, os.Stdin)
		if err != nil {
			return err
		}
		noteAddContent = content
	}

	hasFlags := len(args) > 0 || hasChangedFlags(cmd, "content", "color")
	useEditor := noteAddEdit || (!noteAddNoEdit && !hasFlags && editor.IsInteractive())

	n := note.Note{}
	if len(args) > 0 {
		n.Title = strings.TrimSpace(args[0])
	}
	n.Content = noteAddContent
	if cmd.Flags().Changed("color") {
		color, err := palette.Parse(noteAddColor)
		if err != nil {
			return err
		}
		n.Color = &color
	}

	if useEditor {
		data := editor.DataFromNote(n)
		data.IsUpdate = false
		parsed, err := editor.EditNote(data)
		if err != nil {
			return err
		}
		n = parsed.Apply(n)
	}

	if err := note.Validate(n); err != nil {
		return err
	}

	return runWithApp(cmd, func(ctx context.Context, a *app) error {
		store, err := a.openNotes(ctx)
		if err != nil {
			return err
		}
		n.Timestamp = a.now()
		created := store.Upsert(n)
		prefixLen := store.IDIndex().PrefixLength(created.ID)
		fmt.Fprintf(a.stdout, "Created note %s: %s\n", ui.HighlightID(created.ID, prefixLen), created.Title)
		return nil
	})
}

func runNoteShow(cmd *cobra.Command, args []string) error {
	return runWithApp(cmd, func(ctx context.Context, a *app) error {
		store, err := a.openNotes(ctx)
		if err != nil {
			return err
		}
		n, err := store.Resolve(args[0])
		if err != nil {
			return lookupError(err)
		}

		if noteShowJSON {
			return writeJSON(a.stdout, n)
		}
		fmt.Fprint(a.stdout, formatNoteDetail(a, n, terminalWidth()))
		return nil
	})
}

func formatNoteDetail(a *app, n note.Note, width int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", a.styles.Swatch(n.DisplayColor()), a.styles.Title(n.Title))
	fmt.Fprintf(&b, "%s\n", a.styles.Muted(n.ID+"  "+a.formatDate(n.Timestamp)+" ("+ui.FormatTimeAgo(n.Timestamp, a.now())+")"))
	b.WriteString("\n")
	b.WriteString(renderMarkdownOrDash(a.markdownStyle(), n.Content, width, 2))
	b.WriteString("\n")
	return b.String()
}

func runNoteEdit(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("content") {
		content, err := resolveFromStdin("content", noteEditContent, os.Stdin)
		if err != nil {
			return err
		}
		noteEditContent = content
	}
	if noteEditClearColor && cmd.Flags().Changed("color") {
		return fmt.Errorf("--color and --clear-color cannot be combined")
	}

	hasFlags := hasChangedFlags(cmd, "title", "content", "color", "clear-color")
	useEditor := shouldUseEditor(hasFlags, noteEditEdit, noteEditNoEdit, editor.IsInteractive())
	if !hasFlags && !useEditor {
		return fmt.Errorf("nothing to change: pass --title, --content, --color, --clear-color or --edit")
	}

	return runWithApp(cmd, func(ctx context.Context, a *app) error {
		store, err := a.openNotes(ctx)
		if err != nil {
			return err
		}
		n, err := store.Resolve(args[0])
		if err != nil {
			return lookupError(err)
		}

		if cmd.Flags().Changed("title") {
			n.Title = strings.TrimSpace(noteEditTitle)
		}
		if cmd.Flags().Changed("content") {
			n.Content = noteEditContent
		}
		if cmd.Flags().Changed("color") {
			color, err := palette.Parse(noteEditColor)
			if err != nil {
				return err
			}
			n.Color = &color
		}
		if noteEditClearColor {
			n.Color = nil
		}

		if useEditor {
			parsed, err := editor.EditNote(editor.DataFromNote(n))
			if err != nil {
				return err
			}
			n = parsed.Apply(n)
		}

		if err := note.Validate(n); err != nil {
			return err
		}
		n.Timestamp = a.now()
		updated := store.Upsert(n)
		fmt.Fprintf(a.stdout, "Updated note %s: %s\n", ui.HighlightID(updated.ID, store.IDIndex().PrefixLength(updated.ID)), updated.Title)
		return nil
	})
}

func runNoteDelete(cmd *cobra.Command, args []string) error {
	return runWithApp(cmd, func(ctx context.Context, a *app) error {
		store, err := a.openNotes(ctx)
		if err != nil {
			return err
		}

		targets := make([]note.Note, 0, len(args))
		for _, arg := range args {
			n, err := store.Resolve(arg)
			if err != nil {
				return lookupError(err)
			}
			targets = append(targets, n)
		}

		prompter := StdioPrompter{In: os.Stdin, Out: a.stdout}
		for _, n := range targets {
			ok, err := confirmDelete(prompter, noteDeleteYes, fmt.Sprintf("Delete note %q?", n.Title))
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintf(a.stdout, "Kept note %s\n", ui.ShortID(n.ID, 8))
				continue
			}
			store.Delete(n.ID)
			fmt.Fprintf(a.stdout, "Deleted note %s: %s\n", ui.ShortID(n.ID, 8), n.Title)
		}
		return nil
	})
}
