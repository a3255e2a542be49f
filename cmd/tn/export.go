package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	internalstrings "github.com/amonks/tasknotes/internal/strings"
	"github.com/amonks/tasknotes/note"
	"github.com/amonks/tasknotes/task"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Print all notes and tasks",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

var exportFormat string

// exportFormats lists the accepted --format values.
var exportFormats = []string{"json", "yaml"}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "Output format (json, yaml)")
}

type exportDocument struct {
	Notes []note.Note `json:"notes" yaml:"notes"`
	Tasks []task.Task `json:"tasks" yaml:"tasks"`
}

func runExport(cmd *cobra.Command, args []string) error {
	format := internalstrings.NormalizeLowerTrimSpace(exportFormat)
	if format != "json" && format != "yaml" {
		return fmt.Errorf("unknown export format %q (valid: %s)", exportFormat, strings.Join(exportFormats, ", "))
	}

	return runWithApp(cmd, func(ctx context.Context, a *app) error {
		notes, err := a.openNotes(ctx)
		if err != nil {
			return err
		}
		tasks, err := a.openTasks(ctx)
		if err != nil {
			return err
		}

		doc := exportDocument{Notes: notes.Notes(), Tasks: tasks.Tasks()}
		return writeExport(a.stdout, format, doc)
	})
}

func writeExport(out io.Writer, format string, doc exportDocument) error {
	if doc.Notes == nil {
		doc.Notes = []note.Note{}
	}
	if doc.Tasks == nil {
		doc.Tasks = []task.Task{}
	}

	if format == "yaml" {
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	}
	return writeJSON(out, doc)
}
