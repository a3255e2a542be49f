package main

import (
	"strings"
	"testing"
	"time"

	"github.com/amonks/tasknotes/internal/config"
	"github.com/amonks/tasknotes/internal/palette"
	"github.com/amonks/tasknotes/internal/ui"
	"github.com/amonks/tasknotes/note"
	"github.com/amonks/tasknotes/task"
	"github.com/muesli/termenv"
)

func testApp(t *testing.T, now time.Time) *app {
	t.Helper()
	t.Setenv("NO_COLOR", "1")

	cfg := config.Default()
	cfg.Display.DateFormat = "2006-01-02"
	return &app{
		cfg:    cfg,
		styles: ui.NewStylesWithProfile(config.ThemeLight, termenv.Ascii),
		now:    func() time.Time { return now },
	}
}

func TestFormatNoteTable(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.Local)
	a := testApp(t, now)

	notes := []note.Note{
		{ID: "abcdef123456", Title: "Groceries", Timestamp: now, Color: palette.Ptr(0x112233)},
	}
	out := formatNoteTable(a, notes, map[string]int{"abcdef123456": 1})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header and one row, got %q", out)
	}
	for _, want := range []string{"ID", "TITLE", "DATE", "COLOR"} {
		if !strings.Contains(lines[0], want) {
			t.Fatalf("expected header %s in %q", want, lines[0])
		}
	}
	for _, want := range []string{"abcdef12", "Groceries", "2024-03-01", "#112233"} {
		if !strings.Contains(lines[1], want) {
			t.Fatalf("expected %q in row %q", want, lines[1])
		}
	}
}

func TestFilterTasks(t *testing.T) {
	tasks := []task.Task{
		{ID: "a", Title: "open"},
		{ID: "b", Title: "done", Completed: true},
	}

	if got := filterTasks(tasks, false, false); len(got) != 2 {
		t.Fatalf("expected all tasks, got %d", len(got))
	}
	if got := filterTasks(tasks, true, false); len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("expected open task, got %+v", got)
	}
	if got := filterTasks(tasks, false, true); len(got) != 1 || got[0].ID != "b" {
		t.Fatalf("expected completed task, got %+v", got)
	}
}

func TestFormatTaskDue(t *testing.T) {
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.Local)
	a := testApp(t, now)

	if got := formatTaskDue(a, task.Task{}, now); got != "-" {
		t.Fatalf("expected dash for no due date, got %q", got)
	}

	past := time.Date(2024, 3, 9, 0, 0, 0, 0, time.Local)
	got := formatTaskDue(a, task.Task{DueDate: &past}, now)
	if got != "2024-03-09 (overdue)" {
		t.Fatalf("expected overdue marker, got %q", got)
	}

	got = formatTaskDue(a, task.Task{DueDate: &past, Completed: true}, now)
	if got != "2024-03-09" {
		t.Fatalf("expected completed task not to be overdue, got %q", got)
	}
}

func TestFormatTaskDetailWrapsDescription(t *testing.T) {
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.Local)
	a := testApp(t, now)

	detail := formatTaskDetail(a, task.Task{
		ID:          "t1",
		Title:       "Write report",
		Priority:    task.PriorityHigh,
		Timestamp:   now,
		Description: "one two three four five six seven eight nine ten",
	}, 20)

	if !strings.Contains(detail, "[ ]") || !strings.Contains(detail, "Write report") {
		t.Fatalf("expected checkbox and title, got:\n%s", detail)
	}
	if !strings.Contains(detail, "Priority: HIGH") {
		t.Fatalf("expected priority label, got:\n%s", detail)
	}
	for _, line := range strings.Split(detail, "\n") {
		if strings.HasPrefix(line, "  ") && len(line) > 20 {
			t.Fatalf("expected wrapped description, got line %q", line)
		}
	}
}

func TestFormatNoteDetail(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.Local)
	a := testApp(t, now)

	detail := formatNoteDetail(a, note.Note{
		ID:        "n1",
		Title:     "Groceries",
		Content:   "milk and eggs",
		Timestamp: now.Add(-2 * time.Hour),
	}, 60)

	for _, want := range []string{"● Groceries", "n1  2024-03-01 (2h ago)", "milk and eggs"} {
		if !strings.Contains(detail, want) {
			t.Fatalf("expected %q in:\n%s", want, detail)
		}
	}
}

func TestListTablesCutLongTitles(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.Local)
	a := testApp(t, now)
	title := strings.Repeat("t", note.MaxTitleLength)

	noteOut := formatNoteTable(a, []note.Note{{ID: "n1", Title: title, Content: "x", Timestamp: now}}, nil)
	taskOut := formatTaskTable(a, []task.Task{{ID: "t1", Title: title, Priority: task.PriorityLow, Timestamp: now}}, nil)

	cut := strings.Repeat("t", ui.TitleWidth-3) + "..."
	for name, out := range map[string]string{"note": noteOut, "task": taskOut} {
		lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
		if len(lines) != 2 {
			t.Fatalf("%s table: expected header and one row, got %q", name, out)
		}
		if strings.Contains(lines[1], title) {
			t.Fatalf("%s table: expected title to be cut, got %q", name, lines[1])
		}
		if !strings.Contains(lines[1], cut) {
			t.Fatalf("%s table: expected %d-column title ending in ellipsis, got %q", name, ui.TitleWidth, lines[1])
		}
		if strings.Contains(lines[1], cut+"t") {
			t.Fatalf("%s table: title wider than %d columns in %q", name, ui.TitleWidth, lines[1])
		}
	}
}
