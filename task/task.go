// Package task stores to-do items with due dates and priorities.
package task

import (
	"fmt"
	"strings"
	"time"

	"github.com/amonks/tasknotes/internal/palette"
	"github.com/google/uuid"
)

// Task is a to-do item.
type Task struct {
	ID          string         `json:"id" yaml:"id"`
	Title       string         `json:"title" yaml:"title"`
	Description string         `json:"description" yaml:"description"`
	DueDate     *time.Time     `json:"due_date,omitempty" yaml:"due_date,omitempty"`
	Completed   bool           `json:"completed" yaml:"completed"`
	Priority    Priority       `json:"priority" yaml:"priority"`
	Timestamp   time.Time      `json:"timestamp" yaml:"timestamp"`
	Color       *palette.Color `json:"color,omitempty" yaml:"color,omitempty"`
}

// New returns an open, medium-priority task with a fresh id, stamped now.
func New(title string) Task {
	return Task{
		ID:        uuid.NewString(),
		Title:     title,
		Priority:  DefaultPriority,
		Timestamp: time.Now(),
	}
}

// DisplayColor returns the task's color, falling back to a stable palette
// entry derived from its id.
func (t Task) DisplayColor() palette.Color {
	if t.Color != nil {
		return *t.Color
	}
	return palette.ForID(t.ID)
}

// IsOverdue reports whether the task is open and due on a day before now's.
func (t Task) IsOverdue(now time.Time) bool {
	if t.Completed || t.DueDate == nil {
		return false
	}
	due := t.DueDate.In(now.Location())
	dueDay := time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, now.Location())
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return dueDay.Before(today)
}

// DueDateLayout is the layout accepted for due dates.
const DueDateLayout = "2006-01-02"

// ParseDueDate parses a YYYY-MM-DD date at local midnight. An empty value
// means no due date.
func ParseDueDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	due, err := time.ParseInLocation(DueDateLayout, value, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid due date %q: expected YYYY-MM-DD", value)
	}
	return &due, nil
}

// FormatDueDate formats a due date for ParseDueDate, or "" for none.
func FormatDueDate(due *time.Time) string {
	if due == nil {
		return ""
	}
	return due.Format(DueDateLayout)
}

func key(t Task) string {
	return t.ID
}
