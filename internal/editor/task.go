package editor

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/amonks/tasknotes/internal/palette"
	"github.com/amonks/tasknotes/internal/validation"
	"github.com/amonks/tasknotes/task"
)

// TaskData represents the data used to render the task template.
type TaskData struct {
	// IsUpdate is true when editing an existing task.
	IsUpdate    bool
	Title       string
	Priority    task.Priority
	Due         string
	Color       string
	Completed   bool
	Description string
}

// DefaultTaskData returns TaskData with default values for creating a task.
func DefaultTaskData() TaskData {
	return TaskData{Priority: task.DefaultPriority}
}

// DataFromTask creates TaskData from an existing task for editing.
func DataFromTask(t task.Task) TaskData {
	data := TaskData{
		IsUpdate:    true,
		Title:       t.Title,
		Priority:    t.Priority,
		Due:         task.FormatDueDate(t.DueDate),
		Completed:   t.Completed,
		Description: t.Description,
	}
	if t.Color != nil {
		data.Color = t.Color.Hex()
	}
	return data
}

var taskTemplate = template.Must(template.New("task").Funcs(template.FuncMap{
	"priorities": func() string {
		return validation.FormatValidValues(task.ValidPriorities())
	},
}).Parse(`title = {{ printf "%q" .Title }}
priority = {{ printf "%q" .Priority }} # {{ priorities }}
due = {{ printf "%q" .Due }} # YYYY-MM-DD, empty for none
color = {{ printf "%q" .Color }} # #rrggbb, empty for none
{{- if .IsUpdate }}
completed = {{ .Completed }}
{{- end }}
---
{{ .Description }}
`))

// RenderTaskTOML renders the task data for editing.
func RenderTaskTOML(data TaskData) (string, error) {
	var buf bytes.Buffer
	if err := taskTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render template: %w", err)
	}
	return buf.String(), nil
}

// ParsedTask is the result of editing a task.
type ParsedTask struct {
	Title    string
	Priority task.Priority
	Due      *time.Time
	Color    *palette.Color
	// Completed is nil when the template had no completed line.
	Completed   *bool
	Description string
}

type taskFrontmatter struct {
	Title     string `toml:"title"`
	Priority  string `toml:"priority"`
	Due       string `toml:"due"`
	Color     string `toml:"color"`
	Completed *bool  `toml:"completed"`
}

// ParseTaskTOML parses and validates edited task content.
func ParseTaskTOML(content string) (*ParsedTask, error) {
	frontmatter, body := splitFrontmatter(content)

	var fm taskFrontmatter
	if _, err := toml.Decode(frontmatter, &fm); err != nil {
		return nil, fmt.Errorf("parse TOML: %w", err)
	}

	parsed := &ParsedTask{
		Title:       strings.TrimSpace(fm.Title),
		Priority:    task.DefaultPriority,
		Completed:   fm.Completed,
		Description: parseBody(body),
	}
	if err := task.ValidateTitle(parsed.Title); err != nil {
		return nil, err
	}
	if strings.TrimSpace(fm.Priority) != "" {
		priority, err := task.ParsePriority(fm.Priority)
		if err != nil {
			return nil, err
		}
		parsed.Priority = priority
	}
	due, err := task.ParseDueDate(fm.Due)
	if err != nil {
		return nil, err
	}
	parsed.Due = due
	if c := strings.TrimSpace(fm.Color); c != "" {
		color, err := palette.Parse(c)
		if err != nil {
			return nil, err
		}
		parsed.Color = &color
	}

	return parsed, nil
}

// EditTask opens the editor on data and returns the parsed result.
func EditTask(data TaskData) (*ParsedTask, error) {
	content, err := RenderTaskTOML(data)
	if err != nil {
		return nil, err
	}
	edited, err := editContent("tn-task-*.md", content)
	if err != nil {
		return nil, err
	}
	return ParseTaskTOML(edited)
}

// Apply copies the edited fields onto t.
func (p *ParsedTask) Apply(t task.Task) task.Task {
	t.Title = p.Title
	t.Priority = p.Priority
	t.DueDate = p.Due
	t.Color = p.Color
	t.Description = p.Description
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	return t
}
