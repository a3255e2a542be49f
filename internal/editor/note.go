package editor

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/BurntSushi/toml"
	"github.com/amonks/tasknotes/internal/palette"
	"github.com/amonks/tasknotes/note"
)

// NoteData represents the data used to render the note template.
type NoteData struct {
	// IsUpdate is true when editing an existing note.
	IsUpdate bool
	Title    string
	// Color is "#rrggbb" or empty for the automatic color.
	Color   string
	Content string
}

// DataFromNote creates NoteData from an existing note for editing.
func DataFromNote(n note.Note) NoteData {
	data := NoteData{IsUpdate: true, Title: n.Title, Content: n.Content}
	if n.Color != nil {
		data.Color = n.Color.Hex()
	}
	return data
}

var noteTemplate = template.Must(template.New("note").Parse(`title = {{ printf "%q" .Title }}
color = {{ printf "%q" .Color }} # #rrggbb, empty for automatic
---
{{ .Content }}
`))

// RenderNoteTOML renders the note data for editing.
func RenderNoteTOML(data NoteData) (string, error) {
	var buf bytes.Buffer
	if err := noteTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render template: %w", err)
	}
	return buf.String(), nil
}

// ParsedNote is the result of editing a note.
type ParsedNote struct {
	Title   string
	Color   *palette.Color
	Content string
}

type noteFrontmatter struct {
	Title string `toml:"title"`
	Color string `toml:"color"`
}

// ParseNoteTOML parses and validates edited note content.
func ParseNoteTOML(content string) (*ParsedNote, error) {
	frontmatter, body := splitFrontmatter(content)

	var fm noteFrontmatter
	if _, err := toml.Decode(frontmatter, &fm); err != nil {
		return nil, fmt.Errorf("parse TOML: %w", err)
	}

	parsed := &ParsedNote{
		Title:   strings.TrimSpace(fm.Title),
		Content: parseBody(body),
	}
	if c := strings.TrimSpace(fm.Color); c != "" {
		color, err := palette.Parse(c)
		if err != nil {
			return nil, err
		}
		parsed.Color = &color
	}

	if err := note.Validate(note.Note{Title: parsed.Title, Content: parsed.Content}); err != nil {
		return nil, err
	}
	return parsed, nil
}

// EditNote opens the editor on data and returns the parsed result.
func EditNote(data NoteData) (*ParsedNote, error) {
	content, err := RenderNoteTOML(data)
	if err != nil {
		return nil, err
	}
	edited, err := editContent("tn-note-*.md", content)
	if err != nil {
		return nil, err
	}
	return ParseNoteTOML(edited)
}

// Apply copies the edited fields onto n.
func (p *ParsedNote) Apply(n note.Note) note.Note {
	n.Title = p.Title
	n.Content = p.Content
	n.Color = p.Color
	return n
}
