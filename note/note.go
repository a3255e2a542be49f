// Package note stores free-form notes.
package note

import (
	"time"

	"github.com/amonks/tasknotes/internal/palette"
	"github.com/google/uuid"
)

// Note is a titled piece of text.
type Note struct {
	ID        string         `json:"id" yaml:"id"`
	Title     string         `json:"title" yaml:"title"`
	Content   string         `json:"content" yaml:"content"`
	Timestamp time.Time      `json:"timestamp" yaml:"timestamp"`
	Color     *palette.Color `json:"color,omitempty" yaml:"color,omitempty"`
}

// New returns a note with a fresh id, stamped now.
func New(title, content string) Note {
	return Note{
		ID:        uuid.NewString(),
		Title:     title,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// DisplayColor returns the note's color, falling back to a stable palette
// entry derived from its id.
func (n Note) DisplayColor() palette.Color {
	if n.Color != nil {
		return *n.Color
	}
	return palette.ForID(n.ID)
}

func key(n Note) string {
	return n.ID
}
