package ui

import (
	"strings"

	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
)

// Wrap word-wraps text to width and indents every line by spaces.
func Wrap(text string, width, spaces int) string {
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return ""
	}
	wrapWidth := width - spaces
	if wrapWidth < 1 {
		wrapWidth = 1
	}
	wrapped := wordwrap.String(text, wrapWidth)
	if spaces <= 0 {
		return wrapped
	}
	return indent.String(wrapped, uint(spaces))
}
