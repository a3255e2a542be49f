package main

import (
	"os"
	"strings"

	"github.com/amonks/tasknotes/internal/markdown"
	"golang.org/x/term"
)

const defaultTerminalWidth = 80

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return defaultTerminalWidth
	}
	return width
}

func renderMarkdownOrDash(style markdown.Style, value string, width, indent int) string {
	if width < 1 {
		width = 1
	}
	formatted := string(markdown.SafeRender(style, width, indent, []byte(value)))
	if strings.TrimSpace(formatted) == "" {
		return strings.Repeat(" ", indent) + "-"
	}
	return strings.TrimRight(formatted, "\n")
}
