package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Prompter is used to ask the user for confirmation.
type Prompter interface {
	// Confirm asks the user a yes/no question and returns true if they say yes.
	Confirm(message string) (bool, error)
}

// StdioPrompter implements Prompter using a reader and writer, normally
// stdin and stdout.
type StdioPrompter struct {
	In  io.Reader
	Out io.Writer
}

// Confirm asks the user a yes/no question.
func (p StdioPrompter) Confirm(message string) (bool, error) {
	fmt.Fprintf(p.Out, "%s [y/n]: ", message)
	line, err := bufio.NewReader(p.In).ReadString('\n')
	if err != nil && line == "" {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// confirmDelete decides whether to delete. Deletion proceeds without a
// prompt when skip is set or stdin is not a terminal.
var confirmDelete = func(prompter Prompter, skip bool, message string) (bool, error) {
	if skip || !term.IsTerminal(int(os.Stdin.Fd())) {
		return true, nil
	}
	return prompter.Confirm(message)
}
