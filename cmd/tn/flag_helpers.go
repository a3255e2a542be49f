package main

import (
	"fmt"
	"io"

	internalstrings "github.com/amonks/tasknotes/internal/strings"
	"github.com/spf13/cobra"
)

func hasChangedFlags(cmd *cobra.Command, flags ...string) bool {
	for _, flag := range flags {
		if cmd.Flags().Changed(flag) {
			return true
		}
	}
	return false
}

func shouldUseEditor(hasFlags bool, editFlag bool, noEditFlag bool, interactive bool) bool {
	if editFlag {
		return true
	}
	if noEditFlag {
		return false
	}
	if hasFlags {
		return false
	}
	return interactive
}

// resolveFromStdin returns value, or stdin when value is "-".
func resolveFromStdin(what, value string, reader io.Reader) (string, error) {
	if value != "-" {
		return value, nil
	}

	input, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("read %s from stdin: %w", what, err)
	}

	return internalstrings.TrimTrailingNewlines(string(input)), nil
}
