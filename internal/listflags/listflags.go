// Package listflags registers the flags shared by list commands.
package listflags

import "github.com/spf13/cobra"

// AddJSONFlag adds a --json flag to a list or show command.
func AddJSONFlag(cmd *cobra.Command, target *bool) {
	cmd.Flags().BoolVar(target, "json", false, "Output as JSON")
}

// AddCompletionFlags adds the mutually exclusive --pending and --completed
// filters.
func AddCompletionFlags(cmd *cobra.Command, pending, completed *bool) {
	cmd.Flags().BoolVar(pending, "pending", false, "Only show open tasks")
	cmd.Flags().BoolVar(completed, "completed", false, "Only show completed tasks")
	cmd.MarkFlagsMutuallyExclusive("pending", "completed")
}
