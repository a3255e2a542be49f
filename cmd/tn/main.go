// Package main implements the tn CLI tool.
package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		var exitErr interface{ ExitCode() int }
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.ExitCode())
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "tn",
	Short:        "Tasknotes - personal notes and to-do tasks",
	SilenceUsage: true,
}

var (
	rootConfigPath string
	rootDataDir    string
	rootBackend    string
	rootLogLevel   string
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&rootConfigPath, "config", "", "Config file (default: global config plus ./tasknotes.toml)")
	flags.StringVar(&rootDataDir, "data-dir", "", "Directory holding notes and tasks")
	flags.StringVar(&rootBackend, "backend", "", "Snapshot backend (jsonl, sqlite)")
	flags.StringVar(&rootLogLevel, "log-level", "", "Log level (debug, info, warn, error)")
}
