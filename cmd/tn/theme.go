package main

import (
	"fmt"

	"github.com/amonks/tasknotes/internal/config"
	"github.com/amonks/tasknotes/internal/paths"
	"github.com/amonks/tasknotes/internal/state"
	"github.com/spf13/cobra"
)

var themeCmd = &cobra.Command{
	Use:   "theme",
	Short: "Show the current theme",
	Args:  cobra.NoArgs,
	RunE:  runThemeShow,
}

var themeToggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Switch between light and dark",
	Args:  cobra.NoArgs,
	RunE:  runThemeToggle,
}

var themeLightCmd = &cobra.Command{
	Use:   "light",
	Short: "Use the light theme",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runThemeSet(cmd, config.ThemeLight)
	},
}

var themeDarkCmd = &cobra.Command{
	Use:   "dark",
	Short: "Use the dark theme",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runThemeSet(cmd, config.ThemeDark)
	},
}

func init() {
	rootCmd.AddCommand(themeCmd)
	themeCmd.AddCommand(themeToggleCmd, themeLightCmd, themeDarkCmd)
}

// themeStore opens the preference store and the configured default theme.
// Theme commands do not touch the note or task collections.
func themeStore() (*state.Store, config.Theme, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, "", err
	}
	dir, err := paths.DefaultStateDir()
	if err != nil {
		return nil, "", err
	}
	return state.NewStore(dir), cfg.Display.Theme, nil
}

func runThemeShow(cmd *cobra.Command, args []string) error {
	store, fallback, err := themeStore()
	if err != nil {
		return err
	}
	theme, err := store.Theme(fallback)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), theme)
	return nil
}

func runThemeToggle(cmd *cobra.Command, args []string) error {
	store, fallback, err := themeStore()
	if err != nil {
		return err
	}
	theme, err := store.ToggleTheme(fallback)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Theme set to %s\n", theme)
	return nil
}

func runThemeSet(cmd *cobra.Command, theme config.Theme) error {
	store, _, err := themeStore()
	if err != nil {
		return err
	}
	if err := store.SetTheme(theme); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Theme set to %s\n", theme)
	return nil
}
