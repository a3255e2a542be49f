package ui

import (
	"io"
	"strings"

	"github.com/amonks/tasknotes/internal/config"
	"github.com/amonks/tasknotes/internal/palette"
	"github.com/amonks/tasknotes/task"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

type tint struct {
	light palette.Color
	dark  palette.Color
}

var priorityTints = map[task.Priority]tint{
	task.PriorityHigh:   {light: 0xF5D0D0, dark: 0x783535},
	task.PriorityMedium: {light: 0xF8F0D0, dark: 0x695C2E},
	task.PriorityLow:    {light: 0xD0F5E7, dark: 0x2E5044},
}

// Styles renders themed output for one writer.
type Styles struct {
	theme    config.Theme
	renderer *lipgloss.Renderer

	title   lipgloss.Style
	muted   lipgloss.Style
	overdue lipgloss.Style
}

// NewStyles returns styles for out. Color is disabled when out is not a
// terminal or NO_COLOR is set.
func NewStyles(theme config.Theme, out io.Writer) *Styles {
	renderer := lipgloss.NewRenderer(out)
	if !ansiEnabled() {
		renderer.SetColorProfile(termenv.Ascii)
	}
	return newStyles(theme, renderer)
}

// NewStylesWithProfile returns styles that always use profile.
func NewStylesWithProfile(theme config.Theme, profile termenv.Profile) *Styles {
	renderer := lipgloss.NewRenderer(io.Discard)
	renderer.SetColorProfile(profile)
	return newStyles(theme, renderer)
}

func newStyles(theme config.Theme, renderer *lipgloss.Renderer) *Styles {
	if !theme.IsValid() {
		theme = config.ThemeLight
	}
	renderer.SetHasDarkBackground(theme == config.ThemeDark)

	muted := lipgloss.AdaptiveColor{Light: "244", Dark: "246"}
	return &Styles{
		theme:    theme,
		renderer: renderer,
		title:    renderer.NewStyle().Bold(true),
		muted:    renderer.NewStyle().Foreground(muted),
		overdue:  renderer.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "160", Dark: "203"}).Bold(true),
	}
}

// Theme returns the active theme.
func (s *Styles) Theme() config.Theme {
	return s.theme
}

// Title renders text in bold.
func (s *Styles) Title(text string) string {
	return s.title.Render(text)
}

// Muted renders secondary text.
func (s *Styles) Muted(text string) string {
	return s.muted.Render(text)
}

// Overdue renders text that needs attention.
func (s *Styles) Overdue(text string) string {
	return s.overdue.Render(text)
}

// Swatch renders a dot in the given color.
func (s *Styles) Swatch(c palette.Color) string {
	return s.renderer.NewStyle().Foreground(lipgloss.Color(c.Hex())).Render("●")
}

// PriorityTint returns the background tint for a priority in the active theme.
func (s *Styles) PriorityTint(p task.Priority) palette.Color {
	t, ok := priorityTints[p]
	if !ok {
		t = priorityTints[task.PriorityMedium]
	}
	if s.theme == config.ThemeDark {
		return t.dark
	}
	return t.light
}

// Priority renders a priority label on its tint.
func (s *Styles) Priority(p task.Priority) string {
	label := strings.ToUpper(string(p))
	if label == "" {
		label = strings.ToUpper(string(task.DefaultPriority))
	}
	style := s.renderer.NewStyle().Background(lipgloss.Color(s.PriorityTint(p).Hex()))
	if s.theme == config.ThemeDark {
		style = style.Foreground(lipgloss.Color("#ffffff"))
	} else {
		style = style.Foreground(lipgloss.Color("#000000"))
	}
	return style.Render(label)
}

// Checkbox renders a completion marker.
func (s *Styles) Checkbox(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

// Plain reports whether output carries no ANSI styling.
func (s *Styles) Plain() bool {
	return s.renderer.ColorProfile() == termenv.Ascii
}
