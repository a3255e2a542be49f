package ui

import (
	"strings"
	"testing"

	"github.com/amonks/tasknotes/internal/config"
	"github.com/amonks/tasknotes/internal/palette"
	"github.com/amonks/tasknotes/task"
	"github.com/muesli/termenv"
)

func TestStylesASCIIProfileIsPlain(t *testing.T) {
	s := NewStylesWithProfile(config.ThemeLight, termenv.Ascii)

	if got := s.Swatch(0xF8BBD0); got != "●" {
		t.Fatalf("expected plain swatch, got %q", got)
	}
	if got := s.Priority(task.PriorityHigh); got != "HIGH" {
		t.Fatalf("expected plain priority label, got %q", got)
	}
	if got := s.Title("Groceries"); got != "Groceries" {
		t.Fatalf("expected plain title, got %q", got)
	}
	if !s.Plain() {
		t.Fatal("expected ascii styles to report plain output")
	}
	if NewStylesWithProfile(config.ThemeLight, termenv.TrueColor).Plain() {
		t.Fatal("expected truecolor styles to report styled output")
	}
}

func TestStylesTrueColorSwatch(t *testing.T) {
	s := NewStylesWithProfile(config.ThemeLight, termenv.TrueColor)

	got := s.Swatch(0xF8BBD0)
	if !strings.Contains(got, "38;2;248;187;208") {
		t.Fatalf("expected truecolor foreground for swatch, got %q", got)
	}
	if !strings.Contains(got, "●") {
		t.Fatalf("expected swatch glyph, got %q", got)
	}
}

func TestPriorityTintFollowsTheme(t *testing.T) {
	light := NewStylesWithProfile(config.ThemeLight, termenv.Ascii)
	dark := NewStylesWithProfile(config.ThemeDark, termenv.Ascii)

	tests := []struct {
		priority task.Priority
		light    palette.Color
		dark     palette.Color
	}{
		{task.PriorityHigh, 0xF5D0D0, 0x783535},
		{task.PriorityMedium, 0xF8F0D0, 0x695C2E},
		{task.PriorityLow, 0xD0F5E7, 0x2E5044},
	}
	for _, tt := range tests {
		if got := light.PriorityTint(tt.priority); got != tt.light {
			t.Fatalf("light tint for %s = %s, want %s", tt.priority, got, tt.light)
		}
		if got := dark.PriorityTint(tt.priority); got != tt.dark {
			t.Fatalf("dark tint for %s = %s, want %s", tt.priority, got, tt.dark)
		}
	}
	if dark.Theme() != config.ThemeDark {
		t.Fatalf("expected dark theme")
	}
}

func TestPriorityLabelUsesTintBackground(t *testing.T) {
	s := NewStylesWithProfile(config.ThemeDark, termenv.TrueColor)
	got := s.Priority(task.PriorityHigh)
	// 0x783535 = 120;53;53
	if !strings.Contains(got, "48;2;120;53;53") {
		t.Fatalf("expected dark high tint background, got %q", got)
	}
}

func TestWrap(t *testing.T) {
	got := Wrap("the quick brown fox jumps", 14, 2)
	want := "  the quick\n  brown fox\n  jumps"
	if got != want {
		t.Fatalf("Wrap = %q, want %q", got, want)
	}
	if Wrap("\n", 10, 2) != "" {
		t.Fatalf("expected empty output for empty text")
	}
}
