package ui

import (
	"testing"
	"time"
)

func TestFormatDurationShort(t *testing.T) {
	cases := []struct {
		name     string
		duration time.Duration
		want     string
	}{
		{name: "seconds", duration: 45 * time.Second, want: "45s"},
		{name: "minutes", duration: 2*time.Minute + 10*time.Second, want: "2m"},
		{name: "hours", duration: 3*time.Hour + 5*time.Minute, want: "3h"},
		{name: "days", duration: 48 * time.Hour, want: "2d"},
		{name: "negative", duration: -time.Minute, want: "0s"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := FormatDurationShort(tc.duration)
			if got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestFormatTimeAgo(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	then := now.Add(-2 * time.Minute)

	got := FormatTimeAgo(then, now)
	if got != "2m ago" {
		t.Fatalf("expected 2m ago, got %s", got)
	}
	if got := FormatTimeAgo(time.Time{}, now); got != "-" {
		t.Fatalf("expected - for zero time, got %s", got)
	}
}

func TestFormatDate(t *testing.T) {
	day := time.Date(2025, 3, 7, 12, 0, 0, 0, time.Local)
	if got := FormatDate(day, "02 Jan"); got != "07 Mar" {
		t.Fatalf("expected 07 Mar, got %s", got)
	}
	if got := FormatDate(time.Time{}, "02 Jan"); got != "-" {
		t.Fatalf("expected - for zero time, got %s", got)
	}
}
