// Package palette defines the display colors attached to notes and tasks.
package palette

import (
	"errors"
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
)

// ErrInvalidColor is returned when a color string is not #rrggbb.
var ErrInvalidColor = errors.New("color must be #rrggbb")

// Color is a 24-bit RGB color.
type Color uint32

// Pastel note colors, in display order.
var notePalette = []Color{
	0xF8BBD0, // pink
	0xE1BEE7, // purple
	0xD1C4E9, // deep purple
	0xC5CAE9, // indigo
	0xBBDEFB, // blue
	0xB3E5FC, // light blue
	0xB2EBF2, // cyan
	0xB2DFDB, // teal
	0xC8E6C9, // green
	0xDCEDC8, // light green
	0xF0F4C3, // lime
	0xFFE0B2, // amber
	0xFFCCBC, // orange
}

// NotePalette returns a copy of the fallback note colors.
func NotePalette() []Color {
	return append([]Color(nil), notePalette...)
}

// ForID picks a stable palette color for an entity id.
func ForID(id string) Color {
	h := fnv.New32a()
	h.Write([]byte(id))
	return notePalette[h.Sum32()%uint32(len(notePalette))]
}

// Parse reads a color written as #rrggbb (the leading # is optional).
func Parse(value string) (Color, error) {
	value = strings.TrimPrefix(strings.TrimSpace(value), "#")
	if len(value) != 6 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidColor, value)
	}
	n, err := strconv.ParseUint(value, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidColor, value)
	}
	return Color(n), nil
}

// Ptr returns a pointer to c.
func Ptr(c Color) *Color {
	return &c
}

// Hex renders the color as #rrggbb.
func (c Color) Hex() string {
	return fmt.Sprintf("#%06x", uint32(c)&0xFFFFFF)
}

func (c Color) String() string {
	return c.Hex()
}

// MarshalText implements encoding.TextMarshaler.
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.Hex()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
