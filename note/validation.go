package note

import (
	"errors"
	"fmt"

	internalstrings "github.com/amonks/tasknotes/internal/strings"
)

// MaxTitleLength is the maximum title length in bytes.
const MaxTitleLength = 500

var (
	// ErrEmptyTitle is returned when a note title is blank.
	ErrEmptyTitle = errors.New("title cannot be empty")

	// ErrTitleTooLong is returned when a note title exceeds MaxTitleLength.
	ErrTitleTooLong = errors.New("title exceeds maximum length")

	// ErrEmptyContent is returned when a note has no content.
	ErrEmptyContent = errors.New("content cannot be empty")
)

// ValidateTitle checks if the title is valid.
func ValidateTitle(title string) error {
	if internalstrings.IsBlank(title) {
		return ErrEmptyTitle
	}
	if len(title) > MaxTitleLength {
		return fmt.Errorf("%w: %d > %d", ErrTitleTooLong, len(title), MaxTitleLength)
	}
	return nil
}

// Validate checks that a note can be saved from an edit screen.
func Validate(n Note) error {
	if err := ValidateTitle(n.Title); err != nil {
		return err
	}
	if internalstrings.IsBlank(n.Content) {
		return ErrEmptyContent
	}
	return nil
}
