package task

import (
	"errors"
	"fmt"

	internalstrings "github.com/amonks/tasknotes/internal/strings"
	"github.com/amonks/tasknotes/internal/validation"
)

// MaxTitleLength is the maximum title length in bytes.
const MaxTitleLength = 500

var (
	// ErrEmptyTitle is returned when a task title is blank.
	ErrEmptyTitle = errors.New("title cannot be empty")

	// ErrTitleTooLong is returned when a task title exceeds MaxTitleLength.
	ErrTitleTooLong = errors.New("title exceeds maximum length")

	// ErrInvalidPriority is returned for an unknown priority.
	ErrInvalidPriority = errors.New("invalid priority")
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

// ValidatePriority checks if the priority is valid.
func ValidatePriority(priority Priority) error {
	if !priority.IsValid() {
		return validation.FormatInvalidValueError(ErrInvalidPriority, priority, ValidPriorities())
	}
	return nil
}

// Validate checks that a task can be saved from an edit screen.
func Validate(t Task) error {
	if err := ValidateTitle(t.Title); err != nil {
		return err
	}
	return ValidatePriority(t.Priority)
}
