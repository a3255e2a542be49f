package task

import (
	"bytes"
	"encoding/json"
	"fmt"

	internalstrings "github.com/amonks/tasknotes/internal/strings"
	"github.com/amonks/tasknotes/internal/validation"
)

// Priority orders tasks by urgency.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// DefaultPriority is assigned to tasks saved without one.
const DefaultPriority = PriorityMedium

// ValidPriorities returns all valid priorities, lowest first.
func ValidPriorities() []Priority {
	return []Priority{PriorityLow, PriorityMedium, PriorityHigh}
}

// IsValid returns true if the priority is known.
func (p Priority) IsValid() bool {
	for _, valid := range ValidPriorities() {
		if p == valid {
			return true
		}
	}
	return false
}

// Rank returns 0 for low, 1 for medium, and 2 for high. Unknown priorities
// rank as medium.
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 0
	case PriorityHigh:
		return 2
	default:
		return 1
	}
}

// ParsePriority parses a priority name, ignoring case and surrounding space.
func ParsePriority(value string) (Priority, error) {
	p := Priority(internalstrings.NormalizeLowerTrimSpace(value))
	if !p.IsValid() {
		return "", validation.FormatInvalidValueError(ErrInvalidPriority, Priority(value), ValidPriorities())
	}
	return p, nil
}

// UnmarshalJSON accepts priority names as well as the ordinals 0, 1, and 2
// that older snapshots stored. An empty name decodes as DefaultPriority.
func (p *Priority) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		if internalstrings.IsBlank(name) {
			*p = DefaultPriority
			return nil
		}
		parsed, err := ParsePriority(name)
		if err != nil {
			return err
		}
		*p = parsed
		return nil
	}

	var ordinal int
	if err := json.Unmarshal(data, &ordinal); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidPriority, data)
	}
	priorities := ValidPriorities()
	if ordinal < 0 || ordinal >= len(priorities) {
		return fmt.Errorf("%w: ordinal %d", ErrInvalidPriority, ordinal)
	}
	*p = priorities[ordinal]
	return nil
}
