// Package ids resolves user-typed id prefixes against a collection's ids.
package ids

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when no id matches a prefix.
	ErrNotFound = errors.New("no entry with that id")

	// ErrAmbiguousPrefix is returned when a prefix matches several ids.
	ErrAmbiguousPrefix = errors.New("ambiguous id prefix")
)

// Index indexes ids for prefix matching and display.
type Index struct {
	ids      []string
	original map[string]string
}

// NewIndex builds an Index from the given ids.
func NewIndex(ids []string) Index {
	original := make(map[string]string, len(ids))
	for _, id := range ids {
		lower := strings.ToLower(id)
		if _, ok := original[lower]; !ok {
			original[lower] = id
		}
	}
	return Index{ids: NormalizeUniqueIDs(ids), original: original}
}

// Resolve returns the full id for a prefix.
func (index Index) Resolve(prefix string) (string, error) {
	if prefix == "" {
		return "", ErrNotFound
	}

	match, found, ambiguous := MatchPrefixNormalized(index.ids, prefix)
	if !found {
		return "", fmt.Errorf("%w: %s", ErrNotFound, prefix)
	}
	if ambiguous {
		return "", fmt.Errorf("%w: %s", ErrAmbiguousPrefix, prefix)
	}

	return index.original[match], nil
}

// PrefixLength returns the shortest unique prefix length of id.
func (index Index) PrefixLength(id string) int {
	lower := strings.ToLower(id)
	for _, other := range index.ids {
		if other == lower {
			return uniquePrefixLength(lower, index.ids)
		}
	}
	return len(id)
}

// PrefixLengths returns the shortest unique prefix length for each ID,
// keyed by lowercased id.
func (index Index) PrefixLengths() map[string]int {
	return UniquePrefixLengthsNormalized(index.ids)
}

// Len returns the number of indexed ids.
func (index Index) Len() int {
	return len(index.ids)
}
