package ids

import (
	"errors"
	"testing"
)

func TestIndexPrefixLengthsUseAllIDs(t *testing.T) {
	index := NewIndex([]string{"2u3iutfd", "2a9k1111", "abc12345"})
	lengths := index.PrefixLengths()

	if got := lengths["2u3iutfd"]; got != 2 {
		t.Fatalf("expected 2u3iutfd prefix length 2, got %d", got)
	}
	if got := lengths["2a9k1111"]; got != 2 {
		t.Fatalf("expected 2a9k1111 prefix length 2, got %d", got)
	}
	if got := lengths["abc12345"]; got != 1 {
		t.Fatalf("expected abc12345 prefix length 1, got %d", got)
	}
}

func TestIndexResolveHandlesAmbiguousPrefixes(t *testing.T) {
	index := NewIndex([]string{"2u3iutfd", "2a9k1111"})

	_, err := index.Resolve("2")
	if err == nil {
		t.Fatalf("expected ambiguous prefix error")
	}
	if !errors.Is(err, ErrAmbiguousPrefix) {
		t.Fatalf("expected ErrAmbiguousPrefix, got %v", err)
	}
}

func TestIndexResolveMatchesCaseInsensitive(t *testing.T) {
	index := NewIndex([]string{"2u3iutfd"})

	resolved, err := index.Resolve("2U3")
	if err != nil {
		t.Fatalf("expected resolve to succeed, got %v", err)
	}
	if resolved != "2u3iutfd" {
		t.Fatalf("expected resolved ID 2u3iutfd, got %s", resolved)
	}
}

func TestIndexResolvePrefersExactMatch(t *testing.T) {
	index := NewIndex([]string{"abc", "abcd"})

	resolved, err := index.Resolve("abc")
	if err != nil {
		t.Fatalf("expected resolve to succeed, got %v", err)
	}
	if resolved != "abc" {
		t.Fatalf("expected abc, got %s", resolved)
	}
}

func TestIndexResolveMissing(t *testing.T) {
	index := NewIndex([]string{"abc"})

	for _, prefix := range []string{"", "zzz"} {
		if _, err := index.Resolve(prefix); !errors.Is(err, ErrNotFound) {
			t.Fatalf("resolve %q: expected ErrNotFound, got %v", prefix, err)
		}
	}
}

func TestIndexResolveReturnsOriginalCase(t *testing.T) {
	index := NewIndex([]string{"5F2C9A10-AAAA-4BBB-8CCC-000000000001", "7b1e0000-0000-4000-8000-000000000002"})

	resolved, err := index.Resolve("5f")
	if err != nil {
		t.Fatalf("expected resolve to succeed, got %v", err)
	}
	if resolved != "5F2C9A10-AAAA-4BBB-8CCC-000000000001" {
		t.Fatalf("expected original-case id, got %s", resolved)
	}
	if got := index.PrefixLength("5F2C9A10-AAAA-4BBB-8CCC-000000000001"); got != 1 {
		t.Fatalf("expected prefix length 1, got %d", got)
	}
	if got := index.PrefixLength("missing"); got != len("missing") {
		t.Fatalf("expected full length for unknown id, got %d", got)
	}
}
