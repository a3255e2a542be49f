package task

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParsePriority(t *testing.T) {
	tests := []struct {
		in   string
		want Priority
	}{
		{"low", PriorityLow},
		{"Medium", PriorityMedium},
		{" HIGH ", PriorityHigh},
	}
	for _, tt := range tests {
		got, err := ParsePriority(tt.in)
		if err != nil {
			t.Fatalf("ParsePriority(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("ParsePriority(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	_, err := ParsePriority("urgent")
	if !errors.Is(err, ErrInvalidPriority) {
		t.Fatalf("expected ErrInvalidPriority, got %v", err)
	}
	want := `invalid priority: "urgent" (valid: low, medium, high)`
	if err.Error() != want {
		t.Fatalf("expected %q, got %q", want, err.Error())
	}
}

func TestPriorityRank(t *testing.T) {
	if !(PriorityLow.Rank() < PriorityMedium.Rank() && PriorityMedium.Rank() < PriorityHigh.Rank()) {
		t.Fatalf("expected low < medium < high")
	}
	if got := Priority("").Rank(); got != PriorityMedium.Rank() {
		t.Fatalf("expected unknown priority to rank as medium, got %d", got)
	}
}

func TestPriorityUnmarshalJSON(t *testing.T) {
	tests := []struct {
		in   string
		want Priority
	}{
		{`"high"`, PriorityHigh},
		{`"LOW"`, PriorityLow},
		{`""`, PriorityMedium},
		{`0`, PriorityLow},
		{`1`, PriorityMedium},
		{`2`, PriorityHigh},
	}
	for _, tt := range tests {
		var got Priority
		if err := json.Unmarshal([]byte(tt.in), &got); err != nil {
			t.Fatalf("unmarshal %s: %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("unmarshal %s = %q, want %q", tt.in, got, tt.want)
		}
	}

	for _, bad := range []string{`3`, `-1`, `"urgent"`, `true`} {
		var got Priority
		if err := json.Unmarshal([]byte(bad), &got); !errors.Is(err, ErrInvalidPriority) {
			t.Fatalf("unmarshal %s: expected ErrInvalidPriority, got %v", bad, err)
		}
	}
}

func TestPriorityMarshalsByName(t *testing.T) {
	data, err := json.Marshal(Task{ID: "a", Priority: PriorityHigh})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if raw["priority"] != "high" {
		t.Fatalf("expected priority \"high\", got %v", raw["priority"])
	}
}
