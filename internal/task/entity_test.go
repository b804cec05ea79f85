package task

import "testing"

func TestStatusCanTransitionTo(t *testing.T) {
	cases := []struct {
		from    Status
		to      Status
		allowed bool
	}{
		{StatusPending, StatusInProgress, true},
		{StatusInProgress, StatusCompleted, true},
		{StatusPending, StatusCompleted, false},
		{StatusPending, StatusPending, false},
		{StatusInProgress, StatusPending, false},
		{StatusInProgress, StatusInProgress, false},
		{StatusCompleted, StatusPending, false},
		{StatusCompleted, StatusInProgress, false},
		{StatusCompleted, StatusCompleted, false},
	}
	for _, c := range cases {
		if got := c.from.CanTransitionTo(c.to); got != c.allowed {
			t.Errorf("CanTransitionTo(%s -> %s) = %v, want %v", c.from, c.to, got, c.allowed)
		}
	}
}

func TestParseStatus(t *testing.T) {
	for _, s := range AllStatuses() {
		parsed, err := ParseStatus(string(s))
		if err != nil {
			t.Fatalf("ParseStatus(%q) failed: %v", s, err)
		}
		if parsed != s {
			t.Errorf("ParseStatus(%q) = %q", s, parsed)
		}
	}

	for _, invalid := range []string{"", "done", "PENDING", "in_progress", "archived"} {
		if _, err := ParseStatus(invalid); err == nil {
			t.Errorf("ParseStatus(%q) should fail", invalid)
		}
	}
}

func TestTaskClone(t *testing.T) {
	orig := &Task{ID: "01ARZ3NDEKTSV4RRFFQ69G5FAV", Title: "a", Description: "b", Status: StatusPending}
	clone := orig.Clone()
	clone.Title = "changed"
	if orig.Title != "a" {
		t.Errorf("mutating a clone changed the original: %q", orig.Title)
	}
}
