package task

import (
	"testing"
	"time"

	"github.com/taskdesk/taskdesk/pkg/cerr"
)

func TestBuildFilter(t *testing.T) {
	f, err := BuildFilter("", "")
	if err != nil {
		t.Fatalf("BuildFilter failed: %v", err)
	}
	if f.Status != nil || f.Search != "" {
		t.Errorf("empty parameters should build the zero filter, got %+v", f)
	}

	f, err = BuildFilter("pending", "  milk ")
	if err != nil {
		t.Fatalf("BuildFilter failed: %v", err)
	}
	if f.Status == nil || *f.Status != StatusPending {
		t.Errorf("status not parsed: %v", f.Status)
	}
	if f.Search != "milk" {
		t.Errorf("search term not trimmed: %q", f.Search)
	}

	if _, err := BuildFilter("done", ""); !cerr.IsKind(err, KindInvalidStatus) {
		t.Errorf("expected INVALID_STATUS for unknown status, got %v", err)
	}
}

func TestFilterMatches(t *testing.T) {
	tk := &Task{Title: "Buy MILK", Description: "from the corner store", Status: StatusPending}
	pending := StatusPending
	completed := StatusCompleted

	cases := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{"zero filter matches", Filter{}, true},
		{"status match", Filter{Status: &pending}, true},
		{"status mismatch", Filter{Status: &completed}, false},
		{"search in title, case-insensitive", Filter{Search: "milk"}, true},
		{"search in description", Filter{Search: "CORNER"}, true},
		{"search miss", Filter{Search: "cheese"}, false},
		{"status and search both match", Filter{Status: &pending, Search: "milk"}, true},
		{"status matches but search misses", Filter{Status: &pending, Search: "cheese"}, false},
		{"search matches but status misses", Filter{Status: &completed, Search: "milk"}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.filter.Matches(tk); got != c.want {
				t.Errorf("Matches = %v, want %v", got, c.want)
			}
		})
	}
}

func TestSortNewestFirst(t *testing.T) {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	tasks := []*Task{
		{ID: "01A", CreatedAt: base},
		{ID: "01C", CreatedAt: base.Add(2 * time.Hour)},
		{ID: "01B", CreatedAt: base.Add(time.Hour)},
	}
	SortNewestFirst(tasks)
	if tasks[0].ID != "01C" || tasks[1].ID != "01B" || tasks[2].ID != "01A" {
		t.Errorf("unexpected order: %s %s %s", tasks[0].ID, tasks[1].ID, tasks[2].ID)
	}
}

func TestSortNewestFirstTieBreak(t *testing.T) {
	at := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	tasks := []*Task{
		{ID: "01A", CreatedAt: at},
		{ID: "01B", CreatedAt: at},
	}
	SortNewestFirst(tasks)
	// Equal timestamps fall back to descending id, so the later ULID wins.
	if tasks[0].ID != "01B" {
		t.Errorf("tie break should put the larger id first, got %s", tasks[0].ID)
	}
}
