package task

import (
	"sort"
	"strings"
)

// Filter is a predicate over tasks built from list query parameters. The zero
// value matches all tasks.
type Filter struct {
	Status *Status
	Search string
}

// BuildFilter translates the status and search query parameters into a
// Filter. An unrecognized status is rejected; an empty parameter means the
// dimension is unconstrained. BuildFilter never touches the store.
func BuildFilter(statusParam, searchParam string) (Filter, error) {
	var f Filter
	if statusParam != "" {
		status, err := ParseStatus(statusParam)
		if err != nil {
			return Filter{}, err
		}
		f.Status = &status
	}
	f.Search = strings.TrimSpace(searchParam)
	return f, nil
}

// Matches reports whether t satisfies the filter. The search term matches as
// a case-insensitive substring of the title or the description; when both a
// status and a term are set the predicate is their conjunction.
func (f Filter) Matches(t *Task) bool {
	if f.Status != nil && t.Status != *f.Status {
		return false
	}
	if f.Search != "" {
		term := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(t.Title), term) &&
			!strings.Contains(strings.ToLower(t.Description), term) {
			return false
		}
	}
	return true
}

// SortNewestFirst orders tasks by descending creation time. Ties fall back to
// descending ID; ULIDs are monotonic, so this preserves insertion order.
func SortNewestFirst(tasks []*Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		if !tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
		}
		return tasks[i].ID > tasks[j].ID
	})
}
