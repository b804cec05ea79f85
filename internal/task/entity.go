package task

import "time"

// Status is the lifecycle stage of a task. It is a closed enumeration; no
// other value is ever persisted.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// AllStatuses lists the allowed status values in lifecycle order.
func AllStatuses() []Status {
	return []Status{StatusPending, StatusInProgress, StatusCompleted}
}

// transitions is the forward-only transition table. Completed is terminal.
var transitions = map[Status]Status{
	StatusPending:    StatusInProgress,
	StatusInProgress: StatusCompleted,
}

// CanTransitionTo reports whether the forward-only lifecycle allows moving
// from s to next.
func (s Status) CanTransitionTo(next Status) bool {
	to, ok := transitions[s]
	return ok && to == next
}

func (s Status) valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

type Task struct {
	ID          string    `json:"id" yaml:"id"`
	Title       string    `json:"title" yaml:"title"`
	Description string    `json:"description" yaml:"description"`
	Status      Status    `json:"status" yaml:"status"`
	CreatedAt   time.Time `json:"createdAt" yaml:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" yaml:"updated_at"`
}

// Clone returns a deep copy. Callers mutate clones, never shared records.
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
