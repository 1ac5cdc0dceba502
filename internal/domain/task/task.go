// Package task defines the Task domain entity.
package task

import (
	"cmp"
	"slices"
	"time"
)

// Status represents the current state of a task.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
)

// Valid reports whether s is one of the recognized lifecycle states.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusRunning, StatusCompleted:
		return true
	default:
		return false
	}
}

// Task represents one schedulable unit of work inside a day bucket.
type Task struct {
	ID                   string     `json:"id"`
	Title                string     `json:"title"`
	Description          string     `json:"description"`
	StartTime            time.Time  `json:"startTime"`
	Order                int        `json:"order"`
	Status               Status     `json:"status"`
	CompletedAt          *time.Time `json:"completedAt"`
	CompletedDescription string     `json:"completedDescription"`
	CreatedAt            time.Time  `json:"createdAt"`
}

// ApplyStatus sets the status. Only a transition to completed stamps the
// completion fields; any other status leaves earlier completion data in place.
func (t *Task) ApplyStatus(s Status, completedDescription string, now time.Time) {
	t.Status = s
	if s != StatusCompleted {
		return
	}
	at := now
	t.CompletedAt = &at
	t.CompletedDescription = completedDescription
}

// PendingDue reports whether the task is pending and its start time has passed.
func (t *Task) PendingDue(now time.Time) bool {
	return t.Status == StatusPending && !t.StartTime.After(now)
}

// SortByOrder sorts tasks by Order ascending, keeping insertion order on ties.
func SortByOrder(tasks []Task) {
	slices.SortStableFunc(tasks, func(a, b Task) int {
		return cmp.Compare(a.Order, b.Order)
	})
}
