package task

import (
	"fmt"
	"strings"
	"time"
)

// Snapshot is the persisted form of a Task.
type Snapshot struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Status      Status     `json:"status"`
	Priority    Priority   `json:"priority"`
	DueDate     time.Time  `json:"due_date"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Snapshot returns a detached copy of the task's state.
func (t *Task) Snapshot() Snapshot {
	return Snapshot{
		ID:          t.id,
		Title:       t.title,
		Status:      t.status,
		Priority:    t.priority,
		DueDate:     t.dueDate,
		CreatedAt:   t.createdAt,
		CompletedAt: t.CompletedAt(),
	}
}

// Restore rebuilds a task from a snapshot. A restored task stamps later
// completions with clock, or time.Now when none is given.
func Restore(s Snapshot, clock ...Clock) (*Task, error) {
	switch {
	case strings.TrimSpace(s.ID) == "":
		return nil, fmt.Errorf("%w: missing id", ErrCorruptSnapshot)
	case strings.TrimSpace(s.Title) == "":
		return nil, fmt.Errorf("%w: task %s has no title", ErrCorruptSnapshot, s.ID)
	case !s.Status.Valid():
		return nil, fmt.Errorf("%w: task %s has status %q", ErrCorruptSnapshot, s.ID, s.Status)
	case !s.Priority.Valid():
		return nil, fmt.Errorf("%w: task %s has priority %q", ErrCorruptSnapshot, s.ID, s.Priority)
	case (s.Status == StatusDone) != (s.CompletedAt != nil):
		return nil, fmt.Errorf("%w: task %s completion time does not match status", ErrCorruptSnapshot, s.ID)
	}

	t := &Task{
		id:        s.ID,
		title:     strings.TrimSpace(s.Title),
		status:    s.Status,
		priority:  s.Priority,
		dueDate:   s.DueDate,
		createdAt: s.CreatedAt,
	}
	if s.CompletedAt != nil {
		at := *s.CompletedAt
		t.completedAt = &at
	}
	if len(clock) > 0 {
		t.clock = clock[0]
	}
	return t, nil
}
