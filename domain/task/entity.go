package task

import (
	"fmt"
	"strings"
	"time"
)

// Status represents the state of a task.
type Status string

const (
	StatusTodo Status = "todo"
	StatusDone Status = "done"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusTodo || s == StatusDone
}

// Priority is the urgency of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is one of low, medium or high.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// ParsePriority parses a priority name, ignoring case and surrounding space.
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidPriority, s)
	}
	return p, nil
}

// Task is a single todo item. State only changes through Complete, Postpone
// and Prioritize; everything else is a read-only projection.
type Task struct {
	id          string
	title       string
	status      Status
	priority    Priority
	dueDate     time.Time
	createdAt   time.Time
	completedAt *time.Time
	clock       Clock
}

// New builds a task with the default factory.
func New(title string, dueDate time.Time) (*Task, error) {
	return defaultFactory.New(title, dueDate)
}

func (t *Task) ID() string           { return t.id }
func (t *Task) Title() string        { return t.title }
func (t *Task) Status() Status       { return t.status }
func (t *Task) Priority() Priority   { return t.priority }
func (t *Task) DueDate() time.Time   { return t.dueDate }
func (t *Task) CreatedAt() time.Time { return t.createdAt }
func (t *Task) IsCompleted() bool    { return t.status == StatusDone }

// CompletedAt returns a copy of the completion time, nil unless the task is done.
func (t *Task) CompletedAt() *time.Time {
	if t.completedAt == nil {
		return nil
	}
	at := *t.completedAt
	return &at
}

// Complete marks the task done. Completing a finished task returns
// ErrAlreadyCompleted and keeps the original completion time.
func (t *Task) Complete() error {
	if t.status == StatusDone {
		return ErrAlreadyCompleted
	}
	now := t.now()
	t.status = StatusDone
	t.completedAt = &now
	return nil
}

// Postpone moves the due date forward by the given number of calendar days.
func (t *Task) Postpone(days int) error {
	if days <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidDays, days)
	}
	if t.status == StatusDone {
		return ErrAlreadyCompleted
	}
	t.dueDate = t.dueDate.AddDate(0, 0, days)
	return nil
}

// Prioritize overwrites the priority. Any valid priority is accepted in any state.
func (t *Task) Prioritize(p Priority) error {
	if !p.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidPriority, string(p))
	}
	t.priority = p
	return nil
}

// IsOverdue reports whether the task is unfinished and its due date is strictly before now.
func (t *Task) IsOverdue(now time.Time) bool {
	return t.status != StatusDone && t.dueDate.Before(now)
}

// Clone returns an independent copy of the task.
func (t *Task) Clone() *Task {
	c := *t
	c.completedAt = t.CompletedAt()
	return &c
}

// UsingClock returns a copy of the task that stamps completion with clock.
func (t *Task) UsingClock(clock Clock) *Task {
	c := t.Clone()
	c.clock = clock
	return c
}

func (t *Task) now() time.Time {
	if t.clock == nil {
		return time.Now()
	}
	return t.clock()
}
