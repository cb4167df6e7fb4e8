package task

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// TaskList is an in-memory collection of tasks keyed by title.
// Members keep their insertion order. The list holds the tasks passed to Add,
// and its lock covers membership only.
type TaskList struct {
	mu       sync.RWMutex
	tasks    []*Task
	byTitle  map[string]*Task
	capacity int
}

type ListOption func(*TaskList)

// WithCapacity bounds the number of members. n <= 0 leaves the list unbounded.
func WithCapacity(n int) ListOption {
	return func(l *TaskList) {
		if n > 0 {
			l.capacity = n
		}
	}
}

func NewTaskList(opts ...ListOption) *TaskList {
	l := &TaskList{byTitle: make(map[string]*Task)}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Add inserts t. Duplicate titles are rejected before capacity is checked.
func (l *TaskList) Add(t *Task) error {
	if t == nil {
		return fmt.Errorf("%w: nil task", ErrInvalidInput)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.byTitle[t.Title()]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateTask, t.Title())
	}
	if l.capacity > 0 && len(l.tasks) >= l.capacity {
		return fmt.Errorf("%w: list holds %d tasks", ErrCapacityExceeded, l.capacity)
	}
	l.tasks = append(l.tasks, t)
	l.byTitle[t.Title()] = t
	return nil
}

// Complete marks the titled task done in place.
func (l *TaskList) Complete(title string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	t, err := l.lookup(title)
	if err != nil {
		return err
	}
	return t.Complete()
}

// Postpone moves the titled task's due date forward in place.
func (l *TaskList) Postpone(title string, days int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	t, err := l.lookup(title)
	if err != nil {
		return err
	}
	return t.Postpone(days)
}

// Prioritize changes the titled task's priority.
func (l *TaskList) Prioritize(title string, p Priority) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	t, err := l.lookup(title)
	if err != nil {
		return err
	}
	return t.Prioritize(p)
}

// Find returns the titled member.
func (l *TaskList) Find(title string) (*Task, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	t, ok := l.byTitle[strings.TrimSpace(title)]
	if !ok {
		return nil, false
	}
	return t, true
}

func (l *TaskList) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.tasks)
}

// Pending returns the unfinished members in insertion order.
func (l *TaskList) Pending() []*Task {
	return l.filter(func(t *Task) bool { return !t.IsCompleted() })
}

// Overdue returns the members overdue at now, in insertion order.
func (l *TaskList) Overdue(now time.Time) []*Task {
	return l.filter(func(t *Task) bool { return t.IsOverdue(now) })
}

func (l *TaskList) filter(keep func(*Task) bool) []*Task {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make([]*Task, 0, len(l.tasks))
	for _, t := range l.tasks {
		if keep(t) {
			result = append(result, t)
		}
	}
	return result
}

func (l *TaskList) lookup(title string) (*Task, error) {
	t, ok := l.byTitle[strings.TrimSpace(title)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrTaskNotFound, title)
	}
	return t, nil
}
