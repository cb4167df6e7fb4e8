package task

import "context"

// TaskRepository persists tasks. Save inserts or replaces by ID and is
// idempotent. FindAll returns tasks ordered by creation time, then ID.
type TaskRepository interface {
	Save(ctx context.Context, t *Task) error
	FindAll(ctx context.Context) ([]*Task, error)
}

// Notifier delivers a message about a task.
type Notifier interface {
	Notify(ctx context.Context, taskRef, message string) error
}

// TagRepository associates free-form tags with task identifiers.
// AddTag is idempotent per (task, tag) pair.
type TagRepository interface {
	AddTag(ctx context.Context, taskID, tag string) error
	FindByTag(ctx context.Context, tag string) ([]string, error)
}
