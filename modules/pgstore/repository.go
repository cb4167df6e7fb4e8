package pgstore

import (
	"context"
	"fmt"

	domain "github.com/isw2-unileon/go-tdd-kata/domain/task"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of pgxpool.Pool and pgx.Tx used by the repository.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

var schema = []string{`
CREATE TABLE IF NOT EXISTS tasks (
	id           TEXT PRIMARY KEY,
	title        TEXT NOT NULL,
	status       TEXT NOT NULL,
	priority     TEXT NOT NULL,
	due_date     TIMESTAMPTZ NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL,
	completed_at TIMESTAMPTZ
)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_created_at ON tasks (created_at, id)`,
}

const upsertTask = `
INSERT INTO tasks (id, title, status, priority, due_date, created_at, completed_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (id) DO UPDATE SET
	title = EXCLUDED.title,
	status = EXCLUDED.status,
	priority = EXCLUDED.priority,
	due_date = EXCLUDED.due_date,
	created_at = EXCLUDED.created_at,
	completed_at = EXCLUDED.completed_at
`

const selectTasks = `
SELECT id, title, status, priority, due_date, created_at, completed_at
FROM tasks
ORDER BY created_at, id
`

var _ domain.TaskRepository = (*Repository)(nil)

// Repository persists tasks in PostgreSQL.
type Repository struct {
	db DBTX
}

// NewRepository creates a new task repository.
func NewRepository(db DBTX) *Repository {
	return &Repository{db: db}
}

// EnsureSchema creates the tasks table when it does not exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := r.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// Save inserts the task or replaces the row with the same ID.
func (r *Repository) Save(ctx context.Context, t *domain.Task) error {
	s := t.Snapshot()
	_, err := r.db.Exec(ctx, upsertTask,
		s.ID, s.Title, string(s.Status), string(s.Priority),
		s.DueDate, s.CreatedAt, s.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save task: %w", err)
	}
	return nil
}

// FindAll returns every stored task ordered by creation time, then ID.
func (r *Repository) FindAll(ctx context.Context) ([]*domain.Task, error) {
	rows, err := r.db.Query(ctx, selectTasks)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}

	snapshots, err := pgx.CollectRows(rows, scanSnapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to scan tasks: %w", err)
	}

	tasks := make([]*domain.Task, 0, len(snapshots))
	for _, s := range snapshots {
		t, err := domain.Restore(s)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func scanSnapshot(row pgx.CollectableRow) (domain.Snapshot, error) {
	var (
		s        domain.Snapshot
		status   string
		priority string
	)
	if err := row.Scan(&s.ID, &s.Title, &status, &priority, &s.DueDate, &s.CreatedAt, &s.CompletedAt); err != nil {
		return domain.Snapshot{}, err
	}
	s.Status = domain.Status(status)
	s.Priority = domain.Priority(priority)
	s.DueDate = s.DueDate.UTC()
	s.CreatedAt = s.CreatedAt.UTC()
	if s.CompletedAt != nil {
		done := s.CompletedAt.UTC()
		s.CompletedAt = &done
	}
	return s, nil
}
