package task

import (
	"context"
	"sort"
	"sync"

	domain "github.com/isw2-unileon/go-tdd-kata/domain/task"
)

// MemoryTaskRepository provides in-memory task storage.
// It stores copies, so callers never share state with the repository.
type MemoryTaskRepository struct {
	tasks map[string]*domain.Task
	mu    sync.RWMutex
}

var _ domain.TaskRepository = (*MemoryTaskRepository)(nil)

// NewMemoryTaskRepository creates a new in-memory task repository.
func NewMemoryTaskRepository() *MemoryTaskRepository {
	return &MemoryTaskRepository{
		tasks: make(map[string]*domain.Task),
	}
}

// Save inserts or replaces a task by ID.
func (r *MemoryTaskRepository) Save(_ context.Context, t *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tasks[t.ID()] = t.Clone()
	return nil
}

// FindAll returns all tasks ordered by creation time, then ID.
func (r *MemoryTaskRepository) FindAll(_ context.Context) ([]*domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*domain.Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		result = append(result, t.Clone())
	}
	SortTasks(result)
	return result, nil
}

// SortTasks orders tasks by creation time, then ID.
func SortTasks(tasks []*domain.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if !a.CreatedAt().Equal(b.CreatedAt()) {
			return a.CreatedAt().Before(b.CreatedAt())
		}
		return a.ID() < b.ID()
	})
}

// MemoryTagRepository keeps tag associations in memory. FindByTag returns
// identifiers in the order they were first tagged.
type MemoryTagRepository struct {
	tags map[string][]string
	mu   sync.RWMutex
}

var _ domain.TagRepository = (*MemoryTagRepository)(nil)

func NewMemoryTagRepository() *MemoryTagRepository {
	return &MemoryTagRepository{
		tags: make(map[string][]string),
	}
}

// AddTag associates tag with taskID. Repeating a pair has no effect.
func (r *MemoryTagRepository) AddTag(_ context.Context, taskID, tag string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range r.tags[tag] {
		if id == taskID {
			return nil
		}
	}
	r.tags[tag] = append(r.tags[tag], taskID)
	return nil
}

// FindByTag returns the identifiers tagged with tag.
func (r *MemoryTagRepository) FindByTag(_ context.Context, tag string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, len(r.tags[tag]))
	copy(ids, r.tags[tag])
	return ids, nil
}
