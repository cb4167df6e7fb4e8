package cache

import (
	"context"
	"log"

	domain "github.com/isw2-unileon/go-tdd-kata/domain/task"
	"golang.org/x/sync/singleflight"
)

const allTasksKey = "tasks:all"

// CachedRepository caches FindAll results of another repository.
// Save writes through and drops the cached list.
type CachedRepository struct {
	inner   domain.TaskRepository
	cache   CacheService
	sfGroup singleflight.Group
}

var _ domain.TaskRepository = (*CachedRepository)(nil)

// NewCachedRepository wraps inner with the given cache.
func NewCachedRepository(inner domain.TaskRepository, cache CacheService) *CachedRepository {
	return &CachedRepository{
		inner: inner,
		cache: cache,
	}
}

// Save stores t in the wrapped repository and invalidates the cached list.
func (r *CachedRepository) Save(ctx context.Context, t *domain.Task) error {
	if err := r.inner.Save(ctx, t); err != nil {
		return err
	}
	if err := r.cache.Delete(ctx, allTasksKey); err != nil {
		log.Printf("[cache] Warning: failed to invalidate task list: %v", err)
	}
	return nil
}

// FindAll serves the task list from the cache, loading it from the wrapped
// repository on a miss. Concurrent misses share one load.
func (r *CachedRepository) FindAll(ctx context.Context) ([]*domain.Task, error) {
	var cached []domain.Snapshot
	found, err := r.cache.Get(ctx, allTasksKey, &cached)
	if err != nil {
		// Continue to the store on cache error
		log.Printf("[cache] Cache error for task list: %v", err)
	}

	if found {
		tasks, err := restoreAll(cached)
		if err == nil {
			return tasks, nil
		}
		log.Printf("[cache] Dropping unreadable task list: %v", err)
		_ = r.cache.Delete(ctx, allTasksKey)
	}

	val, err, _ := r.sfGroup.Do(allTasksKey, func() (any, error) {
		tasks, err := r.inner.FindAll(ctx)
		if err != nil {
			return nil, err
		}

		snapshots := make([]domain.Snapshot, 0, len(tasks))
		for _, t := range tasks {
			snapshots = append(snapshots, t.Snapshot())
		}

		if err := r.cache.Set(ctx, allTasksKey, snapshots); err != nil {
			log.Printf("[cache] Warning: failed to cache task list: %v", err)
		}
		return snapshots, nil
	})
	if err != nil {
		return nil, err
	}

	// Each caller restores its own tasks from the shared snapshots.
	return restoreAll(val.([]domain.Snapshot))
}

func restoreAll(snapshots []domain.Snapshot) ([]*domain.Task, error) {
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
