package task

import (
	domain "github.com/isw2-unileon/go-tdd-kata/domain/task"
)

// Plugin aliases the task module looks for in SetPlugin.
const (
	TaskStoreAlias = "task-store"
	TagStoreAlias  = "tag-store"
	CacheAlias     = "cache"
)

// TaskStore is implemented by plugins that persist tasks.
// TaskRepository is called after the plugin has started.
type TaskStore interface {
	TaskRepository() domain.TaskRepository
}

// TagStore is implemented by plugins that persist tag associations.
type TagStore interface {
	TagRepository() domain.TagRepository
}

// RepositoryCache is implemented by plugins that cache task reads.
type RepositoryCache interface {
	WrapRepository(repo domain.TaskRepository) domain.TaskRepository
}
