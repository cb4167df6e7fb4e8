package sqlitestore

import (
	"context"
	"fmt"

	domain "github.com/isw2-unileon/go-tdd-kata/domain/task"
	"github.com/isw2-unileon/go-tdd-kata/modules/task"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var _ domain.TaskRepository = (*TaskRepository)(nil)
var _ domain.TagRepository = (*TagRepository)(nil)

// TaskRepository persists tasks in SQLite through GORM.
type TaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a task repository over db.
func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Migrate creates or updates the tasks table.
func (r *TaskRepository) Migrate() error {
	return r.db.AutoMigrate(&taskRecord{})
}

// Save inserts the task or replaces the row with the same ID.
func (r *TaskRepository) Save(ctx context.Context, t *domain.Task) error {
	rec := fromSnapshot(t.Snapshot())
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&rec).Error
	if err != nil {
		return fmt.Errorf("failed to save task: %w", err)
	}
	return nil
}

// FindAll returns every stored task ordered by creation time, then ID.
func (r *TaskRepository) FindAll(ctx context.Context) ([]*domain.Task, error) {
	var recs []taskRecord
	if err := r.db.WithContext(ctx).Order("created_at, id").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to find tasks: %w", err)
	}

	tasks := make([]*domain.Task, 0, len(recs))
	for _, rec := range recs {
		t, err := domain.Restore(rec.snapshot())
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	task.SortTasks(tasks)
	return tasks, nil
}

// TagRepository persists tag associations in SQLite through GORM.
type TagRepository struct {
	db *gorm.DB
}

// NewTagRepository creates a tag repository over db.
func NewTagRepository(db *gorm.DB) *TagRepository {
	return &TagRepository{db: db}
}

// Migrate creates or updates the task_tags table.
func (r *TagRepository) Migrate() error {
	return r.db.AutoMigrate(&tagRecord{})
}

// AddTag links taskID to tag. Adding an existing link is a no-op.
func (r *TagRepository) AddTag(ctx context.Context, taskID, tag string) error {
	rec := tagRecord{Tag: tag, TaskID: taskID}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rec).Error
	if err != nil {
		return fmt.Errorf("failed to add tag: %w", err)
	}
	return nil
}

// FindByTag returns the IDs tagged with tag in the order they were tagged.
func (r *TagRepository) FindByTag(ctx context.Context, tag string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&tagRecord{}).
		Where("tag = ?", tag).
		Order("id").
		Pluck("task_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find tag %q: %w", tag, err)
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}
