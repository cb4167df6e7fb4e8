package sqlitestore

import (
	"time"

	domain "github.com/isw2-unileon/go-tdd-kata/domain/task"
)

// taskRecord is the GORM model for a persisted task.
type taskRecord struct {
	ID          string    `gorm:"primarykey;size:64"`
	Title       string    `gorm:"size:200;not null;index"`
	Status      string    `gorm:"size:16;not null"`
	Priority    string    `gorm:"size:16;not null"`
	DueDate     time.Time `gorm:"not null"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime:false;index"`
	CompletedAt *time.Time
}

// TableName returns the table name for taskRecord.
func (taskRecord) TableName() string {
	return "tasks"
}

// tagRecord links a task to a tag. ID keeps insertion order.
type tagRecord struct {
	ID     uint   `gorm:"primarykey"`
	Tag    string `gorm:"size:100;not null;uniqueIndex:idx_tag_task"`
	TaskID string `gorm:"size:64;not null;uniqueIndex:idx_tag_task"`
}

// TableName returns the table name for tagRecord.
func (tagRecord) TableName() string {
	return "task_tags"
}

func fromSnapshot(s domain.Snapshot) taskRecord {
	return taskRecord{
		ID:          s.ID,
		Title:       s.Title,
		Status:      string(s.Status),
		Priority:    string(s.Priority),
		DueDate:     s.DueDate.UTC(),
		CreatedAt:   s.CreatedAt.UTC(),
		CompletedAt: utcPtr(s.CompletedAt),
	}
}

func (r taskRecord) snapshot() domain.Snapshot {
	return domain.Snapshot{
		ID:          r.ID,
		Title:       r.Title,
		Status:      domain.Status(r.Status),
		Priority:    domain.Priority(r.Priority),
		DueDate:     r.DueDate.UTC(),
		CreatedAt:   r.CreatedAt.UTC(),
		CompletedAt: utcPtr(r.CompletedAt),
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
