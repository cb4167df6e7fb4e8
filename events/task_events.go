package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"
)

// TaskCreatedEvent is emitted when a new task is added.
type TaskCreatedEvent struct {
	TaskID    string    `json:"task_id"`
	Title     string    `json:"title"`
	DueDate   time.Time `json:"due_date"`
	CreatedAt time.Time `json:"created_at"`
}

// TaskCreatedV1 is the typed event definition for task creation.
// Subject: events.task.v1.task-created
var TaskCreatedV1 = helper.EventDefinition[TaskCreatedEvent](
	"task", "TaskCreated", "v1",
)

// TaskCompletedEvent is emitted when a task is marked complete.
type TaskCompletedEvent struct {
	TaskID      string    `json:"task_id"`
	Title       string    `json:"title"`
	WasOverdue  bool      `json:"was_overdue"`
	CompletedAt time.Time `json:"completed_at"`
}

// TaskCompletedV1 is the typed event definition for task completion.
// Subject: events.task.v1.task-completed
var TaskCompletedV1 = helper.EventDefinition[TaskCompletedEvent](
	"task", "TaskCompleted", "v1",
)

// TaskNotificationEvent carries a message about a task to whoever delivers it.
type TaskNotificationEvent struct {
	TaskRef string    `json:"task_ref"`
	Message string    `json:"message"`
	SentAt  time.Time `json:"sent_at"`
}

// TaskNotificationV1 is the typed event definition for task notifications.
// Subject: events.task.v1.task-notification
var TaskNotificationV1 = helper.EventDefinition[TaskNotificationEvent](
	"task", "TaskNotification", "v1",
)
