package task

import (
	"context"
	"time"

	domain "github.com/isw2-unileon/go-tdd-kata/domain/task"
)

// Result carries a domain failure across the request-reply boundary.
// Code is one of the Code* constants.
type Result struct {
	Error string `json:"error,omitempty"`
	Code  string `json:"code,omitempty"`
}

// AddTaskRequest is the request for adding a task.
type AddTaskRequest struct {
	Title   string    `json:"title"`
	DueDate time.Time `json:"due_date"`
}

// TitleRequest addresses a single task by title.
type TitleRequest struct {
	Title string `json:"title"`
}

// PostponeTaskRequest is the request for postponing a task.
type PostponeTaskRequest struct {
	Title string `json:"title"`
	Days  int    `json:"days"`
}

// PrioritizeTaskRequest is the request for changing a task's priority.
type PrioritizeTaskRequest struct {
	Title    string `json:"title"`
	Priority string `json:"priority"`
}

// ListPendingRequest is the request for listing unfinished tasks.
type ListPendingRequest struct{}

// ListOverdueRequest is the request for listing overdue tasks.
// A zero Now means the service's current time.
type ListOverdueRequest struct {
	Now time.Time `json:"now,omitempty"`
}

// TagTaskRequest is the request for tagging a task.
type TagTaskRequest struct {
	Title string `json:"title"`
	Tag   string `json:"tag"`
}

// SearchByTagRequest is the request for finding tasks by tag.
type SearchByTagRequest struct {
	Tag string `json:"tag"`
}

// TaskResponse is the response for a single task.
type TaskResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     time.Time  `json:"due_date"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// TaskReply wraps a single task or a failure.
type TaskReply struct {
	Result
	Task *TaskResponse `json:"task,omitempty"`
}

// TaskListReply wraps a list of tasks or a failure.
type TaskListReply struct {
	Result
	Tasks []TaskResponse `json:"tasks"`
	Total int            `json:"total"`
}

// AckReply reports success or a failure for commands without a payload.
type AckReply struct {
	Result
}

// TaskPort defines the task operations available to driving adapters.
type TaskPort interface {
	AddTask(ctx context.Context, title string, dueDate time.Time) (*TaskResponse, error)
	GetTask(ctx context.Context, title string) (*TaskResponse, error)
	CompleteTask(ctx context.Context, title string) (*TaskResponse, error)
	PostponeTask(ctx context.Context, title string, days int) (*TaskResponse, error)
	PrioritizeTask(ctx context.Context, title, priority string) (*TaskResponse, error)
	ListPending(ctx context.Context) ([]TaskResponse, error)
	ListOverdue(ctx context.Context, now time.Time) ([]TaskResponse, error)
	TagTask(ctx context.Context, title, tag string) error
	SearchByTag(ctx context.Context, tag string) ([]TaskResponse, error)
}

// InboxPort exposes the repository-free in-memory task list.
type InboxPort interface {
	InboxAdd(ctx context.Context, title string, dueDate time.Time) (*TaskResponse, error)
	InboxComplete(ctx context.Context, title string) error
	InboxPostpone(ctx context.Context, title string, days int) error
	InboxPending(ctx context.Context) ([]TaskResponse, error)
	InboxOverdue(ctx context.Context, now time.Time) ([]TaskResponse, error)
}

// Client is the combined port returned by NewTaskAdapter.
type Client interface {
	TaskPort
	InboxPort
}

// ToTaskResponse converts a domain Task to a TaskResponse.
func ToTaskResponse(t *domain.Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID(),
		Title:       t.Title(),
		Status:      string(t.Status()),
		Priority:    string(t.Priority()),
		DueDate:     t.DueDate(),
		CreatedAt:   t.CreatedAt(),
		CompletedAt: t.CompletedAt(),
	}
}

func toTaskResponses(tasks []*domain.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, ToTaskResponse(t))
	}
	return out
}
