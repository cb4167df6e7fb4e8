package task

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// taskAdapter wraps ServiceContainer for type-safe cross-module communication.
// It implements TaskPort and InboxPort on top of the task module's services.
type taskAdapter struct {
	container mono.ServiceContainer
}

var (
	_ TaskPort  = (*taskAdapter)(nil)
	_ InboxPort = (*taskAdapter)(nil)
)

// NewTaskAdapter creates a new adapter for task services.
// container is the ServiceContainer from the task module received via SetDependencyServiceContainer.
func NewTaskAdapter(container mono.ServiceContainer) Client {
	if container == nil {
		panic("task adapter requires non-nil ServiceContainer")
	}
	return &taskAdapter{container: container}
}

func call[Resp any](ctx context.Context, container mono.ServiceContainer, service string, req any, resp *Resp) error {
	if err := helper.CallRequestReplyService(
		ctx,
		container,
		service,
		json.Marshal,
		json.Unmarshal,
		req,
		resp,
	); err != nil {
		return fmt.Errorf("%s service call failed: %w", service, err)
	}
	return nil
}

func (a *taskAdapter) callTask(ctx context.Context, service string, req any) (*TaskResponse, error) {
	var resp TaskReply
	if err := call(ctx, a.container, service, req, &resp); err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	return resp.Task, nil
}

func (a *taskAdapter) callList(ctx context.Context, service string, req any) ([]TaskResponse, error) {
	var resp TaskListReply
	if err := call(ctx, a.container, service, req, &resp); err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	if resp.Tasks == nil {
		return []TaskResponse{}, nil
	}
	return resp.Tasks, nil
}

func (a *taskAdapter) callAck(ctx context.Context, service string, req any) error {
	var resp AckReply
	if err := call(ctx, a.container, service, req, &resp); err != nil {
		return err
	}
	return resp.Err()
}

// AddTask creates a task via the add service.
func (a *taskAdapter) AddTask(ctx context.Context, title string, dueDate time.Time) (*TaskResponse, error) {
	return a.callTask(ctx, "add", &AddTaskRequest{Title: title, DueDate: dueDate})
}

// GetTask retrieves a task by title via the get service.
func (a *taskAdapter) GetTask(ctx context.Context, title string) (*TaskResponse, error) {
	return a.callTask(ctx, "get", &TitleRequest{Title: title})
}

// CompleteTask marks a task as completed via the complete service.
func (a *taskAdapter) CompleteTask(ctx context.Context, title string) (*TaskResponse, error) {
	return a.callTask(ctx, "complete", &TitleRequest{Title: title})
}

// PostponeTask moves a task's due date via the postpone service.
func (a *taskAdapter) PostponeTask(ctx context.Context, title string, days int) (*TaskResponse, error) {
	return a.callTask(ctx, "postpone", &PostponeTaskRequest{Title: title, Days: days})
}

// PrioritizeTask changes a task's priority via the prioritize service.
func (a *taskAdapter) PrioritizeTask(ctx context.Context, title, priority string) (*TaskResponse, error) {
	return a.callTask(ctx, "prioritize", &PrioritizeTaskRequest{Title: title, Priority: priority})
}

// ListPending lists unfinished tasks via the list-pending service.
func (a *taskAdapter) ListPending(ctx context.Context) ([]TaskResponse, error) {
	return a.callList(ctx, "list-pending", &ListPendingRequest{})
}

// ListOverdue lists tasks overdue at now via the list-overdue service.
func (a *taskAdapter) ListOverdue(ctx context.Context, now time.Time) ([]TaskResponse, error) {
	return a.callList(ctx, "list-overdue", &ListOverdueRequest{Now: now})
}

// TagTask tags a task via the tag service.
func (a *taskAdapter) TagTask(ctx context.Context, title, tag string) error {
	return a.callAck(ctx, "tag", &TagTaskRequest{Title: title, Tag: tag})
}

// SearchByTag finds tagged tasks via the search-by-tag service.
func (a *taskAdapter) SearchByTag(ctx context.Context, tag string) ([]TaskResponse, error) {
	return a.callList(ctx, "search-by-tag", &SearchByTagRequest{Tag: tag})
}

// InboxAdd adds a task to the in-memory inbox.
func (a *taskAdapter) InboxAdd(ctx context.Context, title string, dueDate time.Time) (*TaskResponse, error) {
	return a.callTask(ctx, "inbox-add", &AddTaskRequest{Title: title, DueDate: dueDate})
}

// InboxComplete completes an inbox task.
func (a *taskAdapter) InboxComplete(ctx context.Context, title string) error {
	return a.callAck(ctx, "inbox-complete", &TitleRequest{Title: title})
}

// InboxPostpone postpones an inbox task.
func (a *taskAdapter) InboxPostpone(ctx context.Context, title string, days int) error {
	return a.callAck(ctx, "inbox-postpone", &PostponeTaskRequest{Title: title, Days: days})
}

// InboxPending lists unfinished inbox tasks.
func (a *taskAdapter) InboxPending(ctx context.Context) ([]TaskResponse, error) {
	return a.callList(ctx, "inbox-pending", &ListPendingRequest{})
}

// InboxOverdue lists inbox tasks overdue at now.
func (a *taskAdapter) InboxOverdue(ctx context.Context, now time.Time) ([]TaskResponse, error) {
	return a.callList(ctx, "inbox-overdue", &ListOverdueRequest{Now: now})
}
