package task

import (
	"context"
	"errors"
	"log"

	"github.com/go-monolith/mono"
	domain "github.com/isw2-unileon/go-tdd-kata/domain/task"
	"github.com/isw2-unileon/go-tdd-kata/events"
)

// Domain failures are returned inside the reply so the caller can rebuild the
// error kind. A non-nil handler error is reserved for transport problems.

// addTask handles the add service request.
func (m *TaskModule) addTask(ctx context.Context, req AddTaskRequest, _ *mono.Msg) (TaskReply, error) {
	t, err := m.service.Add(ctx, req.Title, req.DueDate)
	if err != nil {
		return TaskReply{Result: failure(err)}, nil
	}

	if m.eventBus != nil {
		event := events.TaskCreatedEvent{
			TaskID:    t.ID(),
			Title:     t.Title(),
			DueDate:   t.DueDate(),
			CreatedAt: t.CreatedAt(),
		}
		if err := events.TaskCreatedV1.Publish(m.eventBus, event, nil); err != nil {
			log.Printf("[task] Warning: failed to publish TaskCreated event for task %s: %v", t.ID(), err)
		}
	}

	resp := ToTaskResponse(t)
	return TaskReply{Task: &resp}, nil
}

// getTask handles the get service request.
func (m *TaskModule) getTask(ctx context.Context, req TitleRequest, _ *mono.Msg) (TaskReply, error) {
	t, err := m.service.Get(ctx, req.Title)
	if err != nil {
		return TaskReply{Result: failure(err)}, nil
	}
	resp := ToTaskResponse(t)
	return TaskReply{Task: &resp}, nil
}

// completeTask handles the complete service request. A failed overdue
// notification is reported, but the completion event is still published
// because the task is already saved as done.
func (m *TaskModule) completeTask(ctx context.Context, req TitleRequest, _ *mono.Msg) (TaskReply, error) {
	wasOverdue, err := m.service.complete(ctx, req.Title)
	var depErr *domain.DependencyError
	if err != nil && !(errors.As(err, &depErr) && depErr.Dependency == "notifier") {
		return TaskReply{Result: failure(err)}, nil
	}

	reply := TaskReply{}
	if err != nil {
		reply.Result = failure(err)
	}

	t, getErr := m.service.Get(ctx, req.Title)
	if getErr != nil {
		log.Printf("[task] Warning: completed task %q could not be reloaded: %v", req.Title, getErr)
		return reply, nil
	}

	if m.eventBus != nil && t.CompletedAt() != nil {
		event := events.TaskCompletedEvent{
			TaskID:      t.ID(),
			Title:       t.Title(),
			WasOverdue:  wasOverdue,
			CompletedAt: *t.CompletedAt(),
		}
		if err := events.TaskCompletedV1.Publish(m.eventBus, event, nil); err != nil {
			log.Printf("[task] Warning: failed to publish TaskCompleted event for task %s: %v", t.ID(), err)
		}
	}

	resp := ToTaskResponse(t)
	reply.Task = &resp
	return reply, nil
}

// postponeTask handles the postpone service request.
func (m *TaskModule) postponeTask(ctx context.Context, req PostponeTaskRequest, _ *mono.Msg) (TaskReply, error) {
	if err := m.service.PostponeTask(ctx, req.Title, req.Days); err != nil {
		return TaskReply{Result: failure(err)}, nil
	}
	return m.getTask(ctx, TitleRequest{Title: req.Title}, nil)
}

// prioritizeTask handles the prioritize service request.
func (m *TaskModule) prioritizeTask(ctx context.Context, req PrioritizeTaskRequest, _ *mono.Msg) (TaskReply, error) {
	p, err := domain.ParsePriority(req.Priority)
	if err != nil {
		return TaskReply{Result: failure(err)}, nil
	}
	if err := m.service.PrioritizeTask(ctx, req.Title, p); err != nil {
		return TaskReply{Result: failure(err)}, nil
	}
	return m.getTask(ctx, TitleRequest{Title: req.Title}, nil)
}

// listPending handles the list-pending service request.
func (m *TaskModule) listPending(ctx context.Context, _ ListPendingRequest, _ *mono.Msg) (TaskListReply, error) {
	tasks, err := m.service.ListPending(ctx)
	if err != nil {
		return TaskListReply{Result: failure(err), Tasks: []TaskResponse{}}, nil
	}
	return taskListReply(tasks), nil
}

// listOverdue handles the list-overdue service request.
func (m *TaskModule) listOverdue(ctx context.Context, req ListOverdueRequest, _ *mono.Msg) (TaskListReply, error) {
	now := req.Now
	if now.IsZero() {
		now = m.clock()
	}
	tasks, err := m.service.ListOverdue(ctx, now)
	if err != nil {
		return TaskListReply{Result: failure(err), Tasks: []TaskResponse{}}, nil
	}
	return taskListReply(tasks), nil
}

// tagTask handles the tag service request.
func (m *TaskModule) tagTask(ctx context.Context, req TagTaskRequest, _ *mono.Msg) (AckReply, error) {
	if err := m.service.TagTask(ctx, req.Title, req.Tag); err != nil {
		return AckReply{Result: failure(err)}, nil
	}
	return AckReply{}, nil
}

// searchByTag handles the search-by-tag service request.
func (m *TaskModule) searchByTag(ctx context.Context, req SearchByTagRequest, _ *mono.Msg) (TaskListReply, error) {
	tasks, err := m.service.SearchByTag(ctx, req.Tag)
	if err != nil {
		return TaskListReply{Result: failure(err), Tasks: []TaskResponse{}}, nil
	}
	return taskListReply(tasks), nil
}

// inboxAdd handles the inbox-add service request.
func (m *TaskModule) inboxAdd(_ context.Context, req AddTaskRequest, _ *mono.Msg) (TaskReply, error) {
	m.inboxMu.Lock()
	defer m.inboxMu.Unlock()

	t, err := m.factory.New(req.Title, req.DueDate)
	if err != nil {
		return TaskReply{Result: failure(err)}, nil
	}
	if err := m.inbox.Add(t); err != nil {
		return TaskReply{Result: failure(err)}, nil
	}
	resp := ToTaskResponse(t)
	return TaskReply{Task: &resp}, nil
}

// inboxComplete handles the inbox-complete service request.
func (m *TaskModule) inboxComplete(_ context.Context, req TitleRequest, _ *mono.Msg) (AckReply, error) {
	m.inboxMu.Lock()
	defer m.inboxMu.Unlock()

	if err := m.inbox.Complete(req.Title); err != nil {
		return AckReply{Result: failure(err)}, nil
	}
	return AckReply{}, nil
}

// inboxPostpone handles the inbox-postpone service request.
func (m *TaskModule) inboxPostpone(_ context.Context, req PostponeTaskRequest, _ *mono.Msg) (AckReply, error) {
	m.inboxMu.Lock()
	defer m.inboxMu.Unlock()

	if err := m.inbox.Postpone(req.Title, req.Days); err != nil {
		return AckReply{Result: failure(err)}, nil
	}
	return AckReply{}, nil
}

// inboxPending handles the inbox-pending service request.
func (m *TaskModule) inboxPending(_ context.Context, _ ListPendingRequest, _ *mono.Msg) (TaskListReply, error) {
	m.inboxMu.Lock()
	defer m.inboxMu.Unlock()

	return taskListReply(m.inbox.Pending()), nil
}

// inboxOverdue handles the inbox-overdue service request.
func (m *TaskModule) inboxOverdue(_ context.Context, req ListOverdueRequest, _ *mono.Msg) (TaskListReply, error) {
	m.inboxMu.Lock()
	defer m.inboxMu.Unlock()

	now := req.Now
	if now.IsZero() {
		now = m.clock()
	}
	return taskListReply(m.inbox.Overdue(now)), nil
}

func taskListReply(tasks []*domain.Task) TaskListReply {
	return TaskListReply{
		Tasks: toTaskResponses(tasks),
		Total: len(tasks),
	}
}
