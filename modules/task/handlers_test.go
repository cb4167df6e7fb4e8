package task

import (
	"context"
	"errors"
	"testing"

	"github.com/go-monolith/mono/pkg/types"
	domain "github.com/isw2-unileon/go-tdd-kata/domain/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockLogger implements types.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(msg string, args ...any)         {}
func (m *mockLogger) Info(msg string, args ...any)          {}
func (m *mockLogger) Warn(msg string, args ...any)          {}
func (m *mockLogger) Error(msg string, args ...any)         {}
func (m *mockLogger) With(args ...any) types.Logger         { return m }
func (m *mockLogger) WithError(err error) types.Logger      { return m }
func (m *mockLogger) WithModule(module string) types.Logger { return m }

// createTestModule creates a started task module backed by memory stores.
func createTestModule(t *testing.T, cfg Config) *TaskModule {
	t.Helper()
	if cfg.Clock == nil {
		cfg.Clock = fixedClock(refNow)
	}
	if cfg.IDGenerator == nil {
		cfg.IDGenerator = domain.NewSequenceGenerator("task")
	}
	m := NewModule(cfg, &mockLogger{})
	require.NoError(t, m.Start(context.Background()))
	t.Cleanup(func() { _ = m.Stop(context.Background()) })
	return m
}

func TestModule_StartDefaultsToMemory(t *testing.T) {
	m := createTestModule(t, Config{})

	health := m.Health(context.Background())
	assert.True(t, health.Healthy)
	assert.Equal(t, "memory", health.Details["store"])
	assert.NotNil(t, m.Service())
}

func TestModule_HealthBeforeStart(t *testing.T) {
	m := NewModule(Config{}, &mockLogger{})
	assert.False(t, m.Health(context.Background()).Healthy)
}

func TestModule_EmitEvents(t *testing.T) {
	m := NewModule(Config{}, &mockLogger{})
	assert.Len(t, m.EmitEvents(), 3)
}

func TestHandleAddAndGet(t *testing.T) {
	m := createTestModule(t, Config{})
	ctx := context.Background()

	resp, err := m.addTask(ctx, AddTaskRequest{Title: "Buy milk", DueDate: refNow}, nil)
	require.NoError(t, err)
	require.NoError(t, resp.Err())
	require.NotNil(t, resp.Task)
	assert.Equal(t, "task-1", resp.Task.ID)
	assert.Equal(t, "todo", resp.Task.Status)
	assert.Equal(t, "medium", resp.Task.Priority)

	got, err := m.getTask(ctx, TitleRequest{Title: "Buy milk"}, nil)
	require.NoError(t, err)
	require.NotNil(t, got.Task)
	assert.Equal(t, resp.Task.ID, got.Task.ID)
}

func TestHandleAdd_ReportsKindInReply(t *testing.T) {
	m := createTestModule(t, Config{})
	ctx := context.Background()

	resp, err := m.addTask(ctx, AddTaskRequest{Title: " "}, nil)
	require.NoError(t, err, "domain failures travel in the reply")
	assert.Equal(t, CodeInvalidInput, resp.Code)
	assert.ErrorIs(t, resp.Err(), domain.ErrInvalidInput)

	_, err = m.addTask(ctx, AddTaskRequest{Title: "Buy milk"}, nil)
	require.NoError(t, err)
	dup, err := m.addTask(ctx, AddTaskRequest{Title: "Buy milk"}, nil)
	require.NoError(t, err)
	assert.Equal(t, CodeConflict, dup.Code)
}

func TestHandleComplete(t *testing.T) {
	m := createTestModule(t, Config{})
	ctx := context.Background()
	_, err := m.addTask(ctx, AddTaskRequest{Title: "Buy milk", DueDate: refNow.AddDate(0, 0, -1)}, nil)
	require.NoError(t, err)

	resp, err := m.completeTask(ctx, TitleRequest{Title: "Buy milk"}, nil)
	require.NoError(t, err)
	require.NoError(t, resp.Err())
	require.NotNil(t, resp.Task)
	assert.Equal(t, "done", resp.Task.Status)
	require.NotNil(t, resp.Task.CompletedAt)

	again, err := m.completeTask(ctx, TitleRequest{Title: "Buy milk"}, nil)
	require.NoError(t, err)
	assert.Equal(t, CodeConflict, again.Code)

	missing, err := m.completeTask(ctx, TitleRequest{Title: "missing"}, nil)
	require.NoError(t, err)
	assert.Equal(t, CodeNotFound, missing.Code)
	assert.Nil(t, missing.Task)
}

func TestHandleComplete_NotifierFailureStillReturnsTask(t *testing.T) {
	m := createTestModule(t, Config{})
	ctx := context.Background()
	m.service = NewTaskService(NewMemoryTaskRepository(), &spyNotifier{err: errors.New("bus closed")},
		WithServiceClock(fixedClock(refNow)))
	_, err := m.addTask(ctx, AddTaskRequest{Title: "Buy milk", DueDate: refNow.AddDate(0, 0, -1)}, nil)
	require.NoError(t, err)

	resp, err := m.completeTask(ctx, TitleRequest{Title: "Buy milk"}, nil)

	require.NoError(t, err)
	assert.Equal(t, CodeDependencyFailure, resp.Code)
	require.NotNil(t, resp.Task)
	assert.Equal(t, "done", resp.Task.Status)
}

func TestHandlePostponeAndPrioritize(t *testing.T) {
	m := createTestModule(t, Config{})
	ctx := context.Background()
	_, err := m.addTask(ctx, AddTaskRequest{Title: "Pay rent", DueDate: refNow}, nil)
	require.NoError(t, err)

	postponed, err := m.postponeTask(ctx, PostponeTaskRequest{Title: "Pay rent", Days: 3}, nil)
	require.NoError(t, err)
	require.NoError(t, postponed.Err())
	assert.Equal(t, refNow.AddDate(0, 0, 3), postponed.Task.DueDate)

	bad, err := m.postponeTask(ctx, PostponeTaskRequest{Title: "Pay rent", Days: -1}, nil)
	require.NoError(t, err)
	assert.Equal(t, CodeInvalidInput, bad.Code)

	prioritized, err := m.prioritizeTask(ctx, PrioritizeTaskRequest{Title: "Pay rent", Priority: "HIGH"}, nil)
	require.NoError(t, err)
	require.NoError(t, prioritized.Err())
	assert.Equal(t, "high", prioritized.Task.Priority)

	invalid, err := m.prioritizeTask(ctx, PrioritizeTaskRequest{Title: "Pay rent", Priority: "urgent"}, nil)
	require.NoError(t, err)
	assert.Equal(t, CodeInvalidInput, invalid.Code)
}

func TestHandleLists(t *testing.T) {
	m := createTestModule(t, Config{})
	ctx := context.Background()
	for _, req := range []AddTaskRequest{
		{Title: "late", DueDate: refNow.AddDate(0, 0, -1)},
		{Title: "soon", DueDate: refNow.AddDate(0, 0, 1)},
	} {
		_, err := m.addTask(ctx, req, nil)
		require.NoError(t, err)
	}

	pending, err := m.listPending(ctx, ListPendingRequest{}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, pending.Total)

	overdue, err := m.listOverdue(ctx, ListOverdueRequest{}, nil)
	require.NoError(t, err)
	require.Equal(t, 1, overdue.Total)
	assert.Equal(t, "late", overdue.Tasks[0].Title)

	later, err := m.listOverdue(ctx, ListOverdueRequest{Now: refNow.AddDate(0, 0, 2)}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, later.Total)
}

func TestHandleTagAndSearch(t *testing.T) {
	m := createTestModule(t, Config{})
	ctx := context.Background()
	_, err := m.addTask(ctx, AddTaskRequest{Title: "Buy milk", DueDate: refNow}, nil)
	require.NoError(t, err)

	ack, err := m.tagTask(ctx, TagTaskRequest{Title: "Buy milk", Tag: "shopping"}, nil)
	require.NoError(t, err)
	require.NoError(t, ack.Err())

	missing, err := m.tagTask(ctx, TagTaskRequest{Title: "missing", Tag: "shopping"}, nil)
	require.NoError(t, err)
	assert.Equal(t, CodeNotFound, missing.Code)

	found, err := m.searchByTag(ctx, SearchByTagRequest{Tag: "shopping"}, nil)
	require.NoError(t, err)
	require.Equal(t, 1, found.Total)
	assert.Equal(t, "Buy milk", found.Tasks[0].Title)
}

func TestHandleInbox(t *testing.T) {
	m := createTestModule(t, Config{InboxCapacity: 2})
	ctx := context.Background()

	for _, title := range []string{"one", "two"} {
		resp, err := m.inboxAdd(ctx, AddTaskRequest{Title: title, DueDate: refNow.AddDate(0, 0, -1)}, nil)
		require.NoError(t, err)
		require.NoError(t, resp.Err())
	}

	full, err := m.inboxAdd(ctx, AddTaskRequest{Title: "three", DueDate: refNow}, nil)
	require.NoError(t, err)
	assert.Equal(t, CodeCapacityExceeded, full.Code)

	dup, err := m.inboxAdd(ctx, AddTaskRequest{Title: "one", DueDate: refNow}, nil)
	require.NoError(t, err)
	assert.Equal(t, CodeConflict, dup.Code)

	ack, err := m.inboxComplete(ctx, TitleRequest{Title: "one"}, nil)
	require.NoError(t, err)
	require.NoError(t, ack.Err())

	missing, err := m.inboxComplete(ctx, TitleRequest{Title: "missing"}, nil)
	require.NoError(t, err)
	assert.Equal(t, CodeNotFound, missing.Code)

	ack, err = m.inboxPostpone(ctx, PostponeTaskRequest{Title: "one", Days: 1}, nil)
	require.NoError(t, err)
	assert.Equal(t, CodeConflict, ack.Code)

	pending, err := m.inboxPending(ctx, ListPendingRequest{}, nil)
	require.NoError(t, err)
	require.Equal(t, 1, pending.Total)
	assert.Equal(t, "two", pending.Tasks[0].Title)

	overdue, err := m.inboxOverdue(ctx, ListOverdueRequest{}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, overdue.Total)
}
