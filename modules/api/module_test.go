package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-monolith/mono/pkg/types"
	domain "github.com/isw2-unileon/go-tdd-kata/domain/task"
	"github.com/isw2-unileon/go-tdd-kata/modules/notification"
	"github.com/isw2-unileon/go-tdd-kata/modules/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var refNow = time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)

type mockLogger struct{}

func (m *mockLogger) Debug(msg string, args ...any)         {}
func (m *mockLogger) Info(msg string, args ...any)          {}
func (m *mockLogger) Warn(msg string, args ...any)          {}
func (m *mockLogger) Error(msg string, args ...any)         {}
func (m *mockLogger) With(args ...any) types.Logger         { return m }
func (m *mockLogger) WithError(err error) types.Logger      { return m }
func (m *mockLogger) WithModule(module string) types.Logger { return m }

// fakeClient keeps tasks by title and fails every call with err when set.
type fakeClient struct {
	tasks    map[string]*task.TaskResponse
	order    []string
	tags     map[string][]string
	err      error
	lastNow  time.Time
	lastDays int
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		tasks: make(map[string]*task.TaskResponse),
		tags:  make(map[string][]string),
	}
}

func (f *fakeClient) AddTask(_ context.Context, title string, due time.Time) (*task.TaskResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	if strings.TrimSpace(title) == "" {
		return nil, domain.ErrInvalidTitle
	}
	if _, ok := f.tasks[title]; ok {
		return nil, domain.ErrDuplicateTask
	}
	t := &task.TaskResponse{ID: "task-1", Title: title, Status: "todo", Priority: "medium", DueDate: due, CreatedAt: refNow}
	f.tasks[title] = t
	f.order = append(f.order, title)
	return t, nil
}

func (f *fakeClient) GetTask(_ context.Context, title string) (*task.TaskResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	t, ok := f.tasks[title]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return t, nil
}

func (f *fakeClient) CompleteTask(ctx context.Context, title string) (*task.TaskResponse, error) {
	t, err := f.GetTask(ctx, title)
	if err != nil {
		return nil, err
	}
	if t.Status == "done" {
		return nil, domain.ErrAlreadyCompleted
	}
	t.Status = "done"
	done := refNow
	t.CompletedAt = &done
	return t, nil
}

func (f *fakeClient) PostponeTask(ctx context.Context, title string, days int) (*task.TaskResponse, error) {
	f.lastDays = days
	t, err := f.GetTask(ctx, title)
	if err != nil {
		return nil, err
	}
	if days <= 0 {
		return nil, domain.ErrInvalidDays
	}
	t.DueDate = t.DueDate.AddDate(0, 0, days)
	return t, nil
}

func (f *fakeClient) PrioritizeTask(ctx context.Context, title, priority string) (*task.TaskResponse, error) {
	t, err := f.GetTask(ctx, title)
	if err != nil {
		return nil, err
	}
	p, err := domain.ParsePriority(priority)
	if err != nil {
		return nil, err
	}
	t.Priority = string(p)
	return t, nil
}

func (f *fakeClient) ListPending(_ context.Context) ([]task.TaskResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := []task.TaskResponse{}
	for _, title := range f.order {
		if t := f.tasks[title]; t.Status == "todo" {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeClient) ListOverdue(_ context.Context, now time.Time) ([]task.TaskResponse, error) {
	f.lastNow = now
	if f.err != nil {
		return nil, f.err
	}
	out := []task.TaskResponse{}
	for _, title := range f.order {
		if t := f.tasks[title]; t.Status == "todo" && t.DueDate.Before(now) {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeClient) TagTask(ctx context.Context, title, tag string) error {
	if _, err := f.GetTask(ctx, title); err != nil {
		return err
	}
	f.tags[tag] = append(f.tags[tag], title)
	return nil
}

func (f *fakeClient) SearchByTag(_ context.Context, tag string) ([]task.TaskResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := []task.TaskResponse{}
	for _, title := range f.tags[tag] {
		out = append(out, *f.tasks[title])
	}
	return out, nil
}

func (f *fakeClient) InboxAdd(ctx context.Context, title string, due time.Time) (*task.TaskResponse, error) {
	if len(f.order) >= 1 {
		return nil, domain.ErrCapacityExceeded
	}
	return f.AddTask(ctx, title, due)
}

func (f *fakeClient) InboxComplete(ctx context.Context, title string) error {
	_, err := f.CompleteTask(ctx, title)
	return err
}

func (f *fakeClient) InboxPostpone(ctx context.Context, title string, days int) error {
	_, err := f.PostponeTask(ctx, title, days)
	return err
}

func (f *fakeClient) InboxPending(ctx context.Context) ([]task.TaskResponse, error) {
	return f.ListPending(ctx)
}

func (f *fakeClient) InboxOverdue(ctx context.Context, now time.Time) ([]task.TaskResponse, error) {
	return f.ListOverdue(ctx, now)
}

type fakeNotifications struct {
	entries []notification.NotificationLog
}

func (f *fakeNotifications) ListNotifications(_ context.Context, limit int) (*notification.ListNotificationsResponse, error) {
	entries := f.entries
	if limit > 0 && limit < len(entries) {
		entries = entries[len(entries)-limit:]
	}
	return &notification.ListNotificationsResponse{Notifications: entries, Total: len(entries)}, nil
}

func newTestModule(t *testing.T) (*APIModule, *fakeClient) {
	t.Helper()
	client := newFakeClient()
	m := NewModule(0, &mockLogger{})
	m.tasks = client
	m.inbox = client
	m.notifications = &fakeNotifications{entries: []notification.NotificationLog{
		{TaskRef: "a", Type: "task_notification"},
		{TaskRef: "b", Type: "task_notification"},
	}}
	m.initApp(false)
	return m, client
}

func doRequest(t *testing.T, m *APIModule, method, target, body string) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := m.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func TestHealthEndpoint(t *testing.T) {
	m, _ := newTestModule(t)

	resp, body := doRequest(t, m, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var health HealthResponse
	require.NoError(t, json.Unmarshal(body, &health))
	assert.Equal(t, "healthy", health.Status)
}

func TestCreateTask(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantError  string
	}{
		{
			name:       "valid task",
			body:       `{"title":"Buy milk","due_date":"2024-03-09T00:00:00Z"}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "blank title",
			body:       `{"title":"  ","due_date":"2024-03-09T00:00:00Z"}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "invalid_input",
		},
		{
			name:       "missing due date",
			body:       `{"title":"Buy milk"}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "validation_error",
		},
		{
			name:       "malformed body",
			body:       `{"title":`,
			wantStatus: http.StatusBadRequest,
			wantError:  "invalid_request",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := newTestModule(t)

			resp, body := doRequest(t, m, http.MethodPost, "/api/v1/tasks", tt.body)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			if tt.wantError == "" {
				var got TaskResponse
				require.NoError(t, json.Unmarshal(body, &got))
				assert.Equal(t, "Buy milk", got.Title)
				assert.Equal(t, "todo", got.Status)
				return
			}
			var errResp ErrorResponse
			require.NoError(t, json.Unmarshal(body, &errResp))
			assert.Equal(t, tt.wantError, errResp.Error)
		})
	}
}

func TestCreateTask_Duplicate(t *testing.T) {
	m, _ := newTestModule(t)
	body := `{"title":"Buy milk","due_date":"2024-03-09T00:00:00Z"}`

	first, _ := doRequest(t, m, http.MethodPost, "/api/v1/tasks", body)
	require.Equal(t, http.StatusCreated, first.StatusCode)

	second, data := doRequest(t, m, http.MethodPost, "/api/v1/tasks", body)
	assert.Equal(t, http.StatusConflict, second.StatusCode)

	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal(data, &errResp))
	assert.Equal(t, "conflict", errResp.Error)
}

func TestGetTask_EscapedTitle(t *testing.T) {
	m, client := newTestModule(t)
	_, err := client.AddTask(context.Background(), "Buy milk", refNow)
	require.NoError(t, err)

	resp, body := doRequest(t, m, http.MethodGet, "/api/v1/tasks/Buy%20milk", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got TaskResponse
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "Buy milk", got.Title)
}

func TestGetTask_NotFound(t *testing.T) {
	m, _ := newTestModule(t)

	resp, _ := doRequest(t, m, http.MethodGet, "/api/v1/tasks/missing", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCompleteTask(t *testing.T) {
	m, client := newTestModule(t)
	_, err := client.AddTask(context.Background(), "Buy milk", refNow.Add(-24*time.Hour))
	require.NoError(t, err)

	resp, body := doRequest(t, m, http.MethodPost, "/api/v1/tasks/Buy%20milk/complete", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got TaskResponse
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "done", got.Status)
	require.NotNil(t, got.CompletedAt)

	again, _ := doRequest(t, m, http.MethodPost, "/api/v1/tasks/Buy%20milk/complete", "")
	assert.Equal(t, http.StatusConflict, again.StatusCode)
}

func TestCompleteTask_DependencyFailure(t *testing.T) {
	m, client := newTestModule(t)
	client.err = domain.NewDependencyError("notifier", "notify", assert.AnError)

	resp, body := doRequest(t, m, http.MethodPost, "/api/v1/tasks/x/complete", "")
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal(body, &errResp))
	assert.Equal(t, "dependency_failure", errResp.Error)
}

func TestPostponeTask(t *testing.T) {
	m, client := newTestModule(t)
	_, err := client.AddTask(context.Background(), "Buy milk", refNow)
	require.NoError(t, err)

	resp, body := doRequest(t, m, http.MethodPost, "/api/v1/tasks/Buy%20milk/postpone", `{"days":3}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got TaskResponse
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, refNow.AddDate(0, 0, 3), got.DueDate)

	bad, _ := doRequest(t, m, http.MethodPost, "/api/v1/tasks/Buy%20milk/postpone", `{"days":0}`)
	assert.Equal(t, http.StatusBadRequest, bad.StatusCode)
}

func TestPrioritizeTask(t *testing.T) {
	m, client := newTestModule(t)
	_, err := client.AddTask(context.Background(), "Buy milk", refNow)
	require.NoError(t, err)

	resp, body := doRequest(t, m, http.MethodPut, "/api/v1/tasks/Buy%20milk/priority", `{"priority":"HIGH"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got TaskResponse
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "high", got.Priority)

	bad, _ := doRequest(t, m, http.MethodPut, "/api/v1/tasks/Buy%20milk/priority", `{"priority":"urgent"}`)
	assert.Equal(t, http.StatusBadRequest, bad.StatusCode)
}

func TestListTasks(t *testing.T) {
	m, client := newTestModule(t)
	ctx := context.Background()
	_, err := client.AddTask(ctx, "late", refNow.Add(-time.Hour))
	require.NoError(t, err)
	_, err = client.AddTask(ctx, "later", refNow.Add(time.Hour))
	require.NoError(t, err)

	resp, body := doRequest(t, m, http.MethodGet, "/api/v1/tasks", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var pending ListTasksResponse
	require.NoError(t, json.Unmarshal(body, &pending))
	assert.Equal(t, 2, pending.Total)
	assert.Equal(t, "late", pending.Tasks[0].Title)

	resp, body = doRequest(t, m, http.MethodGet, "/api/v1/tasks?filter=overdue&now=2024-03-10T12:00:00Z", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var overdue ListTasksResponse
	require.NoError(t, json.Unmarshal(body, &overdue))
	require.Equal(t, 1, overdue.Total)
	assert.Equal(t, "late", overdue.Tasks[0].Title)
	assert.True(t, refNow.Equal(client.lastNow))
}

func TestListTasks_BadQuery(t *testing.T) {
	tests := []struct {
		name   string
		target string
	}{
		{name: "unknown filter", target: "/api/v1/tasks?filter=done"},
		{name: "malformed now", target: "/api/v1/tasks?filter=overdue&now=yesterday"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := newTestModule(t)
			resp, _ := doRequest(t, m, http.MethodGet, tt.target, "")
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestListTasks_EmptyIsArray(t *testing.T) {
	m, _ := newTestModule(t)

	_, body := doRequest(t, m, http.MethodGet, "/api/v1/tasks?filter=overdue", "")
	assert.JSONEq(t, `{"tasks":[],"total":0}`, string(body))
}

func TestTagAndSearch(t *testing.T) {
	m, client := newTestModule(t)
	_, err := client.AddTask(context.Background(), "Buy milk", refNow)
	require.NoError(t, err)

	resp, _ := doRequest(t, m, http.MethodPost, "/api/v1/tasks/Buy%20milk/tags", `{"tag":"home"}`)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, body := doRequest(t, m, http.MethodGet, "/api/v1/tags/home/tasks", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got ListTasksResponse
	require.NoError(t, json.Unmarshal(body, &got))
	require.Equal(t, 1, got.Total)
	assert.Equal(t, "Buy milk", got.Tasks[0].Title)

	missing, _ := doRequest(t, m, http.MethodPost, "/api/v1/tasks/missing/tags", `{"tag":"home"}`)
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestInboxRoutes(t *testing.T) {
	m, _ := newTestModule(t)

	resp, _ := doRequest(t, m, http.MethodPost, "/api/v1/inbox", `{"title":"a","due_date":"2024-03-09T00:00:00Z"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	full, _ := doRequest(t, m, http.MethodPost, "/api/v1/inbox", `{"title":"b","due_date":"2024-03-09T00:00:00Z"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, full.StatusCode)

	postponed, _ := doRequest(t, m, http.MethodPost, "/api/v1/inbox/a/postpone", `{"days":1}`)
	assert.Equal(t, http.StatusNoContent, postponed.StatusCode)

	_, body := doRequest(t, m, http.MethodGet, "/api/v1/inbox?filter=pending", "")
	var pending ListTasksResponse
	require.NoError(t, json.Unmarshal(body, &pending))
	assert.Equal(t, 1, pending.Total)

	done, _ := doRequest(t, m, http.MethodPost, "/api/v1/inbox/a/complete", "")
	assert.Equal(t, http.StatusNoContent, done.StatusCode)

	_, body = doRequest(t, m, http.MethodGet, "/api/v1/inbox", "")
	require.NoError(t, json.Unmarshal(body, &pending))
	assert.Equal(t, 0, pending.Total)
}

func TestListNotifications(t *testing.T) {
	m, _ := newTestModule(t)

	resp, body := doRequest(t, m, http.MethodGet, "/api/v1/notifications?limit=1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got notification.ListNotificationsResponse
	require.NoError(t, json.Unmarshal(body, &got))
	require.Equal(t, 1, got.Total)
	assert.Equal(t, "b", got.Notifications[0].TaskRef)
}

func TestListNotifications_Unavailable(t *testing.T) {
	m, _ := newTestModule(t)
	m.notifications = nil

	resp, _ := doRequest(t, m, http.MethodGet, "/api/v1/notifications", "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.ErrInvalidTitle, http.StatusBadRequest},
		{domain.ErrTaskNotFound, http.StatusNotFound},
		{domain.ErrAlreadyCompleted, http.StatusConflict},
		{domain.ErrCapacityExceeded, http.StatusUnprocessableEntity},
		{domain.NewDependencyError("repository", "save", assert.AnError), http.StatusBadGateway},
		{assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

func TestStart_RequiresTaskDependency(t *testing.T) {
	m := NewModule(0, &mockLogger{})
	assert.Error(t, m.Start(context.Background()))
}

func TestStop_BeforeStart(t *testing.T) {
	m := NewModule(0, &mockLogger{})
	assert.NoError(t, m.Stop(context.Background()))
	assert.False(t, m.Health(context.Background()).Healthy)
}

func TestStartAndStop(t *testing.T) {
	client := newFakeClient()
	m := NewModule(0, &mockLogger{})
	m.tasks = client
	m.inbox = client

	require.NoError(t, m.Start(context.Background()))
	assert.True(t, m.Health(context.Background()).Healthy)
	assert.NotNil(t, m.app)

	require.NoError(t, m.Stop(context.Background()))
}
