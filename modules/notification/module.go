package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/isw2-unileon/go-tdd-kata/events"
)

// NotificationLog represents a delivered notification.
type NotificationLog struct {
	TaskRef   string    `json:"task_ref"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Channel   string    `json:"channel"`
	Timestamp time.Time `json:"timestamp"`
}

// ListNotificationsRequest is the request for the list service.
// A positive Limit returns only the most recent entries.
type ListNotificationsRequest struct {
	Limit int `json:"limit,omitempty"`
}

// ListNotificationsResponse is the response for the list service.
type ListNotificationsResponse struct {
	Notifications []NotificationLog `json:"notifications"`
	Total         int               `json:"total"`
}

// NotificationModule is the driven adapter that delivers task notifications.
// It subscribes to task events and keeps a bounded in-memory log of them.
type NotificationModule struct {
	notifications []NotificationLog
	maxEntries    int
	mu            sync.RWMutex
}

var _ mono.Module = (*NotificationModule)(nil)
var _ mono.EventConsumerModule = (*NotificationModule)(nil)
var _ mono.ServiceProviderModule = (*NotificationModule)(nil)

// NewModule creates the module. maxEntries <= 0 keeps every notification.
func NewModule(maxEntries int) *NotificationModule {
	return &NotificationModule{
		notifications: make([]NotificationLog, 0),
		maxEntries:    maxEntries,
	}
}

func (m *NotificationModule) Name() string {
	return "notification"
}

func (m *NotificationModule) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskNotificationV1, m.handleTaskNotification, m); err != nil {
		return fmt.Errorf("failed to register TaskNotification consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskCreatedV1, m.handleTaskCreated, m); err != nil {
		return fmt.Errorf("failed to register TaskCreated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskCompletedV1, m.handleTaskCompleted, m); err != nil {
		return fmt.Errorf("failed to register TaskCompleted consumer: %w", err)
	}

	log.Printf("[notification] Registered event consumers: TaskNotification, TaskCreated, TaskCompleted")
	return nil
}

func (m *NotificationModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "list", json.Unmarshal, json.Marshal, m.listNotifications,
	); err != nil {
		return fmt.Errorf("failed to register list service: %w", err)
	}
	log.Printf("[notification] Registered services: list")
	return nil
}

func (m *NotificationModule) handleTaskNotification(_ context.Context, event events.TaskNotificationEvent, _ *mono.Msg) error {
	log.Printf("[notification] %s: %s", event.TaskRef, event.Message)
	m.record(NotificationLog{
		TaskRef:   event.TaskRef,
		Type:      "task_notification",
		Message:   event.Message,
		Channel:   "event",
		Timestamp: event.SentAt,
	})
	return nil
}

func (m *NotificationModule) handleTaskCreated(_ context.Context, event events.TaskCreatedEvent, _ *mono.Msg) error {
	log.Printf("[notification] Task created: %s - %s", event.TaskID, event.Title)
	m.record(NotificationLog{
		TaskRef:   event.Title,
		Type:      "task_created",
		Message:   fmt.Sprintf("New task '%s' due %s", event.Title, event.DueDate.Format(time.RFC3339)),
		Channel:   "event",
		Timestamp: event.CreatedAt,
	})
	return nil
}

func (m *NotificationModule) handleTaskCompleted(_ context.Context, event events.TaskCompletedEvent, _ *mono.Msg) error {
	log.Printf("[notification] Task completed: %s - %s", event.TaskID, event.Title)
	m.record(NotificationLog{
		TaskRef:   event.Title,
		Type:      "task_completed",
		Message:   completedMessage(event),
		Channel:   "event",
		Timestamp: event.CompletedAt,
	})
	return nil
}

func completedMessage(event events.TaskCompletedEvent) string {
	if event.WasOverdue {
		return fmt.Sprintf("Task '%s' completed after its due date", event.Title)
	}
	return fmt.Sprintf("Task '%s' completed!", event.Title)
}

func (m *NotificationModule) listNotifications(_ context.Context, req ListNotificationsRequest, _ *mono.Msg) (ListNotificationsResponse, error) {
	all := m.GetNotifications()
	if req.Limit > 0 && len(all) > req.Limit {
		all = all[len(all)-req.Limit:]
	}
	return ListNotificationsResponse{Notifications: all, Total: len(all)}, nil
}

func (m *NotificationModule) record(entry NotificationLog) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	m.notifications = append(m.notifications, entry)
	if m.maxEntries > 0 && len(m.notifications) > m.maxEntries {
		m.notifications = m.notifications[len(m.notifications)-m.maxEntries:]
	}
}

// GetNotifications returns a copy of the recorded notifications, oldest first.
func (m *NotificationModule) GetNotifications() []NotificationLog {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]NotificationLog, len(m.notifications))
	copy(result, m.notifications)
	return result
}

func (m *NotificationModule) Start(_ context.Context) error {
	log.Println("[notification] Module started - listening for task events")
	return nil
}

func (m *NotificationModule) Stop(_ context.Context) error {
	log.Println("[notification] Module stopped")
	return nil
}
