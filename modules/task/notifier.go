package task

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-monolith/mono"
	domain "github.com/isw2-unileon/go-tdd-kata/domain/task"
	"github.com/isw2-unileon/go-tdd-kata/events"
)

// EventNotifier delivers notifications as TaskNotification events on the bus.
type EventNotifier struct {
	bus   mono.EventBus
	clock domain.Clock
}

var _ domain.Notifier = (*EventNotifier)(nil)

// NewEventNotifier creates a notifier publishing on bus.
func NewEventNotifier(bus mono.EventBus, clock domain.Clock) *EventNotifier {
	if clock == nil {
		clock = time.Now
	}
	return &EventNotifier{bus: bus, clock: clock}
}

// Notify publishes the message. A publish failure is returned to the caller.
func (n *EventNotifier) Notify(_ context.Context, taskRef, message string) error {
	event := events.TaskNotificationEvent{
		TaskRef: taskRef,
		Message: message,
		SentAt:  n.clock(),
	}
	if err := events.TaskNotificationV1.Publish(n.bus, event, nil); err != nil {
		return fmt.Errorf("failed to publish notification for %q: %w", taskRef, err)
	}
	return nil
}

// LogNotifier writes notifications to the process log. It is used when no
// event bus is available.
type LogNotifier struct{}

var _ domain.Notifier = LogNotifier{}

func (LogNotifier) Notify(_ context.Context, taskRef, message string) error {
	log.Printf("[task] Notification for %q: %s", taskRef, message)
	return nil
}
