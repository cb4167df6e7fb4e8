package task

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
	domain "github.com/isw2-unileon/go-tdd-kata/domain/task"
	"github.com/isw2-unileon/go-tdd-kata/events"
)

// Config configures the task module.
type Config struct {
	// IDGenerator issues task identifiers. Defaults to UUID v7.
	IDGenerator domain.IDGenerator
	// InboxCapacity bounds the in-memory inbox list. Zero means unbounded.
	InboxCapacity int
	// Clock defaults to time.Now.
	Clock domain.Clock
}

// TaskModule provides task management services (core domain).
type TaskModule struct {
	service  *TaskService
	inbox    *domain.TaskList
	inboxMu  sync.Mutex // serializes inbox handlers, which read members outside the list lock
	factory  *domain.Factory
	clock    domain.Clock
	eventBus mono.EventBus
	logger   types.Logger

	taskStore TaskStore
	tagStore  TagStore
	cache     RepositoryCache
	storeName string
}

var _ mono.Module = (*TaskModule)(nil)
var _ mono.ServiceProviderModule = (*TaskModule)(nil)
var _ mono.EventBusAwareModule = (*TaskModule)(nil)
var _ mono.EventEmitterModule = (*TaskModule)(nil)
var _ mono.UsePluginModule = (*TaskModule)(nil)
var _ mono.HealthCheckableModule = (*TaskModule)(nil)

// NewModule creates the task module. Without store plugins it keeps tasks
// and tags in memory.
func NewModule(cfg Config, logger types.Logger) *TaskModule {
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	ids := cfg.IDGenerator
	if ids == nil {
		ids = domain.UUIDGenerator{}
	}
	return &TaskModule{
		inbox:     domain.NewTaskList(domain.WithCapacity(cfg.InboxCapacity)),
		factory:   domain.NewFactory(domain.WithIDGenerator(ids), domain.WithClock(clock)),
		clock:     clock,
		logger:    logger,
		storeName: "memory",
	}
}

func (m *TaskModule) Name() string {
	return "task"
}

// SetPlugin receives store and cache plugins by alias.
func (m *TaskModule) SetPlugin(alias string, plugin mono.PluginModule) {
	switch alias {
	case TaskStoreAlias:
		store, ok := plugin.(TaskStore)
		if !ok {
			m.logger.Error("Invalid plugin type for task store", "alias", alias, "plugin", plugin.Name())
			return
		}
		m.taskStore = store
		m.storeName = plugin.Name()
	case TagStoreAlias:
		store, ok := plugin.(TagStore)
		if !ok {
			m.logger.Error("Invalid plugin type for tag store", "alias", alias, "plugin", plugin.Name())
			return
		}
		m.tagStore = store
	case CacheAlias:
		c, ok := plugin.(RepositoryCache)
		if !ok {
			m.logger.Error("Invalid plugin type for cache", "alias", alias, "plugin", plugin.Name())
			return
		}
		m.cache = c
	default:
		return
	}
	m.logger.Info("Received plugin", "alias", alias, "plugin", plugin.Name())
}

func (m *TaskModule) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

func (m *TaskModule) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.TaskCreatedV1.ToBase(),
		events.TaskCompletedV1.ToBase(),
		events.TaskNotificationV1.ToBase(),
	}
}

func (m *TaskModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "add", json.Unmarshal, json.Marshal, m.addTask,
	); err != nil {
		return fmt.Errorf("failed to register add service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, "get", json.Unmarshal, json.Marshal, m.getTask,
	); err != nil {
		return fmt.Errorf("failed to register get service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, "complete", json.Unmarshal, json.Marshal, m.completeTask,
	); err != nil {
		return fmt.Errorf("failed to register complete service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, "postpone", json.Unmarshal, json.Marshal, m.postponeTask,
	); err != nil {
		return fmt.Errorf("failed to register postpone service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, "prioritize", json.Unmarshal, json.Marshal, m.prioritizeTask,
	); err != nil {
		return fmt.Errorf("failed to register prioritize service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, "list-pending", json.Unmarshal, json.Marshal, m.listPending,
	); err != nil {
		return fmt.Errorf("failed to register list-pending service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, "list-overdue", json.Unmarshal, json.Marshal, m.listOverdue,
	); err != nil {
		return fmt.Errorf("failed to register list-overdue service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, "tag", json.Unmarshal, json.Marshal, m.tagTask,
	); err != nil {
		return fmt.Errorf("failed to register tag service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, "search-by-tag", json.Unmarshal, json.Marshal, m.searchByTag,
	); err != nil {
		return fmt.Errorf("failed to register search-by-tag service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "inbox-add", json.Unmarshal, json.Marshal, m.inboxAdd,
	); err != nil {
		return fmt.Errorf("failed to register inbox-add service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, "inbox-complete", json.Unmarshal, json.Marshal, m.inboxComplete,
	); err != nil {
		return fmt.Errorf("failed to register inbox-complete service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, "inbox-postpone", json.Unmarshal, json.Marshal, m.inboxPostpone,
	); err != nil {
		return fmt.Errorf("failed to register inbox-postpone service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, "inbox-pending", json.Unmarshal, json.Marshal, m.inboxPending,
	); err != nil {
		return fmt.Errorf("failed to register inbox-pending service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, "inbox-overdue", json.Unmarshal, json.Marshal, m.inboxOverdue,
	); err != nil {
		return fmt.Errorf("failed to register inbox-overdue service: %w", err)
	}

	log.Printf("[task] Registered services: add, get, complete, postpone, prioritize, list-pending, list-overdue, tag, search-by-tag, inbox-*")
	return nil
}

func (m *TaskModule) Start(_ context.Context) error {
	var repo domain.TaskRepository = NewMemoryTaskRepository()
	if m.taskStore != nil {
		repo = m.taskStore.TaskRepository()
		if repo == nil {
			return fmt.Errorf("task store plugin %q has no repository", m.storeName)
		}
	}
	if m.cache != nil {
		repo = m.cache.WrapRepository(repo)
	}

	var tags domain.TagRepository = NewMemoryTagRepository()
	if m.tagStore == nil {
		// A task store that also keeps tags serves both roles.
		if ts, ok := m.taskStore.(TagStore); ok {
			m.tagStore = ts
		}
	}
	if m.tagStore != nil {
		tags = m.tagStore.TagRepository()
		if tags == nil {
			return fmt.Errorf("tag store plugin has no repository")
		}
	}

	var notifier domain.Notifier = LogNotifier{}
	if m.eventBus != nil {
		notifier = NewEventNotifier(m.eventBus, m.clock)
	} else {
		log.Println("[task] Warning: eventBus not set, notifications go to the log")
	}

	m.service = NewTaskService(repo, notifier,
		WithTagRepository(tags),
		WithFactory(m.factory),
		WithServiceClock(m.clock),
		WithLogger(m.logger),
	)

	m.logger.Info("Task module started", "store", m.storeName, "cache", m.cache != nil)
	return nil
}

func (m *TaskModule) Stop(_ context.Context) error {
	m.logger.Info("Task module stopped")
	return nil
}

// Service returns the task service. It is nil before Start.
func (m *TaskModule) Service() *TaskService {
	return m.service
}

// Health reports whether the service is running and which store backs it.
func (m *TaskModule) Health(_ context.Context) mono.HealthStatus {
	if m.service == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "service not started",
		}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"store":      m.storeName,
			"cache":      m.cache != nil,
			"inbox_size": m.inbox.Len(),
		},
	}
}
