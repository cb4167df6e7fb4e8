// Package redistags provides a plugin that keeps tag associations in Redis.
package redistags

import (
	"context"
	"fmt"
	"log"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	domain "github.com/isw2-unileon/go-tdd-kata/domain/task"
	"github.com/isw2-unileon/go-tdd-kata/modules/task"
	"github.com/redis/go-redis/v9"
)

// PluginModule owns the Redis client and exposes the tag repository.
type PluginModule struct {
	container types.ServiceContainer
	client    *redis.Client
	repo      *Repository
	redisAddr string
	prefix    string
}

// Compile-time interface checks.
var (
	_ mono.PluginModule          = (*PluginModule)(nil)
	_ mono.HealthCheckableModule = (*PluginModule)(nil)
	_ task.TagStore              = (*PluginModule)(nil)
)

// NewPluginModule creates a plugin for the Redis server at redisAddr.
func NewPluginModule(redisAddr, prefix string) *PluginModule {
	if prefix == "" {
		prefix = "tasks:"
	}
	return &PluginModule{
		redisAddr: redisAddr,
		prefix:    prefix,
	}
}

// Name returns the module name.
func (m *PluginModule) Name() string {
	return "redistags"
}

// Start connects to Redis.
func (m *PluginModule) Start(ctx context.Context) error {
	client := redis.NewClient(&redis.Options{
		Addr: m.redisAddr,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	m.client = client
	m.repo = NewRepository(client, m.prefix)
	log.Printf("[redistags] Connected to Redis at %s (prefix: %s)", m.redisAddr, m.prefix)
	return nil
}

// Stop closes the Redis connection.
func (m *PluginModule) Stop(_ context.Context) error {
	if m.client != nil {
		if err := m.client.Close(); err != nil {
			log.Printf("[redistags] Error closing Redis connection: %v", err)
			return fmt.Errorf("failed to close connection: %w", err)
		}
	}
	log.Println("[redistags] Plugin stopped")
	return nil
}

// SetContainer sets the service container for this plugin.
func (m *PluginModule) SetContainer(container types.ServiceContainer) {
	m.container = container
}

// Container returns the service container for this plugin.
func (m *PluginModule) Container() types.ServiceContainer {
	return m.container
}

// TagRepository returns the tag repository. It is nil before Start.
func (m *PluginModule) TagRepository() domain.TagRepository {
	if m.repo == nil {
		return nil
	}
	return m.repo
}

// Health pings Redis.
func (m *PluginModule) Health(ctx context.Context) mono.HealthStatus {
	if m.client == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "client not initialized",
		}
	}

	if err := m.client.Ping(ctx).Err(); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("health check failed: %v", err),
		}
	}

	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"redis_addr": m.redisAddr,
			"prefix":     m.prefix,
		},
	}
}
