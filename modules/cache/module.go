package cache

import (
	"context"
	"fmt"
	"log"
	"net"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/storage/redis/v3"
	domain "github.com/isw2-unileon/go-tdd-kata/domain/task"
	"github.com/isw2-unileon/go-tdd-kata/modules/task"
)

// Default settings used when Config leaves a field empty.
const (
	DefaultPrefix   = "tasks:cache:"
	DefaultTTL      = 5 * time.Minute
	DefaultPoolSize = 50
)

// Config configures the task list cache.
type Config struct {
	// Addr is the Redis "host:port".
	Addr string
	// Prefix namespaces every cache key.
	Prefix string
	// TTL bounds how long a cached task list is served.
	TTL time.Duration
	// PoolSize is the Redis connection pool size.
	PoolSize int
}

// PluginModule caches the task list of whichever repository the task module
// hands it. It runs as a mono plugin so it is up before the task module starts.
type PluginModule struct {
	container types.ServiceContainer
	cfg       Config
	dial      func(Config) Store
	store     Store
	service   CacheService
	wrapped   atomic.Int32
}

// Compile-time interface checks.
var (
	_ mono.PluginModule          = (*PluginModule)(nil)
	_ mono.HealthCheckableModule = (*PluginModule)(nil)
	_ task.RepositoryCache       = (*PluginModule)(nil)
)

// NewPluginModule creates a cache plugin backed by Redis.
func NewPluginModule(cfg Config) *PluginModule {
	if cfg.Prefix == "" {
		cfg.Prefix = DefaultPrefix
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.PoolSize <= 0 {
		cfg.PoolSize = DefaultPoolSize
	}
	return &PluginModule{cfg: cfg, dial: dialRedis}
}

func dialRedis(cfg Config) Store {
	host, port := parseRedisAddr(cfg.Addr)
	return redis.New(redis.Config{
		Host:     host,
		Port:     port,
		PoolSize: cfg.PoolSize,
	})
}

// Name returns the module name.
func (m *PluginModule) Name() string {
	return "cache"
}

// Start connects to Redis.
func (m *PluginModule) Start(_ context.Context) error {
	m.store = m.dial(m.cfg)
	m.service = NewCacheService(m.store, m.cfg.Prefix, m.cfg.TTL)
	log.Printf("[cache] Connected to Redis at %s (prefix: %s, TTL: %s)", m.cfg.Addr, m.cfg.Prefix, m.cfg.TTL)
	return nil
}

// Stop closes the Redis connection.
func (m *PluginModule) Stop(_ context.Context) error {
	if m.service == nil {
		return nil
	}
	if err := m.service.Close(); err != nil {
		return fmt.Errorf("failed to close cache connection: %w", err)
	}
	log.Println("[cache] Plugin stopped")
	return nil
}

func (m *PluginModule) SetContainer(container types.ServiceContainer) {
	m.container = container
}

func (m *PluginModule) Container() types.ServiceContainer {
	return m.container
}

// WrapRepository puts repo behind the task list cache.
// Before Start it returns repo unchanged.
func (m *PluginModule) WrapRepository(repo domain.TaskRepository) domain.TaskRepository {
	if m.service == nil {
		return repo
	}
	m.wrapped.Add(1)
	return NewCachedRepository(repo, m.service)
}

// Health reads a missing key to exercise the connection.
func (m *PluginModule) Health(ctx context.Context) mono.HealthStatus {
	if m.store == nil {
		return mono.HealthStatus{Healthy: false, Message: "cache not started"}
	}
	if _, err := m.store.GetWithContext(ctx, m.cfg.Prefix+"__health_check__"); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("health check failed: %v", err),
		}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"redis_addr":   m.cfg.Addr,
			"prefix":       m.cfg.Prefix,
			"ttl":          m.cfg.TTL.String(),
			"repositories": int(m.wrapped.Load()),
		},
	}
}

// parseRedisAddr splits "host:port", falling back to 127.0.0.1:6379.
func parseRedisAddr(addr string) (string, int) {
	const defaultHost = "127.0.0.1"
	const defaultPort = 6379

	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return defaultHost, defaultPort
	}
	if host == "" {
		host = defaultHost
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		port = defaultPort
	}
	return host, port
}
