// Package pgstore provides a plugin that keeps tasks in PostgreSQL.
package pgstore

import (
	"context"
	"fmt"
	"log"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	domain "github.com/isw2-unileon/go-tdd-kata/domain/task"
	"github.com/isw2-unileon/go-tdd-kata/modules/task"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PluginModule owns the connection pool and exposes the task repository.
type PluginModule struct {
	container types.ServiceContainer
	pool      *pgxpool.Pool
	repo      *Repository
	dbURL     string
}

// Compile-time interface checks.
var (
	_ mono.PluginModule          = (*PluginModule)(nil)
	_ mono.HealthCheckableModule = (*PluginModule)(nil)
	_ task.TaskStore             = (*PluginModule)(nil)
)

// NewPluginModule creates a plugin for the database at dbURL.
func NewPluginModule(dbURL string) *PluginModule {
	return &PluginModule{dbURL: dbURL}
}

// Name returns the module name.
func (m *PluginModule) Name() string {
	return "pgstore"
}

// Start creates the connection pool and the tasks table.
func (m *PluginModule) Start(ctx context.Context) error {
	if m.dbURL == "" {
		return fmt.Errorf("DATABASE_URL is required for the postgres store")
	}

	log.Printf("[pgstore] Connecting to PostgreSQL...")

	pool, err := pgxpool.New(ctx, m.dbURL)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	repo := NewRepository(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		pool.Close()
		return err
	}

	m.pool = pool
	m.repo = repo

	log.Println("[pgstore] Plugin started")
	return nil
}

// Stop closes the connection pool.
func (m *PluginModule) Stop(_ context.Context) error {
	if m.pool == nil {
		return nil
	}
	log.Println("[pgstore] Closing database connection pool...")
	m.pool.Close()
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

// TaskRepository returns the task repository. It is nil before Start.
func (m *PluginModule) TaskRepository() domain.TaskRepository {
	if m.repo == nil {
		return nil
	}
	return m.repo
}

// Health pings the database.
func (m *PluginModule) Health(ctx context.Context) mono.HealthStatus {
	if m.pool == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "database pool not initialized",
		}
	}

	if err := m.pool.Ping(ctx); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("database ping failed: %v", err),
		}
	}

	stat := m.pool.Stat()
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"driver":      "pgx/v5",
			"total_conns": stat.TotalConns(),
			"idle_conns":  stat.IdleConns(),
		},
	}
}
