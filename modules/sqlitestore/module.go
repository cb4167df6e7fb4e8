// Package sqlitestore provides a plugin that keeps tasks and tags in SQLite.
package sqlitestore

import (
	"context"
	"fmt"
	"log"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	domain "github.com/isw2-unileon/go-tdd-kata/domain/task"
	"github.com/isw2-unileon/go-tdd-kata/modules/task"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// PluginModule opens the SQLite database and exposes the task and tag repositories.
type PluginModule struct {
	container types.ServiceContainer
	db        *gorm.DB
	tasks     *TaskRepository
	tags      *TagRepository
	dbPath    string
	debug     bool
}

// Compile-time interface checks.
var (
	_ mono.PluginModule          = (*PluginModule)(nil)
	_ mono.HealthCheckableModule = (*PluginModule)(nil)
	_ task.TaskStore             = (*PluginModule)(nil)
	_ task.TagStore              = (*PluginModule)(nil)
)

// NewPluginModule creates a plugin for the database at dbPath.
// debug turns on GORM's SQL logging.
func NewPluginModule(dbPath string, debug bool) *PluginModule {
	if dbPath == "" {
		dbPath = "tasks.db"
	}
	return &PluginModule{
		dbPath: dbPath,
		debug:  debug,
	}
}

// Name returns the module name.
func (m *PluginModule) Name() string {
	return "sqlitestore"
}

// Start opens the database and runs migrations.
func (m *PluginModule) Start(_ context.Context) error {
	log.Printf("[sqlitestore] Connecting to SQLite database: %s", m.dbPath)

	logLevel := logger.Silent
	if m.debug {
		logLevel = logger.Info
	}

	db, err := gorm.Open(sqlite.Open(m.dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	// SQLite allows one writer; a single connection also keeps :memory: databases shared.
	sqlDB.SetMaxOpenConns(1)

	m.db = db
	m.tasks = NewTaskRepository(db)
	m.tags = NewTagRepository(db)

	if err := m.tasks.Migrate(); err != nil {
		return fmt.Errorf("failed to run task migrations: %w", err)
	}
	if err := m.tags.Migrate(); err != nil {
		return fmt.Errorf("failed to run tag migrations: %w", err)
	}

	log.Println("[sqlitestore] Plugin started")
	return nil
}

// Stop closes the database connection.
func (m *PluginModule) Stop(_ context.Context) error {
	if m.db == nil {
		return nil
	}

	sqlDB, err := m.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	log.Println("[sqlitestore] Plugin stopped")
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
	if m.tasks == nil {
		return nil
	}
	return m.tasks
}

// TagRepository returns the tag repository. It is nil before Start.
func (m *PluginModule) TagRepository() domain.TagRepository {
	if m.tags == nil {
		return nil
	}
	return m.tags
}

// Health pings the database.
func (m *PluginModule) Health(ctx context.Context) mono.HealthStatus {
	if m.db == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "database not initialized",
		}
	}

	sqlDB, err := m.db.DB()
	if err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("failed to get sql.DB: %v", err),
		}
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("database ping failed: %v", err),
		}
	}

	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"driver": "sqlite",
			"path":   m.dbPath,
		},
	}
}
