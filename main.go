package main

import (
	"context"
	"log"
	"os"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
	domain "github.com/isw2-unileon/go-tdd-kata/domain/task"
	"github.com/isw2-unileon/go-tdd-kata/modules/api"
	"github.com/isw2-unileon/go-tdd-kata/modules/cache"
	"github.com/isw2-unileon/go-tdd-kata/modules/notification"
	"github.com/isw2-unileon/go-tdd-kata/modules/pgstore"
	"github.com/isw2-unileon/go-tdd-kata/modules/redistags"
	"github.com/isw2-unileon/go-tdd-kata/modules/sqlitestore"
	"github.com/isw2-unileon/go-tdd-kata/modules/task"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	log.Println("=== Task Service ===")
	log.Printf("HTTP Port: %d", cfg.HTTPPort)
	log.Printf("Store: %s, Tag store: %s, Cache: %t", cfg.StoreDriver, tagStoreName(cfg), cfg.CacheEnabled)

	ids, err := domain.NewIDGenerator(cfg.TaskIDFormat)
	if err != nil {
		log.Fatalf("Invalid TASK_ID_FORMAT: %v", err)
	}

	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(cfg.ShutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	registerPlugin := func(plugin mono.PluginModule, alias string) {
		if err := app.RegisterPlugin(plugin, alias); err != nil {
			log.Fatalf("Failed to register %s plugin: %v", plugin.Name(), err)
		}
	}

	// Plugins start before modules, so the task module can take their
	// repositories in its own Start.
	switch cfg.StoreDriver {
	case storeSQLite:
		registerPlugin(sqlitestore.NewPluginModule(cfg.DBPath, cfg.DBDebug), task.TaskStoreAlias)
	case storePostgres:
		registerPlugin(pgstore.NewPluginModule(cfg.DatabaseURL), task.TaskStoreAlias)
	}
	if cfg.TagStore == tagStoreRedis {
		registerPlugin(redistags.NewPluginModule(cfg.RedisAddr, cfg.TagPrefix), task.TagStoreAlias)
	}
	if cfg.CacheEnabled {
		registerPlugin(cache.NewPluginModule(cache.Config{
			Addr:   cfg.RedisAddr,
			Prefix: cfg.CachePrefix,
			TTL:    cfg.CacheTTL,
		}), task.CacheAlias)
	}

	// Order: independent modules first, then modules with dependencies
	app.Register(notification.NewModule(cfg.NotificationKeep)) // Event consumer
	app.Register(task.NewModule(task.Config{                   // Core domain
		IDGenerator:   ids,
		InboxCapacity: cfg.InboxCapacity,
	}, app.Logger()))
	app.Register(api.NewModule(cfg.HTTPPort, app.Logger())) // Driving adapter

	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo(cfg.HTTPPort)

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func tagStoreName(cfg Config) string {
	if cfg.TagStore != tagStoreDefault {
		return cfg.TagStore
	}
	if cfg.StoreDriver == storeSQLite {
		return storeSQLite
	}
	return storeMemory
}

func printStartupInfo(port int) {
	log.Println("")
	log.Println("Application started successfully!")
	log.Printf("API available at http://localhost:%d", port)
	log.Println("Endpoints:")
	log.Println("  GET    /health                          - Health check")
	log.Println("  POST   /api/v1/tasks                    - Create task")
	log.Println("  GET    /api/v1/tasks?filter=            - List pending or overdue tasks")
	log.Println("  GET    /api/v1/tasks/:title             - Get task")
	log.Println("  POST   /api/v1/tasks/:title/complete    - Complete task")
	log.Println("  POST   /api/v1/tasks/:title/postpone    - Postpone task")
	log.Println("  PUT    /api/v1/tasks/:title/priority    - Change priority")
	log.Println("  POST   /api/v1/tasks/:title/tags        - Tag task")
	log.Println("  GET    /api/v1/tags/:tag/tasks          - Search by tag")
	log.Println("  POST   /api/v1/inbox                    - Add to inbox")
	log.Println("  GET    /api/v1/inbox?filter=            - List inbox")
	log.Println("  POST   /api/v1/inbox/:title/complete    - Complete inbox task")
	log.Println("  POST   /api/v1/inbox/:title/postpone    - Postpone inbox task")
	log.Println("  GET    /api/v1/notifications            - Delivered notifications")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown")
}
