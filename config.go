package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"
)

// Store drivers accepted in STORE_DRIVER.
const (
	storeMemory   = "memory"
	storeSQLite   = "sqlite"
	storePostgres = "postgres"
)

// Tag store backends accepted in TAG_STORE.
const (
	tagStoreDefault = ""
	tagStoreRedis   = "redis"
)

// Config holds the application configuration read from the environment.
type Config struct {
	HTTPPort         int
	ShutdownTimeout  time.Duration
	StoreDriver      string
	DBPath           string
	DatabaseURL      string
	DBDebug          bool
	TagStore         string
	RedisAddr        string
	TagPrefix        string
	CacheEnabled     bool
	CacheTTL         time.Duration
	CachePrefix      string
	TaskIDFormat     string
	InboxCapacity    int
	NotificationKeep int
}

// loadConfig reads the configuration from the environment.
func loadConfig() (Config, error) {
	cfg := Config{
		HTTPPort:         getEnvInt("HTTP_PORT", 3000),
		ShutdownTimeout:  getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
		StoreDriver:      getEnv("STORE_DRIVER", storeMemory),
		DBPath:           getEnv("DB_PATH", "tasks.db"),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		DBDebug:          getEnvBool("DB_DEBUG", false),
		TagStore:         getEnv("TAG_STORE", tagStoreDefault),
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		TagPrefix:        getEnv("TAG_PREFIX", "tasks:"),
		CacheEnabled:     getEnvBool("CACHE_ENABLED", false),
		CacheTTL:         getEnvDuration("CACHE_TTL", 5*time.Minute),
		CachePrefix:      getEnv("CACHE_PREFIX", "tasks:cache:"),
		TaskIDFormat:     getEnv("TASK_ID_FORMAT", "uuid"),
		InboxCapacity:    getEnvInt("TASK_LIST_CAPACITY", 0),
		NotificationKeep: getEnvInt("NOTIFICATION_KEEP", 100),
	}

	switch cfg.StoreDriver {
	case storeMemory, storeSQLite:
	case storePostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("DATABASE_URL is required when STORE_DRIVER=%s", storePostgres)
		}
	default:
		return Config{}, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	switch cfg.TagStore {
	case tagStoreDefault, tagStoreRedis:
	default:
		return Config{}, fmt.Errorf("unknown TAG_STORE %q", cfg.TagStore)
	}

	return cfg, nil
}

// getEnv returns environment variable value or default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns environment variable as int or default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
		log.Printf("Warning: invalid int value for %s: %s, using default: %d", key, value, defaultValue)
	}
	return defaultValue
}

// getEnvDuration returns environment variable as duration or default.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		log.Printf("Warning: invalid duration value for %s: %s, using default: %s", key, value, defaultValue)
	}
	return defaultValue
}

// getEnvBool returns environment variable as bool or default.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
		log.Printf("Warning: invalid bool value for %s: %s, using default: %t", key, value, defaultValue)
	}
	return defaultValue
}
