// Package redisStore wraps one redis client per logical DB and keeps
// them as singletons for the lifetime of the process.
package redisStore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/UWFms/docling-chat-bot/internal/config"
	"github.com/UWFms/docling-chat-bot/pkg/logger_i"
	"github.com/redis/go-redis/v9"
)

var (
	instances = make(map[int]*Store)
	mu        sync.RWMutex
	logger    *logger_i.Logger
	once      sync.Once
)

type Store struct {
	client *redis.Client
	Type   int
}

// GetRedisStore returns the singleton store for a logical DB, creating
// it on first use. Returns nil when redis is unreachable so the caller
// can fall back to the in-memory stores.
func GetRedisStore(ctx context.Context, settings *config.Settings, DBType int) *Store {
	mu.RLock()
	instance, exists := instances[DBType]
	mu.RUnlock()

	if exists {
		return instance
	}

	mu.Lock()
	defer mu.Unlock()

	if instance, exists = instances[DBType]; exists {
		return instance
	}
	return createNewStore(ctx, settings, DBType)
}

func initLogger(dbType int) {
	if logger == nil {
		logger = logger_i.NewLogger(fmt.Sprintf("Redis Store %d", dbType))
	}
}

func closeRedisStores(ctx context.Context) {
	<-ctx.Done()
	logger.Info("Closing Redis Stores")
	mu.Lock()
	defer mu.Unlock()
	for _, store := range instances {
		if err := store.client.Close(); err != nil {
			logger.Error("Error closing redis client", "error", err)
		}
	}
	logger.Info("Redis Stores closed")
}

func createNewStore(ctx context.Context, settings *config.Settings, dbType int) *Store {
	initLogger(dbType)

	newClient := redis.NewClient(&redis.Options{
		Addr:                  settings.RedisAddr,
		Password:              settings.RedisPassword,
		DB:                    dbType,
		ContextTimeoutEnabled: true,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := newClient.Ping(pingCtx).Err(); err != nil {
		logger.Error("Redis is offline", "error", err)
		return nil
	}

	logger.Info("Redis store connected", "db", dbType)

	newStore := &Store{
		client: newClient,
		Type:   dbType,
	}

	instances[dbType] = newStore
	once.Do(func() {
		go closeRedisStores(ctx)
	})
	return newStore
}

// NewTestStore wraps an existing client, for tests backed by miniredis.
func NewTestStore(client *redis.Client) *Store {
	return &Store{
		client: client,
	}
}
