package initializers

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// RDB is nil when no Redis is configured or reachable.
var RDB *redis.Client
var RDB_CTX context.Context

func ConnectToRedis() {
	RDB_CTX = context.Background()
	if Cfg.RedisHost == "" {
		LOGGER.Info("Redis not configured, principal cache disabled")
		return
	}

	client := redis.NewClient(&redis.Options{
		Addr:     Cfg.RedisHost + ":" + Cfg.RedisPort,
		Password: Cfg.RedisPass,
		DB:       0,
	})

	// Test the connection
	if err := client.Ping(RDB_CTX).Err(); err != nil {
		LOGGER.Warn("Failed to connect to Redis, principal cache disabled", "error", err)
		client.Close()
		return
	}
	RDB = client
}
