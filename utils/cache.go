// File: utils/cache.go
package utils

import (
	"casaora/config"
	"context"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

var (
	// CacheClient is the generic cache client.
	CacheClient *redis.Client
	// AIContextClient holds assistant conversation state.
	AIContextClient *redis.Client
)

func newRedisClient(db int, name string) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (%s): %v", name, err)
	}
	return client
}

// InitRedis connects every Redis client the server uses.
func InitRedis() {
	GetCacheClient()
	GetAIContextCacheClient()
}

// GetCacheClient returns the generic cache client.
func GetCacheClient() *redis.Client {
	if CacheClient == nil {
		CacheClient = newRedisClient(config.AppConfig.RedisCacheDB, "Cache")
	}
	return CacheClient
}

// GetAIContextCacheClient returns the Redis client for assistant context.
func GetAIContextCacheClient() *redis.Client {
	if AIContextClient == nil {
		AIContextClient = newRedisClient(config.AppConfig.RedisAIDB, "AI Context")
	}
	return AIContextClient
}
