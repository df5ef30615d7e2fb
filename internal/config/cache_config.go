package config

import (
	"os"
	"time"
)

type CacheConfig struct {
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	DefaultTTL    time.Duration
}

// NewCacheConfig returns nil when REDIS_HOST is unset; the response
// cache is an optional collaborator.
func NewCacheConfig() *CacheConfig {
	host, exists := os.LookupEnv("REDIS_HOST")
	if !exists {
		return nil
	}

	ttl := time.Duration(getEnvInt("CACHE_TTL_MINUTES", 15)) * time.Minute

	return &CacheConfig{
		RedisHost:     host,
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       0,
		DefaultTTL:    ttl,
	}
}
