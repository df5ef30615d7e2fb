package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"chat-relay-api/internal/config"
	"chat-relay-api/internal/models"
)

// CacheService stores completion responses so identical conversations
// within the TTL are served without another upstream call. Quota is
// still charged for cache hits.
type CacheService interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
}

type RedisCacheService struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCacheService(cfg *config.CacheConfig) (*RedisCacheService, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx := context.Background()
	_, err := client.Ping(ctx).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %v", err)
	}

	return &RedisCacheService{client: client, ttl: cfg.DefaultTTL}, nil
}

func (c *RedisCacheService) Get(ctx context.Context, key string) (string, error) {
	return c.client.Get(ctx, key).Result()
}

func (c *RedisCacheService) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	jsonData, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %v", err)
	}
	if expiration <= 0 {
		expiration = c.ttl
	}
	return c.client.Set(ctx, key, jsonData, expiration).Err()
}

func (c *RedisCacheService) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

// CompletionCacheKey derives a stable key from everything that shapes
// the upstream response: model, effective system prompt, sampling
// temperature and the full conversation.
func CompletionCacheKey(model, systemPrompt string, temperature *float64, messages []models.Message) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00", model, systemPrompt)
	if temperature != nil {
		fmt.Fprintf(h, "%.4f", *temperature)
	}
	h.Write([]byte{0})
	for _, m := range messages {
		fmt.Fprintf(h, "%s\x00%s\x00", m.Role, m.Content)
	}
	return "completion:" + hex.EncodeToString(h.Sum(nil))
}
