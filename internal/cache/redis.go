package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/SigNoz/storefront-go-app/internal/models"
	"github.com/redis/go-redis/v9"
)

// RedisCache is a ProductCache shared between instances through Redis
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// RedisConfig holds the Redis connection settings
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	TTL      time.Duration
}

// NewRedisCache connects to Redis and verifies the connection
func NewRedisCache(ctx context.Context, cfg RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "storefront:product:"
	}
	return &RedisCache{client: client, prefix: prefix, ttl: cfg.TTL}, nil
}

func (c *RedisCache) key(id int64) string {
	return c.prefix + strconv.FormatInt(id, 10)
}

func (c *RedisCache) Get(ctx context.Context, id int64) (*models.ProductDetail, bool, error) {
	data, err := c.client.Get(ctx, c.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("cache get error: %w", err)
	}

	var detail models.ProductDetail
	if err := json.Unmarshal(data, &detail); err != nil {
		return nil, false, fmt.Errorf("cache unmarshal error: %w", err)
	}
	return &detail, true, nil
}

func (c *RedisCache) Set(ctx context.Context, detail *models.ProductDetail) error {
	data, err := json.Marshal(detail)
	if err != nil {
		return fmt.Errorf("cache marshal error: %w", err)
	}
	if err := c.client.Set(ctx, c.key(detail.ID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set error: %w", err)
	}
	return nil
}

func (c *RedisCache) Delete(ctx context.Context, ids ...int64) error {
	if len(ids) == 0 {
		return nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = c.key(id)
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache delete error: %w", err)
	}
	return nil
}

func (c *RedisCache) Backend() string { return BackendRedis }

// Close closes the Redis client connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}
