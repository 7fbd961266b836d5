package redis

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/blake2b"

	"github.com/custodia-labs/nlq-engine/internal/core/domain"
	"github.com/custodia-labs/nlq-engine/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.ResultCache = (*ResultCache)(nil)

const (
	// Key prefix for cached results
	resultPrefix = "nlq:result:"

	// DefaultTTL applies when no TTL is configured
	DefaultTTL = time.Hour

	scanBatch = 100
)

// ResultCache implements driven.ResultCache using Redis.
// Questions are hashed with BLAKE2b so keys have a fixed size; entries use
// Redis TTL for expiration. A Redis failure is treated as a miss.
type ResultCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewResultCache creates a new Redis-backed ResultCache
func NewResultCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *ResultCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ResultCache{client: client, ttl: ttl, logger: logger}
}

// NewClient parses a redis:// URL and verifies the server is reachable
func NewClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

// resultKey returns the Redis key for a question
func resultKey(question string) string {
	sum := blake2b.Sum256([]byte(question))
	return resultPrefix + hex.EncodeToString(sum[:])
}

// Get retrieves a cached result
func (c *ResultCache) Get(ctx context.Context, question string) (*domain.QueryResult, bool) {
	data, err := c.client.Get(ctx, resultKey(question)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		c.logger.Warn("result cache read failed", "error", err)
		return nil, false
	}

	var result domain.QueryResult
	if err := json.Unmarshal(data, &result); err != nil {
		c.logger.Warn("discarding undecodable cache entry", "error", err)
		return nil, false
	}
	return &result, true
}

// Set stores a result with the cache TTL
func (c *ResultCache) Set(ctx context.Context, question string, result *domain.QueryResult) error {
	if result == nil {
		return domain.ErrInvalidInput
	}

	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	if err := c.client.Set(ctx, resultKey(question), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache result: %w", err)
	}
	return nil
}

// Clear deletes every cached result. Keys are found with SCAN so the
// server is never blocked by KEYS.
func (c *ResultCache) Clear(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, resultPrefix+"*", scanBatch).Result()
		if err != nil {
			return fmt.Errorf("failed to scan cache keys: %w", err)
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("failed to clear cache: %w", err)
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

// Len counts cached results
func (c *ResultCache) Len(ctx context.Context) int {
	n := 0
	iter := c.client.Scan(ctx, 0, resultPrefix+"*", scanBatch).Iterator()
	for iter.Next(ctx) {
		n++
	}
	if err := iter.Err(); err != nil {
		c.logger.Warn("result cache count failed", "error", err)
	}
	return n
}

// Ping checks if Redis is reachable
func (c *ResultCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
