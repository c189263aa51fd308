package classifier

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"sales-assistant/internal/common/logger"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "sales:extract:"

// CachedPort memoizes Extract results in Redis. Complete is never cached since routing depends on history.
type CachedPort struct {
	next   Port
	redis  *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedPort(next Port, rdb *redis.Client, ttl time.Duration, log logger.Logger) *CachedPort {
	return &CachedPort{next: next, redis: rdb, ttl: ttl, logger: log}
}

func (c *CachedPort) Complete(ctx context.Context, operation, prompt string) (string, error) {
	return c.next.Complete(ctx, operation, prompt)
}

func (c *CachedPort) Extract(ctx context.Context, operation, prompt, schema string) (json.RawMessage, error) {
	key := cacheKey(operation, prompt, schema)

	cached, err := c.redis.Get(ctx, key).Bytes()
	if err == nil && json.Valid(cached) {
		c.logger.Debug("extraction cache hit", map[string]interface{}{"operation": operation})
		return json.RawMessage(cached), nil
	}
	if err != nil && err != redis.Nil {
		c.logger.Warn("extraction cache read failed", map[string]interface{}{
			"operation": operation,
			"error":     err.Error(),
		})
	}

	raw, err := c.next.Extract(ctx, operation, prompt, schema)
	if err != nil {
		return nil, err
	}

	cleaned := []byte(StripCodeFence(string(raw)))
	if json.Valid(cleaned) {
		if err := c.redis.Set(ctx, key, cleaned, c.ttl).Err(); err != nil {
			c.logger.Warn("extraction cache write failed", map[string]interface{}{
				"operation": operation,
				"error":     err.Error(),
			})
		}
	}
	return raw, nil
}

func cacheKey(operation, prompt, schema string) string {
	sum := sha256.Sum256([]byte(operation + "\x00" + prompt + "\x00" + schema))
	return cacheKeyPrefix + operation + ":" + hex.EncodeToString(sum[:])
}
