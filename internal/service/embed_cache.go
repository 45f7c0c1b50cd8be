package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// EmbeddingProvider is the narrow embed-only view of the model service.
type EmbeddingProvider interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// CachedEmbedder is a cache-aside decorator over an embedding provider.
// Keys are the SHA-256 of the exact input text, so identical text always
// resolves to the same stored vector and repeated ingest or search calls
// skip the model. Cache trouble degrades to a plain model call, never to a
// failure.
type CachedEmbedder struct {
	inner EmbeddingProvider
	rdb   *redis.Client
	ttl   time.Duration
	log   *zap.Logger
}

func NewCachedEmbedder(inner EmbeddingProvider, rdb *redis.Client, ttl time.Duration, log *zap.Logger) *CachedEmbedder {
	return &CachedEmbedder{inner: inner, rdb: rdb, ttl: ttl, log: log}
}

func (c *CachedEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	key := embeddingKey(text)

	data, err := c.rdb.Get(ctx, key).Bytes()
	if err == nil {
		var vec []float32
		if jsonErr := json.Unmarshal(data, &vec); jsonErr == nil && len(vec) > 0 {
			return vec, nil
		}
		c.log.Warn("dropping corrupt embedding cache entry", zap.String("key", key))
		c.rdb.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		c.log.Warn("embedding cache read failed", zap.Error(err))
	}

	vec, err := c.inner.GenerateEmbedding(ctx, text)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(vec); err == nil {
		if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.log.Warn("embedding cache write failed", zap.Error(err))
		}
	}
	return vec, nil
}

func embeddingKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return "embed:" + hex.EncodeToString(sum[:])
}
