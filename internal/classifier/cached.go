package classifier

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"candidate-screening/internal/common/logger"
	"candidate-screening/internal/common/metrics"

	"github.com/redis/go-redis/v9"
)

// Cached stores successful raw classifier responses in Redis. Redis failures
// are logged and the inner classifier is used.
type Cached struct {
	inner  Classifier
	redis  redis.Cmdable
	ttl    time.Duration
	prefix string
	accept AcceptFunc
	logger logger.Logger
}

// AcceptFunc reports whether text returned for description may be cached.
type AcceptFunc func(description, text string) bool

type CacheOption func(*Cached)

// WithAccept restricts caching to responses accept approves. Rejected
// responses are still returned to the caller.
func WithAccept(accept AcceptFunc) CacheOption {
	return func(c *Cached) {
		c.accept = accept
	}
}

func NewCached(inner Classifier, rdb redis.Cmdable, ttl time.Duration, prefix string, log logger.Logger, opts ...CacheOption) *Cached {
	c := &Cached{
		inner:  inner,
		redis:  rdb,
		ttl:    ttl,
		prefix: prefix,
		logger: log.With(map[string]interface{}{"component": "classifier-cache"}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CacheKey derives the Redis key for a description and payload.
func (c *Cached) CacheKey(description string, payload interface{}) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	h := sha256.New()
	h.Write([]byte(description))
	h.Write([]byte{0})
	h.Write(raw)
	return c.prefix + hex.EncodeToString(h.Sum(nil)), nil
}

func (c *Cached) Classify(ctx context.Context, description string, payload interface{}) (string, error) {
	key, err := c.CacheKey(description, payload)
	if err != nil {
		c.logger.Warn("payload not cacheable", map[string]interface{}{"error": err.Error()})
		return c.inner.Classify(ctx, description, payload)
	}

	cached, err := c.redis.Get(ctx, key).Result()
	switch {
	case err == nil:
		metrics.ClassifierCacheHits.Inc()
		return cached, nil
	case errors.Is(err, redis.Nil):
	default:
		c.logger.Warn("cache read failed", map[string]interface{}{"key": key, "error": err.Error()})
	}
	metrics.ClassifierCacheMisses.Inc()

	text, err := c.inner.Classify(ctx, description, payload)
	if err != nil {
		return "", err
	}

	if c.accept != nil && !c.accept(description, text) {
		c.logger.Debug("response not cached", map[string]interface{}{"key": key})
		return text, nil
	}

	if err := c.redis.Set(ctx, key, text, c.ttl).Err(); err != nil {
		c.logger.Warn("cache write failed", map[string]interface{}{"key": key, "error": err.Error()})
	}
	return text, nil
}
