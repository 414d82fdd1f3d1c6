package analysis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CacheKeyPrefix namespaces cached analyses.
const CacheKeyPrefix = "analysis:"

// Cache stores serialised analyses. Get reports a miss with ok false and a nil
// error.
type Cache interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

// CacheKey identifies a request by a hash of both prompts.
func CacheKey(req Request) string {
	sum := sha256.Sum256([]byte(req.SystemPrompt + "\x00" + req.UserPrompt))
	return CacheKeyPrefix + hex.EncodeToString(sum[:])
}

// RedisCache keeps analyses in Redis with an expiry.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects to the Redis server at addr. A zero ttl keeps
// entries until evicted.
func NewRedisCache(addr string, ttl time.Duration) *RedisCache {
	return &RedisCache{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		ttl:    ttl,
	}
}

// Get implements Cache.
func (r *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// Set implements Cache.
func (r *RedisCache) Set(ctx context.Context, key, value string) error {
	return r.client.Set(ctx, key, value, r.ttl).Err()
}

// Close releases the Redis connection pool.
func (r *RedisCache) Close() error {
	return r.client.Close()
}

type memoryEntry struct {
	value   string
	expires time.Time
}

// MemoryCache is an in-process Cache.
type MemoryCache struct {
	mu   sync.Mutex
	data map[string]memoryEntry
	ttl  time.Duration
	now  func() time.Time
}

// NewMemoryCache creates an empty cache. A zero ttl never expires entries.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		data: make(map[string]memoryEntry),
		ttl:  ttl,
		now:  time.Now,
	}
}

// Get implements Cache.
func (m *MemoryCache) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.data[key]
	if !ok {
		return "", false, nil
	}
	if !entry.expires.IsZero() && m.now().After(entry.expires) {
		delete(m.data, key)
		return "", false, nil
	}
	return entry.value, true, nil
}

// Set implements Cache.
func (m *MemoryCache) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry := memoryEntry{value: value}
	if m.ttl > 0 {
		entry.expires = m.now().Add(m.ttl)
	}
	m.data[key] = entry
	return nil
}

// Len returns the number of stored entries.
func (m *MemoryCache) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}

// CachedAnalyzer serves repeated requests from a cache. The cache is best
// effort: its failures are logged and the request goes to the next analyzer.
type CachedAnalyzer struct {
	Next   Analyzer
	Cache  Cache
	Logger *zap.Logger
}

// NewCachedAnalyzer wraps next with cache.
func NewCachedAnalyzer(next Analyzer, cache Cache, logger *zap.Logger) *CachedAnalyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedAnalyzer{Next: next, Cache: cache, Logger: logger}
}

// Analyze implements Analyzer.
func (c *CachedAnalyzer) Analyze(ctx context.Context, req Request) (*Analysis, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	key := CacheKey(req)

	cached, ok, err := c.Cache.Get(ctx, key)
	switch {
	case err != nil:
		c.Logger.Warn("analysis cache read failed",
			zap.String("op", "analysis.CachedAnalyzer.Analyze"),
			zap.Error(err),
		)
	case ok:
		var out Analysis
		if err := json.Unmarshal([]byte(cached), &out); err == nil {
			c.Logger.Debug("analysis cache hit",
				zap.String("op", "analysis.CachedAnalyzer.Analyze"),
				zap.String("key", key),
			)
			out.normalize()
			return &out, nil
		}
		c.Logger.Warn("discarding unreadable cached analysis",
			zap.String("op", "analysis.CachedAnalyzer.Analyze"),
			zap.String("key", key),
		)
	}

	out, err := c.Next.Analyze(ctx, req)
	if err != nil {
		return nil, err
	}
	encoded, err := json.Marshal(out)
	if err == nil {
		err = c.Cache.Set(ctx, key, string(encoded))
	}
	if err != nil {
		c.Logger.Warn("analysis cache write failed",
			zap.String("op", "analysis.CachedAnalyzer.Analyze"),
			zap.Error(err),
		)
	}
	return out, nil
}
