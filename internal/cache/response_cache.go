// Package cache keeps upstream responses for a fixed time window.
package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/wonny/lighthorse/backend/pkg/logger"
	"github.com/wonny/lighthorse/backend/pkg/metrics"
	"github.com/wonny/lighthorse/backend/pkg/redis"
)

// DefaultTTL is the freshness window for upstream responses
const DefaultTTL = time.Hour

// FetchFunc loads a value on a cache miss
type FetchFunc func(ctx context.Context) ([]byte, error)

// Entry is one cached response
type Entry struct {
	Body      []byte    `json:"body"`
	FetchedAt time.Time `json:"fetched_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ResponseCache is a TTL cache for upstream response bodies.
// Memory first, then the optional Redis layer, then the fetch.
// ⭐ SSOT: 업스트림 응답 캐싱은 이 구조체에서만
type ResponseCache struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	ttl     time.Duration
	remote  *redis.Cache
	group   singleflight.Group
	metrics *metrics.Recorder
	logger  *logger.Logger
	now     func() time.Time
}

// New creates a response cache. remote and rec may be nil.
func New(ttl time.Duration, remote *redis.Cache, rec *metrics.Recorder, log *logger.Logger) *ResponseCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ResponseCache{
		entries: make(map[string]*Entry),
		ttl:     ttl,
		remote:  remote,
		metrics: rec,
		logger:  log.WithComponent("cache"),
		now:     time.Now,
	}
}

// TTL returns the freshness window
func (c *ResponseCache) TTL() time.Duration {
	return c.ttl
}

// Get returns a fresh memory entry
func (c *ResponseCache) Get(key string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || !c.now().Before(e.ExpiresAt) {
		return Entry{}, false
	}
	return *e, true
}

// Put stores body under key, fetched now
func (c *ResponseCache) Put(key string, body []byte) Entry {
	now := c.now()
	e := &Entry{Body: body, FetchedAt: now, ExpiresAt: now.Add(c.ttl)}

	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()

	return *e
}

// GetOrFetch returns the cached entry for key or loads it with fetch.
// Concurrent misses for one key share a single fetch. Failures are not cached.
func (c *ResponseCache) GetOrFetch(ctx context.Context, key string, fetch FetchFunc) (Entry, error) {
	if e, ok := c.Get(key); ok {
		c.metrics.RecordCache("memory", true)
		return e, nil
	}
	c.metrics.RecordCache("memory", false)

	v, err, shared := c.group.Do(key, func() (interface{}, error) {
		// 먼저 들어온 요청이 취소돼도 대기 중인 요청은 결과를 받아야 함
		return c.load(context.WithoutCancel(ctx), key, fetch)
	})
	if err != nil {
		return Entry{}, err
	}

	if shared {
		c.logger.WithField("key", key).Debug("Shared in-flight fetch")
	}
	return v.(Entry), nil
}

// Replace fetches key anew and swaps the cached entry only on success.
// A failed fetch leaves the current entry in place.
func (c *ResponseCache) Replace(ctx context.Context, key string, fetch FetchFunc) (Entry, error) {
	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		ctx := context.WithoutCancel(ctx)
		body, err := fetch(ctx)
		if err != nil {
			return Entry{}, err
		}
		e := c.Put(key, body)
		c.putRemote(ctx, key, e)
		return e, nil
	})
	if err != nil {
		c.logger.WithField("key", key).WithError(err).Warn("Replace failed, keeping cached entry")
		return Entry{}, err
	}
	return v.(Entry), nil
}

func (c *ResponseCache) load(ctx context.Context, key string, fetch FetchFunc) (Entry, error) {
	// 다른 goroutine이 방금 채웠을 수 있음
	if e, ok := c.Get(key); ok {
		return e, nil
	}

	if e, ok := c.getRemote(ctx, key); ok {
		c.mu.Lock()
		c.entries[key] = &e
		c.mu.Unlock()
		return e, nil
	}

	body, err := fetch(ctx)
	if err != nil {
		return Entry{}, err
	}

	e := c.Put(key, body)
	c.putRemote(ctx, key, e)

	c.logger.WithFields(map[string]interface{}{
		"key":   key,
		"bytes": len(body),
	}).Debug("Cached upstream response")

	return e, nil
}

func (c *ResponseCache) getRemote(ctx context.Context, key string) (Entry, bool) {
	if !c.remote.Enabled() {
		return Entry{}, false
	}

	data, ok, err := c.remote.Get(ctx, redis.UpstreamKey(key))
	if err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Redis cache read failed")
		return Entry{}, false
	}
	c.metrics.RecordCache("redis", ok)
	if !ok {
		return Entry{}, false
	}

	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Discarding corrupt redis entry")
		return Entry{}, false
	}
	if !c.now().Before(e.ExpiresAt) {
		return Entry{}, false
	}
	return e, true
}

func (c *ResponseCache) putRemote(ctx context.Context, key string, e Entry) {
	if !c.remote.Enabled() {
		return
	}

	data, err := json.Marshal(e)
	if err != nil {
		return
	}
	if err := c.remote.Set(ctx, redis.UpstreamKey(key), data, c.ttl); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Redis cache write failed")
	}
}

// Len returns the number of memory entries, expired included
func (c *ResponseCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

// CleanExpired removes expired memory entries
func (c *ResponseCache) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	count := 0
	for key, e := range c.entries {
		if !now.Before(e.ExpiresAt) {
			delete(c.entries, key)
			count++
		}
	}

	if count > 0 {
		c.logger.WithField("count", count).Info("Cleaned expired responses from cache")
	}

	return count
}

// Stats returns cache statistics
func (c *ResponseCache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := Stats{TotalCount: len(c.entries), TTL: c.ttl.String()}
	now := c.now()
	for _, e := range c.entries {
		if !now.Before(e.ExpiresAt) {
			stats.ExpiredCount++
		}
		stats.Bytes += len(e.Body)
	}
	return stats
}

// Stats represents cache statistics
type Stats struct {
	TotalCount   int    `json:"total_count"`
	ExpiredCount int    `json:"expired_count"`
	Bytes        int    `json:"bytes"`
	TTL          string `json:"ttl"`
}
