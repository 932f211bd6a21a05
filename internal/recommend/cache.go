package recommend

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/justestif/go-spotify-mood-recommender/internal/emotion"
)

// Cache defaults.
const (
	DefaultCacheTTL     = 10 * time.Minute
	DefaultCacheEntries = 256
)

// Searcher runs a layered search. Service implements it.
type Searcher interface {
	Search(ctx context.Context, query string, mood emotion.Emotion) Result
}

var _ Searcher = (*Service)(nil)

type cacheKey struct {
	query string
	mood  emotion.Emotion
}

type cacheEntry struct {
	result    Result
	fetchedAt time.Time
}

// CachedSearcher keeps recent results in memory so repeated queries for the
// same mood skip the catalog. Results that recorded a catalog error are not
// stored. Stale entries are dropped lazily on lookup.
type CachedSearcher struct {
	next       Searcher
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
	log        *log.Helper

	mu      sync.Mutex
	entries map[cacheKey]cacheEntry
}

// CacheOption configures a CachedSearcher.
type CacheOption func(*CachedSearcher)

// WithTTL sets how long a result stays fresh.
func WithTTL(d time.Duration) CacheOption {
	return func(c *CachedSearcher) {
		if d > 0 {
			c.ttl = d
		}
	}
}

// WithMaxEntries bounds the number of cached results.
func WithMaxEntries(n int) CacheOption {
	return func(c *CachedSearcher) {
		if n > 0 {
			c.maxEntries = n
		}
	}
}

// WithCacheClock overrides the time source.
func WithCacheClock(now func() time.Time) CacheOption {
	return func(c *CachedSearcher) {
		c.now = now
	}
}

// NewCachedSearcher wraps next with an in-memory result cache.
func NewCachedSearcher(next Searcher, logger log.Logger, opts ...CacheOption) *CachedSearcher {
	c := &CachedSearcher{
		next:       next,
		ttl:        DefaultCacheTTL,
		maxEntries: DefaultCacheEntries,
		now:        time.Now,
		log:        log.NewHelper(logger),
		entries:    make(map[cacheKey]cacheEntry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search returns a fresh cached result or delegates to the wrapped searcher.
func (c *CachedSearcher) Search(ctx context.Context, query string, mood emotion.Emotion) Result {
	key := cacheKey{query: strings.ToLower(strings.TrimSpace(query)), mood: mood}

	if res, ok := c.lookup(key); ok {
		c.log.WithContext(ctx).Debugw("msg", "search cache hit", "query", key.query, "emotion", mood)
		return res
	}

	res := c.next.Search(ctx, query, mood)
	if len(res.Errors) == 0 {
		c.store(key, res)
	}
	return res
}

// Len returns the number of cached results, fresh or not.
func (c *CachedSearcher) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *CachedSearcher) lookup(key cacheKey) (Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return Result{}, false
	}
	if c.now().Sub(entry.fetchedAt) >= c.ttl {
		delete(c.entries, key)
		return Result{}, false
	}
	return cloneResult(entry.result), true
}

func (c *CachedSearcher) store(key cacheKey, res Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if _, ok := c.entries[key]; !ok && len(c.entries) >= c.maxEntries {
		c.evict(now)
	}
	c.entries[key] = cacheEntry{result: cloneResult(res), fetchedAt: now}
}

// evict drops stale entries, or the oldest one when everything is fresh.
// Callers hold mu.
func (c *CachedSearcher) evict(now time.Time) {
	var (
		oldestKey cacheKey
		oldestAt  time.Time
		found     bool
	)
	for k, e := range c.entries {
		if now.Sub(e.fetchedAt) >= c.ttl {
			delete(c.entries, k)
			continue
		}
		if !found || e.fetchedAt.Before(oldestAt) {
			oldestKey, oldestAt, found = k, e.fetchedAt, true
		}
	}
	if len(c.entries) >= c.maxEntries && found {
		delete(c.entries, oldestKey)
	}
}

func cloneResult(res Result) Result {
	res.Tracks = append([]Track(nil), res.Tracks...)
	res.Errors = append([]error(nil), res.Errors...)
	return res
}
