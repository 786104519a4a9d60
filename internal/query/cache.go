package query

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/singleflight"
)

const (
	defaultStaleTime = 30 * time.Second
	defaultGCTime    = 5 * time.Minute
)

var cacheResults = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "plateshare_query_cache_total",
	Help: "Query cache lookups by result (hit, stale, miss, refresh_error).",
}, []string{"result"})

// Key identifies a query, e.g. Key{"food", id}. Invalidation matches by prefix.
type Key []string

func (k Key) String() string {
	return strings.Join(k, "\x1f")
}

func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	for i := range prefix {
		if k[i] != prefix[i] {
			return false
		}
	}
	return true
}

// flight marks a load in progress so Invalidate can detach later callers from it.
type flight struct {
	key Key
}

type entry struct {
	key       Key
	value     any
	fetchedAt time.Time
	lastUsed  time.Time
	invalid   bool
}

// Cache keeps the latest result per query key. Fresh results are served
// directly, stale results are served while a background refetch runs, and
// invalidated or missing results are fetched before returning.
type Cache struct {
	mu         sync.Mutex
	entries    map[string]*entry
	inflight   map[string]*flight
	refreshing map[string]bool
	gen        uint64

	group     singleflight.Group
	staleTime time.Duration
	gcTime    time.Duration
	now       func() time.Time

	stopCh    chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

type Option func(*Cache)

// WithStaleTime sets how long a result is served without a background refetch.
func WithStaleTime(d time.Duration) Option {
	return func(c *Cache) {
		c.staleTime = d
	}
}

// WithGCTime sets how long an unused result is kept. Zero disables collection.
func WithGCTime(d time.Duration) Option {
	return func(c *Cache) {
		c.gcTime = d
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

func New(opts ...Option) *Cache {
	c := &Cache{
		entries:    make(map[string]*entry),
		inflight:   make(map[string]*flight),
		refreshing: make(map[string]bool),
		staleTime:  defaultStaleTime,
		gcTime:     defaultGCTime,
		now:        time.Now,
		stopCh:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.gcTime > 0 {
		c.wg.Add(1)
		go c.collectLoop()
	}

	return c
}

// Fetch returns the cached result for key or calls fetch to produce it.
// Concurrent fetches of the same key share one call. Errors are never cached.
func Fetch[T any](ctx context.Context, c *Cache, key Key, fetch func(context.Context) (T, error)) (T, error) {
	k := key.String()

	c.mu.Lock()
	e, ok := c.entries[k]
	if ok && !e.invalid {
		v, typed := e.value.(T)
		if typed {
			now := c.now()
			e.lastUsed = now
			stale := now.Sub(e.fetchedAt) >= c.staleTime
			c.mu.Unlock()

			if stale {
				cacheResults.WithLabelValues("stale").Inc()
				c.refresh(ctx, key, func(ctx context.Context) (any, error) { return fetch(ctx) })
			} else {
				cacheResults.WithLabelValues("hit").Inc()
			}
			return v, nil
		}
	}
	c.mu.Unlock()

	cacheResults.WithLabelValues("miss").Inc()
	v, err := c.load(ctx, key, func(ctx context.Context) (any, error) { return fetch(ctx) })
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// load runs fetch through the singleflight group and stores a successful result.
// The fetch outlives the caller that started it: a caller whose context ends
// gets ctx.Err() while the others keep waiting for the shared result.
func (c *Cache) load(ctx context.Context, key Key, fetch func(context.Context) (any, error)) (any, error) {
	k := key.String()
	fetchCtx := context.WithoutCancel(ctx)

	ch := c.group.DoChan(k, func() (any, error) {
		f := &flight{key: key}
		c.mu.Lock()
		startGen := c.gen
		c.inflight[k] = f
		c.mu.Unlock()

		v, err := fetch(fetchCtx)

		c.mu.Lock()
		defer c.mu.Unlock()
		// After Invalidate a newer flight may own k.
		if c.inflight[k] == f {
			delete(c.inflight, k)
		}
		if err != nil {
			return nil, err
		}

		now := c.now()
		c.entries[k] = &entry{
			key:       key,
			value:     v,
			fetchedAt: now,
			lastUsed:  now,
			// An invalidation during the fetch may have raced with a write
			// this result does not reflect.
			invalid: c.gen != startGen,
		}
		return v, nil
	})

	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Cache) refresh(ctx context.Context, key Key, fetch func(context.Context) (any, error)) {
	k := key.String()

	c.mu.Lock()
	if c.refreshing[k] {
		c.mu.Unlock()
		return
	}
	c.refreshing[k] = true
	c.mu.Unlock()

	ctx = context.WithoutCancel(ctx)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer func() {
			c.mu.Lock()
			delete(c.refreshing, k)
			c.mu.Unlock()
		}()

		_, err := c.load(ctx, key, fetch)
		if err != nil {
			cacheResults.WithLabelValues("refresh_error").Inc()
			slog.Warn("background refetch failed", "error", err, "key", strings.Join(key, "/"))
		}
	}()
}

// Invalidate marks every result whose key starts with prefix so that the next
// Fetch loads it again before returning.
func (c *Cache) Invalidate(prefix Key) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gen++
	for _, e := range c.entries {
		if e.key.HasPrefix(prefix) {
			e.invalid = true
		}
	}
	for k, f := range c.inflight {
		if f.key.HasPrefix(prefix) {
			c.group.Forget(k)
		}
	}
}

// Len returns the number of stored results, including invalidated ones.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) collectLoop() {
	defer c.wg.Done()

	interval := c.gcTime / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stopCh:
			return
		}
	}
}

// collect removes results that have not been used for gcTime.
func (c *Cache) collect() {
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := c.now().Add(-c.gcTime)
	for k, e := range c.entries {
		if e.lastUsed.Before(cutoff) {
			delete(c.entries, k)
		}
	}
}

// Close stops the collector and waits for background refetches to finish.
func (c *Cache) Close() {
	c.closeOnce.Do(func() {
		close(c.stopCh)
	})
	c.wg.Wait()
}
