// Package cache memoizes compiled queries.
//
// Compilation is deterministic, so a query text always yields the same
// Predicate or the same error. The cache keeps both, bounded by an LRU
// policy, and collapses concurrent compilations of one text into a single
// build.
package cache

import (
	"container/list"
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/roach88/termql/internal/compiler"
	"github.com/roach88/termql/internal/ir"
	"github.com/roach88/termql/internal/validate"
)

// DefaultMaxEntries is the capacity used when none is configured.
const DefaultMaxEntries = 1024

// BuildFunc compiles query text. compiler.Build with fixed options is the
// usual implementation.
type BuildFunc func(src string) (*compiler.Result, error)

// Options configures a Cache.
type Options struct {
	MaxEntries int
	Validation validate.Options
	// Build overrides the compiler; nil means compiler.Build with Validation.
	Build BuildFunc
}

// Option mutates Options.
type Option func(*Options)

// WithMaxEntries bounds the number of cached queries.
func WithMaxEntries(n int) Option {
	return func(o *Options) { o.MaxEntries = n }
}

// WithValidation sets the validator options used to build entries.
func WithValidation(v validate.Options) Option {
	return func(o *Options) { o.Validation = v }
}

// WithBuildFunc replaces the compiler, mainly for tests.
func WithBuildFunc(fn BuildFunc) Option {
	return func(o *Options) { o.Build = fn }
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Entries    int
	MaxEntries int
	Hits       int64
	Misses     int64
	Evictions  int64
	Builds     int64
	Errors     int64
}

type entry struct {
	key    string
	result *compiler.Result
	err    error
	elem   *list.Element
}

// Cache is an LRU cache of compiled queries keyed by the NFC-normalized
// query text.
//
// Thread Safety:
//
//	Cache is safe for concurrent use. Cached Results are shared between
//	callers and must not be modified.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
	lru     *list.List
	flight  singleflight.Group
	opts    Options

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
	builds    atomic.Int64
	errors    atomic.Int64
}

// New creates a Cache.
func New(opts ...Option) *Cache {
	o := Options{MaxEntries: DefaultMaxEntries, Validation: validate.DefaultOptions()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.MaxEntries <= 0 {
		o.MaxEntries = DefaultMaxEntries
	}
	if o.Build == nil {
		v := o.Validation
		o.Build = func(src string) (*compiler.Result, error) { return compiler.Build(src, v) }
	}
	return &Cache{
		entries: make(map[string]*entry),
		lru:     list.New(),
		opts:    o,
	}
}

// Get returns the compiled form of src, building it on a miss. A failed
// build is cached like a successful one and returns the same error.
//
// Concurrent calls for the same text share one build.
func (c *Cache) Get(ctx context.Context, src string) (*compiler.Result, error) {
	key := ir.QueryHash(src)

	if e, ok := c.lookup(key); ok {
		c.hits.Add(1)
		recordHit(ctx)
		return e.result, e.err
	}
	c.misses.Add(1)
	recordMiss(ctx)

	v, _, _ := c.flight.Do(key, func() (any, error) {
		if e, ok := c.lookup(key); ok {
			return e, nil
		}
		res, err := c.opts.Build(src)
		c.builds.Add(1)
		recordBuild(ctx, err)
		if err != nil {
			c.errors.Add(1)
		}
		return c.store(ctx, key, res, err), nil
	})
	e := v.(*entry)
	return e.result, e.err
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() Stats {
	return Stats{
		Entries:    c.Len(),
		MaxEntries: c.opts.MaxEntries,
		Hits:       c.hits.Load(),
		Misses:     c.misses.Load(),
		Evictions:  c.evictions.Load(),
		Builds:     c.builds.Load(),
		Errors:     c.errors.Load(),
	}
}

// Clear removes every entry. Counters are kept.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry)
	c.lru.Init()
}

func (c *Cache) lookup(key string) (*entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if ok {
		c.lru.MoveToFront(e.elem)
	}
	return e, ok
}

func (c *Cache) store(ctx context.Context, key string, res *compiler.Result, err error) *entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.entries[key]; ok {
		return existing
	}
	for len(c.entries) >= c.opts.MaxEntries {
		c.evictOldestLocked(ctx)
	}
	e := &entry{key: key, result: res, err: err}
	e.elem = c.lru.PushFront(e)
	c.entries[key] = e
	return e
}

func (c *Cache) evictOldestLocked(ctx context.Context) {
	back := c.lru.Back()
	if back == nil {
		return
	}
	e := back.Value.(*entry)
	c.lru.Remove(back)
	delete(c.entries, e.key)
	c.evictions.Add(1)
	recordEviction(ctx)
}
