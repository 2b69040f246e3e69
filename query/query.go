// Package query provides cached read-only queries for server-side rendering.
// A query is fetched once in the background and shared by every request that
// asks for its key; requests that cannot wait get placeholder data instead.
package query

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"
)

// Status is the state of a query result.
type Status uint8

const (
	StatusPending Status = iota
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "???"
	}
}

const (
	DefaultRetry         = 3
	DefaultFetchTimeout  = 30 * time.Second
	DefaultErrorCooldown = 10 * time.Second

	maxRetryDelay = 30 * time.Second
)

// Options describes a single query.
type Options[T any] struct {
	Key   string
	Fetch func(ctx context.Context) (T, error)

	// Enabled must be true for the query to ever fetch.
	Enabled bool
	// StaleTime is how long fetched data stays fresh. Zero means for the
	// lifetime of the cache: data read back from the store is refetched once.
	StaleTime time.Duration
	// Wait is the longest Get blocks on an in-flight fetch before returning
	// the placeholder or stale data.
	Wait time.Duration
	// Placeholder is returned while there is no data yet.
	Placeholder T
}

// Result is the outcome of Get.
type Result[T any] struct {
	Data   T
	Status Status
	Err    error

	IsPlaceholderData bool
	IsStale           bool
	UpdatedAt         time.Time
}

// IsPending returns true if the query has no real data yet.
func (r Result[T]) IsPending() bool {
	return r.Status == StatusPending
}

type entry struct {
	data      json.RawMessage
	value     interface{}
	updatedAt time.Time
	err       error
	errorAt   time.Time

	// stored is true until the entry is refetched by this cache. Queries that
	// never go stale still refetch stored entries once.
	stored bool
}

func (e *entry) hasData() bool {
	return e.value != nil || e.data != nil
}

// Config configures a Cache.
type Config struct {
	Retry         int
	RetryDelay    func(attempt int) time.Duration
	FetchTimeout  time.Duration
	ErrorCooldown time.Duration
}

// NewConfig returns the default cache config.
func NewConfig() Config {
	return Config{
		Retry:         DefaultRetry,
		RetryDelay:    ExponentialDelay,
		FetchTimeout:  DefaultFetchTimeout,
		ErrorCooldown: DefaultErrorCooldown,
	}
}

// ExponentialDelay doubles from one second up to 30 seconds.
func ExponentialDelay(attempt int) time.Duration {
	d := time.Second << uint(attempt)
	if d <= 0 || d > maxRetryDelay {
		return maxRetryDelay
	}
	return d
}

// Cache holds the results of every query by key.
type Cache struct {
	cfg   Config
	store Store

	mutex   sync.Mutex
	entries map[string]*entry
	flight  singleflight.Group

	ctx    context.Context
	cancel context.CancelFunc
	now    func() time.Time
}

// NewCache creates a new cache. The store is optional and may be nil.
func NewCache(cfg Config, store Store) *Cache {
	if cfg.RetryDelay == nil {
		cfg.RetryDelay = ExponentialDelay
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = DefaultFetchTimeout
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Cache{
		cfg:     cfg,
		store:   store,
		entries: map[string]*entry{},
		ctx:     ctx,
		cancel:  cancel,
		now:     time.Now,
	}
}

// Close cancels all in-flight fetches.
func (c *Cache) Close() error {
	c.cancel()
	return nil
}

// Invalidate drops the cached result of the given key, so the next Get
// refetches it.
func (c *Cache) Invalidate(key string) {
	c.mutex.Lock()
	delete(c.entries, key)
	c.mutex.Unlock()

	if c.store != nil {
		if err := c.store.Delete(key); err != nil {
			log.Println("Failed to delete query", key, "from store:", err)
		}
	}
}

// lookup returns a copy of the entry of the given key. The entry is loaded from
// the store if it is not in memory.
func (c *Cache) lookup(key string) (entry, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if e, ok := c.entries[key]; ok {
		return *e, true
	}

	if c.store == nil {
		return entry{}, false
	}

	var stored storedEntry

	ok, err := c.store.Read(key, &stored)
	if err != nil {
		log.Println("Failed to read query", key, "from store:", err)
		return entry{}, false
	}
	if !ok {
		return entry{}, false
	}

	e := &entry{data: stored.Data, updatedAt: stored.UpdatedAt, stored: true}
	c.entries[key] = e

	return *e, true
}

func (c *Cache) setData(key string, v interface{}) {
	now := c.now()

	c.mutex.Lock()
	c.entries[key] = &entry{value: v, updatedAt: now}
	c.mutex.Unlock()

	if c.store == nil {
		return
	}

	b, err := json.Marshal(v)
	if err != nil {
		log.Println("Failed to encode query", key, "for store:", err)
		return
	}

	if err := c.store.Write(key, storedEntry{Data: b, UpdatedAt: now}); err != nil {
		log.Println("Failed to write query", key, "to store:", err)
	}
}

func (c *Cache) setError(key string, err error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	e, ok := c.entries[key]
	if !ok {
		e = &entry{}
		c.entries[key] = e
	}

	e.err = err
	e.errorAt = c.now()
}

// fetch starts or joins the fetch of the given key.
func (c *Cache) fetch(key string, fn func(context.Context) (interface{}, error)) <-chan singleflight.Result {
	return c.flight.DoChan(key, func() (interface{}, error) {
		v, err := c.retry(fn)
		if err != nil {
			log.Println("Query", key, "failed:", err)
			c.setError(key, err)
			return nil, err
		}

		c.setData(key, v)
		return v, nil
	})
}

func (c *Cache) retry(fn func(context.Context) (interface{}, error)) (interface{}, error) {
	var lastErr error

	for attempt := 0; attempt <= c.cfg.Retry; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(c.cfg.RetryDelay(attempt - 1)):
			case <-c.ctx.Done():
				return nil, errors.Wrap(c.ctx.Err(), "cache closed")
			}
		}

		ctx, cancel := context.WithTimeout(c.ctx, c.cfg.FetchTimeout)
		v, err := fn(ctx)
		cancel()

		if err == nil {
			return v, nil
		}

		lastErr = err
	}

	return nil, lastErr
}

// Get returns the result of the query described by opts. It never blocks
// longer than opts.Wait or the context deadline, whichever comes first.
func Get[T any](ctx context.Context, c *Cache, opts Options[T]) Result[T] {
	placeholder := Result[T]{
		Data:              opts.Placeholder,
		Status:            StatusPending,
		IsPlaceholderData: true,
	}

	if !opts.Enabled || opts.Fetch == nil {
		return placeholder
	}

	e, ok := c.lookup(opts.Key)
	if ok && e.hasData() {
		r, err := decodeEntry[T](e)
		if err != nil {
			log.Println("Dropping undecodable query", opts.Key+":", err)
			c.Invalidate(opts.Key)
		} else if !c.isStale(e, opts.StaleTime) {
			return r
		} else {
			// Serve stale data and refresh in the background.
			r.IsStale = true
			placeholder = r
		}
	}

	if ok && e.err != nil && c.now().Sub(e.errorAt) < c.cfg.ErrorCooldown {
		if placeholder.IsStale {
			placeholder.Err = e.err
			return placeholder
		}
		return Result[T]{Status: StatusError, Err: e.err}
	}

	ch := c.fetch(opts.Key, func(ctx context.Context) (interface{}, error) {
		return opts.Fetch(ctx)
	})

	var timeout <-chan time.Time
	if opts.Wait > 0 {
		t := time.NewTimer(opts.Wait)
		defer t.Stop()
		timeout = t.C
	} else {
		select {
		case res := <-ch:
			return result(res, placeholder, c.now())
		default:
			return placeholder
		}
	}

	select {
	case res := <-ch:
		return result(res, placeholder, c.now())
	case <-timeout:
		return placeholder
	case <-ctx.Done():
		return placeholder
	}
}

func result[T any](res singleflight.Result, fallback Result[T], now time.Time) Result[T] {
	if res.Err != nil {
		if fallback.IsStale {
			fallback.Err = res.Err
			return fallback
		}
		return Result[T]{Status: StatusError, Err: res.Err}
	}

	v, ok := res.Val.(T)
	if !ok {
		return Result[T]{
			Status: StatusError,
			Err:    errors.Errorf("unexpected query value type %T", res.Val),
		}
	}

	return Result[T]{Data: v, Status: StatusSuccess, UpdatedAt: now}
}

func decodeEntry[T any](e entry) (Result[T], error) {
	r := Result[T]{Status: StatusSuccess, UpdatedAt: e.updatedAt}

	if e.value != nil {
		v, ok := e.value.(T)
		if !ok {
			return r, errors.Errorf("unexpected query value type %T", e.value)
		}
		r.Data = v
		return r, nil
	}

	if err := json.Unmarshal(e.data, &r.Data); err != nil {
		return r, errors.Wrap(err, "failed to decode stored query")
	}

	return r, nil
}

func (c *Cache) isStale(e entry, staleTime time.Duration) bool {
	if staleTime <= 0 {
		return e.stored
	}
	return c.now().Sub(e.updatedAt) >= staleTime
}
