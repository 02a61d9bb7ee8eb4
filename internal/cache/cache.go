// internal/cache/cache.go
package cache

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Status of a cached collection.
type Status string

const (
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusError   Status = "error"
)

// Snapshot is the cache state handed to consumers. Once ready, every
// consumer of the same collection observes the same Items slice.
type Snapshot[T any] struct {
	Items     []T
	Status    Status
	Err       error
	Retryable bool
}

// FetchFunc loads the full collection from the backing store.
type FetchFunc[T any] func(ctx context.Context) ([]T, error)

// Collection is a fetch-once, multi-subscriber cache for one read-mostly
// reference collection. The first Get or Subscribe triggers the fetch;
// concurrent callers within the loading window join the same flight and
// never issue a second read. A failed fetch parks the collection in the
// error state — there is no automatic retry, the next Get re-triggers.
type Collection[T any] struct {
	key   string
	fetch FetchFunc[T]

	group singleflight.Group

	mu          sync.Mutex
	snap        Snapshot[T]
	started     bool
	epoch       uint64 // bumps on every fetch completion
	subscribers map[int]func(Snapshot[T])
	nextSubID   int
}

// NewCollection builds the cache entry for key. Nothing is fetched until the
// first consumer arrives.
func NewCollection[T any](key string, fetch FetchFunc[T]) *Collection[T] {
	return &Collection[T]{
		key:         key,
		fetch:       fetch,
		snap:        Snapshot[T]{Status: StatusLoading},
		subscribers: make(map[int]func(Snapshot[T])),
	}
}

// Key returns the collection key.
func (c *Collection[T]) Key() string { return c.key }

// Current returns the current state without triggering a fetch.
func (c *Collection[T]) Current() Snapshot[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap
}

// Wait blocks until the collection has left the loading state, triggering
// the initial fetch if no consumer has yet. It returns the ready or error
// snapshot, or the current one if ctx expires first. A collection already
// parked in the error state is returned as-is; retrying is Get's job.
func (c *Collection[T]) Wait(ctx context.Context) Snapshot[T] {
	settled := make(chan Snapshot[T], 1)
	unsubscribe := c.Subscribe(func(snap Snapshot[T]) {
		if snap.Status == StatusLoading {
			return
		}
		select {
		case settled <- snap:
		default:
		}
	})
	defer unsubscribe()

	select {
	case snap := <-settled:
		return snap
	case <-ctx.Done():
		return c.Current()
	}
}

// Get returns the current state synchronously — possibly loading with empty
// items on first call — and triggers a fetch if none is in flight or
// completed. After a failure, calling Get again is the manual re-trigger.
func (c *Collection[T]) Get(ctx context.Context) Snapshot[T] {
	c.mu.Lock()
	snap := c.snap
	epoch := c.epoch
	trigger := snap.Status != StatusReady
	if trigger {
		c.started = true
	}
	c.mu.Unlock()

	if trigger {
		go c.load(epoch)
	}
	return snap
}

// Subscribe registers for state transitions and returns an unsubscribe func.
// The current state is delivered synchronously before Subscribe returns. The
// first subscriber triggers the initial fetch; a subscriber arriving after a
// failure does not retry it.
func (c *Collection[T]) Subscribe(fn func(Snapshot[T])) func() {
	c.mu.Lock()
	id := c.nextSubID
	c.nextSubID++
	c.subscribers[id] = fn
	fn(c.snap)

	trigger := !c.started
	if trigger {
		c.started = true
	}
	epoch := c.epoch
	c.mu.Unlock()

	if trigger {
		go c.load(epoch)
	}

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subscribers, id)
	}
}

// load funnels every trigger through a single flight per key, so N
// concurrent first-accesses perform exactly one store read. The epoch taken
// at trigger time makes stale triggers no-ops: a trigger that observed state
// from before the latest completion must not start another fetch, otherwise
// a straggler would silently retry a failed collection.
func (c *Collection[T]) load(epoch uint64) {
	c.group.Do(c.key, func() (any, error) {
		c.mu.Lock()
		if c.epoch != epoch {
			c.mu.Unlock()
			return nil, nil
		}
		if c.snap.Status == StatusError {
			c.transitionLocked(Snapshot[T]{Status: StatusLoading})
		}
		c.mu.Unlock()

		items, err := c.fetch(context.Background())

		c.mu.Lock()
		defer c.mu.Unlock()
		c.epoch++
		if err != nil {
			c.transitionLocked(Snapshot[T]{Status: StatusError, Err: err, Retryable: true})
			return nil, err
		}
		c.transitionLocked(Snapshot[T]{Items: items, Status: StatusReady})
		return items, nil
	})
}

// transitionLocked swaps the snapshot and fans it out. Callers hold c.mu;
// subscriber callbacks must not call back into the collection.
func (c *Collection[T]) transitionLocked(snap Snapshot[T]) {
	c.snap = snap
	for _, fn := range c.subscribers {
		fn(snap)
	}
}
