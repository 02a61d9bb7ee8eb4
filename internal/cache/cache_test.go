// internal/cache/cache_test.go
package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitReady[T any](t *testing.T, c *Collection[T]) Snapshot[T] {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	snap := c.Wait(ctx)
	require.NotEqual(t, StatusLoading, snap.Status, "collection never settled")
	return snap
}

func TestCollectionStartsLoadingWithoutFetching(t *testing.T) {
	var fetches int32
	c := NewCollection("items", func(ctx context.Context) ([]string, error) {
		atomic.AddInt32(&fetches, 1)
		return []string{"a"}, nil
	})

	snap := c.Current()
	assert.Equal(t, StatusLoading, snap.Status)
	assert.Empty(t, snap.Items)

	time.Sleep(20 * time.Millisecond)
	assert.EqualValues(t, 0, atomic.LoadInt32(&fetches))
}

func TestCollectionGetTriggersSingleFetch(t *testing.T) {
	var fetches int32
	c := NewCollection("items", func(ctx context.Context) ([]string, error) {
		atomic.AddInt32(&fetches, 1)
		return []string{"a", "b"}, nil
	})

	c.Get(context.Background())
	snap := waitReady(t, c)

	assert.Equal(t, StatusReady, snap.Status)
	assert.Equal(t, []string{"a", "b"}, snap.Items)
	assert.EqualValues(t, 1, atomic.LoadInt32(&fetches))
}

func TestCollectionConcurrentGetsFetchOnce(t *testing.T) {
	for _, n := range []int{1, 5, 100} {
		var fetches int32
		gate := make(chan struct{})
		c := NewCollection("items", func(ctx context.Context) ([]int, error) {
			atomic.AddInt32(&fetches, 1)
			<-gate
			return []int{1, 2, 3}, nil
		})

		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				c.Get(context.Background())
			}()
		}
		wg.Wait()
		close(gate)

		snap := waitReady(t, c)
		assert.Equal(t, StatusReady, snap.Status)
		assert.EqualValues(t, 1, atomic.LoadInt32(&fetches), "n=%d", n)
	}
}

func TestCollectionSharesItemsAcrossConsumers(t *testing.T) {
	c := NewCollection("items", func(ctx context.Context) ([]string, error) {
		return []string{"x"}, nil
	})

	c.Get(context.Background())
	first := waitReady(t, c)
	second := c.Current()

	// same backing array, not a copy per consumer
	assert.Equal(t, &first.Items[0], &second.Items[0])
}

func TestCollectionErrorParksUntilNextGet(t *testing.T) {
	var fetches int32
	fail := errors.New("backend down")
	c := NewCollection("items", func(ctx context.Context) ([]string, error) {
		if atomic.AddInt32(&fetches, 1) == 1 {
			return nil, fail
		}
		return []string{"recovered"}, nil
	})

	c.Get(context.Background())
	snap := waitReady(t, c)
	require.Equal(t, StatusError, snap.Status)
	require.ErrorIs(t, snap.Err, fail)
	assert.True(t, snap.Retryable)

	// parked: no retry happens on its own
	time.Sleep(20 * time.Millisecond)
	assert.EqualValues(t, 1, atomic.LoadInt32(&fetches))

	// the next Get is the manual re-trigger
	c.Get(context.Background())
	snap = waitReady(t, c)
	assert.Equal(t, StatusReady, snap.Status)
	assert.Equal(t, []string{"recovered"}, snap.Items)
	assert.EqualValues(t, 2, atomic.LoadInt32(&fetches))
}

func TestCollectionSubscribeDeliversCurrentStateImmediately(t *testing.T) {
	c := NewCollection("items", func(ctx context.Context) ([]string, error) {
		return []string{"a"}, nil
	})

	var mu sync.Mutex
	var statuses []Status
	unsubscribe := c.Subscribe(func(snap Snapshot[string]) {
		mu.Lock()
		statuses = append(statuses, snap.Status)
		mu.Unlock()
	})
	defer unsubscribe()

	mu.Lock()
	require.NotEmpty(t, statuses)
	assert.Equal(t, StatusLoading, statuses[0])
	mu.Unlock()

	waitReady(t, c)
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return statuses[len(statuses)-1] == StatusReady
	}, time.Second, 2*time.Millisecond)
}

func TestCollectionLateSubscriberDoesNotRetryError(t *testing.T) {
	var fetches int32
	c := NewCollection("items", func(ctx context.Context) ([]string, error) {
		atomic.AddInt32(&fetches, 1)
		return nil, errors.New("backend down")
	})

	c.Get(context.Background())
	snap := waitReady(t, c)
	require.Equal(t, StatusError, snap.Status)

	var got Snapshot[string]
	unsubscribe := c.Subscribe(func(snap Snapshot[string]) {
		got = snap
	})
	defer unsubscribe()

	assert.Equal(t, StatusError, got.Status)
	time.Sleep(20 * time.Millisecond)
	assert.EqualValues(t, 1, atomic.LoadInt32(&fetches))
}

func TestCollectionUnsubscribeStopsDelivery(t *testing.T) {
	gate := make(chan struct{})
	c := NewCollection("items", func(ctx context.Context) ([]string, error) {
		<-gate
		return []string{"a"}, nil
	})

	var mu sync.Mutex
	count := 0
	unsubscribe := c.Subscribe(func(Snapshot[string]) {
		mu.Lock()
		count++
		mu.Unlock()
	})
	unsubscribe()
	close(gate)

	waitReady(t, c)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, count) // only the immediate delivery
}

func TestCollectionWaitHonorsContext(t *testing.T) {
	gate := make(chan struct{})
	defer close(gate)
	c := NewCollection("items", func(ctx context.Context) ([]string, error) {
		<-gate
		return nil, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	snap := c.Wait(ctx)
	assert.Equal(t, StatusLoading, snap.Status)
}
