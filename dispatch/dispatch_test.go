package dispatch_test

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/named-data/lfq/dispatch"
	"github.com/named-data/lfq/std/types/lockfree"
	tu "github.com/named-data/lfq/std/utils/testutils"
	"github.com/stretchr/testify/require"
)

type item struct {
	key int
	seq int
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, dispatch.DefaultConfig().Validate())

	_, err := dispatch.New(dispatch.Config{Threads: 0, Batch: 1}, nil, func(int, int) {})
	require.ErrorIs(t, err, dispatch.ErrInvalidConfig)
	_, err = dispatch.New(dispatch.Config{Threads: dispatch.MaxThreads + 1, Batch: 1}, nil, func(int, int) {})
	require.ErrorIs(t, err, dispatch.ErrInvalidConfig)
	_, err = dispatch.New(dispatch.Config{Threads: 2, Batch: 0}, nil, func(int, int) {})
	require.ErrorIs(t, err, dispatch.ErrInvalidConfig)
}

func TestDispatchPerKeyOrder(t *testing.T) {
	tu.VerifyNoLeaks(t)

	const keys = 32
	const perKey = 500

	var last [keys]int
	var owner [keys]atomic.Int32
	for i := range keys {
		last[i] = -1
		owner[i].Store(-1)
	}
	var handled atomic.Int64
	var violations atomic.Int64

	cfg := dispatch.Config{Threads: 4, Batch: 16}
	d, err := dispatch.New(cfg, lockfree.NewPool(), func(thread int, v item) {
		// a key is only ever handled by one thread, in order
		owner[v.key].CompareAndSwap(-1, int32(thread))
		if owner[v.key].Load() != int32(thread) || last[v.key]+1 != v.seq {
			violations.Add(1)
		}
		last[v.key] = v.seq
		handled.Add(1)
	})
	require.NoError(t, err)
	d.Start(context.Background())

	var wg sync.WaitGroup
	for p := range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for k := p; k < keys; k += 4 {
				key := []byte(strconv.Itoa(k))
				for s := range perKey {
					d.Dispatch(key, item{key: k, seq: s})
				}
			}
		}()
	}
	wg.Wait()
	d.Stop()

	require.Zero(t, violations.Load())
	require.Equal(t, int64(keys*perKey), handled.Load())
	for k := range keys {
		require.Equal(t, perKey-1, last[k])
	}

	total := uint64(0)
	for _, th := range d.Threads() {
		require.Equal(t, th.NDispatched.Load(), th.NHandled.Load())
		require.Equal(t, 0, th.Pending())
		total += th.NHandled.Load()
	}
	require.Equal(t, uint64(keys*perKey), total)
}

func TestDispatchBeforeStart(t *testing.T) {
	tu.VerifyNoLeaks(t)

	var handled atomic.Int64
	d, err := dispatch.New(dispatch.Config{Threads: 2, Batch: 4}, nil, func(int, string) {
		handled.Add(1)
	})
	require.NoError(t, err)

	for i := range 10 {
		d.Dispatch([]byte(strconv.Itoa(i)), "v")
	}
	require.Zero(t, handled.Load())

	d.Start(context.Background())
	d.Stop()
	require.Equal(t, int64(10), handled.Load())

	// stopping twice is harmless
	d.Stop()
}

func TestBroadcast(t *testing.T) {
	tu.VerifyNoLeaks(t)

	var mutex sync.Mutex
	seen := map[int]int{}
	d, err := dispatch.New(dispatch.Config{Threads: 3, Batch: 2}, nil, func(thread int, v int) {
		mutex.Lock()
		defer mutex.Unlock()
		seen[thread] += v
	})
	require.NoError(t, err)

	d.Start(context.Background())
	d.Broadcast(1)
	d.Broadcast(2)
	d.Stop()

	require.Equal(t, map[int]int{0: 3, 1: 3, 2: 3}, seen)
}

func TestThreadFor(t *testing.T) {
	d, err := dispatch.New(dispatch.Config{Threads: 8, Batch: 1}, nil, func(int, int) {})
	require.NoError(t, err)

	key := []byte("/some/key")
	idx := d.ThreadFor(key)
	require.GreaterOrEqual(t, idx, 0)
	require.Less(t, idx, 8)
	require.Equal(t, idx, d.ThreadFor(key))
	require.Equal(t, 3, d.Threads()[3].ID())
}
