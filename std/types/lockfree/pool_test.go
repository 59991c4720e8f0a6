package lockfree_test

import (
	"sync"
	"testing"

	"github.com/named-data/lfq/std/types/lockfree"
	"github.com/stretchr/testify/require"
)

func TestPoolRoundTrip(t *testing.T) {
	pool := lockfree.NewPool()
	alloc := lockfree.NewPooledAllocator[int](pool)
	require.Same(t, pool, alloc.Pool())

	n := alloc.New()
	n.Value = 5
	alloc.Free(n)
	require.Equal(t, int64(1), pool.Stats().Retained)

	m := alloc.New()
	require.Same(t, n, m) // reused
	require.Equal(t, 0, m.Value)

	stats := pool.Stats()
	require.Equal(t, 1, stats.Classes)
	require.Equal(t, uint64(1), stats.Allocs)
	require.Equal(t, uint64(1), stats.Reuses)
	require.Equal(t, int64(0), stats.Retained)
}

func TestPoolLimit(t *testing.T) {
	pool := lockfree.NewPool()
	pool.SetPoolSize(4)
	require.Equal(t, 4, pool.PoolSize())
	alloc := lockfree.NewPooledAllocator[string](pool)

	nodes := make([]*lockfree.Node[string], 10)
	for i := range nodes {
		nodes[i] = alloc.New()
	}
	for _, n := range nodes {
		alloc.Free(n)
	}

	stats := pool.Stats()
	require.Equal(t, uint64(10), stats.Allocs)
	require.Equal(t, int64(4), stats.Retained)
	require.Equal(t, uint64(6), stats.Drops)

	pool.SetPoolSize(-1)
	require.Equal(t, 0, pool.PoolSize())
	alloc.Free(alloc.New())
	require.Equal(t, uint64(7), pool.Stats().Drops)

	pool.SetPoolSize(lockfree.MaxPoolSize + 1)
	require.Equal(t, lockfree.MaxPoolSize, pool.PoolSize())
	pool.SetPoolSize(lockfree.MaxPoolSize)
	require.Equal(t, lockfree.MaxPoolSize, pool.PoolSize())
}

func TestPoolClear(t *testing.T) {
	pool := lockfree.NewPool()
	ints := lockfree.NewPooledAllocator[int](pool)
	strs := lockfree.NewPooledAllocator[string](pool)

	for range 3 {
		ints.Free(ints.New())
	}
	a, b := strs.New(), strs.New()
	strs.Free(a)
	strs.Free(b)

	require.Equal(t, int64(3), pool.Stats().Retained)
	require.Equal(t, 3, pool.Clear())
	require.Equal(t, int64(0), pool.Stats().Retained)
	require.Equal(t, 0, pool.Clear())

	// the class survives a clear
	strs.Free(strs.New())
	require.Equal(t, int64(1), pool.Stats().Retained)
}

func bindClass[T any](pool *lockfree.Pool) {
	alloc := lockfree.NewPooledAllocator[T](pool)
	alloc.Free(alloc.New())
}

func TestPoolSizeClasses(t *testing.T) {
	pool := lockfree.NewPool()
	bindClass[[1]byte](pool)
	bindClass[[2]byte](pool)
	bindClass[[3]byte](pool)
	bindClass[[4]byte](pool)
	bindClass[[5]byte](pool)
	bindClass[[6]byte](pool)
	bindClass[[7]byte](pool)
	bindClass[[8]byte](pool)
	bindClass[[9]byte](pool)
	bindClass[[10]byte](pool)
	bindClass[[11]byte](pool)
	bindClass[[12]byte](pool)
	bindClass[[13]byte](pool)
	bindClass[[14]byte](pool)
	bindClass[[15]byte](pool)
	bindClass[[16]byte](pool)
	bindClass[[17]byte](pool) // overflow pool
	bindClass[[18]byte](pool)

	// rebinding an existing type reuses its class
	bindClass[[1]byte](pool)
	bindClass[[18]byte](pool)

	stats := pool.Stats()
	require.Equal(t, lockfree.MaxSizeClasses+2, stats.Classes)
	require.Equal(t, int64(lockfree.MaxSizeClasses+2), stats.Retained)
	require.Equal(t, uint64(2), stats.Reuses)

	classes := pool.ClassStats()
	require.Len(t, classes, lockfree.MaxSizeClasses+2)
	require.Contains(t, classes[0].Type, "[1]uint8")
	require.Less(t, classes[0].Size, classes[17].Size)
	require.Equal(t, lockfree.MaxSizeClasses+2, pool.Clear())
}

func TestPoolConcurrent(t *testing.T) {
	const workers = 8
	const rounds = 2000

	pool := lockfree.NewPool()
	pool.SetPoolSize(32)

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			alloc := lockfree.NewPooledAllocator[int](pool)
			held := make([]*lockfree.Node[int], 0, 8)
			for i := range rounds {
				n := alloc.New()
				n.Value = i
				held = append(held, n)
				if len(held) == cap(held) {
					for _, h := range held {
						alloc.Free(h)
					}
					held = held[:0]
				}
			}
			for _, h := range held {
				alloc.Free(h)
			}
		}()
	}

	// clearing concurrently never claims a node twice
	wg.Add(1)
	cleared := 0
	go func() {
		defer wg.Done()
		for range 100 {
			cleared += pool.Clear()
		}
	}()
	wg.Wait()

	stats := pool.Stats()
	require.Equal(t, 1, stats.Classes)
	require.Equal(t, uint64(workers*rounds), stats.Allocs+stats.Reuses)
	require.LessOrEqual(t, stats.Retained, int64(32))
	require.Equal(t, int64(stats.Allocs+stats.Reuses)-int64(stats.Reuses)-int64(stats.Drops)-int64(cleared), stats.Retained)
}

func TestDefaultPool(t *testing.T) {
	prev := lockfree.PoolSize()
	defer lockfree.SetPoolSize(prev)

	lockfree.SetPoolSize(2)
	require.Equal(t, 2, lockfree.PoolSize())
	require.Equal(t, 2, lockfree.DefaultPool().PoolSize())

	alloc := lockfree.NewPooledAllocator[struct{ a, b int }](nil)
	require.Same(t, lockfree.DefaultPool(), alloc.Pool())
	alloc.Free(alloc.New())
	require.GreaterOrEqual(t, lockfree.ClearPool(), 1)
}
