package bench

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/named-data/lfq/std/log"
	"github.com/named-data/lfq/std/types/lockfree"
)

type stress struct{}

func (stress) String() string {
	return "stress"
}

// RunStress pushes ids 0..Ids-1 through two queues and checks that the
// final drain sees every id exactly once.
//
// Producers enqueue disjoint id ranges into the first queue while workers
// dequeue from it and requeue onto the second one.
func RunStress(ctx context.Context, cfg StressConfig, pool *lockfree.Pool) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	mode, _ := parseMode(cfg.Mode)

	if cfg.TimeoutMs > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(cfg.TimeoutMs)*time.Millisecond)
		defer cancel()
	}

	opts := []lockfree.Option{}
	if pool != nil {
		opts = append(opts, lockfree.WithPool(pool))
	}
	first := lockfree.NewQueue[int](opts...)
	second := lockfree.NewQueue[int](opts...)

	report := newReport("stress", cfg.Producers, cfg.Workers, mode)
	log.Info(stress{}, "Starting", "ids", cfg.Ids, "producers", cfg.Producers, "workers", cfg.Workers, "mode", mode)

	ids := int64(cfg.Ids)
	var moved atomic.Int64
	var wg sync.WaitGroup

	for p := range cfg.Producers {
		lo := cfg.Ids * p / cfg.Producers
		hi := cfg.Ids * (p + 1) / cfg.Producers
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := lo; id < hi; id++ {
				first.Enqueue(id)
			}
		}()
	}

	for range cfg.Workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for moved.Load() < ids && ctx.Err() == nil {
				id, ok := first.Dequeue(mode)
				if !ok {
					runtime.Gosched()
					continue
				}
				second.Enqueue(id)
				moved.Add(1)
			}
		}()
	}
	wg.Wait()

	// no goroutine touches the queues past this point
	defer first.Dispose()
	defer second.Dispose()

	if err := ctx.Err(); err != nil {
		err = fmt.Errorf("stress run aborted after %d of %d ids: %w", moved.Load(), ids, err)
		return report.finish(moved.Load(), pool, err)
	}

	if err := checkDrain(second, cfg.Ids); err != nil {
		return report.finish(ids, pool, err)
	}
	if !first.IsEmpty() || !second.IsEmpty() {
		err := fmt.Errorf("%w: sizes %d and %d after drain", ErrSizeMismatch, first.Size(), second.Size())
		return report.finish(ids, pool, err)
	}

	log.Info(stress{}, "Finished", "ids", ids, "duration", time.Since(report.Start))
	return report.finish(ids, pool, nil)
}

// checkDrain empties q and verifies that it held each id in [0, n) once.
func checkDrain(q *lockfree.Queue[int], n int) error {
	seen := make([]bool, n)
	received := 0
	for id := range q.All() {
		if id < 0 || id >= n {
			return fmt.Errorf("%w: id %d out of range", ErrDuplicateValue, id)
		}
		if seen[id] {
			return fmt.Errorf("%w: id %d", ErrDuplicateValue, id)
		}
		seen[id] = true
		received++
	}

	if received != n {
		for id, ok := range seen {
			if !ok {
				return fmt.Errorf("%w: %d of %d ids missing, first is %d", ErrLostValue, n-received, n, id)
			}
		}
	}
	return nil
}
