package bench

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/named-data/lfq/dispatch"
	"github.com/named-data/lfq/std/log"
	"github.com/named-data/lfq/std/types/lockfree"
)

type keyed struct {
	key int
	seq int
}

// RunDispatch routes PerKey sequenced values for each of Keys keys through
// a Dispatcher and checks that every key sees its values once and in order.
func RunDispatch(ctx context.Context, cfg DispatchConfig, pool *lockfree.Pool) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	next := make([]int, cfg.Keys)
	var handled atomic.Int64
	var violations atomic.Int64
	var firstViolation atomic.Value

	d, err := dispatch.New(cfg.Config, pool, func(_ int, v keyed) {
		// a key is owned by a single thread, so next[key] is not shared
		if next[v.key] != v.seq {
			violations.Add(1)
			firstViolation.CompareAndSwap(nil, fmt.Sprintf("key %d: got %d, expected %d", v.key, v.seq, next[v.key]))
		}
		next[v.key] = v.seq + 1
		handled.Add(1)
	})
	if err != nil {
		return nil, err
	}

	report := newReport("dispatch", cfg.Producers, cfg.Threads, lockfree.BlockUnlessEmpty)
	log.Info(d, "Starting run", "keys", cfg.Keys, "per_key", cfg.PerKey, "threads", cfg.Threads)

	keys := make([][]byte, cfg.Keys)
	for k := range keys {
		keys[k] = []byte("/key/" + strconv.Itoa(k))
	}

	d.Start(ctx)
	var wg sync.WaitGroup
	for p := range cfg.Producers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for k := p; k < cfg.Keys; k += cfg.Producers {
				for s := range cfg.PerKey {
					if ctx.Err() != nil {
						return
					}
					d.Dispatch(keys[k], keyed{key: k, seq: s})
				}
			}
		}()
	}
	wg.Wait()
	d.Stop()

	total := int64(cfg.Keys * cfg.PerKey)
	if err := ctx.Err(); err != nil {
		err = fmt.Errorf("dispatch run aborted after %d of %d values: %w", handled.Load(), total, err)
		return report.finish(handled.Load(), pool, err)
	}
	if n := violations.Load(); n > 0 {
		err := fmt.Errorf("%w: %d violations, first %s", ErrOutOfOrder, n, firstViolation.Load())
		return report.finish(handled.Load(), pool, err)
	}
	if got := handled.Load(); got != total {
		err := fmt.Errorf("%w: handled %d of %d values", ErrLostValue, got, total)
		return report.finish(got, pool, err)
	}

	return report.finish(total, pool, nil)
}
