package bench

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/named-data/lfq/std/log"
	"github.com/named-data/lfq/std/types/lockfree"
)

type throughput struct{}

func (throughput) String() string {
	return "throughput"
}

// RunThroughput measures how fast Producers goroutines can hand Ops values
// to Consumers goroutines through a single queue.
func RunThroughput(ctx context.Context, cfg ThroughputConfig, pool *lockfree.Pool) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	mode, _ := parseMode(cfg.Mode)

	opts := []lockfree.Option{}
	if cfg.Pooled {
		if pool == nil {
			pool = lockfree.DefaultPool()
		}
		opts = append(opts, lockfree.WithPool(pool))
	} else {
		pool = nil
	}
	q := lockfree.NewQueue[uint64](opts...)

	report := newReport("throughput", cfg.Producers, cfg.Consumers, mode)
	log.Info(throughput{}, "Starting", "ops", cfg.Ops, "producers", cfg.Producers,
		"consumers", cfg.Consumers, "batch", cfg.Batch, "mode", mode)

	ops := int64(cfg.Ops)
	var received atomic.Int64
	var sum atomic.Uint64
	var wg sync.WaitGroup

	for p := range cfg.Producers {
		lo := cfg.Ops * p / cfg.Producers
		hi := cfg.Ops * (p + 1) / cfg.Producers
		wg.Add(1)
		go func() {
			defer wg.Done()
			for v := lo; v < hi; v++ {
				q.Enqueue(uint64(v))
			}
		}()
	}

	for range cfg.Consumers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			buf := make([]uint64, 0, cfg.Batch)
			local := uint64(0)
			for received.Load() < ops && ctx.Err() == nil {
				buf = q.DequeueBatch(buf, mode)
				if len(buf) == 0 {
					runtime.Gosched()
					continue
				}
				for _, v := range buf {
					local += v
				}
				received.Add(int64(len(buf)))
			}
			sum.Add(local)
		}()
	}
	wg.Wait()
	defer q.Dispose()

	if err := ctx.Err(); err != nil {
		err = fmt.Errorf("throughput run aborted after %d of %d values: %w", received.Load(), ops, err)
		return report.finish(received.Load(), pool, err)
	}

	// sum of 0..ops-1
	want := uint64(ops) * uint64(ops-1) / 2
	if got := sum.Load(); got != want {
		err := fmt.Errorf("%w: checksum %d, expected %d", ErrLostValue, got, want)
		return report.finish(received.Load(), pool, err)
	}

	report, _ = report.finish(ops, pool, nil)
	log.Info(throughput{}, "Finished", "ops", ops, "duration", report.Duration, "ops_per_sec", int64(report.OpsPerSec))
	return report, nil
}
