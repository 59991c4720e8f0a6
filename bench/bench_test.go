package bench_test

import (
	"context"
	"testing"

	"github.com/named-data/lfq/bench"
	"github.com/named-data/lfq/dispatch"
	"github.com/named-data/lfq/std/types/lockfree"
	tu "github.com/named-data/lfq/std/utils/testutils"
	"github.com/stretchr/testify/require"
)

func TestRunStress(t *testing.T) {
	tu.VerifyNoLeaks(t)

	for _, mode := range []lockfree.BlockingMode{lockfree.NeverBlock, lockfree.BlockUnlessEmpty} {
		t.Run(mode.String(), func(t *testing.T) {
			pool := lockfree.NewPool()
			cfg := bench.StressConfig{
				Ids:       20000,
				Producers: 3,
				Workers:   4,
				Mode:      mode.String(),
				TimeoutMs: 30000,
			}

			report, err := bench.RunStress(context.Background(), cfg, pool)
			require.NoError(t, err)
			require.False(t, report.Failed())
			require.Equal(t, "stress", report.Kind)
			require.Equal(t, int64(20000), report.Ops)
			require.Equal(t, mode.String(), report.Mode)

			// every node came back to the pool or was dropped at the limit
			stats := pool.Stats()
			require.Equal(t, 1, stats.Classes)
			require.Equal(t, uint64(40000), stats.Allocs+stats.Reuses)
			require.LessOrEqual(t, stats.Retained, int64(lockfree.DefaultPoolSize))
		})
	}
}

func TestRunStressCancelled(t *testing.T) {
	tu.VerifyNoLeaks(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := bench.RunStress(ctx, bench.DefaultStressConfig(), nil)
	require.ErrorIs(t, err, context.Canceled)
	require.True(t, report.Failed())
}

func TestRunThroughput(t *testing.T) {
	tu.VerifyNoLeaks(t)

	cfg := bench.ThroughputConfig{
		Ops:       50000,
		Producers: 2,
		Consumers: 2,
		Batch:     8,
		Mode:      lockfree.BlockUnlessEmpty.String(),
		Pooled:    true,
	}
	pool := lockfree.NewPool()
	report, err := bench.RunThroughput(context.Background(), cfg, pool)
	require.NoError(t, err)
	require.Equal(t, int64(50000), report.Ops)
	require.Greater(t, report.OpsPerSec, 0.0)
	require.Equal(t, uint64(50000), report.Pool.Allocs+report.Pool.Reuses)

	cfg.Pooled = false
	cfg.Batch = 1
	cfg.Mode = lockfree.NeverBlock.String()
	report, err = bench.RunThroughput(context.Background(), cfg, pool)
	require.NoError(t, err)
	require.Zero(t, report.Pool.Classes)
}

func TestRunDispatch(t *testing.T) {
	tu.VerifyNoLeaks(t)

	cfg := bench.DispatchConfig{
		Config:    dispatch.Config{Threads: 3, Batch: 8},
		Keys:      20,
		PerKey:    200,
		Producers: 3,
	}
	report, err := bench.RunDispatch(context.Background(), cfg, lockfree.NewPool())
	require.NoError(t, err)
	require.Equal(t, int64(4000), report.Ops)
	require.Equal(t, 3, report.Consumers)
}

func TestValidate(t *testing.T) {
	require.NoError(t, bench.DefaultStressConfig().Validate())
	require.NoError(t, bench.DefaultThroughputConfig().Validate())
	require.NoError(t, bench.DefaultDispatchConfig().Validate())

	stress := bench.DefaultStressConfig()
	stress.Mode = "sometimes"
	_, err := bench.RunStress(context.Background(), stress, nil)
	require.ErrorIs(t, err, bench.ErrInvalidConfig)

	stress = bench.DefaultStressConfig()
	stress.TimeoutMs = -1
	require.ErrorIs(t, stress.Validate(), bench.ErrInvalidConfig)

	tp := bench.DefaultThroughputConfig()
	tp.Batch = 0
	_, err = bench.RunThroughput(context.Background(), tp, nil)
	require.ErrorIs(t, err, bench.ErrInvalidConfig)

	dc := bench.DefaultDispatchConfig()
	dc.Threads = 0
	_, err = bench.RunDispatch(context.Background(), dc, nil)
	require.ErrorIs(t, err, dispatch.ErrInvalidConfig)
}
