package executor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/named-data/lfq/bench"
	"github.com/named-data/lfq/core"
	"github.com/named-data/lfq/report"
	"github.com/named-data/lfq/std/log"
	"github.com/named-data/lfq/std/types/lockfree"
	"github.com/named-data/lfq/std/utils"
	"github.com/named-data/lfq/std/utils/toolutils"
)

// Kind names a benchmark scenario.
type Kind string

const (
	KindStress     Kind = "stress"
	KindThroughput Kind = "throughput"
	KindDispatch   Kind = "dispatch"
)

// Executor runs one scenario with a configuration.
type Executor struct {
	config   *core.Config
	profiler *Profiler
	pool     *lockfree.Pool
	store    report.Store
	out      io.Writer
}

// NewExecutor validates the configuration and opens the report store.
func NewExecutor(config *core.Config, out io.Writer) (*Executor, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	e := &Executor{
		config:   config,
		profiler: NewProfiler(config),
		pool:     config.NewPool(),
		out:      out,
	}

	if dir := config.ResolveRelPath(config.Report.Dir); dir != "" {
		store, err := report.NewBadgerStore(dir)
		if err != nil {
			return nil, fmt.Errorf("unable to open report store: %w", err)
		}
		e.store = store
	}
	return e, nil
}

func (e *Executor) String() string {
	return "executor"
}

// Pool returns the node pool shared by the runs.
func (e *Executor) Pool() *lockfree.Pool {
	return e.pool
}

// Run executes a scenario, prints its report and records it.
// The report is returned even if the run failed.
func (e *Executor) Run(ctx context.Context, kind Kind) (*bench.Report, error) {
	if err := e.profiler.Start(); err != nil {
		return nil, err
	}
	r, err := e.run(ctx, kind)
	e.profiler.Stop()

	if r == nil {
		return nil, err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		log.Error(e, "Run timed out, dumping goroutines")
		utils.PrintStackTrace(os.Stderr)
	}

	e.print(r)
	if e.store != nil {
		if perr := e.store.Put(r); perr != nil {
			log.Error(e, "Unable to record report", "err", perr)
		}
	}
	if cleared := e.pool.Clear(); cleared > 0 {
		log.Debug(e, "Released pooled nodes", "count", cleared)
	}
	return r, err
}

func (e *Executor) run(ctx context.Context, kind Kind) (*bench.Report, error) {
	switch kind {
	case KindStress:
		return bench.RunStress(ctx, e.config.Stress, e.pool)
	case KindThroughput:
		return bench.RunThroughput(ctx, e.config.Throughput, e.pool)
	case KindDispatch:
		return bench.RunDispatch(ctx, e.config.Dispatch, e.pool)
	default:
		return nil, fmt.Errorf("unknown scenario %q", kind)
	}
}

func (e *Executor) print(r *bench.Report) {
	PrintReport(e.out, r)
}

// Close releases the report store.
func (e *Executor) Close() error {
	if e.store != nil {
		return e.store.Close()
	}
	return nil
}

// PrintReport writes a report as aligned key=value lines.
func PrintReport(w io.Writer, r *bench.Report) {
	p := toolutils.StatusPrinter{File: w, Padding: 12}
	fmt.Fprintf(w, "%s run:\n", r.Kind)
	p.Print("start", r.Start.Format("2006-01-02 15:04:05"))
	p.Print("duration", r.Duration)
	p.Print("producers", r.Producers)
	p.Print("consumers", r.Consumers)
	p.Print("mode", r.Mode)
	p.Print("ops", r.Ops)
	p.Print("ops/s", int64(r.OpsPerSec))
	p.Print("allocs", r.Pool.Allocs)
	p.Print("reuses", r.Pool.Reuses)
	p.Print("drops", r.Pool.Drops)
	p.Print("retained", r.Pool.Retained)
	p.Print("result", utils.If(r.Failed(), r.Error, "ok"))
}
