package bench

import (
	"time"

	"github.com/named-data/lfq/std/types/lockfree"
)

// Report is the outcome of a single run.
type Report struct {
	Kind      string             `json:"kind"`
	Start     time.Time          `json:"start"`
	Duration  time.Duration      `json:"duration"`
	Producers int                `json:"producers"`
	Consumers int                `json:"consumers"`
	Mode      string             `json:"mode"`
	Ops       int64              `json:"ops"`
	OpsPerSec float64            `json:"ops_per_sec"`
	Pool      lockfree.PoolStats `json:"pool"`
	Error     string             `json:"error,omitempty"`
}

func newReport(kind string, producers, consumers int, mode lockfree.BlockingMode) *Report {
	return &Report{
		Kind:      kind,
		Start:     time.Now(),
		Producers: producers,
		Consumers: consumers,
		Mode:      mode.String(),
	}
}

// finish stamps the duration, pool counters and error of a run.
func (r *Report) finish(ops int64, pool *lockfree.Pool, err error) (*Report, error) {
	r.Duration = time.Since(r.Start)
	r.Ops = ops
	if secs := r.Duration.Seconds(); secs > 0 {
		r.OpsPerSec = float64(ops) / secs
	}
	if pool != nil {
		r.Pool = pool.Stats()
	}
	if err != nil {
		r.Error = err.Error()
	}
	return r, err
}

func (r *Report) Failed() bool {
	return r.Error != ""
}
