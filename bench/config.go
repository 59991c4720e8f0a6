package bench

import (
	"fmt"

	"github.com/named-data/lfq/dispatch"
	"github.com/named-data/lfq/std/types/lockfree"
)

// StressConfig configures RunStress.
type StressConfig struct {
	// Number of distinct ids pushed through the queues
	Ids int `json:"ids"`
	// Goroutines enqueueing disjoint id ranges
	Producers int `json:"producers"`
	// Goroutines moving ids from the first queue to the second
	Workers int `json:"workers"`
	// Dequeue mode used by the workers
	Mode string `json:"mode"`
	// Abort the run after this many milliseconds (0 = never)
	TimeoutMs int `json:"timeout_ms"`
}

// ThroughputConfig configures RunThroughput.
type ThroughputConfig struct {
	// Total number of values enqueued
	Ops       int `json:"ops"`
	Producers int `json:"producers"`
	Consumers int `json:"consumers"`
	// Dequeue batch size (1 = single dequeues)
	Batch int    `json:"batch"`
	Mode  string `json:"mode"`
	// Recycle nodes through the pool
	Pooled bool `json:"pooled"`
}

// DispatchConfig configures RunDispatch.
type DispatchConfig struct {
	dispatch.Config `json:",inline"`
	// Number of distinct keys
	Keys int `json:"keys"`
	// Values per key
	PerKey    int `json:"per_key"`
	Producers int `json:"producers"`
}

func DefaultStressConfig() StressConfig {
	return StressConfig{
		Ids:       100000,
		Producers: 4,
		Workers:   4,
		Mode:      lockfree.NeverBlock.String(),
		TimeoutMs: 60000,
	}
}

func DefaultThroughputConfig() ThroughputConfig {
	return ThroughputConfig{
		Ops:       1000000,
		Producers: 4,
		Consumers: 1,
		Batch:     64,
		Mode:      lockfree.BlockUnlessEmpty.String(),
		Pooled:    true,
	}
}

func DefaultDispatchConfig() DispatchConfig {
	return DispatchConfig{
		Config:    dispatch.DefaultConfig(),
		Keys:      256,
		PerKey:    1000,
		Producers: 4,
	}
}

func parseMode(s string) (lockfree.BlockingMode, error) {
	mode, ok := lockfree.ParseBlockingMode(s)
	if !ok {
		return mode, fmt.Errorf("%w: unknown mode %q", ErrInvalidConfig, s)
	}
	return mode, nil
}

func positive(name string, v int) error {
	if v < 1 {
		return fmt.Errorf("%w: %s must be positive", ErrInvalidConfig, name)
	}
	return nil
}

func (c StressConfig) Validate() error {
	for _, err := range []error{
		positive("ids", c.Ids),
		positive("producers", c.Producers),
		positive("workers", c.Workers),
	} {
		if err != nil {
			return err
		}
	}
	if c.TimeoutMs < 0 {
		return fmt.Errorf("%w: timeout_ms must not be negative", ErrInvalidConfig)
	}
	_, err := parseMode(c.Mode)
	return err
}

func (c ThroughputConfig) Validate() error {
	for _, err := range []error{
		positive("ops", c.Ops),
		positive("producers", c.Producers),
		positive("consumers", c.Consumers),
		positive("batch", c.Batch),
	} {
		if err != nil {
			return err
		}
	}
	_, err := parseMode(c.Mode)
	return err
}

func (c DispatchConfig) Validate() error {
	if err := c.Config.Validate(); err != nil {
		return err
	}
	for _, err := range []error{
		positive("keys", c.Keys),
		positive("per_key", c.PerKey),
		positive("producers", c.Producers),
	} {
		if err != nil {
			return err
		}
	}
	return nil
}
