package core

import (
	"fmt"
	"path/filepath"

	"github.com/named-data/lfq/bench"
	"github.com/named-data/lfq/std/log"
	"github.com/named-data/lfq/std/types/lockfree"
)

// Config represents the configuration of a benchmark run.
type Config struct {
	Core struct {
		// Logging level
		LogLevel string `json:"log_level"`
		// Output log to file
		LogFile string `json:"log_file"`
		// Log format, text or json
		LogFormat string `json:"log_format"`

		// Config file base dir
		BaseDir string `json:"-"`
		// Enable CPU profiling
		CpuProfile string `json:"-"`
		// Enable memory profiling
		MemProfile string `json:"-"`
		// Enable block profiling
		BlockProfile string `json:"-"`
	} `json:"core"`

	Pool struct {
		// Maximum number of nodes retained per size class
		Size int `json:"size"`
		// Use the process-wide pool instead of a private one
		Shared bool `json:"shared"`
	} `json:"pool"`

	Stress     bench.StressConfig     `json:"stress"`
	Throughput bench.ThroughputConfig `json:"throughput"`
	Dispatch   bench.DispatchConfig   `json:"dispatch"`

	Report struct {
		// Directory of the report database (relative to the config file).
		// Empty disables recording.
		Dir string `json:"dir"`
		// Number of reports printed by history
		Limit int `json:"limit"`
	} `json:"report"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	c := &Config{}

	c.Core.LogLevel = "INFO"
	c.Core.LogFile = ""
	c.Core.LogFormat = "text"

	c.Pool.Size = lockfree.DefaultPoolSize
	c.Pool.Shared = false

	c.Stress = bench.DefaultStressConfig()
	c.Throughput = bench.DefaultThroughputConfig()
	c.Dispatch = bench.DefaultDispatchConfig()

	c.Report.Dir = ""
	c.Report.Limit = 20

	return c
}

// Validate checks the sections shared by every run.
func (c *Config) Validate() error {
	if _, err := log.ParseLevel(c.Core.LogLevel); err != nil {
		return fmt.Errorf("core.log_level: %w", err)
	}
	if c.Core.LogFormat != "text" && c.Core.LogFormat != "json" {
		return fmt.Errorf("core.log_format: unknown format %q", c.Core.LogFormat)
	}
	if c.Pool.Size < 0 || c.Pool.Size > lockfree.MaxPoolSize {
		return fmt.Errorf("pool.size must be in [0, %d]", lockfree.MaxPoolSize)
	}
	if c.Report.Limit < 0 {
		return fmt.Errorf("report.limit must not be negative")
	}
	return nil
}

// NewPool returns the node pool selected by the configuration.
func (c *Config) NewPool() *lockfree.Pool {
	pool := lockfree.DefaultPool()
	if !c.Pool.Shared {
		pool = lockfree.NewPool()
	}
	pool.SetPoolSize(c.Pool.Size)
	return pool
}

// ResolveRelPath resolves a path relative to the config file.
func (c *Config) ResolveRelPath(target string) string {
	if target == "" || filepath.IsAbs(target) {
		return target
	}
	return filepath.Join(c.Core.BaseDir, target)
}
