package executor

import (
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"

	"github.com/named-data/lfq/core"
	"github.com/named-data/lfq/std/log"
)

// Profiler writes the pprof profiles requested by the configuration.
type Profiler struct {
	config  *core.Config
	cpuFile *os.File
	block   *pprof.Profile
}

func NewProfiler(config *core.Config) *Profiler {
	return &Profiler{config: config}
}

func (p *Profiler) String() string {
	return "profiler"
}

func (p *Profiler) Start() (err error) {
	if p.config.Core.CpuProfile != "" {
		p.cpuFile, err = os.Create(p.config.Core.CpuProfile)
		if err != nil {
			return fmt.Errorf("unable to open output file for CPU profile: %w", err)
		}

		log.Info(p, "Profiling CPU", "out", p.config.Core.CpuProfile)
		if err = pprof.StartCPUProfile(p.cpuFile); err != nil {
			p.cpuFile.Close()
			p.cpuFile = nil
			return err
		}
	}

	if p.config.Core.BlockProfile != "" {
		log.Info(p, "Profiling blocking operations", "out", p.config.Core.BlockProfile)
		runtime.SetBlockProfileRate(1)
		p.block = pprof.Lookup("block")
	}

	return nil
}

func (p *Profiler) Stop() {
	if p.block != nil {
		blockProfileFile, err := os.Create(p.config.Core.BlockProfile)
		if err != nil {
			log.Error(p, "Unable to open output file for block profile", "err", err)
		} else {
			if err := p.block.WriteTo(blockProfileFile, 0); err != nil {
				log.Error(p, "Unable to write block profile", "err", err)
			}
			blockProfileFile.Close()
		}
		runtime.SetBlockProfileRate(0)
		p.block = nil
	}

	if p.config.Core.MemProfile != "" {
		memProfileFile, err := os.Create(p.config.Core.MemProfile)
		if err != nil {
			log.Error(p, "Unable to open output file for memory profile", "err", err)
		} else {
			log.Info(p, "Profiling memory", "out", p.config.Core.MemProfile)
			runtime.GC()
			if err := pprof.WriteHeapProfile(memProfileFile); err != nil {
				log.Error(p, "Unable to write memory profile", "err", err)
			}
			memProfileFile.Close()
		}
	}

	if p.cpuFile != nil {
		pprof.StopCPUProfile()
		p.cpuFile.Close()
		p.cpuFile = nil
	}
}
