package cmd

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/named-data/lfq/core"
	"github.com/named-data/lfq/executor"
	"github.com/named-data/lfq/std/log"
	"github.com/named-data/lfq/std/utils/toolutils"
	"github.com/spf13/cobra"
)

type runner struct {
	kind   executor.Kind
	config *core.Config
	record string
}

func (r *runner) String() string {
	return string(r.kind)
}

func cmdRun(kind executor.Kind, short string) *cobra.Command {
	r := &runner{kind: kind, config: core.DefaultConfig()}

	cmd := &cobra.Command{
		GroupID: "run",
		Use:     string(kind) + " [CONFIG-FILE]",
		Short:   short,
		Long: short + `.

Without a configuration file the defaults are used; see "lfq config".`,
		Args:    cobra.MaximumNArgs(1),
		Example: "  lfq " + string(kind) + " lfq.yml --record reports",
		Run:     r.run,
	}

	cmd.Flags().StringVar(&r.record, "record", "", "Record the report in this database directory")
	cmd.Flags().StringVar(&r.config.Core.CpuProfile, "cpu-profile", "", "Write CPU profile to file")
	cmd.Flags().StringVar(&r.config.Core.MemProfile, "mem-profile", "", "Write memory profile to file")
	cmd.Flags().StringVar(&r.config.Core.BlockProfile, "block-profile", "", "Write block profile to file")
	return cmd
}

func (r *runner) run(cmd *cobra.Command, args []string) {
	if len(args) == 1 {
		configfile := args[0]
		r.config.Core.BaseDir = filepath.Dir(configfile)
		if err := toolutils.ReadYaml(r.config, configfile); err != nil {
			log.Fatal(r, "Unable to read configuration", "err", err)
			return
		}
	}
	if r.record != "" {
		r.config.Report.Dir = r.record
		if !filepath.IsAbs(r.record) {
			// flags are relative to the working directory
			r.config.Report.Dir, _ = filepath.Abs(r.record)
		}
	}

	if err := core.OpenLogger(r.config); err != nil {
		log.Fatal(r, "Unable to open logger", "err", err)
		return
	}
	defer core.CloseLogger()

	e, err := executor.NewExecutor(r.config, cmd.OutOrStdout())
	if err != nil {
		log.Fatal(r, "Unable to create executor", "err", err)
		return
	}
	defer e.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := e.Run(ctx, r.kind); err != nil {
		log.Error(r, "Run failed", "err", err)
		e.Close()
		core.CloseLogger()
		os.Exit(1)
	}
}
