package cmd

import (
	"errors"
	"path/filepath"

	"github.com/named-data/lfq/core"
	"github.com/named-data/lfq/report"
	"github.com/named-data/lfq/std/utils/toolutils"
	"github.com/spf13/cobra"
)

var errNoReportDir = errors.New("no report database, give DB-DIR or a configuration with report.dir")

// reportFlags selects the report database of the history and serve tools,
// either directly or through the report section of a configuration file.
type reportFlags struct {
	config string
	limit  int
}

func (f *reportFlags) register(cmd *cobra.Command, limitUsage string) {
	cmd.Flags().StringVarP(&f.config, "config", "c", "", "Read report.dir and report.limit from this configuration file")
	cmd.Flags().IntVarP(&f.limit, "limit", "n", core.DefaultConfig().Report.Limit, limitUsage)
}

// open returns the store and the report limit. DB-DIR and --limit take
// precedence over the configuration file.
func (f *reportFlags) open(cmd *cobra.Command, args []string) (*report.BadgerStore, int, error) {
	config := core.DefaultConfig()
	if f.config != "" {
		config.Core.BaseDir = filepath.Dir(f.config)
		if err := toolutils.ReadYaml(config, f.config); err != nil {
			return nil, 0, err
		}
		if err := config.Validate(); err != nil {
			return nil, 0, err
		}
	}

	dir := config.ResolveRelPath(config.Report.Dir)
	if len(args) == 1 {
		dir = args[0]
	}
	if dir == "" {
		return nil, 0, errNoReportDir
	}

	limit := config.Report.Limit
	if cmd.Flags().Changed("limit") {
		limit = f.limit
	}

	store, err := report.NewBadgerStore(dir)
	if err != nil {
		return nil, 0, err
	}
	return store, limit, nil
}
