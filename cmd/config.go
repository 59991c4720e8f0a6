package cmd

import (
	"github.com/named-data/lfq/core"
	"github.com/named-data/lfq/std/log"
	"github.com/named-data/lfq/std/utils/toolutils"
	"github.com/spf13/cobra"
)

type configPrinter struct{}

func (configPrinter) String() string {
	return "config"
}

func cmdConfig() *cobra.Command {
	return &cobra.Command{
		GroupID: "tools",
		Use:     "config",
		Short:   "Print the default configuration",
		Args:    cobra.NoArgs,
		Example: "  lfq config > lfq.yml",
		Run: func(cmd *cobra.Command, _ []string) {
			if err := toolutils.WriteYaml(cmd.OutOrStdout(), core.DefaultConfig()); err != nil {
				log.Fatal(configPrinter{}, "Unable to encode configuration", "err", err)
			}
		},
	}
}
