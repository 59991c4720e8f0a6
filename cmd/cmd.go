package cmd

import (
	"github.com/named-data/lfq/executor"
	"github.com/named-data/lfq/std/utils"
	"github.com/spf13/cobra"
)

var CmdLfq = &cobra.Command{
	Use:   "lfq",
	Short: "Lock-free queue workbench",
	Long: `Lock-free queue workbench.

Runs stress, throughput and dispatch scenarios against the lock-free
queue and its node pool, and keeps a history of the results.`,
	Version: utils.Version,
}

func init() {
	cobra.EnableCommandSorting = false
	CmdLfq.Root().CompletionOptions.HiddenDefaultCmd = true
	CmdLfq.PersistentFlags().BoolP("help", "h", false, "Print usage")
	CmdLfq.PersistentFlags().Lookup("help").Hidden = true

	CmdLfq.AddGroup(&cobra.Group{ID: "run", Title: "Benchmarks"})
	CmdLfq.AddCommand(cmdRun(executor.KindStress, "Push unique ids through two queues and verify each arrives once"))
	CmdLfq.AddCommand(cmdRun(executor.KindThroughput, "Measure producer to consumer throughput of a single queue"))
	CmdLfq.AddCommand(cmdRun(executor.KindDispatch, "Route keyed values through the sharded dispatcher"))

	CmdLfq.AddGroup(&cobra.Group{ID: "tools", Title: "Tools"})
	CmdLfq.AddCommand(cmdHistory())
	CmdLfq.AddCommand(cmdServe())
	CmdLfq.AddCommand(cmdConfig())
}
