package cmd

import (
	"fmt"

	"github.com/named-data/lfq/executor"
	"github.com/named-data/lfq/std/log"
	"github.com/spf13/cobra"
)

type history struct {
	reportFlags
	kind string
}

func (h *history) String() string {
	return "history"
}

func cmdHistory() *cobra.Command {
	h := &history{}

	cmd := &cobra.Command{
		GroupID: "tools",
		Use:     "history [DB-DIR]",
		Short:   "Print recorded reports, newest first",
		Args:    cobra.MaximumNArgs(1),
		Example: "  lfq history reports --kind stress -n 5\n  lfq history -c lfq.yml",
		Run:     h.run,
	}

	cmd.Flags().StringVar(&h.kind, "kind", "", "Only print reports of this scenario")
	h.register(cmd, "Maximum number of reports")
	return cmd
}

func (h *history) run(cmd *cobra.Command, args []string) {
	store, limit, err := h.open(cmd, args)
	if err != nil {
		log.Fatal(h, "Unable to open report store", "err", err)
		return
	}
	defer store.Close()

	reports, err := store.List(h.kind, limit)
	if err != nil {
		log.Fatal(h, "Unable to list reports", "err", err)
		return
	}

	out := cmd.OutOrStdout()
	for i, r := range reports {
		if i > 0 {
			fmt.Fprintln(out)
		}
		executor.PrintReport(out, r)
	}
}
