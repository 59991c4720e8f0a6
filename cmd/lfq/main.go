package main

import (
	"os"

	"github.com/named-data/lfq/cmd"
)

func main() {
	if err := cmd.CmdLfq.Execute(); err != nil {
		os.Exit(1)
	}
}
