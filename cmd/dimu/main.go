// Command dimu classifies dimuon pairs from collision events into mergeable
// histograms.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/dimu/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "dimu:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
