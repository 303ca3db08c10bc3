// Command queryosity is a thin CLI over the library: it loads a YAML
// job config, runs a category-yield-by-weight dataflow against a CSV
// dataset, and prints a cutflow-style report. Grounded on the cobra
// root-command wiring storj/storj's cmd/uplink uses, generalized from
// a multi-command object-storage client down to this module's one
// real job.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "queryosity",
		Short: "declarative, lazy, multithreaded tabular analysis",
	}
	root.AddCommand(newRunCmd())
	root.AddCommand(newYieldCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "print the build version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("queryosity (source build)")
			return nil
		},
	}
}
