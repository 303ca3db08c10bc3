package main

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/queryosity-go/queryosity"
	"github.com/queryosity-go/queryosity/queryset"
)

func newYieldCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "yield",
		Short: "print just the cutflow table for a job's selections",
		RunE: func(cmd *cobra.Command, args []string) error {
			job, err := LoadJob(configPath)
			if err != nil {
				return err
			}
			return yieldJob(job)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to the job's YAML config")
	cmd.MarkFlagRequired("config")
	return cmd
}

func yieldJob(job *Job) error {
	log, err := zap.NewProduction()
	if err != nil {
		return errors.Wrap(err, "yield: logger")
	}
	defer log.Sync()

	df, root, weighted, err := openJobDataflow(job, log)
	if err != nil {
		return errors.Wrap(err, "yield")
	}

	sels := []*queryosity.Selection{root}
	if weighted != root {
		sels = append(sels, weighted)
	}

	outputs := queryosity.Yield(df, sels...)
	printCutflow(sels, outputs)
	return nil
}

// printCutflow renders one row per selection, in cutflow order (the
// map Yield returns is keyed by name for lookup, not iteration order).
func printCutflow(sels []*queryosity.Selection, outputs map[string]*queryosity.Output[*queryset.Counter, queryset.CounterResult]) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"selection", "entries", "sum(weight)", "error"})
	for _, sel := range sels {
		r := outputs[sel.Name()].Result()
		table.Append([]string{
			sel.Name(),
			fmt.Sprintf("%d", r.Entries),
			fmt.Sprintf("%.4f", r.Value),
			fmt.Sprintf("%.4f", r.Error),
		})
	}
	table.Render()
}
