package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/queryosity-go/queryosity"
	"github.com/queryosity-go/queryosity/dataflow"
	csvsrc "github.com/queryosity-go/queryosity/dataset/csv"
	"github.com/queryosity-go/queryosity/queryset"
)

func newRunCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "run a yield-by-category job against a CSV dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			job, err := LoadJob(configPath)
			if err != nil {
				return err
			}
			return runJob(job)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to the job's YAML config")
	cmd.MarkFlagRequired("config")
	return cmd
}

// openJobDataflow opens job's CSV dataset and books the root cut and
// (if configured) weight selection shared by both the run and yield
// subcommands.
func openJobDataflow(job *Job, log *zap.Logger) (*queryosity.Dataflow, *queryosity.Selection, *queryosity.Selection, error) {
	table, err := csvsrc.Open(job.Dataset, csvsrc.Options{HasHeader: true})
	if err != nil {
		return nil, nil, nil, err
	}

	opts := []dataflow.Option{dataflow.Logger(log)}
	if job.Concurrency > 0 {
		opts = append(opts, dataflow.MultithreadEnable(job.Concurrency))
	}
	if job.Head > 0 {
		opts = append(opts, dataflow.Head(job.Head))
	}

	df, err := queryosity.Open(table, opts...)
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "open dataflow")
	}

	var root *queryosity.Selection
	if job.Cut != "" {
		cutCol := queryosity.ReadColumn[string](df, job.Cut)
		decision := queryosity.Expression1(df, parseBool, cutCol)
		root = queryosity.ApplyCut(df, job.Cut, nil, decision)
	} else {
		always := queryosity.Constant(df, true)
		root = queryosity.ApplyCut(df, "accept", nil, always)
	}

	weighted := root
	if job.Weight != "" {
		raw := queryosity.ReadColumn[string](df, job.Weight)
		weightCol := queryosity.Expression1(df, parseFloat, raw)
		weighted = queryosity.ApplyWeight(df, job.Weight, root, weightCol)
	}

	return df, root, weighted, nil
}

func runJob(job *Job) error {
	log, err := zap.NewProduction()
	if err != nil {
		return errors.Wrap(err, "run: logger")
	}
	defer log.Sync()

	runID := uuid.New()
	log.Info("starting run", zap.String("id", runID.String()), zap.String("dataset", job.Dataset))

	df, _, weighted, err := openJobDataflow(job, log)
	if err != nil {
		return errors.Wrap(err, "run")
	}

	category := queryosity.ReadColumn[string](df, job.Category)
	hist := queryosity.Make[*queryset.Histogram[string], map[string]float64](df, queryset.NewHistogram[string]).
		Fill(category).
		Book(weighted)

	result := queryosity.Result(hist)

	printReport(job, result)
	log.Info("run complete", zap.String("id", runID.String()), zap.Int("bins", len(result)))
	return nil
}

func parseBool(s string) bool {
	b, _ := strconv.ParseBool(s)
	return b
}

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}

func printReport(job *Job, result map[string]float64) {
	categories := make([]string, 0, len(result))
	for c := range result {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{job.Category, "sum(weight)"})
	for _, c := range categories {
		table.Append([]string{c, fmt.Sprintf("%.4f", result[c])})
	}
	if job.Color {
		color.New(color.FgGreen).Println("queryosity yield report")
	}
	table.Render()
}
