package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gtdash/app"
	"gtdash/domain/incident"
	"gtdash/internal"
	"gtdash/internal/config"
	"gtdash/internal/explore"
	"gtdash/internal/testkit"

	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var dataFile string

	rootCmd := &cobra.Command{
		Use:   "gtdash-cli",
		Short: "Explore the cleaned incident dataset from the terminal",
		Long: `Explore the cleaned incident dataset from the terminal.

The data source is taken from the same environment as the server
(DATA_SOURCE, DATA_FILE, DATABASE_URL, INCIDENT_TABLE); --file overrides it
with a CSV or XLSX file.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&dataFile, "file", "", "CSV or XLSX incident file (overrides DATA_SOURCE)")

	load := func(cmd *cobra.Command) (*app.Runtime, *incident.Dataset, error) {
		return loadDataset(cmd.Context(), dataFile)
	}

	rootCmd.AddCommand(
		newSummaryCmd(load),
		newAggregateCmd(load),
		newAskCmd(load),
		newSampleCmd(load),
		newGenerateCmd(),
	)
	return rootCmd
}

type loader func(cmd *cobra.Command) (*app.Runtime, *incident.Dataset, error)

func loadDataset(ctx context.Context, dataFile string) (*app.Runtime, *incident.Dataset, error) {
	_ = godotenv.Load()

	var overrides []config.Override
	if dataFile != "" {
		overrides = append(overrides, config.WithDataFile(dataFile))
	}
	cfg, err := config.Load(overrides...)
	if err != nil {
		return nil, nil, err
	}

	logger := internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel))
	rt, err := app.NewRuntime(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	ds, err := rt.Snapshot.Dataset(ctx)
	if err != nil {
		rt.Close()
		return nil, nil, err
	}
	return rt, ds, nil
}

func newSummaryCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show the cleaning report and headline KPIs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, ds, err := load(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Dataset %s (%s)\n", ds.ID(), ds.Source())
			if report := rt.Snapshot.Report(); report != nil {
				fmt.Fprintln(out, report.Summary())
			}

			kpis := explore.Summarize(ds.All())
			opts := explore.OptionsFor(ds)
			table := tablewriter.NewWriter(out)
			table.SetHeader([]string{"Metric", "Value"})
			table.Append([]string{"Total incidents", strconv.Itoa(kpis.TotalIncidents)})
			table.Append([]string{"Countries", strconv.Itoa(kpis.Countries)})
			table.Append([]string{"Attack types", strconv.Itoa(kpis.AttackTypes)})
			table.Append([]string{"Total killed", formatFloat(kpis.TotalKilled)})
			table.Append([]string{"Total wounded", formatFloat(kpis.TotalWounded)})
			table.Append([]string{"Years", fmt.Sprintf("%d-%d", opts.MinYear, opts.MaxYear)})
			table.Render()
			return nil
		},
	}
}

func newAggregateCmd(load loader) *cobra.Command {
	var dims, keys []string
	var top int

	cmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Sum the impact metric per group over the whole dataset",
		Long: `Sum the impact metric per group over the whole dataset.

Example: gtdash-cli aggregate --dims nkill,nwound --keys region_txt,country_txt --top 10`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dimensions, err := incident.ParseDimensions(dims)
			if err != nil {
				return err
			}
			groupKeys, err := incident.ParseGroupKeys(keys)
			if err != nil {
				return err
			}

			rt, ds, err := load(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			groups, err := explore.Aggregate(ds.All(), dimensions, groupKeys)
			if err != nil {
				return err
			}
			writeGroups(cmd.OutOrStdout(), groupKeys, explore.TopN(groups, top))
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&dims, "dims", []string{"nkill", "nwound", "casualties"}, "Numeric dimensions summed into the metric")
	cmd.Flags().StringSliceVar(&keys, "keys", []string{"country_txt"}, "One to three group keys")
	cmd.Flags().IntVar(&top, "top", 20, "Rows to show, largest metric first (negative for all)")
	return cmd
}

func newAskCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "ask [question]",
		Short: "Answer a question about the dataset",
		Long: `Answer a question about the dataset.

Example: gtdash-cli ask "How many attacks occurred in 2015?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, _, err := load(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			matcher, err := rt.Matcher(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), matcher.Answer(strings.Join(args, " ")))
			return nil
		},
	}
}

func newSampleCmd(load loader) *cobra.Command {
	var n int
	var seed int64

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Print a deterministic random sample of incidents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, ds, err := load(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			writeIncidents(cmd.OutOrStdout(), explore.Sample(ds.All(), n, seed))
			return nil
		},
	}

	cmd.Flags().IntVar(&n, "n", 10, "Sample size")
	cmd.Flags().Int64Var(&seed, "seed", 5, "Random seed for deterministic sampling")
	return cmd
}

func newGenerateCmd() *cobra.Command {
	var rows int
	var seed int64
	var out string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a synthetic incident CSV for local development",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			genConfig := testkit.DefaultIncidentConfig()
			genConfig.Rows = rows
			genConfig.Seed = seed
			table := testkit.NewIncidentGenerator(genConfig).Generate()

			if out == "" || out == "-" {
				return testkit.WriteCSV(cmd.OutOrStdout(), table)
			}
			if err := testkit.WriteCSVFile(out, table); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d rows to %s\n", len(table.Rows), out)
			return nil
		},
	}

	cmd.Flags().IntVar(&rows, "rows", 10000, "Number of rows")
	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed")
	cmd.Flags().StringVar(&out, "out", "gtd_insight_ready.csv", "Output path, or - for stdout")
	return cmd
}

func writeGroups(w io.Writer, keys []incident.GroupKey, groups []explore.Group) {
	header := make([]string, 0, len(keys)+2)
	for _, k := range keys {
		header = append(header, string(k))
	}
	header = append(header, "metric_value", "count")

	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	for _, g := range groups {
		row := append([]string(nil), g.Keys...)
		row = append(row, formatFloat(g.Value), strconv.Itoa(g.Count))
		table.Append(row)
	}
	table.Render()
}

func writeIncidents(w io.Writer, view incident.View) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Year", "Month", "Country", "Region", "Attack type", "Killed", "Wounded"})
	for i := 0; i < view.Len(); i++ {
		r := view.At(i)
		table.Append([]string{
			strconv.Itoa(r.Year),
			r.MonthName,
			r.Country,
			r.Region,
			r.AttackType,
			formatFloat(r.Kills),
			formatFloat(r.Wounds),
		})
	}
	table.Render()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
