package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kilianp07/bikedash/app"
	"github.com/kilianp07/bikedash/core/dashboard"
	"github.com/kilianp07/bikedash/core/metrics"
	"github.com/kilianp07/bikedash/core/model"
	"github.com/kilianp07/bikedash/core/stats"
)

// build loads the dataset and computes the dashboard of the flag selection.
func (o *options) build(ctx context.Context) (dashboard.Dashboard, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return dashboard.Dashboard{}, err
	}
	ds, err := app.LoadDataset(ctx, cfg.Dataset, metrics.NopSink{})
	if err != nil {
		return dashboard.Dashboard{}, err
	}
	q := dashboard.Query{Start: o.start, End: o.end, Seasons: o.seasons, Weathers: o.weathers, Groups: o.groups}
	crit, groups, err := q.Parse(ds.Bounds())
	if err != nil {
		return dashboard.Dashboard{}, err
	}
	return dashboard.Build(ds, crit, dashboard.Options{Groups: groups, Bins: cfg.Server.Bins})
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newSummaryCmd(opts *options) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print descriptive statistics of daily rentals",
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := opts.build(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), d.Summary)
			}
			return printSummary(cmd.OutOrStdout(), d.Summary)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func printSummary(w io.Writer, s stats.SummaryStats) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "count\t%d\t\n", s.Count)
	for _, row := range []struct {
		name string
		v    float64
	}{
		{"mean", s.Mean}, {"std", s.Std}, {"min", s.Min},
		{"25%", s.Q1}, {"50%", s.Q2}, {"75%", s.Q3}, {"max", s.Max},
	} {
		fmt.Fprintf(tw, "%s\t%.2f\t\n", row.name, row.v)
	}
	return tw.Flush()
}

func newTrendCmd(opts *options) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "trend",
		Short: "Print the monthly average rentals per year",
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := opts.build(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), d.Trend)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "year\tmonth\tmean\tdays")
			for _, p := range d.Trend {
				fmt.Fprintf(tw, "%d\t%s\t%.2f\t%d\n", p.Year, p.MonthLabel, p.Mean, p.Count)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func newGroupsCmd(opts *options) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "groups [day|month|season|weather]...",
		Short: "Print average rentals per category",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				opts.groups = append(opts.groups, args...)
			}
			d, err := opts.build(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), d.Categories)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			for _, c := range d.Categories {
				fmt.Fprintf(tw, "%s\n", strings.ToUpper(c.Title))
				for _, g := range c.Values {
					fmt.Fprintf(tw, "  %s\t%.2f\t%d days\n", g.Label, g.Mean, g.Count)
				}
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	cmd.ValidArgs = groupNames()
	return cmd
}

func groupNames() []string {
	out := make([]string, len(model.GroupKeys))
	for i, k := range model.GroupKeys {
		out[i] = k.String()
	}
	return out
}
