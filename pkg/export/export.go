// Package export writes dashboard results as JSON or as a flat CSV table.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/kilianp07/bikedash/core/dashboard"
	"github.com/kilianp07/bikedash/core/stats"
)

// Precision is the number of decimals of exported means.
const Precision = 2

// Header is the CSV header row.
var Header = []string{"section", "key", "label", "value", "count"}

// WriteJSON writes the dashboard to w in indented JSON format.
func WriteJSON(w io.Writer, d dashboard.Dashboard) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}

// WriteCSV writes the dashboard to w as one long table. The section column
// tells summary, histogram, trend and per-category rows apart.
func WriteCSV(w io.Writer, d dashboard.Dashboard) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	rows := summaryRows(d.Summary)
	for _, c := range d.Categories {
		rows = append(rows, GroupRows("group:"+c.Key, c.Values)...)
	}
	rows = append(rows, TrendRows(d.Trend)...)
	rows = append(rows, histogramRows(d.Histogram)...)
	for _, r := range rows {
		if err := cw.Write(r); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// GroupRows formats grouped means, one row per category.
func GroupRows(section string, res stats.AggregateResult) [][]string {
	rows := make([][]string, 0, len(res))
	for _, g := range res {
		rows = append(rows, []string{section, strconv.Itoa(g.Key), g.Label, formatMean(g.Mean), strconv.Itoa(g.Count)})
	}
	return rows
}

// TrendRows formats the monthly trend, keyed "YYYY-MM".
func TrendRows(points []stats.TrendPoint) [][]string {
	rows := make([][]string, 0, len(points))
	for _, p := range points {
		rows = append(rows, []string{
			"trend",
			fmt.Sprintf("%04d-%02d", p.Year, p.Month),
			fmt.Sprintf("%s %d", p.MonthLabel, p.Year),
			formatMean(p.Mean),
			strconv.Itoa(p.Count),
		})
	}
	return rows
}

func summaryRows(s stats.SummaryStats) [][]string {
	count := strconv.Itoa(s.Count)
	stat := func(key string, v float64) []string {
		return []string{"summary", key, "", formatMean(v), count}
	}
	return [][]string{
		stat("mean", s.Mean),
		stat("std", s.Std),
		stat("min", s.Min),
		stat("25%", s.Q1),
		stat("50%", s.Q2),
		stat("75%", s.Q3),
		stat("max", s.Max),
	}
}

func histogramRows(bins []stats.Bin) [][]string {
	rows := make([][]string, 0, len(bins))
	for i, b := range bins {
		rows = append(rows, []string{
			"histogram",
			strconv.Itoa(i),
			fmt.Sprintf("%s-%s", formatMean(b.Lower), formatMean(b.Upper)),
			strconv.Itoa(b.Frequency),
			"",
		})
	}
	return rows
}

func formatMean(v float64) string {
	return decimal.NewFromFloat(v).Round(Precision).StringFixed(Precision)
}
