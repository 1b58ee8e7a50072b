// Package dashboard composes the engine outputs that feed one dashboard
// screen and keeps the server-side selection.
package dashboard

import (
	"github.com/kilianp07/bikedash/core/dataset"
	"github.com/kilianp07/bikedash/core/filter"
	"github.com/kilianp07/bikedash/core/model"
	"github.com/kilianp07/bikedash/core/stats"
)

// Category is the bar-chart data of one grouping key.
type Category struct {
	Key    string                `json:"key"`
	Title  string                `json:"title"`
	Values stats.AggregateResult `json:"values"`
}

// Dashboard holds every number displayed for a given selection.
type Dashboard struct {
	Criteria   model.FilterCriteria `json:"criteria"`
	Summary    stats.SummaryStats   `json:"summary"`
	Histogram  []stats.Bin          `json:"histogram"`
	Trend      []stats.TrendPoint   `json:"trend"`
	Categories []Category           `json:"categories"`
}

// Options tunes Build.
type Options struct {
	// Groups selects the bar-chart categories. Nil means all of them.
	Groups []model.GroupKey
	// Bins is the histogram bin count; zero selects stats.DefaultBins.
	Bins int
}

// Build filters ds with c and computes every dashboard section.
func Build(ds *dataset.Dataset, c model.FilterCriteria, opts Options) (Dashboard, error) {
	v, err := filter.Apply(ds, c)
	if err != nil {
		return Dashboard{}, err
	}
	groups := opts.Groups
	if groups == nil {
		groups = model.GroupKeys
	}
	d := Dashboard{
		Criteria:   c,
		Summary:    stats.Summarize(v),
		Histogram:  stats.Histogram(v, opts.Bins),
		Trend:      stats.MonthlyTrend(v),
		Categories: make([]Category, 0, len(groups)),
	}
	for _, k := range groups {
		d.Categories = append(d.Categories, Category{
			Key:    k.String(),
			Title:  k.Title(),
			Values: stats.GroupAverage(v, k),
		})
	}
	return d, nil
}
