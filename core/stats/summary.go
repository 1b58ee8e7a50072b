// Package stats computes descriptive statistics, grouped means, monthly
// trends and histograms over a filtered view.
package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/bikedash/core/filter"
)

// SummaryStats describes the distribution of the rental count.
type SummaryStats struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	Std   float64 `json:"std"`
	Min   float64 `json:"min"`
	Q1    float64 `json:"q1"`
	Q2    float64 `json:"median"`
	Q3    float64 `json:"q3"`
	Max   float64 `json:"max"`
}

// Summarize returns count, mean, sample standard deviation, min, quartiles
// and max of the view's counts. An empty view yields a zero value; a view
// with a single record has a zero standard deviation.
func Summarize(v filter.View) SummaryStats {
	x := v.Counts()
	s := SummaryStats{Count: len(x)}
	if len(x) == 0 {
		return s
	}
	sort.Float64s(x)
	s.Mean = stat.Mean(x, nil)
	if len(x) > 1 {
		s.Std = stat.StdDev(x, nil)
	}
	s.Min = floats.Min(x)
	s.Max = floats.Max(x)
	s.Q1 = quantile(0.25, x)
	s.Q2 = quantile(0.50, x)
	s.Q3 = quantile(0.75, x)
	return s
}

// quantile interpolates linearly between the closest ranks of sorted x,
// the definition used by most dataframe libraries for describe().
func quantile(p float64, sorted []float64) float64 {
	h := p * float64(len(sorted)-1)
	lo := math.Floor(h)
	i := int(lo)
	if i+1 >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	return sorted[i] + (h-lo)*(sorted[i+1]-sorted[i])
}
