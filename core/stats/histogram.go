package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/bikedash/core/filter"
)

// DefaultBins is the number of histogram bins of the distribution chart.
const DefaultBins = 30

// Bin is one histogram bucket covering [Lower, Upper).
type Bin struct {
	Lower     float64 `json:"lower"`
	Upper     float64 `json:"upper"`
	Frequency int     `json:"frequency"`
}

// Histogram buckets the view's counts into bins of equal width spanning
// min..max. The maximum falls in the last bin. bins <= 0 selects DefaultBins.
func Histogram(v filter.View, bins int) []Bin {
	if bins <= 0 {
		bins = DefaultBins
	}
	x := v.Counts()
	if len(x) == 0 {
		return []Bin{}
	}
	sort.Float64s(x)
	lo, hi := floats.Min(x), floats.Max(x)
	if lo == hi {
		return []Bin{{Lower: lo, Upper: hi, Frequency: len(x)}}
	}

	edges := make([]float64, bins+1)
	floats.Span(edges, lo, hi)
	dividers := append([]float64(nil), edges...)
	dividers[bins] = math.Nextafter(hi, math.Inf(1))
	counts := stat.Histogram(nil, dividers, x, nil)

	out := make([]Bin, bins)
	for i := range out {
		out[i] = Bin{Lower: edges[i], Upper: edges[i+1], Frequency: int(counts[i])}
	}
	return out
}
