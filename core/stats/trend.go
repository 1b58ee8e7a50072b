package stats

import (
	"sort"

	"github.com/kilianp07/bikedash/core/filter"
	"github.com/kilianp07/bikedash/core/model"
)

// TrendPoint is the mean count of one calendar month of one year.
type TrendPoint struct {
	Year       int     `json:"year"`
	Month      int     `json:"month"`
	MonthLabel string  `json:"month_label"`
	Mean       float64 `json:"mean"`
	Count      int     `json:"count"`
}

type yearMonth struct {
	year  model.YearCode
	month model.Month
}

// MonthlyTrend groups the view by (year, month) and returns the mean count
// of each pair, ordered by year then month.
func MonthlyTrend(v filter.View) []TrendPoint {
	groups := make(map[yearMonth]*acc)
	for i := 0; i < v.Len(); i++ {
		r := v.At(i)
		k := yearMonth{year: r.Year, month: r.Month}
		a, ok := groups[k]
		if !ok {
			a = &acc{}
			groups[k] = a
		}
		a.sum += float64(r.Count)
		a.n++
	}
	keys := make([]yearMonth, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].month < keys[j].month
	})

	out := make([]TrendPoint, 0, len(keys))
	for _, k := range keys {
		a := groups[k]
		out = append(out, TrendPoint{
			Year:       k.year.Year(),
			Month:      int(k.month),
			MonthLabel: k.month.String(),
			Mean:       a.sum / float64(a.n),
			Count:      a.n,
		})
	}
	return out
}

// TrendByYear splits points into one series per year, keeping month order.
func TrendByYear(points []TrendPoint) map[int][]TrendPoint {
	out := make(map[int][]TrendPoint)
	for _, p := range points {
		out[p.Year] = append(out[p.Year], p)
	}
	return out
}
