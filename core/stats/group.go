package stats

import (
	"sort"

	"github.com/kilianp07/bikedash/core/filter"
	"github.com/kilianp07/bikedash/core/model"
)

// GroupMean is the mean rental count of one category.
type GroupMean struct {
	Key   int     `json:"key"`
	Label string  `json:"label"`
	Mean  float64 `json:"mean"`
	Count int     `json:"count"`
}

// AggregateResult lists the categories present in a view, ordered by raw key.
type AggregateResult []GroupMean

// Map returns the result keyed by raw category value.
func (a AggregateResult) Map() map[int]float64 {
	out := make(map[int]float64, len(a))
	for _, g := range a {
		out[g.Key] = g.Mean
	}
	return out
}

type acc struct {
	sum float64
	n   int
}

// GroupAverage computes the mean count per raw value of key. Only values
// present in the view appear in the result; an empty view returns an empty
// result. Labels are attached after grouping.
func GroupAverage(v filter.View, key model.GroupKey) AggregateResult {
	groups := make(map[int]*acc)
	for i := 0; i < v.Len(); i++ {
		r := v.At(i)
		k := key.Value(r)
		a, ok := groups[k]
		if !ok {
			a = &acc{}
			groups[k] = a
		}
		a.sum += float64(r.Count)
		a.n++
	}
	keys := make([]int, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	out := make(AggregateResult, 0, len(keys))
	for _, k := range keys {
		a := groups[k]
		out = append(out, GroupMean{
			Key:   k,
			Label: key.Label(k),
			Mean:  a.sum / float64(a.n),
			Count: a.n,
		})
	}
	return out
}
