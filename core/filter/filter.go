// Package filter applies FilterCriteria to a dataset.
package filter

import (
	"fmt"
	"time"

	"github.com/kilianp07/bikedash/core/dataset"
	"github.com/kilianp07/bikedash/core/model"
)

// InvalidRangeError is returned when the start date is after the end date.
type InvalidRangeError struct {
	Start time.Time
	End   time.Time
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid date range: start %s is after end %s",
		e.Start.Format(model.DateLayout), e.End.Format(model.DateLayout))
}

// View is the order-preserving subset of a dataset that matched a criteria.
// It indexes into the dataset and never copies records.
type View struct {
	ds  *dataset.Dataset
	idx []int
}

// All returns a view over every record of ds.
func All(ds *dataset.Dataset) View {
	idx := make([]int, ds.Len())
	for i := range idx {
		idx[i] = i
	}
	return View{ds: ds, idx: idx}
}

// Len returns the number of records in the view.
func (v View) Len() int { return len(v.idx) }

// At returns the i-th record of the view.
func (v View) At(i int) model.Record { return v.ds.At(v.idx[i]) }

// Records copies the records of the view, in dataset order.
func (v View) Records() []model.Record {
	out := make([]model.Record, len(v.idx))
	for i, j := range v.idx {
		out[i] = v.ds.At(j)
	}
	return out
}

// Counts returns the rental counts of the view as float64 values.
func (v View) Counts() []float64 {
	out := make([]float64, len(v.idx))
	for i, j := range v.idx {
		out[i] = float64(v.ds.At(j).Count)
	}
	return out
}

// Apply returns the records of ds matching c. The date range is inclusive at
// both ends; empty season or weather sets do not restrict the result.
// Predicates are AND-combined.
func Apply(ds *dataset.Dataset, c model.FilterCriteria) (View, error) {
	if c.Range.Start.After(c.Range.End) {
		return View{}, &InvalidRangeError{Start: c.Range.Start, End: c.Range.End}
	}
	seasons := make(map[model.Season]bool, len(c.Seasons))
	for _, s := range c.Seasons {
		seasons[s] = true
	}
	weathers := make(map[model.Weather]bool, len(c.Weathers))
	for _, w := range c.Weathers {
		weathers[w] = true
	}

	idx := make([]int, 0, ds.Len())
	for i := 0; i < ds.Len(); i++ {
		r := ds.At(i)
		if !c.Range.Contains(r.Date) {
			continue
		}
		if len(seasons) > 0 && !seasons[r.Season] {
			continue
		}
		if len(weathers) > 0 && !weathers[r.Weather] {
			continue
		}
		idx = append(idx, i)
	}
	return View{ds: ds, idx: idx}, nil
}
