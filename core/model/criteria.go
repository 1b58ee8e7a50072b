package model

import "time"

// DateRange is an inclusive range of calendar dates.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls within the range, both ends included.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// FilterCriteria is the user's selection for one dashboard computation.
//
// An empty Seasons or Weathers slice means no restriction on that attribute:
// an empty multi-select shows everything, it does not hide everything.
type FilterCriteria struct {
	Range    DateRange `json:"range"`
	Seasons  []Season  `json:"seasons,omitempty"`
	Weathers []Weather `json:"weathers,omitempty"`
}

// DefaultCriteria selects the whole range with every season and weather.
func DefaultCriteria(bounds DateRange) FilterCriteria {
	return FilterCriteria{
		Range:    bounds,
		Seasons:  append([]Season(nil), Seasons...),
		Weathers: append([]Weather(nil), Weathers...),
	}
}
