package dashboard

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/kilianp07/bikedash/core/model"
)

// ParamError reports a request parameter that could not be interpreted.
type ParamError struct {
	Param string
	Value string
	Err   error
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("parameter %s=%q: %v", e.Param, e.Value, e.Err)
}

func (e *ParamError) Unwrap() error { return e.Err }

// Query is the raw, string-typed selection received from a caller.
type Query struct {
	Start    string   `json:"start"`
	End      string   `json:"end"`
	Seasons  []string `json:"seasons"`
	Weathers []string `json:"weathers"`
	Groups   []string `json:"groups"`
}

// Parse resolves q against the dataset bounds. Missing dates default to the
// bounds; seasons and weathers accept labels or raw codes, and values may be
// comma separated. Selections come back sorted by code without duplicates. An empty group list selects every category.
func (q Query) Parse(bounds model.DateRange) (model.FilterCriteria, []model.GroupKey, error) {
	c := model.FilterCriteria{Range: bounds}
	var err error
	if q.Start != "" {
		if c.Range.Start, err = time.Parse(model.DateLayout, strings.TrimSpace(q.Start)); err != nil {
			return c, nil, &ParamError{Param: "start", Value: q.Start, Err: err}
		}
	}
	if q.End != "" {
		if c.Range.End, err = time.Parse(model.DateLayout, strings.TrimSpace(q.End)); err != nil {
			return c, nil, &ParamError{Param: "end", Value: q.End, Err: err}
		}
	}
	for _, s := range splitValues(q.Seasons) {
		v, err := model.ParseSeason(s)
		if err != nil {
			return c, nil, &ParamError{Param: "season", Value: s, Err: err}
		}
		c.Seasons = append(c.Seasons, v)
	}
	for _, s := range splitValues(q.Weathers) {
		v, err := model.ParseWeather(s)
		if err != nil {
			return c, nil, &ParamError{Param: "weather", Value: s, Err: err}
		}
		c.Weathers = append(c.Weathers, v)
	}
	slices.Sort(c.Seasons)
	c.Seasons = slices.Compact(c.Seasons)
	slices.Sort(c.Weathers)
	c.Weathers = slices.Compact(c.Weathers)
	var groups []model.GroupKey
	for _, s := range splitValues(q.Groups) {
		k, err := model.ParseGroupKey(s)
		if err != nil {
			return c, nil, &ParamError{Param: "group", Value: s, Err: err}
		}
		groups = append(groups, k)
	}
	return c, groups, nil
}

func splitValues(in []string) []string {
	var out []string
	for _, v := range in {
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
