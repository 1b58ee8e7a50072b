package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownGroup is returned by ParseGroupKey for an unrecognised key.
var ErrUnknownGroup = errors.New("unknown group")

// GroupKey selects the raw attribute used to bucket records.
type GroupKey int

const (
	GroupWeekday GroupKey = iota
	GroupMonth
	GroupSeason
	GroupWeather
)

// GroupKeys lists the bar-chart categories in display order.
var GroupKeys = []GroupKey{GroupWeekday, GroupMonth, GroupSeason, GroupWeather}

// String returns the identifier used in URLs and configuration.
func (k GroupKey) String() string {
	switch k {
	case GroupWeekday:
		return "day"
	case GroupMonth:
		return "month"
	case GroupSeason:
		return "season"
	case GroupWeather:
		return "weather"
	default:
		return "unknown"
	}
}

// Title is the human-readable name of the category.
func (k GroupKey) Title() string {
	switch k {
	case GroupWeekday:
		return "Day"
	case GroupMonth:
		return "Month"
	case GroupSeason:
		return "Season"
	case GroupWeather:
		return "Weather"
	default:
		return "Unknown"
	}
}

// Value extracts the raw grouping value of r for this key.
func (k GroupKey) Value(r Record) int {
	switch k {
	case GroupWeekday:
		return int(r.Weekday)
	case GroupMonth:
		return int(r.Month)
	case GroupSeason:
		return int(r.Season)
	case GroupWeather:
		return int(r.Weather)
	default:
		return -1
	}
}

// Label translates a raw grouping value to its display label.
func (k GroupKey) Label(v int) string {
	switch k {
	case GroupWeekday:
		return Weekday(v).String()
	case GroupMonth:
		return Month(v).String()
	case GroupSeason:
		return Season(v).String()
	case GroupWeather:
		return Weather(v).String()
	default:
		return "unknown"
	}
}

// ParseGroupKey accepts an identifier ("day") or a title ("Day"), and
// "weekday" as an alias of "day".
func ParseGroupKey(s string) (GroupKey, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "weekday" {
		return GroupWeekday, nil
	}
	for _, k := range GroupKeys {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w %q", ErrUnknownGroup, s)
}
