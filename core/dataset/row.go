package dataset

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kilianp07/bikedash/core/model"
)

// Column names of the source table.
const (
	ColDate    = "dteday"
	ColSeason  = "season"
	ColYear    = "yr"
	ColMonth   = "mnth"
	ColWeekday = "weekday"
	ColWeather = "weathersit"
	ColCount   = "cnt"
)

// Columns lists the required columns in RawRow order.
var Columns = []string{ColDate, ColSeason, ColYear, ColMonth, ColWeekday, ColWeather, ColCount}

var errOutOfRange = errors.New("out of range")

// RawRow is one unparsed row as read from a source.
type RawRow struct {
	Line    int
	Date    string
	Season  string
	Year    string
	Month   string
	Weekday string
	Weather string
	Count   string
}

// ParseRow converts a raw row into a Record, translating nothing: codes are
// kept raw and only validated against their lookup tables.
func ParseRow(raw RawRow) (model.Record, error) {
	var rec model.Record
	date, err := parseDate(raw.Date)
	if err != nil {
		return rec, &ParseError{Line: raw.Line, Column: ColDate, Value: raw.Date, Err: err}
	}
	rec.Date = date

	count, err := strconv.Atoi(strings.TrimSpace(raw.Count))
	if err != nil {
		return rec, &ParseError{Line: raw.Line, Column: ColCount, Value: raw.Count, Err: err}
	}
	if count < 0 {
		return rec, &ParseError{Line: raw.Line, Column: ColCount, Value: raw.Count, Err: errOutOfRange}
	}
	rec.Count = count

	codes := []struct {
		col   string
		value string
		valid func(int) bool
		set   func(int)
	}{
		{ColSeason, raw.Season, func(n int) bool { return model.Season(n).Valid() }, func(n int) { rec.Season = model.Season(n) }},
		{ColYear, raw.Year, func(n int) bool { return model.YearCode(n).Valid() }, func(n int) { rec.Year = model.YearCode(n) }},
		{ColMonth, raw.Month, func(n int) bool { return model.Month(n).Valid() }, func(n int) { rec.Month = model.Month(n) }},
		{ColWeekday, raw.Weekday, func(n int) bool { return model.Weekday(n).Valid() }, func(n int) { rec.Weekday = model.Weekday(n) }},
		{ColWeather, raw.Weather, func(n int) bool { return model.Weather(n).Valid() }, func(n int) { rec.Weather = model.Weather(n) }},
	}
	for _, c := range codes {
		n, err := strconv.Atoi(strings.TrimSpace(c.value))
		if err != nil {
			return rec, &ParseError{Line: raw.Line, Column: c.col, Value: c.value, Err: err}
		}
		if !c.valid(n) {
			return rec, &ParseError{Line: raw.Line, Column: c.col, Value: c.value, Err: errOutOfRange}
		}
		c.set(n)
	}
	return rec, nil
}

// FromRows parses every row and builds a Dataset. The first bad row aborts
// the whole load.
func FromRows(rows []RawRow) (*Dataset, error) {
	records := make([]model.Record, 0, len(rows))
	for _, raw := range rows {
		rec, err := ParseRow(raw)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return New(records)
}

// parseDate accepts an ISO date, optionally followed by a time part.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(model.DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("expected YYYY-MM-DD: %w", err)
	}
	return model.Day(t), nil
}
