package model

import "time"

// DateLayout is the layout of the dteday column.
const DateLayout = "2006-01-02"

// Record is one day of rental data. Records are never modified after loading.
type Record struct {
	Date    time.Time `json:"date"`
	Season  Season    `json:"season"`
	Weather Weather   `json:"weather"`
	Weekday Weekday   `json:"weekday"`
	Month   Month     `json:"month"`
	Year    YearCode  `json:"yr"`
	Count   int       `json:"cnt"`
}

// Day truncates t to a UTC calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
