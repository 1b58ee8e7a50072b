package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Season is the raw season code of a record (1..4).
type Season int

const (
	SeasonSpring Season = iota + 1
	SeasonSummer
	SeasonFall
	SeasonWinter
)

// Seasons lists every season in canonical order.
var Seasons = []Season{SeasonSpring, SeasonSummer, SeasonFall, SeasonWinter}

// String returns the display label of the season.
func (s Season) String() string {
	switch s {
	case SeasonSpring:
		return "Spring"
	case SeasonSummer:
		return "Summer"
	case SeasonFall:
		return "Fall"
	case SeasonWinter:
		return "Winter"
	default:
		return "unknown"
	}
}

// Valid reports whether s is one of the four known seasons.
func (s Season) Valid() bool { return s >= SeasonSpring && s <= SeasonWinter }

// Weather is the raw weather situation code of a record (1..3).
type Weather int

const (
	WeatherClear Weather = iota + 1
	WeatherCloudy
	WeatherLightPrecip
)

// Weathers lists every weather condition in canonical order.
var Weathers = []Weather{WeatherClear, WeatherCloudy, WeatherLightPrecip}

// String returns the display label of the weather condition.
func (w Weather) String() string {
	switch w {
	case WeatherClear:
		return "Clear"
	case WeatherCloudy:
		return "Cloudy"
	case WeatherLightPrecip:
		return "LightPrecip"
	default:
		return "unknown"
	}
}

// Valid reports whether w is one of the three known conditions.
func (w Weather) Valid() bool { return w >= WeatherClear && w <= WeatherLightPrecip }

// Weekday is the raw day-of-week code, Sunday = 0.
type Weekday int

var weekdayLabels = [...]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

func (d Weekday) String() string {
	if !d.Valid() {
		return "unknown"
	}
	return weekdayLabels[d]
}

// Valid reports whether d is within 0..6.
func (d Weekday) Valid() bool { return d >= 0 && int(d) < len(weekdayLabels) }

// Month is the raw month number (1..12).
type Month int

var monthLabels = [...]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

func (m Month) String() string {
	if !m.Valid() {
		return "unknown"
	}
	return monthLabels[m-1]
}

// Valid reports whether m is within 1..12.
func (m Month) Valid() bool { return m >= 1 && int(m) <= len(monthLabels) }

// BaseYear is the calendar year of year code 0.
const BaseYear = 2011

// YearCode is the raw year code of a record: 0 for 2011, 1 for 2012.
type YearCode int

// Year returns the calendar year represented by the code.
func (y YearCode) Year() int { return BaseYear + int(y) }

// Valid reports whether y is 0 or 1.
func (y YearCode) Valid() bool { return y == 0 || y == 1 }

// ParseSeason accepts a season label (case-insensitive) or its raw code.
func ParseSeason(s string) (Season, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if v := Season(n); v.Valid() {
			return v, nil
		}
		return 0, fmt.Errorf("unknown season code %d", n)
	}
	for _, v := range Seasons {
		if strings.EqualFold(v.String(), s) {
			return v, nil
		}
	}
	return 0, fmt.Errorf("unknown season %q", s)
}

// ParseWeather accepts a weather label (case-insensitive) or its raw code.
func ParseWeather(s string) (Weather, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if v := Weather(n); v.Valid() {
			return v, nil
		}
		return 0, fmt.Errorf("unknown weather code %d", n)
	}
	for _, v := range Weathers {
		if strings.EqualFold(v.String(), s) {
			return v, nil
		}
	}
	return 0, fmt.Errorf("unknown weather %q", s)
}
