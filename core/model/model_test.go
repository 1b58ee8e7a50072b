package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabels(t *testing.T) {
	assert.Equal(t, "Spring", SeasonSpring.String())
	assert.Equal(t, "Winter", SeasonWinter.String())
	assert.Equal(t, "LightPrecip", WeatherLightPrecip.String())
	assert.Equal(t, "Sunday", Weekday(0).String())
	assert.Equal(t, "Saturday", Weekday(6).String())
	assert.Equal(t, "Jan", Month(1).String())
	assert.Equal(t, "Dec", Month(12).String())
	assert.Equal(t, "unknown", Month(13).String())
	assert.Equal(t, 2011, YearCode(0).Year())
	assert.Equal(t, 2012, YearCode(1).Year())
}

func TestParseSeason(t *testing.T) {
	s, err := ParseSeason("summer")
	require.NoError(t, err)
	assert.Equal(t, SeasonSummer, s)

	s, err = ParseSeason("4")
	require.NoError(t, err)
	assert.Equal(t, SeasonWinter, s)

	_, err = ParseSeason("5")
	assert.Error(t, err)
	_, err = ParseSeason("monsoon")
	assert.Error(t, err)
}

func TestParseWeather(t *testing.T) {
	w, err := ParseWeather(" Cloudy ")
	require.NoError(t, err)
	assert.Equal(t, WeatherCloudy, w)

	_, err = ParseWeather("0")
	assert.Error(t, err)
}

func TestParseGroupKey(t *testing.T) {
	for in, want := range map[string]GroupKey{
		"day": GroupWeekday, "Weekday": GroupWeekday, "Month": GroupMonth,
		"season": GroupSeason, "WEATHER": GroupWeather,
	} {
		got, err := ParseGroupKey(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseGroupKey("hour")
	assert.ErrorIs(t, err, ErrUnknownGroup)
}

func TestGroupKeyValueAndLabel(t *testing.T) {
	r := Record{Season: SeasonFall, Weather: WeatherClear, Weekday: 3, Month: 7}
	assert.Equal(t, 3, GroupSeason.Value(r))
	assert.Equal(t, "Fall", GroupSeason.Label(GroupSeason.Value(r)))
	assert.Equal(t, "Wednesday", GroupWeekday.Label(GroupWeekday.Value(r)))
	assert.Equal(t, "Jul", GroupMonth.Label(GroupMonth.Value(r)))
	assert.Equal(t, "Clear", GroupWeather.Label(GroupWeather.Value(r)))
}

func TestDateRangeContainsInclusive(t *testing.T) {
	start := time.Date(2011, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2011, 1, 31, 0, 0, 0, 0, time.UTC)
	r := DateRange{Start: start, End: end}
	assert.True(t, r.Contains(start))
	assert.True(t, r.Contains(end))
	assert.False(t, r.Contains(end.AddDate(0, 0, 1)))
	assert.False(t, r.Contains(start.AddDate(0, 0, -1)))
}

func TestDefaultCriteriaSelectsEverything(t *testing.T) {
	c := DefaultCriteria(DateRange{})
	assert.Len(t, c.Seasons, 4)
	assert.Len(t, c.Weathers, 3)
	c.Seasons[0] = SeasonWinter
	assert.Equal(t, SeasonSpring, Seasons[0])
}
