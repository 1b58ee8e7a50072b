package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/bikedash/core/dataset"
	"github.com/kilianp07/bikedash/core/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func scenario(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.New([]model.Record{
		{Date: day(2011, 1, 1), Season: model.SeasonSpring, Weather: model.WeatherClear, Month: 1, Year: 0, Count: 10},
		{Date: day(2011, 6, 15), Season: model.SeasonSummer, Weather: model.WeatherCloudy, Month: 6, Year: 0, Count: 20},
		{Date: day(2012, 1, 1), Season: model.SeasonSpring, Weather: model.WeatherLightPrecip, Month: 1, Year: 1, Count: 30},
	})
	require.NoError(t, err)
	return ds
}

func TestApplyScenario(t *testing.T) {
	ds := scenario(t)
	v, err := Apply(ds, model.FilterCriteria{
		Range:   model.DateRange{Start: day(2011, 1, 1), End: day(2011, 12, 31)},
		Seasons: []model.Season{model.SeasonSpring},
	})
	require.NoError(t, err)
	require.Equal(t, 1, v.Len())
	assert.Equal(t, 10, v.At(0).Count)
}

func TestApplyInclusiveBounds(t *testing.T) {
	ds := scenario(t)
	v, err := Apply(ds, model.FilterCriteria{
		Range: model.DateRange{Start: day(2011, 1, 1), End: day(2012, 1, 1)},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, v.Len())

	v, err = Apply(ds, model.FilterCriteria{
		Range: model.DateRange{Start: day(2011, 6, 15), End: day(2011, 6, 15)},
	})
	require.NoError(t, err)
	require.Equal(t, 1, v.Len())
	assert.Equal(t, 20, v.At(0).Count)
}

func TestApplyInvalidRange(t *testing.T) {
	ds := scenario(t)
	_, err := Apply(ds, model.FilterCriteria{
		Range: model.DateRange{Start: day(2012, 1, 1), End: day(2011, 1, 1)},
	})
	var ire *InvalidRangeError
	require.ErrorAs(t, err, &ire)
	assert.Equal(t, day(2012, 1, 1), ire.Start)
}

func TestEmptySelectionMeansAll(t *testing.T) {
	ds := scenario(t)
	bounds := ds.Bounds()
	empty, err := Apply(ds, model.FilterCriteria{Range: bounds})
	require.NoError(t, err)
	full, err := Apply(ds, model.DefaultCriteria(bounds))
	require.NoError(t, err)
	assert.Equal(t, full.Records(), empty.Records())
	assert.Equal(t, ds.Len(), empty.Len())
}

func TestApplyConjunctionAndOrder(t *testing.T) {
	ds := scenario(t)
	v, err := Apply(ds, model.FilterCriteria{
		Range:    ds.Bounds(),
		Seasons:  []model.Season{model.SeasonSpring, model.SeasonSummer},
		Weathers: []model.Weather{model.WeatherClear, model.WeatherLightPrecip},
	})
	require.NoError(t, err)
	require.Equal(t, 2, v.Len())
	assert.Equal(t, 10, v.At(0).Count)
	assert.Equal(t, 30, v.At(1).Count)
	assert.Equal(t, []float64{10, 30}, v.Counts())
}

func TestApplyIdempotent(t *testing.T) {
	ds := scenario(t)
	c := model.FilterCriteria{Range: ds.Bounds(), Weathers: []model.Weather{model.WeatherCloudy}}
	a, err := Apply(ds, c)
	require.NoError(t, err)
	b, err := Apply(ds, c)
	require.NoError(t, err)
	assert.Equal(t, a.Records(), b.Records())
}

func TestAll(t *testing.T) {
	ds := scenario(t)
	assert.Equal(t, ds.Records(), All(ds).Records())
}
