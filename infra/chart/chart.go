// Package chart renders the dashboard charts as PNG images.
package chart

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/kilianp07/bikedash/core/dashboard"
	"github.com/kilianp07/bikedash/core/model"
	"github.com/kilianp07/bikedash/core/stats"
)

var (
	// ErrUnknownChart is returned for a chart name outside Names.
	ErrUnknownChart = errors.New("unknown chart")
	// ErrNoData is returned when the selection leaves nothing to draw.
	ErrNoData = errors.New("no data to plot")
)

// Chart names.
const (
	NameHistogram = "histogram"
	NameTrend     = "trend"
)

// Names lists every chart that Render accepts.
var Names = []string{NameHistogram, NameTrend, "day", "month", "season", "weather"}

// Options sets the image size in pixels.
type Options struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = 800
	}
	if o.Height <= 0 {
		o.Height = 400
	}
	return o
}

var yearColors = map[int]drawing.Color{
	model.BaseYear:     chart.ColorBlue,
	model.BaseYear + 1: chart.ColorOrange,
}

// Render draws the named chart from d. Bar charts need the matching
// category in d.Categories.
func Render(w io.Writer, name string, d dashboard.Dashboard, opts Options) error {
	switch name {
	case NameHistogram:
		return Histogram(w, d.Histogram, opts)
	case NameTrend:
		return Trend(w, d.Trend, opts)
	}
	key, err := model.ParseGroupKey(name)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrUnknownChart, name)
	}
	for _, c := range d.Categories {
		if c.Key == key.String() {
			return Groups(w, "Average rentals by "+c.Title, c.Values, opts)
		}
	}
	return fmt.Errorf("%w: %s not computed", ErrUnknownChart, name)
}

// Histogram draws the distribution of daily rentals.
func Histogram(w io.Writer, bins []stats.Bin, opts Options) error {
	if len(bins) == 0 {
		return ErrNoData
	}
	opts = opts.withDefaults()
	bars := make([]chart.Value, len(bins))
	top := 0.0
	for i, b := range bins {
		bars[i] = chart.Value{Value: float64(b.Frequency), Label: strconv.Itoa(int(math.Round(b.Lower)))}
		top = math.Max(top, float64(b.Frequency))
	}
	bc := chart.BarChart{
		Title:      "Distribution of daily rentals",
		Width:      opts.Width,
		Height:     opts.Height,
		BarWidth:   barWidth(opts.Width, len(bars)),
		BarSpacing: 1,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16}},
		XAxis:      chart.Style{FontSize: 6},
		YAxis:      chart.YAxis{Name: "Days", Range: &chart.ContinuousRange{Min: 0, Max: headroom(top)}},
		Bars:       bars,
	}
	return bc.Render(chart.PNG, w)
}

// Trend draws one line per year over the months.
func Trend(w io.Writer, points []stats.TrendPoint, opts Options) error {
	if len(points) == 0 {
		return ErrNoData
	}
	opts = opts.withDefaults()
	byYear := map[int]*chart.ContinuousSeries{}
	var years []int
	top := 0.0
	for _, p := range points {
		s, ok := byYear[p.Year]
		if !ok {
			col, found := yearColors[p.Year]
			if !found {
				col = chart.ColorAlternateGray
			}
			s = &chart.ContinuousSeries{
				Name:  strconv.Itoa(p.Year),
				Style: chart.Style{StrokeColor: col, StrokeWidth: 2, DotColor: col, DotWidth: 3},
			}
			byYear[p.Year] = s
			years = append(years, p.Year)
		}
		s.XValues = append(s.XValues, float64(p.Month))
		s.YValues = append(s.YValues, p.Mean)
		top = math.Max(top, p.Mean)
	}
	series := make([]chart.Series, 0, len(years))
	for _, y := range years {
		series = append(series, *byYear[y])
	}
	ticks := make([]chart.Tick, 0, 12)
	for m := model.Month(1); m <= 12; m++ {
		ticks = append(ticks, chart.Tick{Value: float64(m), Label: m.String()})
	}
	ch := chart.Chart{
		Title:      "Monthly average rentals",
		Width:      opts.Width,
		Height:     opts.Height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16}},
		XAxis:      chart.XAxis{Name: "Month", Range: &chart.ContinuousRange{Min: 1, Max: 12}, Ticks: ticks},
		YAxis:      chart.YAxis{Name: "Rentals", Range: &chart.ContinuousRange{Min: 0, Max: headroom(top)}},
		Series:     series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	return ch.Render(chart.PNG, w)
}

// Groups draws a bar per category.
func Groups(w io.Writer, title string, res stats.AggregateResult, opts Options) error {
	if len(res) == 0 {
		return ErrNoData
	}
	opts = opts.withDefaults()
	bars := make([]chart.Value, len(res))
	top := 0.0
	for i, g := range res {
		bars[i] = chart.Value{Value: g.Mean, Label: g.Label}
		top = math.Max(top, g.Mean)
	}
	bc := chart.BarChart{
		Title:      title,
		Width:      opts.Width,
		Height:     opts.Height,
		BarWidth:   barWidth(opts.Width, len(bars)),
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16}},
		YAxis:      chart.YAxis{Name: "Average rentals", Range: &chart.ContinuousRange{Min: 0, Max: headroom(top)}},
		Bars:       bars,
	}
	return bc.Render(chart.PNG, w)
}

func barWidth(width, n int) int {
	bw := (width - 80) / (n + 1)
	if bw < 4 {
		return 4
	}
	if bw > 60 {
		return 60
	}
	return bw
}

// headroom keeps the y range non-empty and leaves space above the tallest value.
func headroom(top float64) float64 {
	if top <= 0 {
		return 1
	}
	return top * 1.1
}
