package dashboard

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coredash "github.com/kilianp07/bikedash/core/dashboard"
	"github.com/kilianp07/bikedash/core/dataset"
	coremetrics "github.com/kilianp07/bikedash/core/metrics"
	"github.com/kilianp07/bikedash/core/model"
	"github.com/kilianp07/bikedash/core/stats"
	"github.com/kilianp07/bikedash/infra/cache"
)

func init() { gin.SetMode(gin.TestMode) }

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// testDataset returns the three records of the reference scenario.
func testDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.New([]model.Record{
		{Date: day(2011, 1, 1), Season: model.SeasonSpring, Weather: model.WeatherClear, Weekday: 6, Month: 1, Year: 0, Count: 10},
		{Date: day(2011, 1, 2), Season: model.SeasonSpring, Weather: model.WeatherCloudy, Weekday: 0, Month: 1, Year: 0, Count: 20},
		{Date: day(2012, 1, 1), Season: model.SeasonSpring, Weather: model.WeatherClear, Weekday: 0, Month: 1, Year: 1, Count: 50},
	})
	require.NoError(t, err)
	return ds
}

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (m *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memCache) Set(_ context.Context, key string, v []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = v
	return nil
}

type querySink struct {
	mu     sync.Mutex
	events []coremetrics.QueryEvent
}

func (s *querySink) RecordQuery(ev coremetrics.QueryEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return nil
}

func newTestRouter(t *testing.T, deps Deps) *gin.Engine {
	t.Helper()
	if deps.Dataset == nil {
		deps.Dataset = testDataset(t)
	}
	return NewRouter(deps)
}

func do(t *testing.T, h http.Handler, method, target string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHealthzAndRequestID(t *testing.T) {
	h := newTestRouter(t, Deps{})
	rr := do(t, h, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	_, err := uuid.Parse(rr.Header().Get(RequestIDHeader))
	assert.NoError(t, err)

	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, id)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, id, rr.Header().Get(RequestIDHeader))
}

func TestBounds(t *testing.T) {
	rr := do(t, newTestRouter(t, Deps{}), http.MethodGet, "/api/bounds", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var got BoundsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, "2011-01-01", got.Start)
	assert.Equal(t, "2012-01-01", got.End)
	assert.Equal(t, 3, got.Records)
	assert.Len(t, got.Seasons, 4)
	assert.Len(t, got.Weathers, 3)
	assert.Equal(t, "Day", got.Groups[0].Title)
}

func TestSummaryFiltersScenario(t *testing.T) {
	rr := do(t, newTestRouter(t, Deps{}), http.MethodGet,
		"/api/summary?start=2011-01-01&end=2011-01-31&season=Spring&weather=Clear", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var got stats.SummaryStats
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, 1, got.Count)
	assert.Equal(t, 10.0, got.Mean)
}

func TestSummaryEmptySelectionMeansAll(t *testing.T) {
	rr := do(t, newTestRouter(t, Deps{}), http.MethodGet, "/api/summary", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var got stats.SummaryStats
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, 3, got.Count)
}

func TestTrend(t *testing.T) {
	rr := do(t, newTestRouter(t, Deps{}), http.MethodGet, "/api/trend?weather=1", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var got []stats.TrendPoint
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, 2011, got[0].Year)
	assert.Equal(t, 10.0, got[0].Mean)
	assert.Equal(t, 2012, got[1].Year)
	assert.Equal(t, 50.0, got[1].Mean)
}

func TestGroups(t *testing.T) {
	h := newTestRouter(t, Deps{})
	rr := do(t, h, http.MethodGet, "/api/groups/day", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var got coredash.Category
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, "Day", got.Title)
	require.Len(t, got.Values, 2)
	assert.Equal(t, "Sunday", got.Values[0].Label)
	assert.Equal(t, 35.0, got.Values[0].Mean)

	rr = do(t, h, http.MethodGet, "/api/groups/hour", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHistogramBins(t *testing.T) {
	h := newTestRouter(t, Deps{})
	rr := do(t, h, http.MethodGet, "/api/histogram?bins=4", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var got []stats.Bin
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Len(t, got, 4)

	rr = do(t, h, http.MethodGet, "/api/histogram?bins=0", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	rr = do(t, h, http.MethodGet, "/api/histogram?bins=x", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestInvalidRangeRejected(t *testing.T) {
	sink := &querySink{}
	h := newTestRouter(t, Deps{Metrics: sink})
	rr := do(t, h, http.MethodGet, "/api/dashboard?start=2012-01-01&end=2011-01-01", nil)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "error")
	require.Len(t, sink.events, 1)
	assert.Equal(t, "dashboard", sink.events[0].Endpoint)
	assert.Equal(t, coremetrics.OutcomeRejected, sink.events[0].Outcome)

	rr = do(t, h, http.MethodGet, "/api/summary?season=Monsoon", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestDashboardCached(t *testing.T) {
	mc := &memCache{data: map[string][]byte{}}
	sink := &querySink{}
	h := newTestRouter(t, Deps{Cache: mc, CachePrefix: "t", Metrics: sink})
	target := "/api/dashboard?group=season&group=weather"
	rr := do(t, h, http.MethodGet, target, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "MISS", rr.Header().Get("X-Cache"))
	var d coredash.Dashboard
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &d))
	require.Len(t, d.Categories, 2)
	assert.Equal(t, "season", d.Categories[0].Key)
	assert.Len(t, d.Histogram, stats.DefaultBins)

	rr2 := do(t, h, http.MethodGet, target, nil)
	require.Equal(t, http.StatusOK, rr2.Code)
	assert.Equal(t, "HIT", rr2.Header().Get("X-Cache"))
	assert.Equal(t, rr.Body.String(), rr2.Body.String())
	assert.Len(t, mc.data, 1)

	require.Len(t, sink.events, 2)
	for _, ev := range sink.events {
		assert.Equal(t, 3, ev.Records)
	}
}

func TestCachedCriteriaMatchRequest(t *testing.T) {
	mc := &memCache{data: map[string][]byte{}}
	h := newTestRouter(t, Deps{Cache: mc, CachePrefix: "t"})

	rr := do(t, h, http.MethodGet, "/api/dashboard?season=2&season=1&season=2", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "MISS", rr.Header().Get("X-Cache"))

	rr2 := do(t, h, http.MethodGet, "/api/dashboard?season=1,2", nil)
	require.Equal(t, http.StatusOK, rr2.Code)
	assert.Equal(t, "HIT", rr2.Header().Get("X-Cache"))
	var d coredash.Dashboard
	require.NoError(t, json.Unmarshal(rr2.Body.Bytes(), &d))
	assert.Equal(t, []model.Season{model.SeasonSpring, model.SeasonSummer}, d.Criteria.Seasons)
	assert.Len(t, mc.data, 1)
}

func TestChartPNG(t *testing.T) {
	h := newTestRouter(t, Deps{})
	rr := do(t, h, http.MethodGet, "/api/charts/season.png", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "image/png", rr.Header().Get("Content-Type"))
	_, err := png.DecodeConfig(rr.Body)
	assert.NoError(t, err)

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/api/charts/pie.png", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/api/charts/season.svg", nil).Code)
	assert.Equal(t, http.StatusNoContent,
		do(t, h, http.MethodGet, "/api/charts/trend.png?start=2011-06-01&end=2011-06-30", nil).Code)
}

func TestExportCSV(t *testing.T) {
	rr := do(t, newTestRouter(t, Deps{}), http.MethodGet, "/api/export.csv?group=season", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	rows, err := csv.NewReader(strings.NewReader(rr.Body.String())).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"section", "key", "label", "value", "count"}, rows[0])
	assert.Contains(t, rows, []string{"group:season", "1", "Spring", "26.67", "3"})
}

func TestViewSession(t *testing.T) {
	ds := testDataset(t)
	session, err := coredash.NewSession(ds, coredash.Options{}, nil)
	require.NoError(t, err)
	h := newTestRouter(t, Deps{Dataset: ds, Session: session})

	rr := do(t, h, http.MethodPut, "/api/view", []byte(`{"weathers":["Cloudy"]}`))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, session.Current().Summary.Count)

	rr = do(t, h, http.MethodPut, "/api/view", []byte(`{"start":"2012-01-01","end":"2011-01-01"}`))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, 20.0, session.Current().Summary.Mean)

	rr = do(t, h, http.MethodPut, "/api/view", []byte(`{`))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, h, http.MethodGet, "/api/view", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var d coredash.Dashboard
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &d))
	assert.Equal(t, 20.0, d.Summary.Mean)
}

func TestViewAbsentWithoutSession(t *testing.T) {
	rr := do(t, newTestRouter(t, Deps{}), http.MethodGet, "/api/view", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

var _ cache.Cache = (*memCache)(nil)
