package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/bikedash/config"
	"github.com/kilianp07/bikedash/core/factory"
	coremetrics "github.com/kilianp07/bikedash/core/metrics"
	"github.com/kilianp07/bikedash/core/stats"
)

const sampleCSV = `instant,dteday,season,yr,mnth,holiday,weekday,workingday,weathersit,casual,registered,cnt
1,2011-01-01,1,0,1,0,6,0,1,5,5,10
2,2011-01-02,1,0,1,0,0,0,2,10,10,20
3,2012-01-01,1,1,1,0,0,0,1,25,25,50
`

func writeCSV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "day.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))
	return path
}

type datasetSink struct {
	coremetrics.NopSink
	events []coremetrics.DatasetEvent
}

func (s *datasetSink) RecordDataset(ev coremetrics.DatasetEvent) error {
	s.events = append(s.events, ev)
	return nil
}

func TestLoadDatasetRecordsEvent(t *testing.T) {
	sink := &datasetSink{}
	ds, err := LoadDataset(context.Background(), config.DatasetConfig{Source: config.SourceCSV, Path: writeCSV(t)}, sink)
	require.NoError(t, err)
	assert.Equal(t, 3, ds.Len())
	require.Len(t, sink.events, 1)
	assert.Equal(t, 3, sink.events[0].Records)
	assert.Equal(t, "csv", sink.events[0].Source)
}

func TestLoadDatasetMissingFile(t *testing.T) {
	_, err := LoadDataset(context.Background(), config.DatasetConfig{Source: config.SourceCSV, Path: "missing.csv"}, coremetrics.NopSink{})
	assert.Error(t, err)
}

func TestServiceHandler(t *testing.T) {
	cfg := &config.Config{}
	cfg.Dataset.Path = writeCSV(t)
	cfg.Metrics.Sinks = []factory.ModuleConfig{{Type: "nop"}}
	cfg.SetDefaults()
	cfg.Server.Mode = "test"
	require.NoError(t, cfg.Validate())

	svc, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer svc.Close()

	req := httptest.NewRequest(http.MethodGet, "/api/summary?start=2011-01-01&end=2011-01-31&weather=Clear", nil)
	rr := httptest.NewRecorder()
	svc.Handler().ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	var got stats.SummaryStats
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, 1, got.Count)
	assert.Equal(t, 10.0, got.Mean)
	assert.Equal(t, 3, svc.Session.Current().Summary.Count)
}
