package metrics

import (
	"time"

	"github.com/kilianp07/bikedash/core/stats"
)

// Query outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// QueryEvent describes one dashboard computation served to a caller.
type QueryEvent struct {
	Endpoint string
	Outcome  string
	Records  int
	Duration time.Duration
	Time     time.Time
}

// MetricsSink records query events for observability purposes.
type MetricsSink interface {
	RecordQuery(ev QueryEvent) error
}

// DatasetEvent describes a completed dataset load.
type DatasetEvent struct {
	Source   string
	Records  int
	Start    time.Time
	End      time.Time
	Duration time.Duration
	Time     time.Time
}

// DatasetRecorder records dataset loads.
type DatasetRecorder interface {
	RecordDataset(ev DatasetEvent) error
}

// ViewEvent is a snapshot of the session's summary after a selection change.
type ViewEvent struct {
	Summary stats.SummaryStats
	Time    time.Time
}

// ViewRecorder records session view changes.
type ViewRecorder interface {
	RecordView(ev ViewEvent) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordQuery(QueryEvent) error     { return nil }
func (NopSink) RecordDataset(DatasetEvent) error { return nil }
func (NopSink) RecordView(ViewEvent) error       { return nil }
