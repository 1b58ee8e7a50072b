package metrics

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/bikedash/core/dashboard"
	coremetrics "github.com/kilianp07/bikedash/core/metrics"
	"github.com/kilianp07/bikedash/core/stats"
	"github.com/kilianp07/bikedash/infra/logger"
	"github.com/kilianp07/bikedash/internal/eventbus"
)

type viewSink struct {
	coremetrics.NopSink
	mu    sync.Mutex
	views []coremetrics.ViewEvent
}

func (s *viewSink) RecordView(ev coremetrics.ViewEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.views = append(s.views, ev)
	return nil
}

func (s *viewSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.views)
}

func TestStartViewCollector(t *testing.T) {
	bus := eventbus.New[dashboard.ViewChanged](4)
	sink := &viewSink{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	StartViewCollector(ctx, bus, sink, logger.NopLogger{})

	bus.Publish(dashboard.ViewChanged{
		Dashboard: dashboard.Dashboard{Summary: stats.SummaryStats{Count: 1, Mean: 10}},
		Time:      time.Now(),
	})
	require.Eventually(t, func() bool { return sink.count() == 1 }, time.Second, 10*time.Millisecond)
	sink.mu.Lock()
	assert.Equal(t, 10.0, sink.views[0].Summary.Mean)
	sink.mu.Unlock()
}
