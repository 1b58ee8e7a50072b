package metrics

import (
	"context"

	"github.com/kilianp07/bikedash/core/dashboard"
	coremetrics "github.com/kilianp07/bikedash/core/metrics"
	"github.com/kilianp07/bikedash/infra/logger"
	"github.com/kilianp07/bikedash/internal/eventbus"
)

// StartViewCollector subscribes to the event bus and records a view event for
// every accepted selection change. It stops when the context is canceled or
// the bus is closed.
func StartViewCollector(ctx context.Context, bus *eventbus.Bus[dashboard.ViewChanged], sink coremetrics.MetricsSink, log logger.Logger) {
	if bus == nil || sink == nil {
		return
	}
	rec, ok := sink.(coremetrics.ViewRecorder)
	if !ok {
		return
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	sub := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if err := rec.RecordView(coremetrics.ViewEvent{Summary: ev.Dashboard.Summary, Time: ev.Time}); err != nil {
					log.Warnf("record view: %v", err)
				}
			}
		}
	}()
}
