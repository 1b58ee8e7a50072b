package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/bikedash/core/metrics"
)

// PromSink records dashboard queries in Prometheus metrics.
type PromSink struct {
	queries  *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	records  prometheus.Gauge
	viewMean prometheus.Gauge
}

// NewPromSink registers dashboard metrics on the default Prometheus registerer.
// The Prometheus server should be started separately using StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	queries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bikedash_queries_total",
		Help: "Total number of dashboard queries",
	}, []string{"endpoint", "outcome"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bikedash_query_duration_seconds",
		Help:    "Time spent filtering and aggregating a query",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})
	records := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "bikedash_dataset_records",
		Help: "Number of records in the loaded dataset",
	})
	viewMean := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "bikedash_view_mean_rentals",
		Help: "Mean daily rentals of the current session view",
	})

	var err error
	if queries, err = register(reg, queries); err != nil {
		return nil, err
	}
	if latency, err = register(reg, latency); err != nil {
		return nil, err
	}
	if records, err = register(reg, records); err != nil {
		return nil, err
	}
	if viewMean, err = register(reg, viewMean); err != nil {
		return nil, err
	}
	return &PromSink{queries: queries, latency: latency, records: records, viewMean: viewMean}, nil
}

// register returns the already registered collector when c was registered before.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordQuery increments the query counter and observes its latency.
func (s *PromSink) RecordQuery(ev coremetrics.QueryEvent) error {
	s.queries.WithLabelValues(ev.Endpoint, ev.Outcome).Inc()
	s.latency.WithLabelValues(ev.Endpoint).Observe(ev.Duration.Seconds())
	return nil
}

// RecordDataset sets the gauge to the number of loaded records.
func (s *PromSink) RecordDataset(ev coremetrics.DatasetEvent) error {
	s.records.Set(float64(ev.Records))
	return nil
}

// RecordView tracks the mean of the session view.
func (s *PromSink) RecordView(ev coremetrics.ViewEvent) error {
	s.viewMean.Set(ev.Summary.Mean)
	return nil
}
