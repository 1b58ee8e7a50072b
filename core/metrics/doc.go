// Package metrics defines the observability events emitted by the dashboard
// service and the sink interfaces that record them. Sinks like the
// Prometheus and InfluxDB implementations in infra/metrics register
// themselves in the factory; NewMetricsSink returns a MultiSink when several
// are configured.
package metrics
