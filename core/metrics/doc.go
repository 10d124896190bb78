// Package metrics defines the sinks that record roster runs, conflict scans
// and handled disruptions for observability. Sinks like the Prometheus and
// InfluxDB ones in infra/metrics are created from configuration through the
// factory registry and can be combined with NewMultiSink. The factory helpers
// return a MultiSink automatically when multiple sinks are configured.
package metrics
