// Package prometheus exposes tokenguard engine metrics as a
// [github.com/prometheus/client_golang/prometheus.Collector].
//
// Counter names are prefixed tokenguard_*_total; the single histogram is
// tokenguard_validate_latency_seconds.
//
// # What this package must NOT do
//
//   - Register in the global Prometheus registry; callers pass a Registerer.
//   - Mutate engine state.
package prometheus
