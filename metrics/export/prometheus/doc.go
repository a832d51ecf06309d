// Package prometheus provides Prometheus collectors for facade metrics.
//
// [NewPrometheusExporter] accepts an [authbridge.Client] and exposes an
// [http.Handler] that renders all counters and histograms in Prometheus text
// exposition format. Counter names are prefixed authbridge_*_total; the
// single histogram is authbridge_sign_in_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry — callers mount the Handler.
//   - Mutate client state.
package prometheus
