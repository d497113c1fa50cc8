// Package prometheus exposes goIdentity Engine metrics through
// github.com/prometheus/client_golang.
//
// [Collector] turns each scrape into one Engine snapshot. Counter names are
// identity_*_total; the single histogram is identity_mint_latency_seconds.
// [Handler] serves a private registry; [Register] adds the collector to a
// caller-owned one.
//
// # What this package must NOT do
//
//   - Register metrics in the global Prometheus registry.
//   - Mutate engine state.
package prometheus
