// Package otel binds goIdentity Engine metrics to an OpenTelemetry Meter.
//
// [NewOTelExporter] registers one Int64ObservableCounter per Engine counter
// and, per histogram, a cumulative bucket gauge keyed by an "le" attribute
// plus a sample count gauge. A single callback reads
// [goIdentity.Engine.MetricsSnapshot] on each collection.
//
// Callers own the MeterProvider.
package otel
