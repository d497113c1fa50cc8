package goIdentity

import (
	"time"

	"github.com/MrEthical07/goIdentity/internal/metrics"
)

// MetricID identifies one Engine counter or histogram.
type MetricID uint16

const (
	// MetricMintSuccess counts tokens returned by Mint.
	MetricMintSuccess MetricID = iota
	// MetricMintFailure counts Mint calls that returned ErrRegistrationFailed
	// or ErrInvalidSessionCandidate.
	MetricMintFailure
	// MetricMintCanceled counts Mint calls stopped by context cancellation.
	MetricMintCanceled
	// MetricEraseSuccess counts Erase calls that removed a live session.
	MetricEraseSuccess
	// MetricEraseMiss counts Erase calls for tokens with no cache entry.
	MetricEraseMiss
	// MetricEraseFailure counts Erase calls that returned an error.
	MetricEraseFailure
	// MetricEraseDurableOrphaned counts Erase calls that left a durable
	// association behind.
	MetricEraseDurableOrphaned
	// MetricResolveHit counts successful Resolve lookups.
	MetricResolveHit
	// MetricResolveMiss counts Resolve lookups that found nothing.
	MetricResolveMiss
	// MetricSignInFailure counts rejected SignIn attempts.
	MetricSignInFailure
	// MetricSignUpSuccess counts users created by SignUp.
	MetricSignUpSuccess
	// MetricSignInThrottled counts SignIn and SignUp calls refused by the
	// throttle.
	MetricSignInThrottled
	// MetricMintLatency is the Mint latency histogram.
	MetricMintLatency
	metricIDCount
)

// Metrics is the Engine's lock-free metric store.
type Metrics struct {
	registry *metrics.Registry
}

// MetricsSnapshot is a point-in-time copy of every metric. Histogram slices
// are non-cumulative bucket counts.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// NewMetrics allocates a metric store per cfg.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		registry: metrics.New(int(metricIDCount), int(metricIDCount), cfg.Enabled, cfg.EnableLatencyHistograms),
	}
}

// Enabled reports whether counters are recorded.
func (m *Metrics) Enabled() bool {
	return m != nil && m.registry.Enabled()
}

// LatencyEnabled reports whether histograms are recorded.
func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.registry.LatencyEnabled()
}

// Inc describes the inc operation and its observable behavior.
//
// Inc is safe for concurrent use and never allocates.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || id >= metricIDCount {
		return
	}
	m.registry.Inc(int(id))
}

// Observe records d. Only MetricMintLatency carries a histogram.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || id != MetricMintLatency {
		return
	}
	m.registry.Observe(int(id), d)
}

// Value returns the current value of counter id.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return m.registry.Value(int(id))
}

// Snapshot describes the snapshot operation and its observable behavior.
//
// A disabled store yields empty maps.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if !m.Enabled() {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}

	s := MetricsSnapshot{
		Counters:   make(map[MetricID]uint64, int(metricIDCount)),
		Histograms: make(map[MetricID][]uint64, 1),
	}
	for id := MetricID(0); id < metricIDCount; id++ {
		if id == MetricMintLatency {
			continue
		}
		s.Counters[id] = m.registry.Value(int(id))
	}
	if m.LatencyEnabled() {
		s.Histograms[MetricMintLatency] = m.registry.Buckets(int(MetricMintLatency))
	}
	return s
}
