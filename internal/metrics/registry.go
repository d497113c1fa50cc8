package metrics

import (
	"sync/atomic"
	"time"
)

const (
	// BucketCount is the number of fixed latency buckets.
	BucketCount   = 8
	cacheLineSize = 64
)

// BucketUpperBounds are the inclusive upper bounds of the first
// BucketCount-1 buckets; the last bucket is +Inf.
var BucketUpperBounds = [BucketCount - 1]time.Duration{
	5 * time.Millisecond,
	10 * time.Millisecond,
	25 * time.Millisecond,
	50 * time.Millisecond,
	100 * time.Millisecond,
	250 * time.Millisecond,
	500 * time.Millisecond,
}

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

type histogram struct {
	buckets [BucketCount]uint64
}

// Registry holds a fixed number of counters and histograms addressed by
// dense integer IDs. Out-of-range IDs are ignored.
type Registry struct {
	enabled       bool
	enableLatency bool
	counters      []paddedCounter
	histograms    []histogram
}

// New allocates a registry. A disabled registry accepts writes and discards
// them.
func New(counters, histograms int, enabled, latency bool) *Registry {
	return &Registry{
		enabled:       enabled,
		enableLatency: enabled && latency,
		counters:      make([]paddedCounter, counters),
		histograms:    make([]histogram, histograms),
	}
}

func (r *Registry) Enabled() bool {
	return r != nil && r.enabled
}

func (r *Registry) LatencyEnabled() bool {
	return r != nil && r.enableLatency
}

// Inc adds one to counter id.
func (r *Registry) Inc(id int) {
	if r == nil || !r.enabled || id < 0 || id >= len(r.counters) {
		return
	}
	atomic.AddUint64(&r.counters[id].value, 1)
}

// Observe records d in histogram id.
func (r *Registry) Observe(id int, d time.Duration) {
	if r == nil || !r.enableLatency || id < 0 || id >= len(r.histograms) {
		return
	}
	atomic.AddUint64(&r.histograms[id].buckets[BucketIndex(d)], 1)
}

// Value returns the current value of counter id.
func (r *Registry) Value(id int) uint64 {
	if r == nil || id < 0 || id >= len(r.counters) {
		return 0
	}
	return atomic.LoadUint64(&r.counters[id].value)
}

// Buckets returns a non-cumulative copy of histogram id.
func (r *Registry) Buckets(id int) []uint64 {
	if r == nil || id < 0 || id >= len(r.histograms) {
		return nil
	}
	out := make([]uint64, BucketCount)
	for i := range out {
		out[i] = atomic.LoadUint64(&r.histograms[id].buckets[i])
	}
	return out
}

// BucketIndex maps a duration to its bucket.
func BucketIndex(d time.Duration) int {
	for i, bound := range BucketUpperBounds {
		if d <= bound {
			return i
		}
	}
	return BucketCount - 1
}
