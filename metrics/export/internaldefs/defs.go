package internaldefs

import (
	"strconv"
	"strings"

	goIdentity "github.com/MrEthical07/goIdentity"
	"github.com/MrEthical07/goIdentity/internal/metrics"
)

// Namespace prefixes every exported metric name.
const Namespace = "identity"

// CounterDef names one Engine counter.
type CounterDef struct {
	ID   goIdentity.MetricID
	Name string
	Help string
}

// HistogramDef names one Engine latency histogram.
type HistogramDef struct {
	ID   goIdentity.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter in MetricID order.
var CounterDefs = []CounterDef{
	{ID: goIdentity.MetricMintSuccess, Name: "identity_mint_success_total", Help: "Tokens minted and registered."},
	{ID: goIdentity.MetricMintFailure, Name: "identity_mint_failure_total", Help: "Mint calls rejected or failed during registration."},
	{ID: goIdentity.MetricMintCanceled, Name: "identity_mint_canceled_total", Help: "Mint calls stopped by context cancellation."},
	{ID: goIdentity.MetricEraseSuccess, Name: "identity_erase_success_total", Help: "Sign-outs that removed a live session."},
	{ID: goIdentity.MetricEraseMiss, Name: "identity_erase_miss_total", Help: "Sign-outs for tokens with no cache entry."},
	{ID: goIdentity.MetricEraseFailure, Name: "identity_erase_failure_total", Help: "Sign-outs with at least one failed step."},
	{ID: goIdentity.MetricEraseDurableOrphaned, Name: "identity_erase_durable_orphaned_total", Help: "Sign-outs that left a durable association behind."},
	{ID: goIdentity.MetricResolveHit, Name: "identity_resolve_hit_total", Help: "Token lookups that found a live session."},
	{ID: goIdentity.MetricResolveMiss, Name: "identity_resolve_miss_total", Help: "Token lookups that found nothing."},
	{ID: goIdentity.MetricSignInFailure, Name: "identity_signin_failure_total", Help: "Rejected sign-in attempts."},
	{ID: goIdentity.MetricSignUpSuccess, Name: "identity_signup_success_total", Help: "Users created by sign-up."},
	{ID: goIdentity.MetricSignInThrottled, Name: "identity_signin_throttled_total", Help: "Sign-in and sign-up attempts refused by the throttle."},
}

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: goIdentity.MetricMintLatency, Name: "identity_mint_latency_seconds", Help: "Mint latency, generation through the last cache write."},
}

// AuditDroppedName is the counter of audit events lost to backpressure.
const AuditDroppedName = "identity_audit_dropped_total"

// AuditDroppedHelp describes AuditDroppedName.
const AuditDroppedHelp = "Dropped audit events due to dispatcher backpressure."

// UpperBounds returns the finite bucket bounds in seconds. The last bucket
// of every histogram is +Inf and has no entry here.
func UpperBounds() []float64 {
	out := make([]float64, len(metrics.BucketUpperBounds))
	for i, d := range metrics.BucketUpperBounds {
		out[i] = d.Seconds()
	}
	return out
}

// BoundLabel renders bucket i as a Prometheus "le" label value.
func BoundLabel(i int) string {
	if i >= len(metrics.BucketUpperBounds) {
		return "+Inf"
	}
	return strconv.FormatFloat(metrics.BucketUpperBounds[i].Seconds(), 'f', -1, 64)
}

// BoundSuffix renders bucket i for use inside a metric name.
func BoundSuffix(i int) string {
	if i >= len(metrics.BucketUpperBounds) {
		return "inf"
	}
	return strings.ReplaceAll(BoundLabel(i), ".", "_")
}

// CumulativeBuckets pads raw to metrics.BucketCount and accumulates it.
func CumulativeBuckets(raw []uint64) [metrics.BucketCount]uint64 {
	var out [metrics.BucketCount]uint64
	var running uint64
	for i := 0; i < len(out); i++ {
		if i < len(raw) {
			running += raw[i]
		}
		out[i] = running
	}
	return out
}
