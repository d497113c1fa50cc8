package main

import (
	"errors"
	"math/rand"
	"sync/atomic"
	"testing"
	"time"
)

func TestPercentile(t *testing.T) {
	samples := []time.Duration{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	cases := map[int]time.Duration{0: 1, 50: 5, 99: 9, 100: 10}
	for p, want := range cases {
		if got := percentile(samples, p); got != want {
			t.Fatalf("percentile(%d) = %v, want %v", p, got, want)
		}
	}
	if percentile(nil, 50) != 0 {
		t.Fatal("expected zero for empty samples")
	}
}

func TestRunPhaseCountsEveryOperation(t *testing.T) {
	var calls int64
	stats := runPhase(100, 8, func(_ *rand.Rand, i int) error {
		atomic.AddInt64(&calls, 1)
		if i%10 == 0 {
			return errors.New("fail")
		}
		return nil
	})

	if calls != 100 || stats.ops != 100 {
		t.Fatalf("expected 100 operations, got calls=%d ops=%d", calls, stats.ops)
	}
	if stats.failures != 10 {
		t.Fatalf("expected 10 failures, got %d", stats.failures)
	}
	if stats.p50 > stats.p99 {
		t.Fatalf("percentiles out of order: p50=%v p99=%v", stats.p50, stats.p99)
	}
}

func TestRunPhaseEmpty(t *testing.T) {
	if stats := runPhase(0, 4, func(*rand.Rand, int) error { return nil }); stats.ops != 0 {
		t.Fatalf("expected no ops, got %d", stats.ops)
	}
}
