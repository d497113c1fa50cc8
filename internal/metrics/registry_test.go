package metrics

import (
	"sync"
	"testing"
	"time"
)

func TestRegistryDisabledDiscards(t *testing.T) {
	r := New(2, 1, false, true)
	r.Inc(0)
	r.Observe(0, time.Millisecond)

	if r.Value(0) != 0 {
		t.Fatal("disabled registry must not count")
	}
	if r.LatencyEnabled() {
		t.Fatal("latency requires metrics to be enabled")
	}
	for _, v := range r.Buckets(0) {
		if v != 0 {
			t.Fatal("disabled registry must not observe")
		}
	}
}

func TestRegistryIgnoresOutOfRange(t *testing.T) {
	r := New(1, 1, true, true)
	r.Inc(-1)
	r.Inc(5)
	r.Observe(3, time.Second)

	if r.Value(5) != 0 || r.Buckets(3) != nil {
		t.Fatal("out-of-range IDs must be ignored")
	}
	var nilReg *Registry
	nilReg.Inc(0)
	if nilReg.Enabled() {
		t.Fatal("nil registry is never enabled")
	}
}

func TestRegistryConcurrentInc(t *testing.T) {
	r := New(1, 0, true, false)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				r.Inc(0)
			}
		}()
	}
	wg.Wait()

	if got := r.Value(0); got != 16000 {
		t.Fatalf("expected 16000, got %d", got)
	}
}

func TestBucketIndex(t *testing.T) {
	cases := map[time.Duration]int{
		0:                      0,
		5 * time.Millisecond:   0,
		6 * time.Millisecond:   1,
		25 * time.Millisecond:  2,
		100 * time.Millisecond: 4,
		500 * time.Millisecond: 6,
		2 * time.Second:        7,
	}
	for d, want := range cases {
		if got := BucketIndex(d); got != want {
			t.Fatalf("BucketIndex(%s) = %d, want %d", d, got, want)
		}
	}
}

func TestRegistryObserve(t *testing.T) {
	r := New(0, 1, true, true)
	r.Observe(0, 3*time.Millisecond)
	r.Observe(0, 3*time.Second)

	b := r.Buckets(0)
	if b[0] != 1 || b[BucketCount-1] != 1 {
		t.Fatalf("unexpected buckets %v", b)
	}
}
