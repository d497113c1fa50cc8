// Command identity-loadtest drives concurrent Mint, Resolve and Erase calls
// through a goIdentity Engine and prints per-phase latency percentiles.
//
// Without -redis-addr (or REDIS_ADDR) it runs against an embedded miniredis.
// Associations are kept in memory.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	goIdentity "github.com/MrEthical07/goIdentity"
	"github.com/MrEthical07/goIdentity/association"
)

func main() {
	var (
		users       = flag.Int("users", 10000, "number of distinct users")
		concurrency = flag.Int("concurrency", 256, "number of concurrent workers")
		ops         = flag.Int("ops", 100000, "operations per phase")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		multiEnd    = flag.Bool("multi-end", false, "allow concurrent tokens per user and endpoint class")
	)
	flag.Parse()

	if *users <= 0 || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "users, concurrency, and ops must be > 0")
		os.Exit(2)
	}

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var (
		cleanup func()
		client  redis.UniversalClient
	)
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		client = redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{mr.Addr()}})
		cleanup = func() {
			_ = client.Close()
			mr.Close()
		}
		fmt.Printf("using miniredis at %s\n", mr.Addr())
	} else {
		client = redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
		cleanup = func() { _ = client.Close() }
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	cfg := goIdentity.DefaultConfig()
	cfg.Token.EnableMultiEnd = *multiEnd

	engine, err := goIdentity.New().
		WithConfig(cfg).
		WithRedis(client).
		WithAssociationStore(association.NewMemoryStore()).
		WithMetricsEnabled(true).
		WithLatencyHistograms(true).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "engine build failed: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	ctx := context.Background()
	pool := newTokenPool(*ops)

	mintStats := runPhase(*ops, *concurrency, func(r *rand.Rand, _ int) error {
		token, err := engine.Mint(ctx, goIdentity.MintRequest{
			UserID:  fmt.Sprintf("user-%d", r.Intn(*users)),
			EndType: goIdentity.EndTypeWeb,
		})
		if err == nil {
			pool.add(token)
		}
		return err
	})

	tokens := pool.snapshot()
	if len(tokens) == 0 {
		fmt.Fprintln(os.Stderr, "every mint failed; nothing to resolve")
		os.Exit(1)
	}
	resolveStats := runPhase(*ops, *concurrency, func(r *rand.Rand, _ int) error {
		_, err := engine.Resolve(ctx, tokens[r.Intn(len(tokens))])
		return err
	})

	eraseStats := runPhase(len(tokens), *concurrency, func(_ *rand.Rand, i int) error {
		return engine.Erase(ctx, tokens[i])
	})

	fmt.Println("---- results ----")
	printStats("mint", mintStats)
	printStats("resolve", resolveStats)
	printStats("erase", eraseStats)

	snap := engine.MetricsSnapshot()
	fmt.Printf("counters: mint_success=%d mint_failure=%d erase_success=%d erase_failure=%d\n",
		snap.Counters[goIdentity.MetricMintSuccess],
		snap.Counters[goIdentity.MetricMintFailure],
		snap.Counters[goIdentity.MetricEraseSuccess],
		snap.Counters[goIdentity.MetricEraseFailure],
	)
}

type tokenPool struct {
	mu     sync.Mutex
	tokens []string
}

func newTokenPool(capacity int) *tokenPool {
	return &tokenPool{tokens: make([]string, 0, capacity)}
}

func (p *tokenPool) add(token string) {
	p.mu.Lock()
	p.tokens = append(p.tokens, token)
	p.mu.Unlock()
}

func (p *tokenPool) snapshot() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.tokens...)
}

// runPhase calls op ops times across concurrency workers. op receives the
// worker's rand source and the operation index.
func runPhase(ops, concurrency int, op func(r *rand.Rand, i int) error) phaseStats {
	if ops <= 0 {
		return phaseStats{}
	}

	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				t0 := time.Now()
				err := op(r, i)
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	return computeStats(time.Since(start), latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	return samples[(len(samples)-1)*p/100]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}
