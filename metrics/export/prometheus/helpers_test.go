package prometheus

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	goIdentity "github.com/MrEthical07/goIdentity"
	"github.com/MrEthical07/goIdentity/association"
)

func newMetricsEngine(t *testing.T) *goIdentity.Engine {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	engine, err := goIdentity.New().
		WithRedis(rdb).
		WithAssociationStore(association.NewMemoryStore()).
		WithMetricsEnabled(true).
		WithLatencyHistograms(true).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(func() {
		engine.Close()
		_ = rdb.Close()
		mr.Close()
	})

	if _, err := engine.Mint(context.Background(), goIdentity.MintRequest{UserID: "u1", EndType: "web"}); err != nil {
		t.Fatalf("Mint failed: %v", err)
	}
	return engine
}
