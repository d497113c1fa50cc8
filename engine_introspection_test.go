package goIdentity

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"

	"github.com/MrEthical07/goIdentity/association"
)

type pingFailingStore struct {
	*association.MemoryStore
	err error
}

func (s *pingFailingStore) Ping(context.Context) error {
	return s.err
}

func TestHealth(t *testing.T) {
	te := newTestEngine(t, nil)

	status := te.Health(context.Background())
	if !status.Healthy() {
		t.Fatalf("expected healthy, got %+v", status)
	}

	te.mr.Close()
	status = te.Health(context.Background())
	if status.CacheOK || status.CacheError == "" {
		t.Fatalf("expected cache failure, got %+v", status)
	}
	if !status.AssociationOK {
		t.Fatalf("association store should still be healthy, got %+v", status)
	}
}

func TestHealthAssociationDownIsLogged(t *testing.T) {
	var buf syncBuffer
	logger := hclog.New(&hclog.LoggerOptions{Output: &buf, Level: hclog.Warn})

	_, rdb := newTestRedis(t)
	store := &pingFailingStore{MemoryStore: association.NewMemoryStore(), err: errors.New("connection refused")}
	engine, err := New().
		WithConfig(testConfig()).
		WithRedis(rdb).
		WithAssociationStore(store).
		WithLogger(logger).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer engine.Close()

	status := engine.Health(context.Background())
	if status.Healthy() || status.AssociationOK || !status.CacheOK {
		t.Fatalf("expected association failure only, got %+v", status)
	}
	if status.AssociationErr != "connection refused" {
		t.Fatalf("unexpected association error %q", status.AssociationErr)
	}
	if !strings.Contains(buf.String(), "backend health check failed") {
		t.Fatalf("expected warning in log, got %q", buf.String())
	}
}

func TestHealthNilEngine(t *testing.T) {
	var e *Engine
	if e.Health(context.Background()).Healthy() {
		t.Fatal("nil engine must not report healthy")
	}
}
