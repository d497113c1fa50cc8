package test

import (
	"testing"

	goIdentity "github.com/MrEthical07/goIdentity"
)

func TestDefaultConfigPresetValidates(t *testing.T) {
	cfg := goIdentity.DefaultConfig()

	if cfg.Token.EnableMultiEnd {
		t.Fatal("expected exclusivity enforced by default")
	}
	if cfg.Token.TTL() <= 0 {
		t.Fatal("expected a positive token ttl")
	}
	if cfg.Token.CacheTokenPrefix == cfg.Token.CacheUserMapTokenPrefix {
		t.Fatal("primary and index prefixes must differ")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected preset to validate, got %v", err)
	}
}
