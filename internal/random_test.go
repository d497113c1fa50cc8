package internal

import (
	"encoding/base64"
	"strings"
	"testing"
)

func TestNewTokenSymbolShape(t *testing.T) {
	sym, err := NewTokenSymbol("u-1", "alice", "web")
	if err != nil {
		t.Fatalf("NewTokenSymbol error: %v", err)
	}
	raw, err := base64.RawURLEncoding.DecodeString(sym)
	if err != nil {
		t.Fatalf("symbol is not base64url: %v", err)
	}
	if len(raw) != 32 {
		t.Fatalf("expected 32-byte digest, got %d", len(raw))
	}
	if strings.ContainsAny(sym, ":+/=") {
		t.Fatalf("symbol must be key safe: %q", sym)
	}
}

func TestNewTokenSymbolUnique(t *testing.T) {
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		sym, err := NewTokenSymbol("u-1", "alice", "web")
		if err != nil {
			t.Fatalf("NewTokenSymbol error: %v", err)
		}
		if _, dup := seen[sym]; dup {
			t.Fatalf("duplicate symbol after %d calls", i)
		}
		seen[sym] = struct{}{}
	}
}

func TestNewTokenSymbolRejectsEmptyIdentity(t *testing.T) {
	if _, err := NewTokenSymbol("", "alice", "web"); err == nil {
		t.Fatal("expected error for empty user id")
	}
	if _, err := NewTokenSymbol("u-1", "alice", ""); err == nil {
		t.Fatal("expected error for empty end type")
	}
}
