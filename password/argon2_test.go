package password

import (
	"errors"
	"strings"
	"testing"
)

func testParams() Params {
	return Params{
		Memory:      8 * 1024,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	}
}

func newTestHasher(t *testing.T) *Hasher {
	t.Helper()
	h, err := NewHasher(testParams())
	if err != nil {
		t.Fatalf("NewHasher error: %v", err)
	}
	return h
}

func TestHashAndVerify(t *testing.T) {
	h := newTestHasher(t)

	encoded, err := h.Hash("correct horse")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if !strings.HasPrefix(encoded, "$argon2id$v=19$m=8192,t=1,p=1$") {
		t.Fatalf("unexpected PHC prefix: %s", encoded)
	}
	if strings.Contains(encoded, "=$") || strings.HasSuffix(encoded, "=") {
		t.Fatalf("expected unpadded base64 fields: %s", encoded)
	}

	ok, err := h.Verify("correct horse", encoded)
	if err != nil || !ok {
		t.Fatalf("expected match, got ok=%v err=%v", ok, err)
	}

	ok, err = h.Verify("wrong horse!", encoded)
	if err != nil || ok {
		t.Fatalf("expected mismatch, got ok=%v err=%v", ok, err)
	}
}

func TestHashSaltsEveryCall(t *testing.T) {
	h := newTestHasher(t)
	a, _ := h.Hash("same-password")
	b, _ := h.Hash("same-password")
	if a == b {
		t.Fatal("two hashes of the same password must differ")
	}
}

func TestHashRejectsShortPassword(t *testing.T) {
	h := newTestHasher(t)
	if _, err := h.Hash("short"); !errors.Is(err, ErrPasswordTooShort) {
		t.Fatalf("expected ErrPasswordTooShort, got %v", err)
	}
}

func TestNewHasherRejectsWeakParams(t *testing.T) {
	mutations := map[string]func(*Params){
		"memory":      func(p *Params) { p.Memory = 1024 },
		"time":        func(p *Params) { p.Time = 0 },
		"parallelism": func(p *Params) { p.Parallelism = 0 },
		"salt":        func(p *Params) { p.SaltLength = 8 },
		"key":         func(p *Params) { p.KeyLength = 8 },
	}
	for name, mutate := range mutations {
		p := testParams()
		mutate(&p)
		if _, err := NewHasher(p); !errors.Is(err, ErrInvalidParams) {
			t.Fatalf("%s: expected ErrInvalidParams, got %v", name, err)
		}
	}
}

func TestVerifyMalformedHash(t *testing.T) {
	h := newTestHasher(t)
	valid, _ := h.Hash("correct horse")
	parts := strings.Split(valid, "$")

	inputs := []string{
		"",
		"plaintext",
		"$bcrypt$v=19$m=8192,t=1,p=1$" + parts[4] + "$" + parts[5],
		"$argon2id$v=18$m=8192,t=1,p=1$" + parts[4] + "$" + parts[5],
		"$argon2id$v=19$m=1,t=1,p=1$" + parts[4] + "$" + parts[5],
		"$argon2id$v=19$m=8192,t=1$" + parts[4] + "$" + parts[5],
		"$argon2id$v=19$m=8192,t=1,p=1$!!!$" + parts[5],
		"$argon2id$v=19$m=8192,t=1,p=1$" + parts[4] + "$",
	}
	for i, in := range inputs {
		if _, err := h.Verify("correct horse", in); !errors.Is(err, ErrMalformedHash) {
			t.Fatalf("input %d: expected ErrMalformedHash, got %v", i, err)
		}
	}
}

func TestNeedsRehash(t *testing.T) {
	weak := newTestHasher(t)
	encoded, _ := weak.Hash("correct horse")

	if again, err := weak.NeedsRehash(encoded); err != nil || again {
		t.Fatalf("same params must not need rehash: %v %v", again, err)
	}

	p := testParams()
	p.Time = 2
	strong, err := NewHasher(p)
	if err != nil {
		t.Fatalf("NewHasher error: %v", err)
	}
	if again, err := strong.NeedsRehash(encoded); err != nil || !again {
		t.Fatalf("stronger params must need rehash: %v %v", again, err)
	}
}
