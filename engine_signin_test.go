package goIdentity

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/MrEthical07/goIdentity/password"
)

type mockUserProvider struct {
	mu           sync.Mutex
	users        map[string]UserRecord
	byIdentifier map[string]string
	getErr       error
	createErr    error
	createCalls  int
}

func newMockUserProvider() *mockUserProvider {
	return &mockUserProvider{
		users:        map[string]UserRecord{},
		byIdentifier: map[string]string{},
	}
}

func (m *mockUserProvider) GetUserByIdentifier(_ context.Context, identifier string) (UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.getErr != nil {
		return UserRecord{}, m.getErr
	}
	id, ok := m.byIdentifier[identifier]
	if !ok {
		return UserRecord{}, ErrUserNotFound
	}
	return m.users[id], nil
}

func (m *mockUserProvider) CreateUser(_ context.Context, identifier, passwordHash string) (UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.createCalls++
	if m.createErr != nil {
		return UserRecord{}, m.createErr
	}
	if _, ok := m.byIdentifier[identifier]; ok {
		return UserRecord{}, ErrAccountExists
	}
	user := UserRecord{
		UserID:       fmt.Sprintf("u%d", len(m.users)+1),
		Identifier:   identifier,
		PasswordHash: passwordHash,
	}
	m.users[user.UserID] = user
	m.byIdentifier[identifier] = user.UserID
	return user, nil
}

func newSignInEngine(t *testing.T, opts ...func(*Builder)) (testEngine, *mockUserProvider) {
	t.Helper()

	cfg := testConfig()
	hasher, err := password.NewHasher(password.Params{
		Memory:      cfg.Password.Memory,
		Time:        cfg.Password.Time,
		Parallelism: cfg.Password.Parallelism,
		SaltLength:  cfg.Password.SaltLength,
		KeyLength:   cfg.Password.KeyLength,
	})
	if err != nil {
		t.Fatalf("NewHasher failed: %v", err)
	}
	hash, err := hasher.Hash("correct-password-123")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	up := newMockUserProvider()
	up.users["u1"] = UserRecord{UserID: "u1", Identifier: "alice", DisplayName: "Alice", PasswordHash: hash}
	up.byIdentifier["alice"] = "u1"

	opts = append([]func(*Builder){func(b *Builder) { b.WithUserProvider(up) }}, opts...)
	return newTestEngine(t, nil, opts...), up
}

func TestSignInMintsSession(t *testing.T) {
	te, _ := newSignInEngine(t)
	ctx := context.Background()

	token, err := te.SignIn(ctx, "alice", "correct-password-123", EndTypeWeb)
	if err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	rec, err := te.Resolve(ctx, token)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if rec.UserID != "u1" || rec.UserName != "Alice" || rec.EndType != EndTypeWeb {
		t.Fatalf("unexpected record %+v", rec)
	}
}

func TestSignInRejectsBadCredentials(t *testing.T) {
	te, _ := newSignInEngine(t, func(b *Builder) { b.WithMetricsEnabled(true) })
	ctx := context.Background()

	attempts := []struct{ identifier, password string }{
		{"alice", "wrong-password-123"},
		{"mallory", "correct-password-123"},
		{"", "correct-password-123"},
		{"alice", ""},
	}
	for _, a := range attempts {
		token, err := te.SignIn(ctx, a.identifier, a.password, EndTypeWeb)
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("%q/%q: expected ErrInvalidCredentials, got %v", a.identifier, a.password, err)
		}
		if token != "" {
			t.Fatal("no token may be returned on rejected sign-in")
		}
	}
	if got := te.MetricsSnapshot().Counters[MetricSignInFailure]; got != uint64(len(attempts)) {
		t.Fatalf("expected %d sign-in failures, got %d", len(attempts), got)
	}
	if len(te.mr.Keys()) != 0 {
		t.Fatalf("rejected sign-ins must not touch the cache, got %v", te.mr.Keys())
	}
}

func TestSignInRegistrationFailureIsAuthenticationFailure(t *testing.T) {
	te, _ := newSignInEngine(t)
	te.mr.Close()

	token, err := te.SignIn(context.Background(), "alice", "correct-password-123", EndTypeWeb)
	if !errors.Is(err, ErrRegistrationFailed) {
		t.Fatalf("expected ErrRegistrationFailed, got %v", err)
	}
	if token != "" {
		t.Fatal("no token may be returned when registration fails")
	}
}

func TestSignUpCreatesUserAndSession(t *testing.T) {
	te, up := newSignInEngine(t)
	ctx := context.Background()

	token, err := te.SignUp(ctx, "bob", "another-password-1")
	if err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}
	rec, err := te.Resolve(ctx, token)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if rec.EndType != EndTypeSignUp || rec.UserName != "bob" {
		t.Fatalf("unexpected record %+v", rec)
	}

	if _, err := te.SignIn(ctx, "bob", "another-password-1", EndTypeMobile); err != nil {
		t.Fatalf("SignIn after SignUp failed: %v", err)
	}

	if _, err := te.SignUp(ctx, "bob", "another-password-1"); !errors.Is(err, ErrAccountExists) {
		t.Fatalf("expected ErrAccountExists, got %v", err)
	}
	if up.createCalls != 2 {
		t.Fatalf("expected 2 CreateUser calls, got %d", up.createCalls)
	}
}

func TestSignUpRejectsInvalidInput(t *testing.T) {
	te, up := newSignInEngine(t)
	ctx := context.Background()

	for _, in := range [][2]string{{"", "another-password-1"}, {"carol", ""}, {"carol", "short"}} {
		if _, err := te.SignUp(ctx, in[0], in[1]); !errors.Is(err, ErrInvalidSignUp) {
			t.Fatalf("%q: expected ErrInvalidSignUp, got %v", in, err)
		}
	}
	if up.createCalls != 0 {
		t.Fatalf("CreateUser must not be called for invalid input, got %d calls", up.createCalls)
	}
}

func TestSignInWithoutUserProvider(t *testing.T) {
	te := newTestEngine(t, nil)

	if _, err := te.SignIn(context.Background(), "alice", "correct-password-123", EndTypeWeb); !errors.Is(err, ErrUserProviderMissing) {
		t.Fatalf("expected ErrUserProviderMissing, got %v", err)
	}
	if _, err := te.SignUp(context.Background(), "alice", "correct-password-123"); !errors.Is(err, ErrUserProviderMissing) {
		t.Fatalf("expected ErrUserProviderMissing, got %v", err)
	}
}

func withRateLimit(mutate func(*RateLimitConfig)) func(*Builder) {
	return func(b *Builder) {
		b.config.RateLimit.Enabled = true
		if mutate != nil {
			mutate(&b.config.RateLimit)
		}
	}
}

func TestSignInThrottleBlocksAfterFailures(t *testing.T) {
	te, _ := newSignInEngine(t,
		func(b *Builder) { b.WithMetricsEnabled(true) },
		withRateLimit(func(c *RateLimitConfig) { c.MaxSignInAttempts = 2 }),
	)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := te.SignIn(ctx, "alice", "wrong-password-123", EndTypeWeb); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("attempt %d: expected ErrInvalidCredentials, got %v", i+1, err)
		}
	}
	if _, err := te.SignIn(ctx, "alice", "correct-password-123", EndTypeWeb); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if got := te.MetricsSnapshot().Counters[MetricSignInThrottled]; got != 1 {
		t.Fatalf("expected 1 throttled sign-in, got %d", got)
	}

	te.mr.FastForward(te.config.RateLimit.SignInCooldown + time.Second)
	if _, err := te.SignIn(ctx, "alice", "correct-password-123", EndTypeWeb); err != nil {
		t.Fatalf("SignIn after cooldown failed: %v", err)
	}
}

func TestSignInSuccessClearsThrottle(t *testing.T) {
	te, _ := newSignInEngine(t, withRateLimit(nil))
	ctx := context.Background()

	_, _ = te.SignIn(ctx, "alice", "wrong-password-123", EndTypeWeb)
	key := te.config.RateLimit.KeyPrefix + ":si:id:alice"
	if !te.mr.Exists(key) {
		t.Fatalf("expected failure counter %q", key)
	}
	if _, err := te.SignIn(ctx, "alice", "correct-password-123", EndTypeWeb); err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	if te.mr.Exists(key) {
		t.Fatal("expected failure counter cleared after success")
	}
}

func TestSignInThrottleBackendDownRefuses(t *testing.T) {
	te, _ := newSignInEngine(t, withRateLimit(nil))
	te.mr.Close()

	if _, err := te.SignIn(context.Background(), "alice", "correct-password-123", EndTypeWeb); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestSignUpThrottlePerClientIP(t *testing.T) {
	te, up := newSignInEngine(t, withRateLimit(func(c *RateLimitConfig) { c.MaxSignUpAttempts = 1 }))
	ctx := WithClientIP(context.Background(), "198.51.100.4")

	if _, err := te.SignUp(ctx, "bob", "another-password-1"); err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}
	if _, err := te.SignUp(ctx, "carol", "another-password-1"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if _, err := te.SignUp(WithClientIP(context.Background(), "198.51.100.5"), "carol", "another-password-1"); err != nil {
		t.Fatalf("SignUp from another IP failed: %v", err)
	}
	if up.createCalls != 2 {
		t.Fatalf("expected 2 CreateUser calls, got %d", up.createCalls)
	}
}
