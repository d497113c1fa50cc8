package flows

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/go-hclog"
)

// SignInUserRecord is a flow-local user model used by sign-in and sign-up.
type SignInUserRecord struct {
	UserID       string
	Identifier   string
	DisplayName  string
	PasswordHash string
}

// SignInMetrics carries metric IDs needed by sign-in and sign-up.
type SignInMetrics struct {
	SignInFailure int
	SignUpSuccess int
	Throttled     int
}

// SignInEvents carries audit event names used by sign-in and sign-up.
type SignInEvents struct {
	SignInFailure string
	SignUp        string
	Throttled     string
}

// SignInErrors carries host-level sentinel errors used by sign-in and sign-up.
type SignInErrors struct {
	EngineNotReady     error
	InvalidCredentials error
	InvalidSignUp      error
	UserNotFound       error
	AccountExists      error
	RateLimited        error
}

// SignInDeps captures sign-in and sign-up dependencies.
type SignInDeps struct {
	SignUpEndType string

	GetUserByIdentifier func(context.Context, string) (SignInUserRecord, error)
	CreateUser          func(ctx context.Context, identifier, passwordHash string) (SignInUserRecord, error)
	VerifyPassword      func(plaintext, encoded string) (bool, error)
	HashPassword        func(string) (string, error)
	Mint                func(context.Context, MintRequest) (string, error)

	// Throttle hooks. Nil hooks never throttle. CheckSignIn and EnforceSignUp
	// return Errors.RateLimited while the caller is blocked.
	ClientIP            func(context.Context) string
	CheckSignIn         func(ctx context.Context, identifier, ip string) error
	RecordSignInFailure func(ctx context.Context, identifier, ip string) error
	ResetSignIn         func(ctx context.Context, identifier, ip string) error
	EnforceSignUp       func(ctx context.Context, ip string) error

	Logger    hclog.Logger
	MetricInc func(int)
	EmitAudit func(ctx context.Context, event string, success bool, userID, endType string, err error, metadata func() map[string]string)

	Metrics SignInMetrics
	Events  SignInEvents
	Errors  SignInErrors
}

func normalizeSignInDeps(deps *SignInDeps) {
	if deps.Logger == nil {
		deps.Logger = hclog.NewNullLogger()
	}
	if deps.MetricInc == nil {
		deps.MetricInc = func(int) {}
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = func(context.Context, string, bool, string, string, error, func() map[string]string) {}
	}
	if deps.ClientIP == nil {
		deps.ClientIP = func(context.Context) string { return "" }
	}
	if deps.CheckSignIn == nil {
		deps.CheckSignIn = func(context.Context, string, string) error { return nil }
	}
	if deps.RecordSignInFailure == nil {
		deps.RecordSignInFailure = func(context.Context, string, string) error { return nil }
	}
	if deps.ResetSignIn == nil {
		deps.ResetSignIn = func(context.Context, string, string) error { return nil }
	}
	if deps.EnforceSignUp == nil {
		deps.EnforceSignUp = func(context.Context, string) error { return nil }
	}
}

func throttled(ctx context.Context, err error, op, identifier, endType string, deps SignInDeps) error {
	if deps.Errors.RateLimited != nil && errors.Is(err, deps.Errors.RateLimited) {
		deps.MetricInc(deps.Metrics.Throttled)
		deps.EmitAudit(ctx, deps.Events.Throttled, false, "", endType, err, func() map[string]string {
			return map[string]string{"operation": op, "identifier": identifier}
		})
	}
	return err
}

func displayName(user SignInUserRecord) string {
	if user.DisplayName != "" {
		return user.DisplayName
	}
	return user.Identifier
}

// RunSignIn verifies credentials and mints a session for endType. Unknown
// users and wrong passwords are indistinguishable to the caller. Mint errors
// are returned unchanged.
func RunSignIn(ctx context.Context, identifier, password, endType string, deps SignInDeps) (string, error) {
	normalizeSignInDeps(&deps)
	if deps.GetUserByIdentifier == nil || deps.VerifyPassword == nil || deps.Mint == nil {
		return "", deps.Errors.EngineNotReady
	}

	ip := deps.ClientIP(ctx)

	reject := func(userID, reason string) (string, error) {
		// Crossing the limit here only affects the next attempt.
		if err := deps.RecordSignInFailure(ctx, identifier, ip); err != nil {
			deps.Logger.Warn("sign-in failure not recorded", "identifier", identifier, "error", err)
		}
		deps.MetricInc(deps.Metrics.SignInFailure)
		deps.EmitAudit(ctx, deps.Events.SignInFailure, false, userID, endType, deps.Errors.InvalidCredentials, func() map[string]string {
			return map[string]string{"reason": reason, "identifier": identifier}
		})
		return "", deps.Errors.InvalidCredentials
	}

	if identifier == "" || password == "" || endType == "" {
		return reject("", "invalid_input")
	}

	if err := deps.CheckSignIn(ctx, identifier, ip); err != nil {
		return "", throttled(ctx, err, "signin", identifier, endType, deps)
	}

	user, err := deps.GetUserByIdentifier(ctx, identifier)
	if err != nil {
		if deps.Errors.UserNotFound != nil && errors.Is(err, deps.Errors.UserNotFound) {
			return reject("", "unknown_user")
		}
		return "", fmt.Errorf("%w: %v", deps.Errors.InvalidCredentials, err)
	}

	ok, err := deps.VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return reject(user.UserID, "password_mismatch")
	}

	token, err := deps.Mint(ctx, MintRequest{
		UserID:   user.UserID,
		UserName: displayName(user),
		EndType:  endType,
	})
	if err != nil {
		return "", err
	}
	// The session exists; a stale counter only delays the next failure.
	if err := deps.ResetSignIn(ctx, identifier, ip); err != nil {
		deps.Logger.Warn("sign-in throttle not cleared", "identifier", identifier, "error", err)
	}
	return token, nil
}

// RunSignUp creates the user and mints a session under the sign-up endpoint
// class. A session registration failure leaves the created user in place.
func RunSignUp(ctx context.Context, identifier, password string, deps SignInDeps) (string, error) {
	normalizeSignInDeps(&deps)
	if deps.CreateUser == nil || deps.HashPassword == nil || deps.Mint == nil {
		return "", deps.Errors.EngineNotReady
	}
	if identifier == "" || password == "" {
		return "", deps.Errors.InvalidSignUp
	}

	if err := deps.EnforceSignUp(ctx, deps.ClientIP(ctx)); err != nil {
		return "", throttled(ctx, err, "signup", identifier, deps.SignUpEndType, deps)
	}

	hash, err := deps.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("%w: %v", deps.Errors.InvalidSignUp, err)
	}

	user, err := deps.CreateUser(ctx, identifier, hash)
	if err != nil {
		if deps.Errors.AccountExists != nil && errors.Is(err, deps.Errors.AccountExists) {
			return "", deps.Errors.AccountExists
		}
		return "", err
	}

	deps.MetricInc(deps.Metrics.SignUpSuccess)
	deps.EmitAudit(ctx, deps.Events.SignUp, true, user.UserID, deps.SignUpEndType, nil, nil)

	return deps.Mint(ctx, MintRequest{
		UserID:   user.UserID,
		UserName: displayName(user),
		EndType:  deps.SignUpEndType,
	})
}
