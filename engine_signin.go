package goIdentity

import (
	"context"
	"errors"
	"fmt"

	internalflows "github.com/MrEthical07/goIdentity/internal/flows"
	"github.com/MrEthical07/goIdentity/internal/rate"
)

// SignIn verifies identifier and password against the UserProvider and mints
// a session for endType. Unknown users and wrong passwords both return
// ErrInvalidCredentials. With RateLimit enabled, an identifier with too many
// recent failures gets ErrRateLimited before its password is checked. A
// session registration failure after a correct password is returned as
// ErrRegistrationFailed and must be treated as a failed sign-in.
func (e *Engine) SignIn(ctx context.Context, identifier, password, endType string) (string, error) {
	if e == nil || !e.flows.Initialized() {
		return "", ErrEngineNotReady
	}
	if e.userProvider == nil {
		return "", ErrUserProviderMissing
	}
	return e.flows.SignIn(ctx, identifier, password, endType)
}

// SignUp hashes password, creates the user through the UserProvider and
// mints a session with EndType "signup". With RateLimit enabled, attempts are
// capped per client IP (see WithClientIP). The created user is kept when the
// mint fails.
func (e *Engine) SignUp(ctx context.Context, identifier, password string) (string, error) {
	if e == nil || !e.flows.Initialized() {
		return "", ErrEngineNotReady
	}
	if e.userProvider == nil {
		return "", ErrUserProviderMissing
	}
	return e.flows.SignUp(ctx, identifier, password)
}

func (e *Engine) signInFlowDeps() internalflows.SignInDeps {
	deps := internalflows.SignInDeps{
		SignUpEndType: EndTypeSignUp,
		Mint: func(ctx context.Context, req internalflows.MintRequest) (string, error) {
			return internalflows.RunMint(ctx, req, e.mintFlowDeps())
		},
		ClientIP:  clientIPFromContext,
		Logger:    e.logger,
		MetricInc: e.flowMetricInc,
		EmitAudit: e.emitAudit,
		Metrics: internalflows.SignInMetrics{
			SignInFailure: int(MetricSignInFailure),
			SignUpSuccess: int(MetricSignUpSuccess),
			Throttled:     int(MetricSignInThrottled),
		},
		Events: internalflows.SignInEvents{
			SignInFailure: auditEventSignInFailure,
			SignUp:        auditEventSignUp,
			Throttled:     auditEventThrottled,
		},
		Errors: internalflows.SignInErrors{
			EngineNotReady:     ErrEngineNotReady,
			InvalidCredentials: ErrInvalidCredentials,
			InvalidSignUp:      ErrInvalidSignUp,
			UserNotFound:       ErrUserNotFound,
			AccountExists:      ErrAccountExists,
			RateLimited:        ErrRateLimited,
		},
	}

	e.applyThrottleDeps(&deps)
	e.applyUserDeps(&deps)
	return deps
}

func (e *Engine) applyThrottleDeps(deps *internalflows.SignInDeps) {
	if e.signInLimiter != nil {
		deps.CheckSignIn = func(ctx context.Context, identifier, ip string) error {
			return limiterError(e.signInLimiter.Check(ctx, identifier, ip))
		}
		deps.RecordSignInFailure = e.signInLimiter.RecordFailure
		deps.ResetSignIn = e.signInLimiter.Reset
	}
	if e.signUpLimiter != nil {
		deps.EnforceSignUp = func(ctx context.Context, ip string) error {
			return limiterError(e.signUpLimiter.Enforce(ctx, ip))
		}
	}
}

func (e *Engine) applyUserDeps(deps *internalflows.SignInDeps) {
	if e.hasher != nil {
		deps.VerifyPassword = e.hasher.Verify
		deps.HashPassword = e.hasher.Hash
	}
	if e.userProvider == nil {
		return
	}
	deps.GetUserByIdentifier = func(ctx context.Context, identifier string) (internalflows.SignInUserRecord, error) {
		user, err := e.userProvider.GetUserByIdentifier(ctx, identifier)
		if err != nil {
			return internalflows.SignInUserRecord{}, err
		}
		return toFlowUserRecord(user), nil
	}
	deps.CreateUser = func(ctx context.Context, identifier, passwordHash string) (internalflows.SignInUserRecord, error) {
		user, err := e.userProvider.CreateUser(ctx, identifier, passwordHash)
		if err != nil {
			return internalflows.SignInUserRecord{}, err
		}
		return toFlowUserRecord(user), nil
	}
}

// limiterError maps throttle results onto Engine sentinels. A throttle
// backend failure refuses the attempt.
func limiterError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, rate.ErrRateLimited):
		return ErrRateLimited
	default:
		return fmt.Errorf("%w: %v", ErrRateLimited, err)
	}
}

func toFlowUserRecord(user UserRecord) internalflows.SignInUserRecord {
	return internalflows.SignInUserRecord{
		UserID:       user.UserID,
		Identifier:   user.Identifier,
		DisplayName:  user.DisplayName,
		PasswordHash: user.PasswordHash,
	}
}
