package flows

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/MrEthical07/goIdentity/association"
	"github.com/MrEthical07/goIdentity/keys"
	"github.com/MrEthical07/goIdentity/session"
)

// MintRequest is the flow-local mint input.
type MintRequest struct {
	UserID   string
	UserName string
	EndType  string
}

// MintMetrics carries metric IDs needed by the mint flow.
type MintMetrics struct {
	MintSuccess  int
	MintFailure  int
	MintCanceled int
	MintLatency  int
}

// MintEvents carries audit event names used by the mint flow.
type MintEvents struct {
	Minted     string
	MintFailed string
}

// MintErrors carries host-level sentinel errors used by the mint flow.
type MintErrors struct {
	EngineNotReady     error
	InvalidCandidate   error
	RegistrationFailed error
	OperationCanceled  error

	TokenGeneration   error
	LoginAssociation  error
	TokenAssociation  error
	SessionCacheWrite error
	UserMapCacheWrite error
}

// MintDeps captures mint dependencies.
type MintDeps struct {
	Cache        session.Cache
	Associations association.Store

	CacheTokenPrefix        string
	CacheUserMapTokenPrefix string
	Provider                string
	TokenNameSuffix         string
	TTL                     time.Duration
	EnableMultiEnd          bool

	GenerateToken func(MintRequest) (string, error)
	Now           func() time.Time
	Logger        hclog.Logger

	MetricInc     func(int)
	MetricObserve func(int, time.Duration)
	EmitAudit     func(ctx context.Context, event string, success bool, userID, endType string, err error, metadata func() map[string]string)

	Metrics MintMetrics
	Events  MintEvents
	Errors  MintErrors
}

func normalizeMintDeps(deps *MintDeps) {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = hclog.NewNullLogger()
	}
	if deps.MetricInc == nil {
		deps.MetricInc = func(int) {}
	}
	if deps.MetricObserve == nil {
		deps.MetricObserve = func(int, time.Duration) {}
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = func(context.Context, string, bool, string, string, error, func() map[string]string) {}
	}
}

// validCandidate reports whether req can be stored without a later step
// rejecting it. EndType must not contain ':' so index keys stay unambiguous.
func validCandidate(req MintRequest) bool {
	switch {
	case req.UserID == "" || req.EndType == "":
		return false
	case len(req.UserID) > session.MaxUserIDLen,
		len(req.UserName) > session.MaxUserNameLen,
		len(req.EndType) > session.MaxEndTypeLen:
		return false
	}
	return !strings.Contains(req.EndType, ":")
}

// RunMint generates a token symbol for req and registers it: login row, token
// row, primary cache entry and, when exclusivity is enforced, the
// (user, endpoint class) index entry. Steps run in that order and are not
// rolled back on failure. A canceled context stops the sequence between steps.
func RunMint(ctx context.Context, req MintRequest, deps MintDeps) (string, error) {
	normalizeMintDeps(&deps)

	if deps.Cache == nil || deps.Associations == nil || deps.GenerateToken == nil {
		return "", deps.Errors.EngineNotReady
	}
	if !validCandidate(req) {
		deps.MetricInc(deps.Metrics.MintFailure)
		return "", deps.Errors.InvalidCandidate
	}

	start := deps.Now()
	defer func() {
		deps.MetricObserve(deps.Metrics.MintLatency, deps.Now().Sub(start))
	}()

	fail := func(phase, err error) (string, error) {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return canceled(ctx, req, ctxErr, deps)
		}
		wrapped := fmt.Errorf("%w: %w: %v", deps.Errors.RegistrationFailed, phase, err)
		deps.MetricInc(deps.Metrics.MintFailure)
		deps.Logger.Error("session registration failed", "user_id", req.UserID, "end_type", req.EndType, "phase", phase, "error", err)
		deps.EmitAudit(ctx, deps.Events.MintFailed, false, req.UserID, req.EndType, wrapped, func() map[string]string {
			return map[string]string{"phase": phase.Error()}
		})
		return "", wrapped
	}

	if err := ctx.Err(); err != nil {
		return canceled(ctx, req, err, deps)
	}
	symbol, err := deps.GenerateToken(req)
	if err != nil {
		return fail(deps.Errors.TokenGeneration, err)
	}
	if symbol == "" || len(symbol) > session.MaxTokenSymbolLen {
		return fail(deps.Errors.TokenGeneration, errors.New("token symbol length out of range"))
	}

	if err := ctx.Err(); err != nil {
		return canceled(ctx, req, err, deps)
	}
	loginKey := keys.DeriveLoginProviderKey(req.UserID, req.EndType)
	if err := deps.Associations.UpsertLogin(ctx, req.UserID, deps.Provider, loginKey, req.UserName); err != nil {
		return fail(deps.Errors.LoginAssociation, err)
	}

	if err := ctx.Err(); err != nil {
		return canceled(ctx, req, err, deps)
	}
	tokenName := keys.DeriveProviderTokenName(req.EndType, deps.TokenNameSuffix)
	if err := deps.Associations.UpsertToken(ctx, req.UserID, deps.Provider, tokenName, symbol); err != nil {
		return fail(deps.Errors.TokenAssociation, err)
	}

	if err := ctx.Err(); err != nil {
		return canceled(ctx, req, err, deps)
	}
	record := &session.Record{
		UserID:      req.UserID,
		UserName:    req.UserName,
		EndType:     req.EndType,
		TokenSymbol: symbol,
		IssuedAt:    deps.Now().Unix(),
	}
	if err := session.SetRecord(ctx, deps.Cache, keys.DeriveCacheTokenKey(deps.CacheTokenPrefix, symbol), record, deps.TTL); err != nil {
		return fail(deps.Errors.SessionCacheWrite, err)
	}

	if !deps.EnableMultiEnd {
		if err := ctx.Err(); err != nil {
			return canceled(ctx, req, err, deps)
		}
		mapKey := keys.DeriveUserMapTokenKey(deps.CacheUserMapTokenPrefix, req.EndType, req.UserID)
		if deps.Logger.IsDebug() {
			if prev, err := deps.Cache.Get(ctx, mapKey); err == nil && len(prev) > 0 {
				deps.Logger.Debug("superseding session index entry", "user_id", req.UserID, "end_type", req.EndType)
			}
		}
		if err := deps.Cache.Set(ctx, mapKey, []byte(symbol), deps.TTL); err != nil {
			return fail(deps.Errors.UserMapCacheWrite, err)
		}
	}

	deps.MetricInc(deps.Metrics.MintSuccess)
	deps.EmitAudit(ctx, deps.Events.Minted, true, req.UserID, req.EndType, nil, nil)
	return symbol, nil
}

func canceled(ctx context.Context, req MintRequest, cause error, deps MintDeps) (string, error) {
	err := fmt.Errorf("%w: %v", deps.Errors.OperationCanceled, cause)
	deps.MetricInc(deps.Metrics.MintCanceled)
	deps.Logger.Warn("session registration canceled", "user_id", req.UserID, "end_type", req.EndType)
	deps.EmitAudit(ctx, deps.Events.MintFailed, false, req.UserID, req.EndType, err, func() map[string]string {
		return map[string]string{"phase": "canceled"}
	})
	return "", err
}
