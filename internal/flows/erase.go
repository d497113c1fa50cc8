package flows

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"

	"github.com/MrEthical07/goIdentity/association"
	"github.com/MrEthical07/goIdentity/keys"
	"github.com/MrEthical07/goIdentity/session"
)

// EraseMetrics carries metric IDs needed by the erase flow.
type EraseMetrics struct {
	EraseSuccess         int
	EraseMiss            int
	EraseFailure         int
	EraseDurableOrphaned int
}

// EraseEvents carries audit event names used by the erase flow.
type EraseEvents struct {
	Erased       string
	ErasePartial string
}

// EraseErrors carries host-level sentinel errors used by the erase flow.
type EraseErrors struct {
	EngineNotReady     error
	InvalidationFailed error
	OperationCanceled  error
	SessionResolve     error
	AssociationRemove  error
	UserMapRemove      error
	SessionCacheRemove error
}

// EraseDeps captures erase dependencies.
type EraseDeps struct {
	Cache        session.Cache
	Associations association.Store

	CacheTokenPrefix        string
	CacheUserMapTokenPrefix string
	Provider                string
	TokenNameSuffix         string
	EnableMultiEnd          bool

	Logger    hclog.Logger
	MetricInc func(int)
	EmitAudit func(ctx context.Context, event string, success bool, userID, endType string, err error, metadata func() map[string]string)

	Metrics EraseMetrics
	Events  EraseEvents
	Errors  EraseErrors
}

// EraseResult reports what an erase touched. Err aggregates every failed step.
type EraseResult struct {
	Found  bool
	Record *session.Record
	Err    error
}

func normalizeEraseDeps(deps *EraseDeps) {
	if deps.Logger == nil {
		deps.Logger = hclog.NewNullLogger()
	}
	if deps.MetricInc == nil {
		deps.MetricInc = func(int) {}
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = func(context.Context, string, bool, string, string, error, func() map[string]string) {}
	}
}

// RunErase reverses every effect of a mint for token. A token with no cache
// entry is treated as already signed out. The primary cache entry is deleted
// even when earlier steps fail; failures are aggregated into Err.
func RunErase(ctx context.Context, token string, deps EraseDeps) EraseResult {
	normalizeEraseDeps(&deps)

	if deps.Cache == nil || deps.Associations == nil {
		return EraseResult{Err: deps.Errors.EngineNotReady}
	}
	if err := ctx.Err(); err != nil {
		return EraseResult{Err: fmt.Errorf("%w: %v", deps.Errors.OperationCanceled, err)}
	}

	var (
		result   EraseResult
		failures *multierror.Error
		orphaned bool
	)
	record := func(phase, err error) {
		failures = multierror.Append(failures, fmt.Errorf("%w: %w: %v", deps.Errors.InvalidationFailed, phase, err))
	}

	primaryKey := keys.DeriveCacheTokenKey(deps.CacheTokenPrefix, token)

	rec, err := session.GetRecord(ctx, deps.Cache, primaryKey)
	missed := false
	switch {
	case err == nil:
		result.Found = true
		result.Record = rec
	case errors.Is(err, session.ErrCacheMiss):
		missed = true
	default:
		record(deps.Errors.SessionResolve, err)
	}

	if result.Found {
		if err := ctx.Err(); err != nil {
			return EraseResult{Found: true, Record: rec, Err: fmt.Errorf("%w: %v", deps.Errors.OperationCanceled, err)}
		}

		loginKey := keys.DeriveLoginProviderKey(rec.UserID, rec.EndType)
		if err := deps.Associations.RemoveLogin(ctx, rec.UserID, deps.Provider, loginKey); err != nil {
			record(deps.Errors.AssociationRemove, err)
			orphaned = true
		}
		tokenName := keys.DeriveProviderTokenName(rec.EndType, deps.TokenNameSuffix)
		if err := deps.Associations.RemoveToken(ctx, rec.UserID, deps.Provider, tokenName); err != nil {
			record(deps.Errors.AssociationRemove, err)
			orphaned = true
		}

		if !deps.EnableMultiEnd {
			mapKey := keys.DeriveUserMapTokenKey(deps.CacheUserMapTokenPrefix, rec.EndType, rec.UserID)
			if err := deps.Cache.Remove(ctx, mapKey); err != nil {
				record(deps.Errors.UserMapRemove, err)
			}
		}
	}

	if err := deps.Cache.Remove(ctx, primaryKey); err != nil {
		record(deps.Errors.SessionCacheRemove, err)
	}

	result.Err = failures.ErrorOrNil()

	if missed && result.Err == nil {
		deps.MetricInc(deps.Metrics.EraseMiss)
		return result
	}

	userID, endType := "", ""
	if rec != nil {
		userID, endType = rec.UserID, rec.EndType
	}

	if orphaned {
		deps.MetricInc(deps.Metrics.EraseDurableOrphaned)
		deps.Logger.Warn("durable association left behind after sign-out", "user_id", userID, "end_type", endType)
	}
	if result.Err != nil {
		deps.MetricInc(deps.Metrics.EraseFailure)
		deps.EmitAudit(ctx, deps.Events.ErasePartial, false, userID, endType, result.Err, func() map[string]string {
			return map[string]string{"failures": fmt.Sprint(failures.Len())}
		})
		return result
	}

	deps.MetricInc(deps.Metrics.EraseSuccess)
	deps.EmitAudit(ctx, deps.Events.Erased, true, userID, endType, nil, nil)
	return result
}
