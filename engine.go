package goIdentity

import (
	"context"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/MrEthical07/goIdentity/association"
	"github.com/MrEthical07/goIdentity/internal"
	"github.com/MrEthical07/goIdentity/internal/audit"
	"github.com/MrEthical07/goIdentity/internal/limiters"
	internalflows "github.com/MrEthical07/goIdentity/internal/flows"
	"github.com/MrEthical07/goIdentity/password"
	"github.com/MrEthical07/goIdentity/session"
)

// TokenGenerator produces the opaque token symbol for a verified subject.
// Returned symbols must be unique and must not contain ':'.
type TokenGenerator func(MintRequest) (string, error)

// Engine is the session token lifecycle manager. It holds no per-request
// state and is safe for concurrent use once built.
type Engine struct {
	config       Config
	cache        session.Cache
	associations association.Store
	logger       hclog.Logger
	audit        *audit.Dispatcher
	metrics      *Metrics
	hasher       *password.Hasher
	tokenGen     TokenGenerator
	userProvider UserProvider
	flows        internalflows.Service

	signInLimiter *limiters.SignInLimiter
	signUpLimiter *limiters.SignUpLimiter
}

// Close flushes and stops the audit dispatcher. The cache client and the
// association store belong to the caller and stay open.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.audit.Close()
}

// AuditDropped returns the number of audit events dropped because the
// dispatcher buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a point-in-time copy of the Engine counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

// Config returns a copy of the configuration the Engine was built with.
func (e *Engine) Config() Config {
	if e == nil {
		return Config{}
	}
	return cloneConfig(e.config)
}

// Mint generates a token for req and registers it in the association store
// and the cache. Every failure is an ErrRegistrationFailed joined with the
// phase sentinel of the step that failed; completed steps are not rolled
// back. A canceled ctx yields ErrOperationCanceled.
func (e *Engine) Mint(ctx context.Context, req MintRequest) (string, error) {
	if e == nil || !e.flows.Initialized() {
		return "", ErrEngineNotReady
	}
	return e.flows.Mint(ctx, toFlowMintRequest(req))
}

// Erase signs a token out: durable rows, the exclusivity index entry and the
// primary cache entry. Unknown tokens are a successful no-op. The primary
// entry is always deleted, even after earlier steps fail; all failures are
// aggregated under ErrSessionInvalidationFailed.
func (e *Engine) Erase(ctx context.Context, token string) error {
	if e == nil || !e.flows.Initialized() {
		return ErrEngineNotReady
	}
	return e.flows.Erase(ctx, token).Err
}

// Resolve returns the live session for token, or ErrSessionNotFound.
func (e *Engine) Resolve(ctx context.Context, token string) (SessionRecord, error) {
	if e == nil || !e.flows.Initialized() {
		return SessionRecord{}, ErrEngineNotReady
	}
	rec, err := e.flows.Resolve(ctx, token)
	if err != nil {
		return SessionRecord{}, err
	}
	return fromFlowRecord(rec), nil
}

// CurrentToken returns the token the exclusivity index names for
// (userID, endType). It fails with ErrExclusivityDisabled when
// EnableMultiEnd is set.
func (e *Engine) CurrentToken(ctx context.Context, userID, endType string) (string, error) {
	if e == nil || !e.flows.Initialized() {
		return "", ErrEngineNotReady
	}
	return e.flows.CurrentToken(ctx, userID, endType)
}

// ListSessions lists the user's durable token associations under the
// configured provider. Entries whose cache record is gone are returned with
// Active=false.
func (e *Engine) ListSessions(ctx context.Context, userID string) ([]SessionInfo, error) {
	if e == nil || !e.flows.Initialized() {
		return nil, ErrEngineNotReady
	}
	listed, err := e.flows.ListSessions(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]SessionInfo, 0, len(listed))
	for _, item := range listed {
		info := SessionInfo{
			EndType:   item.EndType,
			TokenName: item.TokenName,
			Token:     item.Token,
			Active:    item.Active,
			UpdatedAt: item.UpdatedAt,
		}
		if item.Record != nil {
			info.IssuedAt = time.Unix(item.Record.IssuedAt, 0).UTC()
		}
		out = append(out, info)
	}
	return out, nil
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) metricObserve(id MetricID, d time.Duration) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Observe(id, d)
}

func (e *Engine) flowMetricInc(id int) {
	e.metricInc(MetricID(id))
}

func (e *Engine) flowMetricObserve(id int, d time.Duration) {
	e.metricObserve(MetricID(id), d)
}

func (e *Engine) generateToken(req internalflows.MintRequest) (string, error) {
	return e.tokenGen(MintRequest{
		UserID:   req.UserID,
		UserName: req.UserName,
		EndType:  req.EndType,
	})
}

func (e *Engine) flowDeps() internalflows.Deps {
	return internalflows.Deps{
		Mint:   e.mintFlowDeps(),
		Erase:  e.eraseFlowDeps(),
		Lookup: e.lookupFlowDeps(),
		SignIn: e.signInFlowDeps(),
	}
}

func (e *Engine) mintFlowDeps() internalflows.MintDeps {
	return internalflows.MintDeps{
		Cache:                   e.cache,
		Associations:            e.associations,
		CacheTokenPrefix:        e.config.Token.CacheTokenPrefix,
		CacheUserMapTokenPrefix: e.config.Token.CacheUserMapTokenPrefix,
		Provider:                e.config.Token.IdentityServiceProvider,
		TokenNameSuffix:         e.config.Token.IdentityServiceTokenNameSuffix,
		TTL:                     e.config.Token.TTL(),
		EnableMultiEnd:          e.config.Token.EnableMultiEnd,
		GenerateToken:           e.generateToken,
		Logger:                  e.logger,
		MetricInc:               e.flowMetricInc,
		MetricObserve:           e.flowMetricObserve,
		EmitAudit:               e.emitAudit,
		Metrics: internalflows.MintMetrics{
			MintSuccess:  int(MetricMintSuccess),
			MintFailure:  int(MetricMintFailure),
			MintCanceled: int(MetricMintCanceled),
			MintLatency:  int(MetricMintLatency),
		},
		Events: internalflows.MintEvents{
			Minted:     auditEventSessionMinted,
			MintFailed: auditEventSessionMintFailed,
		},
		Errors: internalflows.MintErrors{
			EngineNotReady:     ErrEngineNotReady,
			InvalidCandidate:   ErrInvalidSessionCandidate,
			RegistrationFailed: ErrRegistrationFailed,
			OperationCanceled:  ErrOperationCanceled,
			TokenGeneration:    ErrTokenGenerationFailed,
			LoginAssociation:   ErrLoginAssociationFailed,
			TokenAssociation:   ErrTokenAssociationFailed,
			SessionCacheWrite:  ErrSessionCacheWriteFailed,
			UserMapCacheWrite:  ErrUserMapCacheWriteFailed,
		},
	}
}

func (e *Engine) eraseFlowDeps() internalflows.EraseDeps {
	return internalflows.EraseDeps{
		Cache:                   e.cache,
		Associations:            e.associations,
		CacheTokenPrefix:        e.config.Token.CacheTokenPrefix,
		CacheUserMapTokenPrefix: e.config.Token.CacheUserMapTokenPrefix,
		Provider:                e.config.Token.IdentityServiceProvider,
		TokenNameSuffix:         e.config.Token.IdentityServiceTokenNameSuffix,
		EnableMultiEnd:          e.config.Token.EnableMultiEnd,
		Logger:                  e.logger,
		MetricInc:               e.flowMetricInc,
		EmitAudit:               e.emitAudit,
		Metrics: internalflows.EraseMetrics{
			EraseSuccess:         int(MetricEraseSuccess),
			EraseMiss:            int(MetricEraseMiss),
			EraseFailure:         int(MetricEraseFailure),
			EraseDurableOrphaned: int(MetricEraseDurableOrphaned),
		},
		Events: internalflows.EraseEvents{
			Erased:       auditEventSessionErased,
			ErasePartial: auditEventSessionErasePartial,
		},
		Errors: internalflows.EraseErrors{
			EngineNotReady:     ErrEngineNotReady,
			InvalidationFailed: ErrSessionInvalidationFailed,
			OperationCanceled:  ErrOperationCanceled,
			SessionResolve:     ErrSessionResolveFailed,
			AssociationRemove:  ErrAssociationRemoveFailed,
			UserMapRemove:      ErrUserMapRemoveFailed,
			SessionCacheRemove: ErrSessionCacheRemoveFailed,
		},
	}
}

func (e *Engine) lookupFlowDeps() internalflows.LookupDeps {
	return internalflows.LookupDeps{
		Cache:                   e.cache,
		Associations:            e.associations,
		CacheTokenPrefix:        e.config.Token.CacheTokenPrefix,
		CacheUserMapTokenPrefix: e.config.Token.CacheUserMapTokenPrefix,
		Provider:                e.config.Token.IdentityServiceProvider,
		TokenNameSuffix:         e.config.Token.IdentityServiceTokenNameSuffix,
		EnableMultiEnd:          e.config.Token.EnableMultiEnd,
		MetricInc:               e.flowMetricInc,
		Metrics: internalflows.LookupMetrics{
			ResolveHit:  int(MetricResolveHit),
			ResolveMiss: int(MetricResolveMiss),
		},
		Errors: internalflows.LookupErrors{
			EngineNotReady:      ErrEngineNotReady,
			SessionNotFound:     ErrSessionNotFound,
			SessionResolve:      ErrSessionResolveFailed,
			ExclusivityDisabled: ErrExclusivityDisabled,
		},
	}
}

func defaultTokenGenerator(req MintRequest) (string, error) {
	return internal.NewTokenSymbol(req.UserID, req.UserName, req.EndType)
}

func toFlowMintRequest(req MintRequest) internalflows.MintRequest {
	return internalflows.MintRequest{
		UserID:   req.UserID,
		UserName: req.UserName,
		EndType:  req.EndType,
	}
}

func fromFlowRecord(rec *session.Record) SessionRecord {
	if rec == nil {
		return SessionRecord{}
	}
	return SessionRecord{
		UserID:      rec.UserID,
		UserName:    rec.UserName,
		EndType:     rec.EndType,
		TokenSymbol: rec.TokenSymbol,
		IssuedAt:    time.Unix(rec.IssuedAt, 0).UTC(),
	}
}
