package flows

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MrEthical07/goIdentity/association"
	"github.com/MrEthical07/goIdentity/keys"
	"github.com/MrEthical07/goIdentity/session"
)

// LookupMetrics carries metric IDs needed by read-only flows.
type LookupMetrics struct {
	ResolveHit  int
	ResolveMiss int
}

// LookupErrors carries host-level sentinel errors used by read-only flows.
type LookupErrors struct {
	EngineNotReady      error
	SessionNotFound     error
	SessionResolve      error
	ExclusivityDisabled error
}

// LookupDeps captures resolve, current-token and listing dependencies.
type LookupDeps struct {
	Cache        session.Cache
	Associations association.Store

	CacheTokenPrefix        string
	CacheUserMapTokenPrefix string
	Provider                string
	TokenNameSuffix         string
	EnableMultiEnd          bool

	MetricInc func(int)

	Metrics LookupMetrics
	Errors  LookupErrors
}

// ListedSession is one durable token association joined with its cache state.
type ListedSession struct {
	EndType   string
	TokenName string
	Token     string
	Active    bool
	Record    *session.Record
	UpdatedAt time.Time
}

func normalizeLookupDeps(deps *LookupDeps) {
	if deps.MetricInc == nil {
		deps.MetricInc = func(int) {}
	}
}

// RunResolve loads the cached record for token.
func RunResolve(ctx context.Context, token string, deps LookupDeps) (*session.Record, error) {
	normalizeLookupDeps(&deps)
	if deps.Cache == nil {
		return nil, deps.Errors.EngineNotReady
	}
	if token == "" {
		deps.MetricInc(deps.Metrics.ResolveMiss)
		return nil, deps.Errors.SessionNotFound
	}

	rec, err := session.GetRecord(ctx, deps.Cache, keys.DeriveCacheTokenKey(deps.CacheTokenPrefix, token))
	if err != nil {
		if errors.Is(err, session.ErrCacheMiss) {
			deps.MetricInc(deps.Metrics.ResolveMiss)
			return nil, deps.Errors.SessionNotFound
		}
		return nil, fmt.Errorf("%w: %v", deps.Errors.SessionResolve, err)
	}

	deps.MetricInc(deps.Metrics.ResolveHit)
	return rec, nil
}

// RunCurrentToken returns the token the exclusivity index currently names for
// (userID, endType).
func RunCurrentToken(ctx context.Context, userID, endType string, deps LookupDeps) (string, error) {
	normalizeLookupDeps(&deps)
	if deps.Cache == nil {
		return "", deps.Errors.EngineNotReady
	}
	if deps.EnableMultiEnd {
		return "", deps.Errors.ExclusivityDisabled
	}

	raw, err := deps.Cache.Get(ctx, keys.DeriveUserMapTokenKey(deps.CacheUserMapTokenPrefix, endType, userID))
	if err != nil {
		if errors.Is(err, session.ErrCacheMiss) {
			return "", deps.Errors.SessionNotFound
		}
		return "", fmt.Errorf("%w: %v", deps.Errors.SessionResolve, err)
	}
	return string(raw), nil
}

// RunListSessions enumerates the user's durable token associations and marks
// each as active when its cache entry still resolves. Inactive rows are
// associations whose cache entry expired or whose sign-out left them behind.
func RunListSessions(ctx context.Context, userID string, deps LookupDeps) ([]ListedSession, error) {
	normalizeLookupDeps(&deps)
	if deps.Cache == nil || deps.Associations == nil {
		return nil, deps.Errors.EngineNotReady
	}

	rows, err := deps.Associations.ListTokens(ctx, userID, deps.Provider)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", deps.Errors.SessionResolve, err)
	}

	suffix := "_" + deps.TokenNameSuffix
	out := make([]ListedSession, 0, len(rows))
	for _, row := range rows {
		if !strings.HasSuffix(row.Name, suffix) {
			continue
		}
		item := ListedSession{
			EndType:   strings.TrimSuffix(row.Name, suffix),
			TokenName: row.Name,
			Token:     row.Value,
			UpdatedAt: row.UpdatedAt,
		}

		rec, err := session.GetRecord(ctx, deps.Cache, keys.DeriveCacheTokenKey(deps.CacheTokenPrefix, row.Value))
		switch {
		case err == nil:
			item.Active = true
			item.Record = rec
		case errors.Is(err, session.ErrCacheMiss), errors.Is(err, session.ErrRecordCorrupt):
		default:
			return nil, fmt.Errorf("%w: %v", deps.Errors.SessionResolve, err)
		}
		out = append(out, item)
	}
	return out, nil
}
