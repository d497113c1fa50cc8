package middleware

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"

	goIdentity "github.com/MrEthical07/goIdentity"
)

// Policy selects the capability check a Guard applies after the token
// resolves.
type Policy int

const (
	// PolicyAnySession admits every live token.
	PolicyAnySession Policy = iota
	// PolicyCurrentSessionOnly admits a token only while the exclusivity
	// index names it. With EnableMultiEnd set there is no index and the
	// policy degrades to PolicyAnySession.
	PolicyCurrentSessionOnly
)

func (p Policy) String() string {
	switch p {
	case PolicyAnySession:
		return "any_session"
	case PolicyCurrentSessionOnly:
		return "current_session_only"
	default:
		return "unknown"
	}
}

type sessionContextKey struct{}

// SessionFromContext returns the record stored by a Guard.
func SessionFromContext(ctx context.Context) (goIdentity.SessionRecord, bool) {
	rec, ok := ctx.Value(sessionContextKey{}).(goIdentity.SessionRecord)
	return rec, ok
}

// Guard rejects requests without a live bearer token with 401. Backend
// failures while resolving answer 503.
func Guard(engine *goIdentity.Engine, policy Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := goIdentity.WithClientIP(r.Context(), clientIP(r))

			rec, err := engine.Resolve(ctx, token)
			if err != nil {
				writeResolveError(w, err)
				return
			}

			if policy == PolicyCurrentSessionOnly {
				current, err := engine.CurrentToken(ctx, rec.UserID, rec.EndType)
				switch {
				case errors.Is(err, goIdentity.ErrExclusivityDisabled):
				case err != nil:
					writeResolveError(w, err)
					return
				case current != token:
					http.Error(w, "session superseded", http.StatusUnauthorized)
					return
				}
			}

			ctx = context.WithValue(ctx, sessionContextKey{}, rec)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeResolveError(w http.ResponseWriter, err error) {
	if errors.Is(err, goIdentity.ErrSessionNotFound) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	http.Error(w, "session backend unavailable", http.StatusServiceUnavailable)
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := strings.TrimSpace(value[len(bearer):])
	if token == "" {
		return "", false
	}

	return token, true
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
