package test

import (
	"context"
	"net/http"
	"testing"

	goIdentity "github.com/MrEthical07/goIdentity"
	"github.com/MrEthical07/goIdentity/middleware"
)

// This test intentionally guards public API compile-compat for consumers.
func TestPublicAPISurfaceCompile(t *testing.T) {
	_ = goIdentity.New

	var _ *goIdentity.Engine
	var _ goIdentity.Config
	var _ goIdentity.MintRequest
	var _ goIdentity.SessionRecord
	var _ goIdentity.SessionInfo
	var _ goIdentity.UserProvider
	var _ goIdentity.AuditSink
	var _ goIdentity.TokenGenerator

	var _ error = goIdentity.ErrRegistrationFailed
	var _ error = goIdentity.ErrSessionInvalidationFailed
	var _ error = goIdentity.ErrInvalidSessionCandidate
	var _ error = goIdentity.ErrOperationCanceled
	var _ error = goIdentity.ErrSessionNotFound
	var _ error = goIdentity.ErrInvalidCredentials

	var _ func(*goIdentity.Engine, middleware.Policy) func(http.Handler) http.Handler = middleware.Guard
	var _ func(*goIdentity.Engine) func(http.Handler) http.Handler = middleware.RequireSession
	var _ func(*goIdentity.Engine) func(http.Handler) http.Handler = middleware.RequireCurrentSession

	var _ func(*goIdentity.Engine, context.Context, goIdentity.MintRequest) (string, error) = (*goIdentity.Engine).Mint
	var _ func(*goIdentity.Engine, context.Context, string) error = (*goIdentity.Engine).Erase
	var _ func(*goIdentity.Engine, context.Context, string) (goIdentity.SessionRecord, error) = (*goIdentity.Engine).Resolve
	var _ func(*goIdentity.Engine, context.Context, string, string, string) (string, error) = (*goIdentity.Engine).SignIn
}
