package flows

import (
	"context"

	"github.com/MrEthical07/goIdentity/session"
)

// Service is the centralized flow runner built once by the root engine.
type Service struct {
	deps Deps
}

// New returns a flow service with immutable dependency wiring.
func New(deps Deps) Service {
	return Service{deps: deps}
}

// Initialized reports whether the service has been wired with flow deps.
func (s Service) Initialized() bool {
	return s.deps.Mint.Cache != nil && s.deps.Mint.Associations != nil
}

func (s Service) Mint(ctx context.Context, req MintRequest) (string, error) {
	return RunMint(ctx, req, s.deps.Mint)
}

func (s Service) Erase(ctx context.Context, token string) EraseResult {
	return RunErase(ctx, token, s.deps.Erase)
}

func (s Service) Resolve(ctx context.Context, token string) (*session.Record, error) {
	return RunResolve(ctx, token, s.deps.Lookup)
}

func (s Service) CurrentToken(ctx context.Context, userID, endType string) (string, error) {
	return RunCurrentToken(ctx, userID, endType, s.deps.Lookup)
}

func (s Service) ListSessions(ctx context.Context, userID string) ([]ListedSession, error) {
	return RunListSessions(ctx, userID, s.deps.Lookup)
}

func (s Service) SignIn(ctx context.Context, identifier, password, endType string) (string, error) {
	return RunSignIn(ctx, identifier, password, endType, s.deps.SignIn)
}

func (s Service) SignUp(ctx context.Context, identifier, password string) (string, error) {
	return RunSignUp(ctx, identifier, password, s.deps.SignIn)
}
