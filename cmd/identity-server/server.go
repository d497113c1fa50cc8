package main

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/hashicorp/go-hclog"

	goIdentity "github.com/MrEthical07/goIdentity"
	"github.com/MrEthical07/goIdentity/metrics/export/prometheus"
	"github.com/MrEthical07/goIdentity/middleware"
)

type server struct {
	engine *goIdentity.Engine
	logger hclog.Logger
}

func newServer(engine *goIdentity.Engine, logger hclog.Logger) *server {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &server{engine: engine, logger: logger.Named("http")}
}

func (s *server) routes() http.Handler {
	guard := middleware.RequireSession(s.engine)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /signin", s.handleSignIn)
	mux.HandleFunc("POST /signup", s.handleSignUp)
	mux.Handle("POST /signout", guard(http.HandlerFunc(s.handleSignOut)))
	mux.Handle("GET /session", guard(http.HandlerFunc(s.handleSession)))
	mux.Handle("GET /metrics", prometheus.Handler(s.engine))
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return mux
}

type credentials struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
	EndType    string `json:"end_type"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

func (s *server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var body credentials
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}
	if body.EndType == "" {
		body.EndType = goIdentity.EndTypeWeb
	}

	token, err := s.engine.SignIn(requestContext(r), body.Identifier, body.Password, body.EndType)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, tokenResponse{Token: token})
	case errors.Is(err, goIdentity.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, goIdentity.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, "too many attempts")
	case errors.Is(err, goIdentity.ErrInvalidSessionCandidate):
		writeError(w, http.StatusBadRequest, "invalid end type")
	default:
		s.logger.Error("sign-in failed", "error", err)
		writeError(w, http.StatusServiceUnavailable, "sign-in unavailable")
	}
}

func (s *server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var body credentials
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}

	token, err := s.engine.SignUp(requestContext(r), body.Identifier, body.Password)
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, tokenResponse{Token: token})
	case errors.Is(err, goIdentity.ErrInvalidSignUp):
		writeError(w, http.StatusBadRequest, "identifier and a password of at least 8 bytes are required")
	case errors.Is(err, goIdentity.ErrAccountExists):
		writeError(w, http.StatusConflict, "account exists")
	case errors.Is(err, goIdentity.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, "too many attempts")
	default:
		s.logger.Error("sign-up failed", "error", err)
		writeError(w, http.StatusServiceUnavailable, "sign-up unavailable")
	}
}

func (s *server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	rec, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := s.engine.Erase(r.Context(), rec.TokenSymbol); err != nil {
		// The primary entry is gone even on a partial failure; the token no
		// longer resolves.
		s.logger.Warn("sign-out incomplete", "user_id", rec.UserID, "error", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

type sessionResponse struct {
	UserID   string    `json:"user_id"`
	UserName string    `json:"user_name"`
	EndType  string    `json:"end_type"`
	IssuedAt time.Time `json:"issued_at"`
}

func (s *server) handleSession(w http.ResponseWriter, r *http.Request) {
	rec, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{
		UserID:   rec.UserID,
		UserName: rec.UserName,
		EndType:  rec.EndType,
		IssuedAt: rec.IssuedAt,
	})
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := s.engine.Health(r.Context())
	code := http.StatusOK
	if !status.Healthy() {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]any{
		"cache_ok":       status.CacheOK,
		"association_ok": status.AssociationOK,
		"latency_ms":     status.Latency.Milliseconds(),
	})
}

func requestContext(r *http.Request) context.Context {
	ctx := r.Context()
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		ctx = goIdentity.WithClientIP(ctx, host)
	}
	return ctx
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
