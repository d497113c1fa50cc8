package goIdentity

import (
	"context"
	"errors"
	"time"
)

const (
	auditEventSessionMinted       = "session_minted"
	auditEventSessionMintFailed   = "session_mint_failed"
	auditEventSessionErased       = "session_erased"
	auditEventSessionErasePartial = "session_erase_partial"
	auditEventSignInFailure       = "signin_failure"
	auditEventSignUp              = "signup"
	auditEventThrottled           = "throttled"
)

// AuditErrorCode is the stable, low-cardinality error label carried in
// AuditEvent.Error.
type AuditErrorCode string

const (
	auditErrInvalidCredentials  AuditErrorCode = "invalid_credentials"
	auditErrInvalidCandidate    AuditErrorCode = "invalid_candidate"
	auditErrRegistrationFailed  AuditErrorCode = "registration_failed"
	auditErrSessionInvalidation AuditErrorCode = "session_invalidation_failed"
	auditErrCanceled            AuditErrorCode = "canceled"
	auditErrDuplicate           AuditErrorCode = "duplicate"
	auditErrRateLimited         AuditErrorCode = "rate_limited"
	auditErrInternal            AuditErrorCode = "internal_error"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	userID string,
	endType string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		UserID:    userID,
		EndType:   endType,
		IP:        clientIPFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrOperationCanceled):
		return auditErrCanceled
	case errors.Is(err, ErrInvalidCredentials):
		return auditErrInvalidCredentials
	case errors.Is(err, ErrInvalidSessionCandidate):
		return auditErrInvalidCandidate
	case errors.Is(err, ErrRegistrationFailed):
		return auditErrRegistrationFailed
	case errors.Is(err, ErrSessionInvalidationFailed):
		return auditErrSessionInvalidation
	case errors.Is(err, ErrAccountExists):
		return auditErrDuplicate
	case errors.Is(err, ErrRateLimited):
		return auditErrRateLimited
	default:
		return auditErrInternal
	}
}
