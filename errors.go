package goIdentity

import "errors"

var (
	// ErrEngineNotReady is returned when an Engine was not built through Builder.Build.
	ErrEngineNotReady = errors.New("engine not initialized")
	// ErrInvalidCredentials is returned by SignIn for unknown users and wrong passwords alike.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserNotFound is returned by a UserProvider when no user matches the identifier.
	ErrUserNotFound = errors.New("user not found")
	// ErrAccountExists is returned by a UserProvider when the identifier is taken.
	ErrAccountExists = errors.New("account already exists")
	// ErrInvalidSignUp is returned by SignUp for empty identifiers or passwords.
	ErrInvalidSignUp = errors.New("invalid sign-up request")
	// ErrUserProviderMissing is returned by SignIn/SignUp when no UserProvider is configured.
	ErrUserProviderMissing = errors.New("user provider not configured")
	// ErrRateLimited is returned by SignIn and SignUp while the caller is
	// throttled.
	ErrRateLimited = errors.New("too many attempts")

	// ErrInvalidSessionCandidate is returned by Mint when UserID or EndType is empty.
	ErrInvalidSessionCandidate = errors.New("invalid session candidate")
	// ErrRegistrationFailed wraps every Mint failure. It is an authentication
	// failure from the caller's point of view.
	ErrRegistrationFailed = errors.New("session registration failed")
	// ErrSessionInvalidationFailed wraps every Erase failure.
	ErrSessionInvalidationFailed = errors.New("session invalidation failed")
	// ErrOperationCanceled is returned when the context is canceled between steps.
	ErrOperationCanceled = errors.New("operation canceled")
	// ErrSessionNotFound is returned by Resolve and CurrentToken on a cache miss.
	ErrSessionNotFound = errors.New("session not found")
	// ErrExclusivityDisabled is returned by CurrentToken when EnableMultiEnd is set.
	ErrExclusivityDisabled = errors.New("session exclusivity disabled")
)

// Phase errors identify which Mint/Erase step failed. They are always joined
// with ErrRegistrationFailed or ErrSessionInvalidationFailed.
var (
	ErrTokenGenerationFailed    = errors.New("token generation failed")
	ErrLoginAssociationFailed   = errors.New("login association write failed")
	ErrTokenAssociationFailed   = errors.New("token association write failed")
	ErrSessionCacheWriteFailed  = errors.New("session cache write failed")
	ErrUserMapCacheWriteFailed  = errors.New("user map cache write failed")
	ErrSessionResolveFailed     = errors.New("session resolve failed")
	ErrAssociationRemoveFailed  = errors.New("association remove failed")
	ErrUserMapRemoveFailed      = errors.New("user map cache remove failed")
	ErrSessionCacheRemoveFailed = errors.New("session cache remove failed")
)

var (
	// ErrInvalidConfig wraps every Config.Validate failure.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrMissingCache is returned by Build when neither WithRedis nor WithCache was called.
	ErrMissingCache = errors.New("session cache is required")
	// ErrMissingAssociationStore is returned by Build without WithAssociationStore.
	ErrMissingAssociationStore = errors.New("association store is required")
)
