package usecase

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for use case layer
var (
	// Onboarding
	ErrAlreadyOnboarded = goerr.New("user already onboarded")
	ErrNotOnboarded     = goerr.New("user not onboarded")

	// SignalHire webhook
	ErrMissingRequestID   = goerr.New("missing Request-Id header")
	ErrInvalidCallback    = goerr.New("invalid callback body")
	ErrCallbackQueueFull  = goerr.New("callback queue is full")
	ErrCallbackNotFound   = goerr.New("callback not found")
	ErrProfileInfoMissing = goerr.New("profile information not found")

	// OAuth
	ErrOAuthNotConfigured = goerr.New("Google OAuth is not configured")
	ErrInvalidState       = goerr.New("invalid OAuth state")

	// Other errors
	ErrEmptyQuery   = goerr.New("search query is required")
	ErrNotAvailable = goerr.New("feature is not configured")
)

// Context keys for error values
const (
	RequestIDKey = "request_id"
	URLKey       = "url"
)
