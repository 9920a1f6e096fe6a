package profile

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
)

var (
	ErrAuth            = goerr.New("provider authentication failed")
	ErrForbidden       = goerr.New("provider access forbidden")
	ErrNotFound        = goerr.New("provider resource not found")
	ErrRateLimit       = goerr.New("provider rate limit exceeded")
	ErrServer          = goerr.New("provider server error")
	ErrTimeout         = goerr.New("provider request timed out")
	ErrNetwork         = goerr.New("provider network error")
	ErrInvalidResponse = goerr.New("invalid provider response")
	ErrNotConfigured   = goerr.New("provider not configured")

	// ErrPending means the lookup was accepted and the result will arrive
	// later through a callback
	ErrPending = goerr.New("provider lookup pending")
)

// classifyStatus maps a non-2xx HTTP status to a typed error, or nil
func classifyStatus(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusUnauthorized:
		return ErrAuth
	case code == http.StatusForbidden:
		return ErrForbidden
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusTooManyRequests:
		return ErrRateLimit
	case code >= 500:
		return ErrServer
	default:
		return ErrInvalidResponse
	}
}

// classifyTransport maps an http.Client error to ErrTimeout or ErrNetwork
func classifyTransport(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout
	}
	return ErrNetwork
}

// MsgUnknownError is the UserMessage of errors that no provider produced
const MsgUnknownError = "Unknown error occurred"

// UserMessage returns a message suitable for showing to the end user
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrAuth):
		return "Authentication failed. Please check your API key."
	case errors.Is(err, ErrForbidden):
		return "Access forbidden. Your API key may not have permission to perform this operation."
	case errors.Is(err, ErrNotFound):
		return "Resource not found. The API endpoint may have changed."
	case errors.Is(err, ErrRateLimit):
		return "Rate limit exceeded. Please try again later."
	case errors.Is(err, ErrServer):
		return "LinkedIn API server error. Please try again later."
	case errors.Is(err, ErrTimeout):
		return "Request timed out. The LinkedIn API service may be experiencing high load."
	case errors.Is(err, ErrNetwork):
		return "Network error. The LinkedIn API service may be down or the URL is incorrect."
	case errors.Is(err, ErrInvalidResponse):
		return "The LinkedIn API returned an unexpected response."
	case errors.Is(err, ErrNotConfigured):
		return "Profile search is not configured on this server."
	case errors.Is(err, ErrPending):
		return "Profile lookup is in progress. Please try again shortly."
	default:
		return MsgUnknownError
	}
}
