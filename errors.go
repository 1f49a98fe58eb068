package socialite

import (
	"errors"
	"fmt"
)

// Sentinel roots of the error taxonomy. Callers classify failures with
// errors.Is; AuthorizeError additionally carries the raw response body.
var (
	// ErrAuthorizeFailed means a completed exchange did not yield a
	// usable token, or the provider reported an application-level error
	// inside an otherwise successful response.
	ErrAuthorizeFailed = errors.New("socialite: authorize failed")

	// ErrInvalidArgument means the caller configuration is incomplete or
	// malformed. Detected before any network call.
	ErrInvalidArgument = errors.New("socialite: invalid argument")

	// ErrMethodNotSupported means this provider/flow combination does
	// not offer the requested capability (e.g. user-by-token on a
	// QR-only flow).
	ErrMethodNotSupported = errors.New("socialite: method not supported")

	// ErrProviderNotFound is returned by the registry for unknown names.
	ErrProviderNotFound = errors.New("socialite: provider not found")
)

// AuthorizeError is an ErrAuthorizeFailed carrying the raw provider
// response for diagnostics.
type AuthorizeError struct {
	Reason string
	Body   []byte
}

func (e *AuthorizeError) Error() string {
	if len(e.Body) > 0 {
		return fmt.Sprintf("socialite: authorize failed: %s: %s", e.Reason, e.Body)
	}
	return "socialite: authorize failed: " + e.Reason
}

func (e *AuthorizeError) Unwrap() error { return ErrAuthorizeFailed }

func invalidArgf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

func notSupportedf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMethodNotSupported, fmt.Sprintf(format, args...))
}
