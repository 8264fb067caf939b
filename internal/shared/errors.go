package shared

import "errors"

var (
	// ErrSessionMissing occurs when no cookie session is attached to the request.
	ErrSessionMissing = errors.New("session missing")
	// ErrCSRFTokenMissing occurs when CSRF token missing.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenMismatch occurs when CSRF tokens do not match.
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
	// ErrConfirmationRequired blocks destructive actions that were not confirmed.
	ErrConfirmationRequired = errors.New("confirmation required")
)
