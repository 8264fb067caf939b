package apiclient

import (
	"errors"
	"fmt"
)

// Kind classifies executor failures.
type Kind string

const (
	// KindTransport covers DNS, connection, timeout and body read failures.
	KindTransport Kind = "transport"
	// KindDecode means the body was not valid JSON.
	KindDecode Kind = "decode"
	// KindMalformed means the JSON did not have the envelope shape.
	KindMalformed Kind = "malformed"
	// KindRejected means the envelope carried success=false.
	KindRejected Kind = "rejected"
)

// Sentinels usable with errors.Is.
var (
	ErrTransport = &Error{Kind: KindTransport}
	ErrDecode    = &Error{Kind: KindDecode}
	ErrMalformed = &Error{Kind: KindMalformed}
	ErrRejected  = &Error{Kind: KindRejected}

	// ErrEmptyData is returned by detail reads whose envelope has no data.
	ErrEmptyData = errors.New("apiclient: empty data")
)

// Error is the single failure type surfaced by the executor.
type Error struct {
	Kind Kind
	// Status is the envelope status, falling back to the HTTP status.
	Status int
	// Detail keeps the backend message for logs. It is never shown to users.
	Detail string
	Err    error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindRejected:
		return "Bad Request"
	case KindTransport:
		if e.Err != nil {
			return fmt.Sprintf("apiclient: transport: %v", e.Err)
		}
		return "apiclient: transport failure"
	case KindDecode:
		if e.Err != nil {
			return fmt.Sprintf("apiclient: decode response: %v", e.Err)
		}
		return "apiclient: invalid JSON response"
	default:
		if e.Detail != "" {
			return "apiclient: malformed envelope: " + e.Detail
		}
		return "apiclient: malformed envelope"
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on Kind so the package sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// KindOf extracts the failure kind, or "" when err is not an *Error.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return ""
}
