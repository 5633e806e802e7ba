package pcloud

import (
	"errors"
	"fmt"
)

// ErrorKind classifies an API failure.
type ErrorKind int

const (
	// KindAuthentication is a credential or token failure, including a 401
	// that survived the corrective cycle.
	KindAuthentication ErrorKind = iota
	// KindPermission is an upstream authorization denial (403).
	KindPermission
	// KindNotFound means the referenced entity does not exist (404).
	KindNotFound
	// KindRateLimited is upstream throttling (429). Not auto-retried.
	KindRateLimited
	// KindValidation is a missing or malformed request parameter.
	KindValidation
	// KindTransport is a network or timeout failure.
	KindTransport
	// KindMalformed means the upstream response could not be parsed.
	KindMalformed
	// KindUpstream is any other non-2xx upstream response.
	KindUpstream
)

// String returns the snake_case name of the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindAuthentication:
		return "authentication_failure"
	case KindPermission:
		return "permission_failure"
	case KindNotFound:
		return "not_found"
	case KindRateLimited:
		return "rate_limited"
	case KindValidation:
		return "validation_failure"
	case KindTransport:
		return "transport_failure"
	case KindMalformed:
		return "malformed_response"
	case KindUpstream:
		return "upstream_failure"
	default:
		return "unknown"
	}
}

// APIError is a classified upstream failure. Code and Message carry the
// upstream error body when one was returned; they never contain tokens.
type APIError struct {
	Kind       ErrorKind
	StatusCode int
	Code       string
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	switch {
	case e.Message != "" && e.Code != "":
		return fmt.Sprintf("pcloud: %s (status %d, %s: %s)", e.Kind, e.StatusCode, e.Code, e.Message)
	case e.Message != "":
		return fmt.Sprintf("pcloud: %s (status %d: %s)", e.Kind, e.StatusCode, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("pcloud: %s: %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("pcloud: %s (status %d)", e.Kind, e.StatusCode)
	}
}

// Unwrap returns the wrapped cause, if any.
func (e *APIError) Unwrap() error { return e.Err }

// KindOf extracts the ErrorKind from err. Errors that are not APIErrors
// report KindTransport, the only way a non-classified error can arise.
func KindOf(err error) ErrorKind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindTransport
}

// NewValidationError builds a KindValidation error for a bad parameter.
// Exposed for the tool layer, which validates before any network call.
func NewValidationError(message string) *APIError {
	return &APIError{Kind: KindValidation, Message: message}
}
