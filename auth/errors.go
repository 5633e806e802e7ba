package auth

import "errors"

// Sentinel errors for the token exchange.
var (
	ErrInvalidCredentials = errors.New("auth: invalid client credentials")
	ErrExchangeFailed     = errors.New("auth: token exchange failed")
	ErrMalformedResponse  = errors.New("auth: malformed token response")
	ErrUnreachable        = errors.New("auth: identity service unreachable")
)
