// Package pcloud is a client for the CyberArk Privilege Cloud REST API.
//
// The client attaches a bearer token from an auth.TokenCache to every
// request. On a 401 it performs one corrective cycle (invalidate,
// re-authenticate, retry); a second 401 is terminal. All other upstream
// failures map to a distinct ErrorKind and are surfaced without retry.
//
// Upstream representations are normalized here: field-name drift between
// API generations (value vs Value, nested platform "general" blocks) never
// crosses the package boundary.
package pcloud
