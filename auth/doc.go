// Package auth acquires and caches CyberArk Identity platform tokens.
//
// The Authenticator performs a single OAuth2 client-credentials exchange
// against the tenant's platformtoken endpoint. The TokenCache holds the
// resulting bearer token and coordinates refresh: concurrent callers on a
// cold or expired cache trigger exactly one exchange.
package auth
