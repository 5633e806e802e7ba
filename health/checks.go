package health

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/aaearon/mcp-privilege-cloud-sub001/auth"
)

// TokenCacheChecker reports whether a valid token is currently cached. A
// cold cache is degraded rather than unhealthy: the next request will
// refresh it.
type TokenCacheChecker struct {
	cache *auth.TokenCache
}

// NewTokenCacheChecker creates a checker over cache.
func NewTokenCacheChecker(cache *auth.TokenCache) *TokenCacheChecker {
	return &TokenCacheChecker{cache: cache}
}

// Name returns "token_cache".
func (c *TokenCacheChecker) Name() string { return "token_cache" }

// Check inspects the cache without triggering a refresh. Expiry metadata is
// included; the token value never is.
func (c *TokenCacheChecker) Check(_ context.Context) Result {
	token, valid := c.cache.Cached()
	if !valid {
		return Degraded("no valid token cached; next request will authenticate")
	}

	result := Healthy("valid token cached")
	result.Details = map[string]any{
		"issued_at":  token.IssuedAt.UTC().Format(time.RFC3339),
		"expires_at": token.ExpiresAt.UTC().Format(time.RFC3339),
	}
	return result
}

// EndpointChecker probes an HTTPS endpoint for reachability.
type EndpointChecker struct {
	name       string
	url        string
	httpClient *http.Client
}

// NewEndpointChecker creates a reachability checker for url.
func NewEndpointChecker(name, url string) *EndpointChecker {
	return &EndpointChecker{
		name:       name,
		url:        url,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

// Name returns the checker name.
func (c *EndpointChecker) Name() string { return c.name }

// Check issues a HEAD request. Any response at all proves reachability;
// auth-level rejections still mean the network path works.
func (c *EndpointChecker) Check(ctx context.Context) Result {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.url, nil)
	if err != nil {
		return Unhealthy(fmt.Sprintf("build probe request: %v", err))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Unhealthy(fmt.Sprintf("endpoint unreachable: %v", err))
	}
	_ = resp.Body.Close()

	result := Healthy("endpoint reachable")
	result.Details = map[string]any{"status": resp.StatusCode}
	return result
}

// Ensure checkers implement Checker
var (
	_ Checker = (*TokenCacheChecker)(nil)
	_ Checker = (*EndpointChecker)(nil)
)
