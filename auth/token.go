package auth

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultExpiryMargin is how long before its expiry a token stops being
// served. Refreshing ahead of the hard deadline keeps in-flight requests
// from racing the upstream clock.
const DefaultExpiryMargin = 60 * time.Second

// Token is a bearer credential issued by the identity service.
type Token struct {
	// Value is the opaque bearer string. Never logged.
	Value string

	// IssuedAt is when the exchange completed.
	IssuedAt time.Time

	// ExpiresAt is IssuedAt plus the granted lifetime.
	ExpiresAt time.Time
}

// Valid reports whether the token can still be served at now, honoring the
// expiry margin.
func (t Token) Valid(now time.Time, margin time.Duration) bool {
	return t.Value != "" && now.Before(t.ExpiresAt.Add(-margin))
}

// TokenSource performs a single credential exchange. Implementations must
// not retry internally; retry policy belongs to the caller.
type TokenSource interface {
	Exchange(ctx context.Context) (Token, error)
}

// TokenCache holds the current token and coordinates refresh.
//
// Contract:
//   - Concurrency: safe for concurrent use. N callers on a cold or expired
//     cache cause exactly one exchange.
//   - Errors: a failed exchange leaves the cache empty; no partial token is
//     ever stored.
type TokenCache struct {
	source  TokenSource
	margin  time.Duration
	now     func() time.Time
	onFetch func(err error)

	mu    sync.RWMutex
	token Token

	sfGroup singleflight.Group
}

// CacheOption configures a TokenCache.
type CacheOption func(*TokenCache)

// WithExpiryMargin overrides the refresh-ahead margin.
func WithExpiryMargin(margin time.Duration) CacheOption {
	return func(c *TokenCache) { c.margin = margin }
}

// WithClock overrides the time source. For tests.
func WithClock(now func() time.Time) CacheOption {
	return func(c *TokenCache) { c.now = now }
}

// WithFetchHook registers a callback invoked after every exchange attempt,
// successful or not. Used for metrics.
func WithFetchHook(hook func(err error)) CacheOption {
	return func(c *TokenCache) { c.onFetch = hook }
}

// NewTokenCache creates an empty cache backed by source.
func NewTokenCache(source TokenSource, opts ...CacheOption) *TokenCache {
	c := &TokenCache{
		source: source,
		margin: DefaultExpiryMargin,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetValidToken returns a non-expired token, refreshing if necessary.
//
// Double-checked: validity is checked without the write lock first, then
// re-checked inside the singleflight call in case another caller already
// refreshed while this one waited.
func (c *TokenCache) GetValidToken(ctx context.Context) (Token, error) {
	c.mu.RLock()
	current := c.token
	c.mu.RUnlock()

	if current.Valid(c.now(), c.margin) {
		return current, nil
	}

	v, err, _ := c.sfGroup.Do("refresh", func() (any, error) {
		c.mu.RLock()
		cached := c.token
		c.mu.RUnlock()
		if cached.Valid(c.now(), c.margin) {
			return cached, nil
		}

		fresh, err := c.source.Exchange(ctx)
		if c.onFetch != nil {
			c.onFetch(err)
		}
		if err != nil {
			return Token{}, err
		}

		c.mu.Lock()
		c.token = fresh
		c.mu.Unlock()
		return fresh, nil
	})
	if err != nil {
		return Token{}, err
	}
	return v.(Token), nil
}

// AuthHeader returns "Bearer {token}" after ensuring validity.
func (c *TokenCache) AuthHeader(ctx context.Context) (string, error) {
	token, err := c.GetValidToken(ctx)
	if err != nil {
		return "", err
	}
	return "Bearer " + token.Value, nil
}

// Invalidate clears the current token. The next GetValidToken call
// re-authenticates.
func (c *TokenCache) Invalidate() {
	c.mu.Lock()
	c.token = Token{}
	c.mu.Unlock()
}

// Cached returns the currently held token and whether it is still valid,
// without triggering a refresh. Used by health checks.
func (c *TokenCache) Cached() (Token, bool) {
	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()
	return token, token.Valid(c.now(), c.margin)
}
