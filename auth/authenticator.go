package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenLifetime is assumed when the response carries neither an
// expires_in field nor a parseable exp claim. Platform tokens are issued
// with a 15-minute lifetime.
const DefaultTokenLifetime = 15 * time.Minute

// maxTokenResponseBytes bounds how much of the identity response is read.
const maxTokenResponseBytes = 1 << 20

// Credentials identify the service account for the client-credentials
// grant. Immutable after construction, never logged.
type Credentials struct {
	TenantID     string
	ClientID     string
	ClientSecret string
}

// Authenticator performs the OAuth2 client-credentials exchange.
//
// Contract:
//   - Concurrency: safe for concurrent use.
//   - Errors: non-2xx responses map to the package sentinel errors; the
//     authenticator never retries internally.
type Authenticator struct {
	creds      Credentials
	tokenURL   string
	httpClient *http.Client
	now        func() time.Time
}

// AuthenticatorOption configures an Authenticator.
type AuthenticatorOption func(*Authenticator)

// WithTokenURL overrides the token endpoint.
func WithTokenURL(u string) AuthenticatorOption {
	return func(a *Authenticator) { a.tokenURL = u }
}

// WithHTTPClient overrides the HTTP client used for the exchange.
func WithHTTPClient(client *http.Client) AuthenticatorOption {
	return func(a *Authenticator) { a.httpClient = client }
}

// WithTimeout bounds each exchange request. Non-positive values keep the
// default.
func WithTimeout(d time.Duration) AuthenticatorOption {
	return func(a *Authenticator) {
		if d > 0 {
			a.httpClient.Timeout = d
		}
	}
}

// WithAuthClock overrides the time source. For tests.
func WithAuthClock(now func() time.Time) AuthenticatorOption {
	return func(a *Authenticator) { a.now = now }
}

// NewAuthenticator creates an authenticator for the given credentials.
func NewAuthenticator(creds Credentials, opts ...AuthenticatorOption) *Authenticator {
	a := &Authenticator{
		creds:      creds,
		tokenURL:   fmt.Sprintf("https://%s.id.cyberark.cloud/oauth2/platformtoken", creds.TenantID),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// tokenResponse is the identity service token response.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// Exchange performs a single client-credentials POST and returns the
// resulting token with its computed expiry.
func (a *Authenticator) Exchange(ctx context.Context) (Token, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", a.creds.ClientID)
	form.Set("client_secret", a.creds.ClientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return Token{}, fmt.Errorf("create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return Token{}, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTokenResponseBytes))
	if err != nil {
		return Token{}, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		// fall through to parsing
	case resp.StatusCode == http.StatusBadRequest,
		resp.StatusCode == http.StatusUnauthorized,
		resp.StatusCode == http.StatusForbidden:
		return Token{}, fmt.Errorf("%w: status %d", ErrInvalidCredentials, resp.StatusCode)
	default:
		return Token{}, fmt.Errorf("%w: status %d", ErrExchangeFailed, resp.StatusCode)
	}

	var parsed tokenResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Token{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if parsed.AccessToken == "" {
		return Token{}, fmt.Errorf("%w: empty access_token", ErrMalformedResponse)
	}

	now := a.now()
	lifetime := time.Duration(parsed.ExpiresIn) * time.Second
	if lifetime <= 0 {
		if d, ok := lifetimeFromClaims(parsed.AccessToken, now); ok {
			lifetime = d
		} else {
			lifetime = DefaultTokenLifetime
		}
	}

	return Token{
		Value:     parsed.AccessToken,
		IssuedAt:  now,
		ExpiresAt: now.Add(lifetime),
	}, nil
}

// lifetimeFromClaims derives a lifetime from the access token's exp claim.
// The parse is unverified: this process is the token's consumer, not its
// audience-side verifier, and only needs the expiry hint.
func lifetimeFromClaims(raw string, now time.Time) (time.Duration, bool) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
		return 0, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return 0, false
	}
	lifetime := exp.Time.Sub(now)
	if lifetime <= 0 {
		return 0, false
	}
	return lifetime, true
}

// Ensure Authenticator implements TokenSource
var _ TokenSource = (*Authenticator)(nil)
