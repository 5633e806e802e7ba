package pcloud

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aaearon/mcp-privilege-cloud-sub001/auth"
)

// maxResponseBytes bounds how much of an upstream response body is read.
const maxResponseBytes = 8 << 20

// TokenProvider supplies bearer headers and supports invalidation after a
// rejected token. *auth.TokenCache satisfies it.
type TokenProvider interface {
	AuthHeader(ctx context.Context) (string, error)
	Invalidate()
}

// Client issues authenticated requests against the Privilege Cloud API.
//
// Contract:
//   - Concurrency: safe for concurrent use; the only shared state is the
//     token provider.
//   - Errors: every failure is an *APIError with a classified kind.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	tokens      TokenProvider
	authRetries int
	onRequest   func(method string, status int)
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithAuthRetries bounds the corrective re-authentication cycles after a
// 401. Default 1; 0 disables the transparent retry.
func WithAuthRetries(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.authRetries = n
		}
	}
}

// WithRequestHook registers a callback invoked after every completed HTTP
// exchange. Used for metrics; status 0 means the request never completed.
func WithRequestHook(hook func(method string, status int)) Option {
	return func(c *Client) { c.onRequest = hook }
}

// New creates a client for the API rooted at baseURL
// (https://{subdomain}.privilegecloud.cyberark.cloud/PasswordVault/API).
func New(baseURL string, tokens TokenProvider, opts ...Option) *Client {
	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		tokens:      tokens,
		authRetries: 1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// upstreamError is the error body shape the API returns on failure.
type upstreamError struct {
	ErrorCode    string `json:"ErrorCode"`
	ErrorMessage string `json:"ErrorMessage"`
}

// do issues one API call. On a 401 it invalidates the cached token,
// re-authenticates, and retries; a second consecutive 401 is terminal.
// Other failures are classified and returned without retry.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return &APIError{Kind: KindValidation, Err: fmt.Errorf("encode request: %w", err)}
		}
	}

	for attempt := 0; ; attempt++ {
		status, err := c.doOnce(ctx, method, path, query, payload, out)
		if c.onRequest != nil {
			c.onRequest(method, status)
		}

		if status == http.StatusUnauthorized {
			c.tokens.Invalidate()
			if attempt < c.authRetries {
				continue
			}
			return &APIError{Kind: KindAuthentication, StatusCode: status, Message: "token rejected after re-authentication"}
		}
		return err
	}
}

// doOnce performs a single HTTP exchange. It returns the response status
// (0 when the request never completed) alongside the classified error.
func (c *Client) doOnce(ctx context.Context, method, path string, query url.Values, payload []byte, out any) (int, error) {
	header, err := c.tokens.AuthHeader(ctx)
	if err != nil {
		return 0, &APIError{Kind: KindAuthentication, Err: err}
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return 0, &APIError{Kind: KindTransport, Err: err}
	}
	req.Header.Set("Authorization", header)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, &APIError{Kind: KindTransport, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return resp.StatusCode, &APIError{Kind: KindTransport, Err: err}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil || len(respBody) == 0 {
			return resp.StatusCode, nil
		}
		if err := json.Unmarshal(respBody, out); err != nil {
			return resp.StatusCode, &APIError{Kind: KindMalformed, StatusCode: resp.StatusCode, Err: err}
		}
		return resp.StatusCode, nil
	}

	apiErr := &APIError{Kind: classify(resp.StatusCode), StatusCode: resp.StatusCode}
	var ue upstreamError
	if json.Unmarshal(respBody, &ue) == nil {
		apiErr.Code = ue.ErrorCode
		apiErr.Message = ue.ErrorMessage
	}
	return resp.StatusCode, apiErr
}

// classify maps a non-2xx status to an ErrorKind. 401 is handled by the
// corrective cycle before classification.
func classify(status int) ErrorKind {
	switch {
	case status == http.StatusUnauthorized:
		return KindAuthentication
	case status == http.StatusForbidden:
		return KindPermission
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusTooManyRequests:
		return KindRateLimited
	case status == http.StatusBadRequest:
		return KindValidation
	default:
		return KindUpstream
	}
}

// get is a convenience wrapper for GET requests.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

// post is a convenience wrapper for POST requests.
func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

// delete is a convenience wrapper for DELETE requests.
func (c *Client) delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

// Ensure the auth cache satisfies TokenProvider
var _ TokenProvider = (*auth.TokenCache)(nil)
