package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestAuthenticator_Exchange(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Method = %v, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
			t.Errorf("Content-Type = %v", ct)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatal(err)
		}
		if got := r.PostForm.Get("grant_type"); got != "client_credentials" {
			t.Errorf("grant_type = %q", got)
		}
		if got := r.PostForm.Get("client_id"); got != "svc@acme" {
			t.Errorf("client_id = %q", got)
		}
		if got := r.PostForm.Get("client_secret"); got != "hunter2" {
			t.Errorf("client_secret = %q", got)
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "platform-token",
			"token_type":   "Bearer",
			"expires_in":   900,
		})
	}))
	defer server.Close()

	issued := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	a := NewAuthenticator(
		Credentials{TenantID: "acme", ClientID: "svc@acme", ClientSecret: "hunter2"},
		WithTokenURL(server.URL),
		WithAuthClock(func() time.Time { return issued }),
	)

	token, err := a.Exchange(context.Background())
	if err != nil {
		t.Fatalf("Exchange() error = %v", err)
	}
	if token.Value != "platform-token" {
		t.Errorf("Value = %q", token.Value)
	}
	if !token.IssuedAt.Equal(issued) {
		t.Errorf("IssuedAt = %v, want %v", token.IssuedAt, issued)
	}
	if want := issued.Add(15 * time.Minute); !token.ExpiresAt.Equal(want) {
		t.Errorf("ExpiresAt = %v, want %v", token.ExpiresAt, want)
	}
}

func TestAuthenticator_ExchangeErrorKinds(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "bad request", status: http.StatusBadRequest, body: `{"error":"invalid_client"}`, wantErr: ErrInvalidCredentials},
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{}`, wantErr: ErrInvalidCredentials},
		{name: "forbidden", status: http.StatusForbidden, body: `{}`, wantErr: ErrInvalidCredentials},
		{name: "server error", status: http.StatusInternalServerError, body: ``, wantErr: ErrExchangeFailed},
		{name: "not json", status: http.StatusOK, body: `<html>maintenance</html>`, wantErr: ErrMalformedResponse},
		{name: "empty token", status: http.StatusOK, body: `{"token_type":"Bearer"}`, wantErr: ErrMalformedResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			a := NewAuthenticator(Credentials{TenantID: "acme"}, WithTokenURL(server.URL))
			_, err := a.Exchange(context.Background())
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAuthenticator_ExchangeUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
	server.Close() // refuse connections

	a := NewAuthenticator(Credentials{TenantID: "acme"}, WithTokenURL(server.URL))
	_, err := a.Exchange(context.Background())
	if !errors.Is(err, ErrUnreachable) {
		t.Errorf("error = %v, want %v", err, ErrUnreachable)
	}
}

func TestAuthenticator_ConfiguredTimeoutBoundsExchange(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		<-release // hold the exchange open past the client timeout
	}))
	defer server.Close()
	defer close(release)

	a := NewAuthenticator(
		Credentials{TenantID: "acme"},
		WithTokenURL(server.URL),
		WithTimeout(50*time.Millisecond),
	)

	start := time.Now()
	_, err := a.Exchange(context.Background())
	elapsed := time.Since(start)

	if !errors.Is(err, ErrUnreachable) {
		t.Errorf("error = %v, want %v", err, ErrUnreachable)
	}
	if elapsed > 2*time.Second {
		t.Errorf("exchange took %v, configured timeout not applied", elapsed)
	}
}

func TestAuthenticator_LifetimeFromExpClaim(t *testing.T) {
	issued := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	exp := issued.Add(10 * time.Minute)

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": exp.Unix(),
		"sub": "svc@acme",
	}).SignedString([]byte("test-key"))
	if err != nil {
		t.Fatal(err)
	}

	// Response without expires_in: lifetime must come from the exp claim.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": signed,
			"token_type":   "Bearer",
		})
	}))
	defer server.Close()

	a := NewAuthenticator(
		Credentials{TenantID: "acme"},
		WithTokenURL(server.URL),
		WithAuthClock(func() time.Time { return issued }),
	)

	token, err := a.Exchange(context.Background())
	if err != nil {
		t.Fatalf("Exchange() error = %v", err)
	}
	if !token.ExpiresAt.Equal(exp) {
		t.Errorf("ExpiresAt = %v, want %v", token.ExpiresAt, exp)
	}
}

func TestAuthenticator_LifetimeDefaultsForOpaqueToken(t *testing.T) {
	issued := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "opaque-not-a-jwt",
			"token_type":   "Bearer",
		})
	}))
	defer server.Close()

	a := NewAuthenticator(
		Credentials{TenantID: "acme"},
		WithTokenURL(server.URL),
		WithAuthClock(func() time.Time { return issued }),
	)

	token, err := a.Exchange(context.Background())
	if err != nil {
		t.Fatalf("Exchange() error = %v", err)
	}
	if want := issued.Add(DefaultTokenLifetime); !token.ExpiresAt.Equal(want) {
		t.Errorf("ExpiresAt = %v, want %v", token.ExpiresAt, want)
	}
}
