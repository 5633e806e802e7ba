package auth

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// fakeSource is a TokenSource with a programmable result and an exchange
// counter.
type fakeSource struct {
	mu       sync.Mutex
	calls    atomic.Int64
	delay    time.Duration
	err      error
	lifetime time.Duration
	now      func() time.Time
	serial   int
}

func (f *fakeSource) Exchange(_ context.Context) (Token, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return Token{}, f.err
	}
	f.serial++
	now := f.now()
	return Token{
		Value:     "tok-" + string(rune('a'+f.serial-1)),
		IssuedAt:  now,
		ExpiresAt: now.Add(f.lifetime),
	}, nil
}

func (f *fakeSource) setErr(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

// fakeClock is a mutable time source.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newFixture(lifetime time.Duration) (*TokenCache, *fakeSource, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)}
	source := &fakeSource{lifetime: lifetime, now: clock.now}
	cache := NewTokenCache(source, WithClock(clock.now), WithExpiryMargin(30*time.Second))
	return cache, source, clock
}

func TestTokenCache_ColdCacheConcurrentCallersSingleExchange(t *testing.T) {
	cache, source, _ := newFixture(15 * time.Minute)
	source.delay = 20 * time.Millisecond // widen the race window

	const callers = 50
	var wg sync.WaitGroup
	tokens := make([]Token, callers)
	errs := make([]error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tokens[i], errs[i] = cache.GetValidToken(context.Background())
		}(i)
	}
	wg.Wait()

	if got := source.calls.Load(); got != 1 {
		t.Errorf("exchanges = %d, want 1", got)
	}
	for i := 0; i < callers; i++ {
		if errs[i] != nil {
			t.Fatalf("caller %d error = %v", i, errs[i])
		}
		if tokens[i].Value != tokens[0].Value {
			t.Errorf("caller %d got %q, want %q", i, tokens[i].Value, tokens[0].Value)
		}
	}
}

func TestTokenCache_FifteenMinuteLifetimeScenario(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)}
	source := &fakeSource{lifetime: 15 * time.Minute, now: clock.now}
	cache := NewTokenCache(source, WithClock(clock.now), WithExpiryMargin(0))

	first, err := cache.GetValidToken(context.Background())
	if err != nil {
		t.Fatalf("GetValidToken() error = %v", err)
	}
	if got := source.calls.Load(); got != 1 {
		t.Fatalf("exchanges = %d, want 1", got)
	}

	// t=14:59: still cached, no network call.
	clock.advance(14*time.Minute + 59*time.Second)
	tok, err := cache.GetValidToken(context.Background())
	if err != nil {
		t.Fatalf("GetValidToken() error = %v", err)
	}
	if tok.Value != first.Value {
		t.Errorf("token changed before expiry: %q vs %q", tok.Value, first.Value)
	}
	if got := source.calls.Load(); got != 1 {
		t.Errorf("exchanges = %d, want 1 (cached token should be served)", got)
	}

	// t=15:01: expired, exactly one refresh.
	clock.advance(2 * time.Second)
	tok, err = cache.GetValidToken(context.Background())
	if err != nil {
		t.Fatalf("GetValidToken() error = %v", err)
	}
	if tok.Value == first.Value {
		t.Error("expired token was served")
	}
	if got := source.calls.Load(); got != 2 {
		t.Errorf("exchanges = %d, want 2", got)
	}
}

func TestTokenCache_ExpiryMarginHonored(t *testing.T) {
	cache, source, clock := newFixture(15 * time.Minute)

	if _, err := cache.GetValidToken(context.Background()); err != nil {
		t.Fatal(err)
	}

	// Inside the 30s margin before expiry the token must not be served.
	clock.advance(15*time.Minute - 10*time.Second)
	if _, err := cache.GetValidToken(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := source.calls.Load(); got != 2 {
		t.Errorf("exchanges = %d, want 2 (margin should force refresh)", got)
	}
}

func TestTokenCache_FailedExchangeLeavesCacheEmpty(t *testing.T) {
	cache, source, _ := newFixture(15 * time.Minute)
	wantErr := errors.New("boom")
	source.setErr(wantErr)

	if _, err := cache.GetValidToken(context.Background()); !errors.Is(err, wantErr) {
		t.Fatalf("error = %v, want %v", err, wantErr)
	}
	if _, ok := cache.Cached(); ok {
		t.Error("cache should be empty after failed exchange")
	}

	// Recovery: a later call retries and caches.
	source.setErr(nil)
	if _, err := cache.GetValidToken(context.Background()); err != nil {
		t.Fatalf("GetValidToken() after recovery error = %v", err)
	}
	if _, ok := cache.Cached(); !ok {
		t.Error("cache should hold a valid token after recovery")
	}
}

func TestTokenCache_Invalidate(t *testing.T) {
	cache, source, _ := newFixture(15 * time.Minute)

	if _, err := cache.GetValidToken(context.Background()); err != nil {
		t.Fatal(err)
	}
	cache.Invalidate()
	if _, ok := cache.Cached(); ok {
		t.Error("Cached() should report invalid after Invalidate()")
	}

	if _, err := cache.GetValidToken(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := source.calls.Load(); got != 2 {
		t.Errorf("exchanges = %d, want 2 (invalidate forces re-auth)", got)
	}
}

func TestTokenCache_AuthHeader(t *testing.T) {
	cache, _, _ := newFixture(15 * time.Minute)

	header, err := cache.AuthHeader(context.Background())
	if err != nil {
		t.Fatalf("AuthHeader() error = %v", err)
	}
	if header != "Bearer tok-a" {
		t.Errorf("AuthHeader() = %q, want Bearer tok-a", header)
	}
}

func TestTokenCache_FetchHook(t *testing.T) {
	var outcomes []error
	clock := &fakeClock{t: time.Now()}
	source := &fakeSource{lifetime: time.Minute, now: clock.now}
	cache := NewTokenCache(source,
		WithClock(clock.now),
		WithFetchHook(func(err error) { outcomes = append(outcomes, err) }),
	)

	if _, err := cache.GetValidToken(context.Background()); err != nil {
		t.Fatal(err)
	}
	source.setErr(errors.New("boom"))
	cache.Invalidate()
	_, _ = cache.GetValidToken(context.Background())

	if len(outcomes) != 2 {
		t.Fatalf("hook calls = %d, want 2", len(outcomes))
	}
	if outcomes[0] != nil || outcomes[1] == nil {
		t.Errorf("hook outcomes = [%v, %v], want [nil, non-nil]", outcomes[0], outcomes[1])
	}
}

func TestToken_Valid(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name   string
		token  Token
		margin time.Duration
		want   bool
	}{
		{name: "empty", token: Token{}, want: false},
		{name: "fresh", token: Token{Value: "t", ExpiresAt: now.Add(time.Hour)}, want: true},
		{name: "expired", token: Token{Value: "t", ExpiresAt: now.Add(-time.Second)}, want: false},
		{name: "inside margin", token: Token{Value: "t", ExpiresAt: now.Add(30 * time.Second)}, margin: time.Minute, want: false},
		{name: "outside margin", token: Token{Value: "t", ExpiresAt: now.Add(2 * time.Minute)}, margin: time.Minute, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.token.Valid(now, tt.margin); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}
