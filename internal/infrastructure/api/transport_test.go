package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/appart/appart-client/internal/core/domain"
	"github.com/appart/appart-client/internal/core/session"
)

// countingSession wraps a real store and counts forced logouts.
type countingSession struct {
	*session.Store
	logouts atomic.Int32
}

func (c *countingSession) Logout() {
	c.logouts.Add(1)
	c.Store.Logout()
}

func newSession(pair *domain.TokenPair) *countingSession {
	store := session.New(nil, zerolog.Nop())
	if pair != nil {
		store.SetTokens(pair)
	}
	return &countingSession{Store: store}
}

func writeTokens(w http.ResponseWriter, access, refresh string) {
	_ = json.NewEncoder(w).Encode(map[string]string{
		"access_token":  access,
		"refresh_token": refresh,
		"token_type":    "bearer",
	})
}

func newTestClient(t *testing.T, backend *httptest.Server, sess *countingSession) *Client {
	t.Helper()
	transport := NewTransport(TransportOptions{
		Session:    sess,
		RefreshURL: backend.URL + "/auth/refresh",
		Bare:       backend.Client(),
		Log:        zerolog.Nop(),
	})
	return NewClient(backend.URL, transport, 5*time.Second, zerolog.Nop())
}

func TestTransport_InjectsBearerAtCallTime(t *testing.T) {
	var seen []string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	}))
	defer backend.Close()

	sess := newSession(nil)
	client := newTestClient(t, backend, sess)

	if err := client.Health(t.Context()); err != nil {
		t.Fatalf("health: %v", err)
	}
	sess.SetTokens(&domain.TokenPair{Access: "a1", Refresh: "r1"})
	if err := client.Health(t.Context()); err != nil {
		t.Fatalf("health: %v", err)
	}

	if seen[0] != "" {
		t.Fatalf("request without token must carry no Authorization header, got %q", seen[0])
	}
	if seen[1] != "Bearer a1" {
		t.Fatalf("expected fresh token from store, got %q", seen[1])
	}
}

func TestTransport_RefreshAndRetryCarriesNewToken(t *testing.T) {
	var refreshCalls atomic.Int32
	var resourceTokens []string
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		var body struct {
			RefreshToken string `json:"refresh_token"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.RefreshToken != "r-old" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeTokens(w, "a-new", "r-new")
	})
	mux.HandleFunc("/users/me", func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get("Authorization")
		resourceTokens = append(resourceTokens, token)
		if token != "Bearer a-new" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(domain.User{ID: 1, Email: "x@y.z", Name: "X", Role: domain.RoleCustomer})
	})
	backend := httptest.NewServer(mux)
	defer backend.Close()

	sess := newSession(&domain.TokenPair{Access: "a-old", Refresh: "r-old"})
	client := newTestClient(t, backend, sess)

	user, err := client.Me(t.Context())
	if err != nil {
		t.Fatalf("Me after refresh should succeed: %v", err)
	}
	if user.ID != 1 {
		t.Fatalf("unexpected user: %+v", user)
	}

	if got := refreshCalls.Load(); got != 1 {
		t.Fatalf("expected exactly one refresh, got %d", got)
	}
	if len(resourceTokens) != 2 || resourceTokens[0] != "Bearer a-old" || resourceTokens[1] != "Bearer a-new" {
		t.Fatalf("retried request must carry the new token: %v", resourceTokens)
	}
	if pair := sess.Tokens(); pair == nil || pair.Access != "a-new" || pair.Refresh != "r-new" {
		t.Fatalf("store not updated with refreshed pair: %+v", pair)
	}
	if sess.logouts.Load() != 0 {
		t.Fatalf("successful refresh must not log out")
	}
}

func TestTransport_NoRefreshToken_LogsOutOnce(t *testing.T) {
	var refreshCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	})
	mux.HandleFunc("/users/me", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	backend := httptest.NewServer(mux)
	defer backend.Close()

	sess := newSession(nil)
	client := newTestClient(t, backend, sess)

	_, err := client.Me(t.Context())
	if err == nil {
		t.Fatalf("caller must not see success")
	}
	if !isUnauthorized(err) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if got := sess.logouts.Load(); got != 1 {
		t.Fatalf("logout must be invoked exactly once, got %d", got)
	}
	if got := refreshCalls.Load(); got != 0 {
		t.Fatalf("no exchange should happen without a refresh token, got %d", got)
	}
}

func TestTransport_RefreshFailure_LogsOutAndPropagates(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	mux.HandleFunc("/users/me", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	backend := httptest.NewServer(mux)
	defer backend.Close()

	sess := newSession(&domain.TokenPair{Access: "a", Refresh: "r-bad"})
	client := newTestClient(t, backend, sess)

	if _, err := client.Me(t.Context()); !isUnauthorized(err) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if sess.logouts.Load() != 1 {
		t.Fatalf("failed exchange must force logout")
	}
	if sess.IsAuthenticated() {
		t.Fatalf("session still authenticated after forced logout")
	}
}

func TestTransport_SecondUnauthorizedNotRetried(t *testing.T) {
	var refreshCalls, resourceCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		writeTokens(w, fmt.Sprintf("a-%d", refreshCalls.Load()), "r-next")
	})
	mux.HandleFunc("/users/me", func(w http.ResponseWriter, r *http.Request) {
		resourceCalls.Add(1)
		// Unauthorized no matter what: the retried request must surface
		// this instead of looping.
		w.WriteHeader(http.StatusUnauthorized)
	})
	backend := httptest.NewServer(mux)
	defer backend.Close()

	sess := newSession(&domain.TokenPair{Access: "a", Refresh: "r"})
	client := newTestClient(t, backend, sess)

	if _, err := client.Me(t.Context()); !isUnauthorized(err) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if got := refreshCalls.Load(); got != 1 {
		t.Fatalf("expected one refresh per originating request, got %d", got)
	}
	if got := resourceCalls.Load(); got != 2 {
		t.Fatalf("expected original + single retry, got %d", got)
	}
}

func TestTransport_ConcurrentUnauthorized_SingleExchange(t *testing.T) {
	const workers = 8

	var refreshCalls atomic.Int32
	arrived := make(chan struct{}, workers)
	release := make(chan struct{})

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		writeTokens(w, "a-new", "r-new")
	})
	mux.HandleFunc("/users/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "Bearer a-new" {
			_ = json.NewEncoder(w).Encode(domain.User{ID: 1, Email: "x@y.z", Name: "X", Role: domain.RoleArtist})
			return
		}
		// Hold every first attempt until all workers are in flight, so
		// their 401s race into the refresh path together.
		arrived <- struct{}{}
		<-release
		w.WriteHeader(http.StatusUnauthorized)
	})
	backend := httptest.NewServer(mux)
	defer backend.Close()

	sess := newSession(&domain.TokenPair{Access: "a-old", Refresh: "r-old"})
	client := newTestClient(t, backend, sess)

	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := range workers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = client.Me(t.Context())
		}(i)
	}

	for range workers {
		<-arrived
	}
	close(release)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("worker %d failed: %v", i, err)
		}
	}
	if got := refreshCalls.Load(); got != 1 {
		t.Fatalf("concurrent 401s must share one exchange, got %d", got)
	}
}

func isUnauthorized(err error) bool {
	return errors.Is(err, domain.ErrUnauthorized)
}
