// Package api implements the HTTP side of the client: a RoundTripper that
// injects the bearer token and transparently recovers from a single
// authorization failure, and a typed client for the backend surface.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/appart/appart-client/internal/core/domain"
	"github.com/appart/appart-client/internal/core/ports"
	"github.com/appart/appart-client/internal/metrics"
)

const (
	headerAuthorization = "Authorization"
	headerDeviceID      = "X-Device-ID"
)

// Transport is an http.RoundTripper that reads the access token from the
// session at call time, and on a 401 performs at most one refresh-token
// exchange before re-issuing the original request. Concurrent 401s share a
// single in-flight exchange; losers wait for the winner's token pair.
type Transport struct {
	base       http.RoundTripper
	session    ports.SessionStore
	vault      ports.TokenVault
	refreshURL string
	bare       *http.Client
	deviceID   string
	group      singleflight.Group
	log        zerolog.Logger
}

// TransportOptions configures a Transport.
type TransportOptions struct {
	// Base is the underlying round tripper; http.DefaultTransport when nil.
	Base http.RoundTripper
	// Session supplies the token at call time and absorbs refresh results.
	Session ports.SessionStore
	// Vault mirrors refreshed pairs; may be nil.
	Vault ports.TokenVault
	// RefreshURL is the absolute URL of the refresh endpoint.
	RefreshURL string
	// Bare issues the refresh exchange itself, outside this transport, so
	// the exchange cannot recurse into another refresh. http.DefaultClient
	// when nil.
	Bare *http.Client
	// DeviceID is sent with every request when non-empty.
	DeviceID string
	Log      zerolog.Logger
}

// NewTransport builds a Transport from opts.
func NewTransport(opts TransportOptions) *Transport {
	base := opts.Base
	if base == nil {
		base = http.DefaultTransport
	}
	bare := opts.Bare
	if bare == nil {
		bare = http.DefaultClient
	}
	return &Transport{
		base:       base,
		session:    opts.Session,
		vault:      opts.Vault,
		refreshURL: opts.RefreshURL,
		bare:       bare,
		deviceID:   opts.DeviceID,
		log:        opts.Log,
	}
}

// RoundTrip sends the request with the current access token. On a 401 it
// refreshes once and re-issues the original request with the new token; the
// retried request is never refreshed again, so a second 401 surfaces to the
// caller as-is.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	var token string
	if pair := t.session.Tokens(); pair != nil {
		token = pair.Access
	}

	resp, err := t.send(req, token)
	if err != nil {
		metrics.APIRequestsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		metrics.APIRequestsTotal.WithLabelValues(metrics.StatusClass(resp.StatusCode)).Inc()
		return resp, nil
	}

	// Requests whose body cannot be replayed are not retried; the refresh
	// alone would not help the caller.
	if req.Body != nil && req.GetBody == nil {
		metrics.APIRequestsTotal.WithLabelValues("4xx").Inc()
		return resp, nil
	}

	pair, refreshErr := t.refresh(req.Context())
	if refreshErr != nil {
		// Logout already happened inside the exchange; the original 401
		// propagates to the caller.
		metrics.APIRequestsTotal.WithLabelValues("4xx").Inc()
		return resp, nil
	}

	// Drain the 401 before retrying so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()

	retried, err := t.send(req, pair.Access)
	if err != nil {
		metrics.APIRequestsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.APIRequestsTotal.WithLabelValues(metrics.StatusClass(retried.StatusCode)).Inc()
	return retried, nil
}

// send issues a clone of req with the given token. The original request is
// never mutated, per the RoundTripper contract.
func (t *Transport) send(req *http.Request, token string) (*http.Response, error) {
	clone := req.Clone(req.Context())
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, fmt.Errorf("transport: replay body: %w", err)
		}
		clone.Body = body
	}
	if token != "" {
		clone.Header.Set(headerAuthorization, "Bearer "+token)
	} else {
		clone.Header.Del(headerAuthorization)
	}
	if t.deviceID != "" {
		clone.Header.Set(headerDeviceID, t.deviceID)
	}
	return t.base.RoundTrip(clone)
}

// refresh exchanges the stored refresh token for a new pair. All concurrent
// callers coalesce onto one exchange. A failed exchange (or an absent refresh
// token) forces a logout exactly once and clears the vault.
func (t *Transport) refresh(ctx context.Context) (*domain.TokenPair, error) {
	v, err, shared := t.group.Do("refresh", func() (any, error) {
		stored := t.session.Tokens()
		if stored == nil || stored.Refresh == "" {
			t.forceLogout("refresh token absent")
			return nil, fmt.Errorf("%w: no refresh token stored", domain.ErrRefreshFailed)
		}

		pair, err := t.exchange(ctx, stored.Refresh)
		if err != nil {
			t.forceLogout(err.Error())
			return nil, fmt.Errorf("%w: %v", domain.ErrRefreshFailed, err)
		}

		t.session.SetTokens(pair)
		if t.vault != nil {
			if err := t.vault.Store(pair); err != nil {
				t.log.Warn().Err(err).Msg("vault update after refresh failed")
			}
		}
		metrics.TokenRefreshTotal.WithLabelValues("success").Inc()
		t.log.Debug().Msg("access token refreshed")
		return pair, nil
	})
	if shared {
		metrics.TokenRefreshTotal.WithLabelValues("coalesced").Inc()
	}
	if err != nil {
		return nil, err
	}
	return v.(*domain.TokenPair), nil
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// exchange calls the refresh endpoint with the bare client.
func (t *Transport) exchange(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	payload, err := json.Marshal(refreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return nil, fmt.Errorf("encode refresh payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.refreshURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.bare.Do(req)
	if err != nil {
		return nil, fmt.Errorf("refresh exchange: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("refresh exchange: status %d", resp.StatusCode)
	}

	var pair domain.TokenPair
	if err := json.NewDecoder(resp.Body).Decode(&pair); err != nil {
		return nil, fmt.Errorf("decode refresh response: %w", err)
	}
	if pair.Access == "" || pair.Refresh == "" {
		return nil, fmt.Errorf("refresh exchange: incomplete token pair")
	}
	return &pair, nil
}

func (t *Transport) forceLogout(reason string) {
	metrics.TokenRefreshTotal.WithLabelValues("failure").Inc()
	t.log.Warn().Str("reason", reason).Msg("refresh failed, forcing logout")
	t.session.Logout()
	if t.vault != nil {
		if err := t.vault.Clear(); err != nil {
			t.log.Warn().Err(err).Msg("vault clear on forced logout failed")
		}
	}
}
