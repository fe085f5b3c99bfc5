package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/appart/appart-client/internal/core/domain"
	"github.com/appart/appart-client/internal/core/ports"
)

const defaultTimeout = 10 * time.Second

// Client is the typed HTTP client for the backend. It implements
// ports.AuthAPI, ports.UserAPI, and ports.CatalogAPI. Every request goes
// through the supplied round tripper, so bearer injection and the
// refresh-once behaviour apply uniformly.
type Client struct {
	http    *http.Client
	baseURL string
	log     zerolog.Logger
}

// NewClient builds a Client. A zero timeout falls back to 10 seconds.
func NewClient(baseURL string, transport http.RoundTripper, timeout time.Duration, log zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		http:    &http.Client{Transport: transport, Timeout: timeout},
		baseURL: baseURL,
		log:     log,
	}
}

var (
	_ ports.AuthAPI    = (*Client)(nil)
	_ ports.UserAPI    = (*Client)(nil)
	_ ports.CatalogAPI = (*Client)(nil)
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// tokenResponse is the auth envelope: {access_token, refresh_token, token_type}.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

func (r tokenResponse) pair() *domain.TokenPair {
	return &domain.TokenPair{Access: r.AccessToken, Refresh: r.RefreshToken}
}

// Login exchanges credentials for a token pair.
func (c *Client) Login(ctx context.Context, email, password string) (*domain.TokenPair, error) {
	var out tokenResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", loginRequest{Email: email, Password: password}, &out)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	return out.pair(), nil
}

// Register creates an account and returns the initial token pair.
func (c *Client) Register(ctx context.Context, data ports.RegisterData) (*domain.TokenPair, error) {
	var out tokenResponse
	err := c.do(ctx, http.MethodPost, "/auth/register", data, &out)
	if err != nil {
		var se *statusError
		if errors.As(err, &se) && (se.code == http.StatusBadRequest || se.code == http.StatusConflict) {
			return nil, fmt.Errorf("%w: %s", domain.ErrUserExists, se.message)
		}
		return nil, err
	}
	return out.pair(), nil
}

// Refresh exchanges a refresh token for a new pair.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	var out tokenResponse
	if err := c.do(ctx, http.MethodPost, "/auth/refresh", refreshRequest{RefreshToken: refreshToken}, &out); err != nil {
		return nil, err
	}
	return out.pair(), nil
}

// Me fetches the current user.
func (c *Client) Me(ctx context.Context) (*domain.User, error) {
	var user domain.User
	if err := c.do(ctx, http.MethodGet, "/users/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateMe applies a partial profile update and returns the updated user.
func (c *Client) UpdateMe(ctx context.Context, patch domain.UserPatch) (*domain.User, error) {
	var user domain.User
	if err := c.do(ctx, http.MethodPut, "/users/me", patch, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) CreateRequest(ctx context.Context, data domain.CreateRequestData) (*domain.Request, error) {
	var req domain.Request
	if err := c.do(ctx, http.MethodPost, "/requests/", data, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

func (c *Client) MyRequests(ctx context.Context) ([]domain.Request, error) {
	var reqs []domain.Request
	if err := c.do(ctx, http.MethodGet, "/requests/my-requests", nil, &reqs); err != nil {
		return nil, err
	}
	return reqs, nil
}

func (c *Client) OpenRequests(ctx context.Context) ([]domain.Request, error) {
	var reqs []domain.Request
	if err := c.do(ctx, http.MethodGet, "/requests/open", nil, &reqs); err != nil {
		return nil, err
	}
	return reqs, nil
}

func (c *Client) RequestDetails(ctx context.Context, requestID int64) (*domain.Request, error) {
	var req domain.Request
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/requests/%d", requestID), nil, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

func (c *Client) SelectArtist(ctx context.Context, requestID, offerID int64) (*domain.Request, error) {
	var req domain.Request
	path := fmt.Sprintf("/requests/%d/select-artist/%d", requestID, offerID)
	if err := c.do(ctx, http.MethodPut, path, nil, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

func (c *Client) CreateOffer(ctx context.Context, requestID int64, data domain.CreateOfferData) (*domain.Offer, error) {
	var offer domain.Offer
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/offers/request/%d", requestID), data, &offer); err != nil {
		return nil, err
	}
	return &offer, nil
}

func (c *Client) RequestOffers(ctx context.Context, requestID int64) ([]domain.OfferWithArtist, error) {
	var offers []domain.OfferWithArtist
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/offers/request/%d", requestID), nil, &offers); err != nil {
		return nil, err
	}
	return offers, nil
}

func (c *Client) MyOffers(ctx context.Context) ([]domain.OfferWithArtist, error) {
	var offers []domain.OfferWithArtist
	if err := c.do(ctx, http.MethodGet, "/offers/my-offers", nil, &offers); err != nil {
		return nil, err
	}
	return offers, nil
}

func (c *Client) Feed(ctx context.Context) ([]domain.Artwork, error) {
	var artworks []domain.Artwork
	if err := c.do(ctx, http.MethodGet, "/artworks/feed", nil, &artworks); err != nil {
		return nil, err
	}
	return artworks, nil
}

func (c *Client) ArtistPortfolio(ctx context.Context, artistID int64) ([]domain.Artwork, error) {
	var artworks []domain.Artwork
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/artworks/artist/%d", artistID), nil, &artworks); err != nil {
		return nil, err
	}
	return artworks, nil
}

func (c *Client) Notifications(ctx context.Context) ([]domain.Notification, error) {
	var items []domain.Notification
	if err := c.do(ctx, http.MethodGet, "/notifications/", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Health probes the backend, useful when debugging connectivity.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

// do performs one JSON round-trip and decodes the response into out.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api: encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("api: build %s %s: %w", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.errorFrom(resp, method, path)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("api: decode %s %s: %w", method, path, err)
	}
	return nil
}

// statusError carries the HTTP status alongside the mapped sentinel.
type statusError struct {
	sentinel error
	code     int
	message  string
}

func (e *statusError) Error() string {
	if e.sentinel != nil {
		return fmt.Sprintf("%s (status %d): %s", e.sentinel, e.code, e.message)
	}
	return fmt.Sprintf("status %d: %s", e.code, e.message)
}

func (e *statusError) Unwrap() error { return e.sentinel }

// errorBody matches both the FastAPI {"detail": ...} and the {"error": ...}
// envelopes.
type errorBody struct {
	Detail string `json:"detail"`
	Err    string `json:"error"`
}

func (c *Client) errorFrom(resp *http.Response, method, path string) error {
	var eb errorBody
	_ = json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&eb)
	msg := eb.Detail
	if msg == "" {
		msg = eb.Err
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	var sentinel error
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		sentinel = domain.ErrUnauthorized
	case http.StatusForbidden:
		sentinel = domain.ErrForbidden
	case http.StatusNotFound:
		sentinel = domain.ErrNotFound
	}

	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Str("detail", msg).
		Msg("api error response")

	return &statusError{sentinel: sentinel, code: resp.StatusCode, message: msg}
}
