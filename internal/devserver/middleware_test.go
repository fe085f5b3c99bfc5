package devserver

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/appart/appart-client/internal/core/domain"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return New(Options{JWTSecret: "middleware-secret", Log: zerolog.Nop()})
}

func seedUser(t *testing.T, s *Server, email string, role domain.Role) domain.User {
	t.Helper()
	u, err := s.store.createUser(email, "Test User", role, []byte("irrelevant"))
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	srv := newTestServer(t)
	user := seedUser(t, srv, "alice@example.com", domain.RoleCustomer)
	pair, err := srv.issuePair(user.ID)
	if err != nil {
		t.Fatalf("issue pair: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+pair.Access)
	rec := httptest.NewRecorder()
	c := srv.echo.NewContext(req, rec)

	called := false
	handler := srv.authMiddleware()(func(c echo.Context) error {
		called = true
		if got := currentUser(c); got.ID != user.ID || got.Email != user.Email {
			t.Fatalf("wrong user on context: %+v", got)
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := srv.echo.NewContext(req, rec)

	handler := srv.authMiddleware()(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); err != nil {
		srv.echo.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthMiddleware_RefreshTokenRejected(t *testing.T) {
	srv := newTestServer(t)
	user := seedUser(t, srv, "bob@example.com", domain.RoleCustomer)
	pair, err := srv.issuePair(user.ID)
	if err != nil {
		t.Fatalf("issue pair: %v", err)
	}

	// A refresh token must not grant access to authenticated routes.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+pair.Refresh)
	rec := httptest.NewRecorder()
	c := srv.echo.NewContext(req, rec)

	handler := srv.authMiddleware()(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); err != nil {
		srv.echo.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthMiddleware_WrongSignature(t *testing.T) {
	srv := newTestServer(t)
	user := seedUser(t, srv, "carol@example.com", domain.RoleCustomer)

	other := New(Options{JWTSecret: "a-different-secret", Log: zerolog.Nop()})
	pair, err := other.issuePair(user.ID)
	if err != nil {
		t.Fatalf("issue pair: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+pair.Access)
	rec := httptest.NewRecorder()
	c := srv.echo.NewContext(req, rec)

	handler := srv.authMiddleware()(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); err != nil {
		srv.echo.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRequireRole_Allows(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := srv.echo.NewContext(req, rec)
	c.Set(currentUserKey, domain.User{ID: 1, Role: domain.RoleArtist})

	called := false
	handler := requireRole(domain.RoleArtist)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next handler not called")
	}
}

func TestRequireRole_Forbids(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := srv.echo.NewContext(req, rec)
	c.Set(currentUserKey, domain.User{ID: 1, Role: domain.RoleCustomer})

	handler := requireRole(domain.RoleArtist)(func(c echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})

	if err := handler(c); err != nil {
		srv.echo.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}
