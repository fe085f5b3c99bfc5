// Package devserver is an in-memory implementation of the backend surface
// the client consumes. It exists for local development and integration
// tests; the production backend is a separate service.
package devserver

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/appart/appart-client/internal/core/domain"
)

// Server holds the Echo instance and the in-memory state behind it.
type Server struct {
	echo   *echo.Echo
	store  *memoryStore
	secret string
	log    zerolog.Logger
}

// Options configures a Server.
type Options struct {
	// JWTSecret signs the HS256 access and refresh tokens.
	JWTSecret string
	Log       zerolog.Logger
	// Metrics enables the echoprometheus middleware and the /metrics route.
	// Off in tests to avoid duplicate collector registration.
	Metrics bool
}

// New builds a Server with all routes registered.
func New(opts Options) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:   e,
		store:  newMemoryStore(),
		secret: opts.JWTSecret,
		log:    opts.Log,
	}

	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	if opts.Metrics {
		e.Use(echoprometheus.NewMiddleware("appart_stub"))
		e.GET("/metrics", echoprometheus.NewHandler())
	}
	e.Validator = newValidator()
	e.HTTPErrorHandler = newErrorHandler(opts.Log)

	// --- Auth ---
	e.POST("/auth/register", s.register)
	e.POST("/auth/login", s.login)
	e.POST("/auth/refresh", s.refresh)

	// --- Authenticated surface ---
	auth := s.authMiddleware()
	e.GET("/users/me", s.me, auth)
	e.PUT("/users/me", s.updateMe, auth)

	e.POST("/requests/", s.createRequest, auth, requireRole(domain.RoleCustomer, domain.RoleAdmin))
	e.GET("/requests/my-requests", s.myRequests, auth)
	e.GET("/requests/open", s.openRequests, auth)
	e.GET("/requests/:id", s.requestDetails, auth)
	e.PUT("/requests/:id/select-artist/:offerID", s.selectArtist, auth)

	e.POST("/offers/request/:id", s.createOffer, auth, requireRole(domain.RoleArtist))
	e.GET("/offers/request/:id", s.requestOffers, auth)
	e.GET("/offers/my-offers", s.myOffers, auth)

	e.GET("/artworks/feed", s.feed, auth)
	e.GET("/artworks/artist/:id", s.artistPortfolio, auth)

	e.GET("/notifications/", s.notifications, auth)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	return s
}

// Handler exposes the server for httptest and embedding.
func (s *Server) Handler() http.Handler { return s.echo }

// Start listens on addr and blocks.
func (s *Server) Start(addr string) error { return s.echo.Start(addr) }

// errorResponse is the canonical error envelope. The field name matches the
// production backend so the client's error decoding works against both.
type errorResponse struct {
	Detail string `json:"detail"`
}

// newErrorHandler maps domain errors to HTTP statuses and logs the rest.
func newErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var he *echo.HTTPError
		if errors.As(err, &he) {
			_ = c.JSON(he.Code, errorResponse{Detail: fmt.Sprintf("%v", he.Message)})
			return
		}

		code := http.StatusInternalServerError
		msg := "internal server error"
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials):
			code, msg = http.StatusUnauthorized, "Incorrect email or password"
		case errors.Is(err, domain.ErrUserExists):
			code, msg = http.StatusBadRequest, "Email already registered"
		case errors.Is(err, domain.ErrUserNotFound), errors.Is(err, domain.ErrNotFound):
			code, msg = http.StatusNotFound, err.Error()
		case errors.Is(err, domain.ErrForbidden):
			code, msg = http.StatusForbidden, "access forbidden"
		case errors.Is(err, domain.ErrUnauthorized):
			code, msg = http.StatusUnauthorized, "Could not validate credentials"
		default:
			log.Error().Err(err).Str("method", c.Request().Method).Str("path", c.Path()).Msg("unhandled error")
		}
		_ = c.JSON(code, errorResponse{Detail: msg})
	}
}
