package devserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/appart/appart-client/internal/core/domain"
	"github.com/appart/appart-client/internal/core/ports"
)

// tokenEnvelope mirrors the production auth response.
type tokenEnvelope struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

func envelope(pair *domain.TokenPair) tokenEnvelope {
	return tokenEnvelope{
		AccessToken:  pair.Access,
		RefreshToken: pair.Refresh,
		TokenType:    "bearer",
	}
}

func (s *Server) register(c echo.Context) error {
	var payload ports.RegisterData
	if err := c.Bind(&payload); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&payload); err != nil {
		return err
	}

	role := payload.Role
	if role == "" {
		role = domain.RoleCustomer
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user, err := s.store.createUser(payload.Email, payload.Name, role, hash)
	if err != nil {
		return err
	}
	if payload.Username != "" {
		s.setUsername(user.ID, payload.Username)
	}

	pair, err := s.issuePair(user.ID)
	if err != nil {
		return err
	}

	s.log.Info().Str("email", user.Email).Int64("user_id", user.ID).Msg("user registered")
	return c.JSON(http.StatusCreated, envelope(pair))
}

type loginPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (s *Server) login(c echo.Context) error {
	var payload loginPayload
	if err := c.Bind(&payload); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&payload); err != nil {
		return err
	}

	rec, ok := s.store.userByEmail(payload.Email)
	if !ok {
		return domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(rec.hash, []byte(payload.Password)); err != nil {
		return domain.ErrInvalidCredentials
	}

	pair, err := s.issuePair(rec.user.ID)
	if err != nil {
		return err
	}

	s.log.Info().Str("email", rec.user.Email).Msg("user logged in")
	return c.JSON(http.StatusOK, envelope(pair))
}

type refreshPayload struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

func (s *Server) refresh(c echo.Context) error {
	var payload refreshPayload
	if err := c.Bind(&payload); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&payload); err != nil {
		return err
	}

	userID, err := s.verifyToken(payload.RefreshToken, claimTypeRefresh)
	if err != nil {
		return domain.ErrUnauthorized
	}
	if _, ok := s.store.userByID(userID); !ok {
		return domain.ErrUnauthorized
	}

	pair, err := s.issuePair(userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, envelope(pair))
}

func (s *Server) setUsername(id int64, username string) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	if rec, ok := s.store.users[id]; ok {
		rec.user.Username = username
	}
}
