package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/appart/appart-client/internal/core/domain"
	"github.com/appart/appart-client/internal/core/ports"
)

// AuthService implements the login, register, logout, and restore flows.
// Each operation is an explicit sequential chain (API call, token vault
// write, session update, query bookkeeping) where any failing step
// short-circuits the rest.
type AuthService struct {
	auth     ports.AuthAPI
	users    ports.UserAPI
	session  ports.SessionStore
	vault    ports.TokenVault
	query    *CurrentUserQuery
	validate *validator.Validate
	log      zerolog.Logger
}

func NewAuthService(
	auth ports.AuthAPI,
	users ports.UserAPI,
	session ports.SessionStore,
	vault ports.TokenVault,
	query *CurrentUserQuery,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		auth:     auth,
		users:    users,
		session:  session,
		vault:    vault,
		query:    query,
		validate: validator.New(),
		log:      log,
	}
}

// Login authenticates, persists the token pair, syncs the current user into
// the session, and invalidates the user query.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	pair, err := s.auth.Login(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	return s.establishSession(ctx, pair)
}

// Register creates an account and establishes a session the same way Login
// does. The payload is validated locally before it goes on the wire.
func (s *AuthService) Register(ctx context.Context, data ports.RegisterData) (*domain.User, error) {
	if err := s.validate.Struct(data); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	pair, err := s.auth.Register(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	return s.establishSession(ctx, pair)
}

// establishSession stores the pair, fetches the profile with it, and applies
// both to the session as one transition.
func (s *AuthService) establishSession(ctx context.Context, pair *domain.TokenPair) (*domain.User, error) {
	if err := s.vault.Store(pair); err != nil {
		// The session still works for this process; only cold-start
		// recovery is degraded.
		s.log.Warn().Err(err).Msg("token vault write failed")
	}
	s.session.SetTokens(pair)

	user, err := s.users.Me(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch profile: %w", err)
	}

	s.session.Login(user, pair)
	if s.query != nil {
		s.query.MarkFresh()
	}

	s.log.Info().Int64("user_id", user.ID).Str("role", string(user.Role)).Msg("session established")
	return user, nil
}

// Logout clears the vault and the session. Safe to call when already logged
// out; vault errors are logged, never surfaced.
func (s *AuthService) Logout() {
	if err := s.vault.Clear(); err != nil {
		s.log.Warn().Err(err).Msg("token vault clear failed")
	}
	s.session.Logout()
	if s.query != nil {
		s.query.Invalidate()
	}
	s.log.Info().Msg("logged out")
}

// Restore recovers a session at cold start from the vault's duplicate token
// copies, independent of the main session record. It reports whether a
// stored pair was found.
func (s *AuthService) Restore() (bool, error) {
	pair, err := s.vault.Load()
	if err != nil {
		return false, fmt.Errorf("restore session: %w", err)
	}
	if pair == nil {
		return false, nil
	}
	s.session.SetTokens(pair)
	return true, nil
}

// UpdateProfile applies a partial update remotely, mirrors it into the
// session, and invalidates the user query so the next read refetches.
func (s *AuthService) UpdateProfile(ctx context.Context, patch domain.UserPatch) (*domain.User, error) {
	if patch.IsEmpty() {
		return s.session.User(), nil
	}
	if patch.Role != nil && !patch.Role.Valid() {
		return nil, fmt.Errorf("update profile: invalid role %q", *patch.Role)
	}

	user, err := s.users.UpdateMe(ctx, patch)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	// Local edits patch field-by-field; only login and refetch replace the
	// user wholesale.
	s.session.UpdateUser(patch)
	if s.query != nil {
		s.query.MarkFresh()
	}
	return user, nil
}
