// Package session holds the process-wide authentication/authorization state.
//
// The store is the single shared mutable resource of the client: every
// component reads it synchronously and mutates it only through the operations
// below. Each operation is one critical section, so compound invariants
// (tokens set together, role writes marking the role as selected) hold even
// when the client is driven from multiple goroutines.
package session

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"

	"github.com/appart/appart-client/internal/core/domain"
	"github.com/appart/appart-client/internal/core/ports"
)

// storageKey is the fixed key of the persisted session record.
const storageKey = "auth-storage"

// Store implements ports.SessionStore. Create one with New and inject it into
// everything that needs session state; there is no package-level instance.
type Store struct {
	mu sync.Mutex

	user           *domain.User
	tokens         *domain.TokenPair
	activeMode     domain.ActiveMode
	roleSelected   bool
	hasSeenWelcome bool

	// modeExplicit tracks whether the user overrode the mode this session,
	// so Login does not clobber it when seeding from the role. Not persisted.
	modeExplicit bool

	state ports.StateStore
	log   zerolog.Logger
}

// persistedState is the durable subset of the session, serialized on every
// mutation. Field names match the record layout the mobile app used, so a
// state file written by either client rehydrates in both.
type persistedState struct {
	User            *domain.User      `json:"user"`
	AccessToken     string            `json:"accessToken"`
	RefreshToken    string            `json:"refreshToken"`
	IsAuthenticated bool              `json:"isAuthenticated"`
	ActiveMode      domain.ActiveMode `json:"activeMode"`
	RoleSelected    bool              `json:"roleSelected"`
	HasSeenWelcome  bool              `json:"hasSeenWelcome"`
}

// New creates a Store and rehydrates it from the state store. Corrupt or
// absent stored data falls back to the empty session; New never fails.
func New(state ports.StateStore, log zerolog.Logger) *Store {
	s := &Store{
		activeMode: domain.ModeUser,
		state:      state,
		log:        log,
	}
	s.rehydrate()
	return s
}

func (s *Store) rehydrate() {
	if s.state == nil {
		return
	}
	data, ok, err := s.state.Load(storageKey)
	if err != nil {
		s.log.Warn().Err(err).Msg("session state unreadable, starting empty")
		return
	}
	if !ok {
		return
	}

	var ps persistedState
	if err := json.Unmarshal(data, &ps); err != nil {
		s.log.Warn().Err(err).Msg("session state corrupt, starting empty")
		return
	}

	s.user = ps.User
	// A half-written pair is dropped whole rather than rehydrated half-set.
	if ps.AccessToken != "" && ps.RefreshToken != "" {
		s.tokens = &domain.TokenPair{Access: ps.AccessToken, Refresh: ps.RefreshToken}
	}
	if ps.ActiveMode == domain.ModeArtist {
		s.activeMode = domain.ModeArtist
	}
	s.roleSelected = ps.RoleSelected
	if s.user != nil && s.user.Role != "" {
		s.roleSelected = true
	}
	s.hasSeenWelcome = ps.HasSeenWelcome
}

// persist serializes the durable subset. Callers must hold s.mu.
// Persistence failures are logged, never surfaced: a session that cannot be
// saved still has to work for the rest of the process lifetime.
func (s *Store) persist() {
	if s.state == nil {
		return
	}
	ps := persistedState{
		User:            s.user,
		IsAuthenticated: s.tokens != nil,
		ActiveMode:      s.activeMode,
		RoleSelected:    s.roleSelected,
		HasSeenWelcome:  s.hasSeenWelcome,
	}
	if s.tokens != nil {
		ps.AccessToken = s.tokens.Access
		ps.RefreshToken = s.tokens.Refresh
	}

	data, err := json.Marshal(ps)
	if err != nil {
		s.log.Warn().Err(err).Msg("session state marshal failed")
		return
	}
	if err := s.state.Save(storageKey, data); err != nil {
		s.log.Warn().Err(err).Msg("session state save failed")
	}
}

// SetTokens replaces the token pair; nil clears it. Idempotent.
func (s *Store) SetTokens(pair *domain.TokenPair) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = pair.Clone()
	s.persist()
}

// SetUser replaces the user wholesale. A non-empty role marks the role as
// selected; authentication is untouched because it is derived from tokens.
func (s *Store) SetUser(user *domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = user.Clone()
	s.roleSelected = user != nil && user.Role != ""
	s.persist()
}

// Login applies user and tokens as one state transition. The active mode is
// seeded from the user's role unless the user already picked one this session.
func (s *Store) Login(user *domain.User, pair *domain.TokenPair) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = user.Clone()
	s.tokens = pair.Clone()
	if !s.modeExplicit {
		if user != nil && user.Role == domain.RoleArtist {
			s.activeMode = domain.ModeArtist
		} else {
			s.activeMode = domain.ModeUser
		}
	}
	s.roleSelected = user != nil && user.Role != ""
	s.persist()
}

// Logout clears user, tokens, role selection, and resets the active mode.
// The has-seen-welcome flag survives so returning users skip the welcome
// screen. Safe to call when already logged out.
func (s *Store) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	s.tokens = nil
	s.activeMode = domain.ModeUser
	s.modeExplicit = false
	s.roleSelected = false
	s.persist()
}

// UpdateUser shallow-merges the patch into the current user. No-op when no
// user is set. A role write forces the role-selected flag.
func (s *Store) UpdateUser(patch domain.UserPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return
	}
	if patch.Name != nil {
		s.user.Name = *patch.Name
	}
	if patch.Bio != nil {
		s.user.Bio = *patch.Bio
	}
	if patch.ProfilePictureURL != nil {
		s.user.ProfilePictureURL = *patch.ProfilePictureURL
	}
	if patch.Role != nil {
		s.user.Role = *patch.Role
		s.roleSelected = true
	}
	s.persist()
}

// SetActiveMode records a user-chosen mode override for this session.
func (s *Store) SetActiveMode(mode domain.ActiveMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeMode = mode
	s.modeExplicit = true
	s.persist()
}

func (s *Store) SetRoleSelected(selected bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roleSelected = selected
	s.persist()
}

// MarkWelcomeSeen is monotonic: the flag only ever becomes true.
func (s *Store) MarkWelcomeSeen() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hasSeenWelcome = true
	s.persist()
}

// User returns a copy of the current user, or nil.
func (s *Store) User() *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user.Clone()
}

// Tokens returns a copy of the current token pair, or nil.
func (s *Store) Tokens() *domain.TokenPair {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens.Clone()
}

// IsAuthenticated is computed from token presence on every read.
func (s *Store) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens != nil
}

func (s *Store) ActiveMode() domain.ActiveMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeMode
}

func (s *Store) RoleSelected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roleSelected
}

func (s *Store) HasSeenWelcome() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasSeenWelcome
}
