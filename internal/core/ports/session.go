package ports

import "github.com/appart/appart-client/internal/core/domain"

// SessionReader exposes read-only access to the process-wide session state.
// Reads are synchronous and safe from any goroutine.
type SessionReader interface {
	User() *domain.User
	Tokens() *domain.TokenPair
	// IsAuthenticated is computed from token presence on every read; it is
	// never stored alongside the tokens, so it cannot drift from them.
	IsAuthenticated() bool
	ActiveMode() domain.ActiveMode
	RoleSelected() bool
	HasSeenWelcome() bool
}

// SessionStore is the single source of truth for authentication and
// authorization state. All mutations are atomic with respect to each other.
type SessionStore interface {
	SessionReader

	// SetTokens replaces the stored token pair; nil clears both halves.
	SetTokens(pair *domain.TokenPair)
	// SetUser replaces the user wholesale; nil clears it.
	SetUser(user *domain.User)
	// Login applies user and tokens as a single state transition.
	Login(user *domain.User, pair *domain.TokenPair)
	// Logout clears everything except the has-seen-welcome flag. Idempotent.
	Logout()
	// UpdateUser shallow-merges the patch into the current user.
	UpdateUser(patch domain.UserPatch)
	SetActiveMode(mode domain.ActiveMode)
	SetRoleSelected(selected bool)
	// MarkWelcomeSeen is one-directional: the flag only ever becomes true.
	MarkWelcomeSeen()
}
