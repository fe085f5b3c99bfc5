package ports

import "github.com/appart/appart-client/internal/core/domain"

// StateStore persists the serialized session record under a fixed key.
// Implementations must treat a missing record as the ok=false case rather
// than an error, so startup can fall back to an empty session.
type StateStore interface {
	Load(key string) (data []byte, ok bool, err error)
	Save(key string, data []byte) error
	Delete(key string) error
}

// TokenVault keeps duplicate copies of the two token strings under fixed
// keys, independent of the main session record, for cold-start recovery.
type TokenVault interface {
	// Store writes both halves; a nil pair clears the vault.
	Store(pair *domain.TokenPair) error
	// Load returns the stored pair, or nil when either half is absent.
	Load() (*domain.TokenPair, error)
	Clear() error
}
