package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/appart/appart-client/internal/core/domain"
)

// Fixed vault keys, one file per token half.
const (
	accessTokenKey  = "access_token"
	refreshTokenKey = "refresh_token"
)

// Vault keeps duplicate copies of the two token strings under fixed keys,
// separate from the main session record, so a session can be recovered at
// cold start even when the record itself is lost or corrupt. Files are 0600;
// on platforms with a real keychain this is where one would plug it in.
type Vault struct {
	dir string
}

// NewVault returns a Vault rooted at dir. The directory must exist.
func NewVault(dir string) *Vault {
	return &Vault{dir: dir}
}

func (v *Vault) path(key string) string {
	return filepath.Join(v.dir, key)
}

// Store writes both halves. A nil pair clears the vault.
func (v *Vault) Store(pair *domain.TokenPair) error {
	if pair == nil {
		return v.Clear()
	}
	if err := os.WriteFile(v.path(accessTokenKey), []byte(pair.Access), 0o600); err != nil {
		return fmt.Errorf("vault: store access token: %w", err)
	}
	if err := os.WriteFile(v.path(refreshTokenKey), []byte(pair.Refresh), 0o600); err != nil {
		return fmt.Errorf("vault: store refresh token: %w", err)
	}
	return nil
}

// Load returns the stored pair, or nil when either half is absent or empty.
func (v *Vault) Load() (*domain.TokenPair, error) {
	access, err := v.read(accessTokenKey)
	if err != nil {
		return nil, err
	}
	refresh, err := v.read(refreshTokenKey)
	if err != nil {
		return nil, err
	}
	if access == "" || refresh == "" {
		return nil, nil
	}
	return &domain.TokenPair{Access: access, Refresh: refresh}, nil
}

// Clear removes both halves. Missing files are not an error.
func (v *Vault) Clear() error {
	for _, key := range []string{accessTokenKey, refreshTokenKey} {
		if err := os.Remove(v.path(key)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("vault: clear %s: %w", key, err)
		}
	}
	return nil
}

func (v *Vault) read(key string) (string, error) {
	data, err := os.ReadFile(v.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("vault: read %s: %w", key, err)
	}
	return strings.TrimSpace(string(data)), nil
}
