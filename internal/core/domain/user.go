package domain

import "time"

// Role is the marketplace role a user has committed to.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleArtist   Role = "artist"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is one of the roles the backend accepts.
func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleArtist || r == RoleAdmin
}

// ActiveMode is the UI-facing mode toggle. It is seeded from the user's role
// at login but can be overridden within a session, independently of the role.
type ActiveMode string

const (
	ModeUser   ActiveMode = "USER"
	ModeArtist ActiveMode = "ARTIST"
)

// User mirrors the backend user schema.
type User struct {
	ID                int64      `json:"id"`
	Email             string     `json:"email"`
	Name              string     `json:"name"`
	Username          string     `json:"username,omitempty"`
	Role              Role       `json:"role"`
	IsActive          bool       `json:"is_active"`
	ProfilePictureURL string     `json:"profile_picture_url,omitempty"`
	Bio               string     `json:"bio,omitempty"`
	IsArtistVerified  bool       `json:"is_artist_verified"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         *time.Time `json:"updated_at,omitempty"`
}

// Clone returns a deep copy, safe to hand out across goroutines.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	clone := *u
	if u.UpdatedAt != nil {
		ts := *u.UpdatedAt
		clone.UpdatedAt = &ts
	}
	return &clone
}

// UserPatch is a shallow partial update of the editable profile fields.
// Nil fields are left untouched.
type UserPatch struct {
	Name              *string `json:"name,omitempty"`
	Bio               *string `json:"bio,omitempty"`
	ProfilePictureURL *string `json:"profile_picture_url,omitempty"`
	Role              *Role   `json:"role,omitempty"`
}

// IsEmpty reports whether the patch carries no fields at all.
func (p UserPatch) IsEmpty() bool {
	return p.Name == nil && p.Bio == nil && p.ProfilePictureURL == nil && p.Role == nil
}

// TokenPair carries the access/refresh credentials issued by the backend.
// The session holds a *TokenPair rather than two independent strings, so a
// half-set token state cannot be represented.
type TokenPair struct {
	Access  string `json:"access_token"`
	Refresh string `json:"refresh_token"`
}

// Clone returns a copy of the pair, or nil for a nil receiver.
func (t *TokenPair) Clone() *TokenPair {
	if t == nil {
		return nil
	}
	clone := *t
	return &clone
}
