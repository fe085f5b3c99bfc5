package domain

import "errors"

var (
	// ErrNotAuthenticated is returned by operations that require a session
	// with stored credentials.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrUnauthorized maps a 401 response that survived the single refresh
	// attempt (or was not eligible for one).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRefreshFailed indicates the refresh-token exchange itself failed.
	// It is the only error that forces a logout.
	ErrRefreshFailed = errors.New("token refresh failed")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrNotFound           = errors.New("resource not found")
	ErrForbidden          = errors.New("access forbidden")
)
