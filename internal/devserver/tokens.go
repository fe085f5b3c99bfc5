package devserver

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/appart/appart-client/internal/core/domain"
)

const (
	accessTTL  = 30 * time.Minute
	refreshTTL = 7 * 24 * time.Hour

	claimTypeAccess  = "access"
	claimTypeRefresh = "refresh"
)

// issuePair signs a fresh access/refresh pair for the user. Both tokens
// carry the user id as subject and a "type" claim so a refresh token can
// never pass as an access token.
func (s *Server) issuePair(userID int64) (*domain.TokenPair, error) {
	access, err := s.signToken(userID, claimTypeAccess, accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := s.signToken(userID, claimTypeRefresh, refreshTTL)
	if err != nil {
		return nil, err
	}
	return &domain.TokenPair{Access: access, Refresh: refresh}, nil
}

func (s *Server) signToken(userID int64, tokenType string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":  strconv.FormatInt(userID, 10),
		"type": tokenType,
		"exp":  time.Now().Add(ttl).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.secret))
}

// verifyToken parses tok, checks the signature and expiry, and returns the
// subject user id when the "type" claim matches wantType.
func (s *Server) verifyToken(tok, wantType string) (int64, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(tok, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(s.secret), nil
	})
	if err != nil || !parsed.Valid {
		return 0, domain.ErrUnauthorized
	}
	if typ, _ := claims["type"].(string); typ != wantType {
		return 0, domain.ErrUnauthorized
	}
	sub, _ := claims["sub"].(string)
	id, err := strconv.ParseInt(sub, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ErrUnauthorized
	}
	return id, nil
}
