// Package auth provides session tokens, password hashing, the Google OAuth
// provider, and the HTTP middleware that guards authenticated routes.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "taskdeck"

// sessionTTL is how long an issued session token stays valid. Clients
// re-authenticate after expiry; there is no refresh flow.
const sessionTTL = 24 * time.Hour

// SessionClaims is the JWT payload of a session credential. The subject
// carries the user id; email and oauth_provider ride along so the transport
// layer can present them without a directory lookup.
type SessionClaims struct {
	Email         string `json:"email,omitempty"`
	OAuthProvider string `json:"oauth_provider,omitempty"`
	jwt.RegisteredClaims
}

// UserID returns the subject claim.
func (c *SessionClaims) UserID() string {
	return c.Subject
}

// TokenService signs and validates HS256 session tokens.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService. The secret must be at least 16
// characters; generate one with `openssl rand -hex 32`.
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// Generate issues a session token for the given user. provider is empty for
// password sign-ins.
func (s *TokenService) Generate(userID, email, provider string) (string, error) {
	return s.GenerateWithDuration(userID, email, provider, sessionTTL)
}

// GenerateWithDuration issues a token with a custom lifetime. Used by tests
// to produce already-expired tokens.
func (s *TokenService) GenerateWithDuration(userID, email, provider string, d time.Duration) (string, error) {
	now := time.Now()

	claims := SessionClaims{
		Email:         email,
		OAuthProvider: provider,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}
	return signed, nil
}

// Validate parses and verifies a token string. The signing method is pinned
// to HS256 and the issuer is required, so tokens minted elsewhere (or with a
// downgraded algorithm) are rejected.
func (s *TokenService) Validate(tokenStr string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&SessionClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("auth: token expired")
		}
		return nil, fmt.Errorf("auth: invalid token: %w", err)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("auth: invalid token claims")
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("auth: token has no subject")
	}

	return claims, nil
}
