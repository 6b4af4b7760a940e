package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/wonfolio/auth/pkg/idx"
)

// TokenType tags what a token may be used for. The lifecycle rules differ per
// type, so callers must check it after parsing rather than trusting the bearer.
type TokenType string

const (
	TokenTypeAccess       TokenType = "access"
	TokenTypeRefresh      TokenType = "refresh"
	TokenTypeVerification TokenType = "verification"
)

// Default token TTLs. These are sensible security defaults and can be
// overridden per-service through Config.
const (
	// DefaultAccessTokenTTL is the default lifetime for access tokens.
	DefaultAccessTokenTTL = 30 * time.Minute

	// DefaultRefreshTokenTTL is the default lifetime for refresh tokens.
	// This doubles as the fallback TTL when a refresh token's remaining
	// lifetime cannot be computed at save time.
	DefaultRefreshTokenTTL = 14 * 24 * time.Hour

	// DefaultVerificationTokenTTL is the lifetime of email verification
	// links. Short by design since they travel over email.
	DefaultVerificationTokenTTL = 15 * time.Minute
)

// Claims are the claims we embed in every token. We keep changes additive so
// tokens minted by older builds keep parsing.
type Claims struct {
	jwt.RegisteredClaims

	// TokenType is one of access/refresh/verification.
	TokenType TokenType `json:"token_type,omitempty"`

	// Purpose narrows verification tokens to a single flow, e.g.
	// "email-verification:signup". Empty for access/refresh tokens.
	Purpose string `json:"purpose,omitempty"`
}

// newClaims builds minimally-correct claims for a subject.
func newClaims(subject string, tt TokenType, purpose, issuer string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        idx.New().String(),
		},
		TokenType: tt,
		Purpose:   purpose,
	}
}
