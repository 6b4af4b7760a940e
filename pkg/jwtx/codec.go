package jwtx

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed  = errors.New("jwtx: malformed token")
	ErrInvalidSig = errors.New("jwtx: invalid signature")
	ErrExpired    = errors.New("jwtx: token expired")
	ErrIssuer     = errors.New("jwtx: issuer mismatch")
	ErrTokenType  = errors.New("jwtx: unexpected token type")
)

// Config carries the codec settings. Secret and Issuer are required.
type Config struct {
	// Secret is the process-wide HMAC signing key. Verification needs only
	// this key, no external call.
	Secret []byte

	// Issuer is stamped into the iss claim and enforced on parse.
	Issuer string

	AccessTTL       time.Duration // default DefaultAccessTokenTTL
	RefreshTTL      time.Duration // default DefaultRefreshTokenTTL
	VerificationTTL time.Duration // default DefaultVerificationTokenTTL

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Codec mints and verifies the self-contained bearer tokens used across the
// service. It is pure computation, no I/O.
type Codec struct {
	secret          []byte
	issuer          string
	accessTTL       time.Duration
	refreshTTL      time.Duration
	verificationTTL time.Duration
	now             func() time.Time
}

// NewCodec validates cfg and returns a ready Codec.
func NewCodec(cfg Config) (*Codec, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("jwtx: secret is required")
	}
	if cfg.Issuer == "" {
		return nil, errors.New("jwtx: issuer is required")
	}

	c := &Codec{
		secret:          cfg.Secret,
		issuer:          cfg.Issuer,
		accessTTL:       cfg.AccessTTL,
		refreshTTL:      cfg.RefreshTTL,
		verificationTTL: cfg.VerificationTTL,
		now:             cfg.Now,
	}
	if c.accessTTL <= 0 {
		c.accessTTL = DefaultAccessTokenTTL
	}
	if c.refreshTTL <= 0 {
		c.refreshTTL = DefaultRefreshTokenTTL
	}
	if c.verificationTTL <= 0 {
		c.verificationTTL = DefaultVerificationTokenTTL
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c, nil
}

// AccessTTL reports the configured access token lifetime.
func (c *Codec) AccessTTL() time.Duration { return c.accessTTL }

// RefreshTTL reports the configured refresh token lifetime.
func (c *Codec) RefreshTTL() time.Duration { return c.refreshTTL }

// IssueAccess mints a signed access token for the given subject.
func (c *Codec) IssueAccess(userID string) (string, error) {
	return c.sign(newClaims(userID, TokenTypeAccess, "", c.issuer, c.accessTTL, c.now()))
}

// IssueRefresh mints a signed refresh token for the given subject.
func (c *Codec) IssueRefresh(userID string) (string, error) {
	return c.sign(newClaims(userID, TokenTypeRefresh, "", c.issuer, c.refreshTTL, c.now()))
}

// IssueVerification mints a purpose-scoped verification token. The subject is
// the email address being verified and purpose pins the flow the token is
// valid for (e.g. "email-verification:signup").
func (c *Codec) IssueVerification(email, purpose string) (string, error) {
	return c.sign(newClaims(email, TokenTypeVerification, purpose, c.issuer, c.verificationTTL, c.now()))
}

func (c *Codec) sign(claims Claims) (string, error) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(c.secret)
}

// Parse verifies the signature and standard claims of a token and returns its
// claims. Expired-but-otherwise-valid tokens fail with ErrExpired so callers
// can treat expiry differently from forgery.
func (c *Codec) Parse(token string) (Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, c.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(c.issuer),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return Claims{}, mapParseError(err)
	}
	return claims, nil
}

// ParseType is Parse plus a token_type check, since most call sites only
// accept one type.
func (c *Codec) ParseType(token string, want TokenType) (Claims, error) {
	claims, err := c.Parse(token)
	if err != nil {
		return Claims{}, err
	}
	if claims.TokenType != want {
		return Claims{}, ErrTokenType
	}
	return claims, nil
}

// Remaining reports how long until the token expires. The signature must still
// verify; a forged token has no remaining lifetime. Already-expired tokens
// return ErrExpired rather than a negative duration.
func (c *Codec) Remaining(token string) (time.Duration, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, c.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return 0, mapParseError(err)
	}
	if claims.ExpiresAt == nil {
		return 0, ErrMalformed
	}

	remaining := claims.ExpiresAt.Time.Sub(c.now())
	if remaining <= 0 {
		return 0, ErrExpired
	}
	return remaining, nil
}

func (c *Codec) keyFunc(*jwt.Token) (any, error) {
	return c.secret, nil
}

func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSig
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return ErrIssuer
	default:
		return ErrMalformed
	}
}
