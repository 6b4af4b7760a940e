// Package session defines the TTL-keyed store backing the token lifecycle:
// the per-user refresh token mapping, the access-token whitelist, the
// revocation blacklist, and the email verification flags. Every entry
// self-expires, so nothing here ever needs housekeeping.
package session

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable is a transient infrastructure failure (store unreachable).
// Callers decide fail-open or fail-closed per operation; revocation checks
// must fail closed.
var ErrUnavailable = errors.New("session: store unavailable")

// Key schemes for the logical partitions. Partitions never interact: a key in
// one is invisible to the others.
const (
	refreshPrefix        = "refresh:"
	whitelistPrefix      = "whitelist:"
	blacklistPrefix      = "blacklist:"
	verifiedPrefix       = "verified:"
	emailCooldownPrefix  = "email:cooldown:"
	emailAttemptsPrefix  = "email:attempts:"
	verifiedFlagValue    = "true"
)

// Store is the session store contract. All operations are idempotent:
// deleting an absent key or blacklisting an already-blacklisted token is a
// no-op, never an error.
type Store interface {
	// SaveRefresh replaces the single live refresh token for a user.
	SaveRefresh(ctx context.Context, userID, token string, ttl time.Duration) error
	// GetRefresh returns the stored refresh token, or "" when none is live.
	GetRefresh(ctx context.Context, userID string) (string, error)
	DeleteRefresh(ctx context.Context, userID string) error

	// Whitelist records that an access token was issued by this system.
	// Advisory only; validation never consults it.
	Whitelist(ctx context.Context, token string, ttl time.Duration) error
	IsWhitelisted(ctx context.Context, token string) (bool, error)
	RemoveWhitelist(ctx context.Context, token string) error

	// Blacklist marks a token revoked until it would have expired anyway.
	Blacklist(ctx context.Context, token string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, token string) (bool, error)

	// MarkEmailVerified flags an email as verified for ttl; sign-up consumes
	// the flag via ClearEmailVerified.
	MarkEmailVerified(ctx context.Context, email string, ttl time.Duration) error
	IsEmailVerified(ctx context.Context, email string) (bool, error)
	ClearEmailVerified(ctx context.Context, email string) error

	// SetCooldown and InCooldown gate how often a verification mail may be
	// re-sent to one address.
	SetCooldown(ctx context.Context, email string, ttl time.Duration) error
	InCooldown(ctx context.Context, email string) (bool, error)

	// IncrementAttempts bumps the per-day send counter for an address and
	// returns the new count. The counter expires at the end of day.
	IncrementAttempts(ctx context.Context, email, day string, expireIn time.Duration) (int64, error)
	// AttemptCount reads the counter without bumping it.
	AttemptCount(ctx context.Context, email, day string) (int64, error)

	// Ping verifies the backing store is reachable.
	Ping(ctx context.Context) error

	Close() error
}

func refreshKey(userID string) string      { return refreshPrefix + userID }
func whitelistKey(token string) string     { return whitelistPrefix + token }
func blacklistKey(token string) string     { return blacklistPrefix + token }
func verifiedKey(email string) string      { return verifiedPrefix + email }
func cooldownKey(email string) string      { return emailCooldownPrefix + email }
func attemptsKey(email, day string) string { return emailAttemptsPrefix + email + ":" + day }
