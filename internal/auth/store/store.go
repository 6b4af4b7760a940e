package store

import (
	"context"
	"errors"

	"github.com/wonfolio/auth/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite, and
// later postgres) implement this. Sub-repositories are exposed as methods so
// a transaction-scoped Store can hand out the same repos bound to its tx.
type Store interface {
	Users() Users

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed. This is the
	// recommended way to handle multi-step mutations (e.g. find-then-link
	// during social sign-in).
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetByUserID returns a user by its login identifier.
	GetByUserID(ctx context.Context, userID string) (domain.User, error)

	// GetByEmail returns the user owning an email address.
	GetByEmail(ctx context.Context, email string) (domain.User, error)

	// GetBySocialIdentity returns the user linked to a provider identity.
	GetBySocialIdentity(ctx context.Context, provider domain.SocialProvider, providerUserID string) (domain.User, error)

	// Create inserts a new user. Returns ErrAlreadyExists when the user_id,
	// email or provider identity is already taken.
	Create(ctx context.Context, u domain.User) error

	// LinkSocialIdentity attaches a provider identity to an existing account
	// and bumps updated_at.
	LinkSocialIdentity(ctx context.Context, userID string, link domain.SocialLink) error

	// UpdateProfile mutates name and birth and bumps updated_at.
	UpdateProfile(ctx context.Context, userID, name, birth string) error

	// UpdatePasswordHash replaces the stored password hash.
	UpdatePasswordHash(ctx context.Context, userID, newHash string) error

	// ExistsByUserID reports whether a user_id is taken.
	ExistsByUserID(ctx context.Context, userID string) (bool, error)

	// ExistsByEmail reports whether an email is taken.
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// Delete removes an account. Returns ErrNotFound when it does not exist.
	Delete(ctx context.Context, userID string) error
}
