package sqlite

import (
	"context"

	"github.com/wonfolio/auth/internal/auth/domain"
)

type usersRepo struct {
	db queryer
}

const userColumns = `user_id, name, email, password_hash, birth,
	social_provider, provider_user_id, email_verified, profile_image,
	created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (domain.User, error) {
	var r userRow
	err := row.Scan(
		&r.UserID, &r.Name, &r.Email, &r.PasswordHash, &r.Birth,
		&r.SocialProvider, &r.ProviderUserID, &r.EmailVerified, &r.ProfileImage,
		&r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return mapUser(r), nil
}

func (r *usersRepo) GetByUserID(ctx context.Context, userID string) (domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE user_id = ?`, userID))
}

func (r *usersRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email))
}

func (r *usersRepo) GetBySocialIdentity(ctx context.Context, provider domain.SocialProvider, providerUserID string) (domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE social_provider = ? AND provider_user_id = ?`,
		string(provider), providerUserID))
}

func (r *usersRepo) Create(ctx context.Context, u domain.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (
			user_id, name, email, password_hash, birth,
			social_provider, provider_user_id, email_verified, profile_image
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.UserID,
		u.Name,
		mapStringNull(u.Email),
		u.PasswordHash,
		mapStringNull(u.Birth),
		mapStringNull(string(u.SocialProvider)),
		mapStringNull(u.ProviderUserID),
		mapOptionalBool(u.EmailVerified),
		mapStringNull(u.ProfileImage),
	)
	return mapConstraint(err)
}

func (r *usersRepo) LinkSocialIdentity(ctx context.Context, userID string, link domain.SocialLink) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET
			social_provider = ?,
			provider_user_id = ?,
			email_verified = ?,
			profile_image = COALESCE(NULLIF(?, ''), profile_image),
			updated_at = CURRENT_TIMESTAMP
		 WHERE user_id = ?`,
		string(link.Provider),
		link.ProviderUserID,
		mapOptionalBool(link.EmailVerified),
		link.ProfileImage,
		userID,
	)
	if err != nil {
		return mapConstraint(err)
	}
	return requireRow(res)
}

func (r *usersRepo) UpdateProfile(ctx context.Context, userID, name, birth string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET name = ?, birth = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE user_id = ?`,
		name, mapStringNull(birth), userID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, userID, newHash string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE user_id = ?`,
		newHash, userID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *usersRepo) ExistsByUserID(ctx context.Context, userID string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM users WHERE user_id = ?`, userID).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *usersRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM users WHERE email = ?`, email).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *usersRepo) Delete(ctx context.Context, userID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE user_id = ?`, userID)
	if err != nil {
		return err
	}
	return requireRow(res)
}
