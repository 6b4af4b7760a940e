package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/wonfolio/auth/internal/auth/domain"
	"github.com/wonfolio/auth/internal/auth/store"
	"github.com/wonfolio/auth/pkg/cryptox"
	"github.com/wonfolio/auth/pkg/jwtx"
	"github.com/wonfolio/auth/pkg/slogx"
)

var (
	ErrLoginFailed      = errors.New("login_failed")
	ErrDuplicateEmail   = errors.New("duplicate_email")
	ErrDuplicateUserID  = errors.New("duplicate_user_id")
	ErrEmailNotVerified = errors.New("email_not_verified")
)

// SignUpParams carries the fields collected by the sign-up form.
type SignUpParams struct {
	UserID   string
	Password string
	Name     string
	Email    string
	Birth    string
}

// UserService covers password-based account management: sign-up behind the
// email verification gate, and credential login.
type UserService struct {
	Store  store.Store
	Tokens *TokenService
}

// SignUp creates a password account. The email must have been marked verified
// beforehand (see EmailService); the flag is consumed on success so it cannot
// authorize a second registration.
func (s *UserService) SignUp(ctx context.Context, p SignUpParams) error {
	verified, err := s.Tokens.Session.IsEmailVerified(ctx, p.Email)
	if err != nil {
		return err
	}
	if !verified {
		return ErrEmailNotVerified
	}

	if taken, err := s.Store.Users().ExistsByUserID(ctx, p.UserID); err != nil {
		return err
	} else if taken {
		return ErrDuplicateUserID
	}
	if taken, err := s.Store.Users().ExistsByEmail(ctx, p.Email); err != nil {
		return err
	} else if taken {
		return ErrDuplicateEmail
	}

	hash, err := cryptox.HashPassword(p.Password)
	if err != nil {
		return err
	}

	err = s.Store.Users().Create(ctx, domain.User{
		UserID:       p.UserID,
		Name:         p.Name,
		Email:        p.Email,
		PasswordHash: hash,
		Birth:        p.Birth,
	})
	if err != nil {
		// The exists checks race with concurrent sign-ups; the schema has
		// the final say.
		if errors.Is(err, store.ErrAlreadyExists) {
			return ErrDuplicateUserID
		}
		return err
	}

	if err := s.Tokens.Session.ClearEmailVerified(ctx, p.Email); err != nil {
		slogx.FromContext(ctx).Warn("failed to consume email verification flag",
			slog.String("email", p.Email),
			slog.Any("error", err))
	}

	slogx.FromContext(ctx).Info("account created", slog.String("user_id", p.UserID))
	return nil
}

// Login verifies credentials and issues a token pair. Unknown user and wrong
// password collapse into one error so the response cannot be used to probe
// which accounts exist.
func (s *UserService) Login(ctx context.Context, userID, password string) (*domain.TokenPair, error) {
	user, err := s.Store.Users().GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrLoginFailed
		}
		return nil, err
	}

	if user.PasswordHash == "" {
		// Social-only account; it has no password to check.
		return nil, ErrLoginFailed
	}
	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			return nil, ErrLoginFailed
		}
		return nil, err
	}

	return s.Tokens.Issue(ctx, user.UserID)
}

// Profile returns the account for an authenticated subject.
func (s *UserService) Profile(ctx context.Context, userID string) (domain.User, error) {
	return s.Store.Users().GetByUserID(ctx, userID)
}

// UpdateProfile edits the mutable profile fields.
func (s *UserService) UpdateProfile(ctx context.Context, userID, name, birth string) error {
	return s.Store.Users().UpdateProfile(ctx, userID, name, birth)
}

// ResetPassword redeems a reset-purpose verification token (see
// EmailService.SendPasswordResetLink) and replaces the account password.
func (s *UserService) ResetPassword(ctx context.Context, token, newPassword string) error {
	claims, err := s.Tokens.Codec.ParseType(token, jwtx.TokenTypeVerification)
	if err != nil {
		return mapCodecError(err)
	}
	if claims.Purpose != PurposePasswordReset {
		return ErrInvalidPurpose
	}

	user, err := s.Store.Users().GetByEmail(ctx, claims.Subject)
	if err != nil {
		return err
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.Store.Users().UpdatePasswordHash(ctx, user.UserID, hash); err != nil {
		return err
	}

	// The reset link grants one login-equivalent credential change; any live
	// session from before the reset is revoked with it.
	if err := s.Tokens.LogoutUser(ctx, user.UserID); err != nil {
		slogx.FromContext(ctx).Warn("failed to revoke session after password reset",
			slog.String("user_id", user.UserID),
			slog.Any("error", err))
	}

	slogx.FromContext(ctx).Info("password reset", slog.String("user_id", user.UserID))
	return nil
}

// Withdraw deletes the account and revokes its live session. The access
// tokens already in flight expire on their own.
func (s *UserService) Withdraw(ctx context.Context, userID string) error {
	if err := s.Store.Users().Delete(ctx, userID); err != nil {
		return err
	}
	if err := s.Tokens.LogoutUser(ctx, userID); err != nil {
		slogx.FromContext(ctx).Warn("failed to revoke session after withdrawal",
			slog.String("user_id", userID),
			slog.Any("error", err))
	}

	slogx.FromContext(ctx).Info("account withdrawn", slog.String("user_id", userID))
	return nil
}
