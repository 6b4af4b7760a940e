package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/wonfolio/auth/internal/auth/domain"
	"github.com/wonfolio/auth/internal/auth/social"
	"github.com/wonfolio/auth/internal/auth/store"
	"github.com/wonfolio/auth/pkg/slogx"
)

// SocialService federates sign-in through external identity providers and
// resolves the resulting profile onto a local account.
type SocialService struct {
	Providers *social.Registry
	Store     store.Store
	Tokens    *TokenService
}

// SignIn runs the full social login: exchange the authorization code, fetch
// the profile, resolve or create the local account, and issue a token pair
// for it. Repeating a sign-in with the same identity lands on the same
// account (idempotent upsert).
func (s *SocialService) SignIn(ctx context.Context, providerKey, code string) (*domain.TokenPair, error) {
	provider, err := s.Providers.Resolve(providerKey)
	if err != nil {
		return nil, err
	}

	accessToken, err := provider.ExchangeCode(ctx, code)
	if err != nil {
		return nil, err
	}

	profile, err := provider.FetchProfile(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	user, err := s.resolveAccount(ctx, profile)
	if err != nil {
		return nil, err
	}

	return s.Tokens.Issue(ctx, user.UserID)
}

// resolveAccount maps a provider profile to a local user.
//
// Resolution order: (1) an account already linked to this provider identity;
// (2) an account owning the profile's email, which gets the identity linked
// in place (password and user_id untouched); (3) a new account with a
// synthetic "<provider>:<id>" user id and no password. The find-then-link
// steps run in one transaction so two first logins with the same identity
// cannot both create.
func (s *SocialService) resolveAccount(ctx context.Context, p domain.SocialProfile) (domain.User, error) {
	var resolved domain.User

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		user, err := tx.Users().GetBySocialIdentity(ctx, p.Provider, p.ProviderUserID)
		if err == nil {
			resolved = user
			return nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		if p.Email != "" {
			user, err = tx.Users().GetByEmail(ctx, p.Email)
			if err == nil {
				link := domain.SocialLink{
					Provider:       p.Provider,
					ProviderUserID: p.ProviderUserID,
					EmailVerified:  p.EmailVerified,
					ProfileImage:   p.ProfileImage,
				}
				if err := tx.Users().LinkSocialIdentity(ctx, user.UserID, link); err != nil {
					return err
				}
				slogx.FromContext(ctx).Info("linked social identity to existing account",
					slog.String("user_id", user.UserID),
					slog.String("provider", string(p.Provider)))
				resolved = user
				return nil
			}
			if !errors.Is(err, store.ErrNotFound) {
				return err
			}
		}

		name := p.DisplayName
		if name == "" {
			name = p.SyntheticUserID()
		}
		created := domain.User{
			UserID:         p.SyntheticUserID(),
			Name:           name,
			Email:          p.Email,
			SocialProvider: p.Provider,
			ProviderUserID: p.ProviderUserID,
			EmailVerified:  p.EmailVerified,
			ProfileImage:   p.ProfileImage,
		}
		if err := tx.Users().Create(ctx, created); err != nil {
			return err
		}
		slogx.FromContext(ctx).Info("created account from social profile",
			slog.String("user_id", created.UserID),
			slog.String("provider", string(p.Provider)))
		resolved = created
		return nil
	})
	if err != nil {
		return domain.User{}, err
	}
	return resolved, nil
}
