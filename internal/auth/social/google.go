package social

import (
	"context"
	"fmt"

	"github.com/wonfolio/auth/internal/auth/domain"
)

// Google serves flat OIDC userinfo claims; `sub` is the stable identity.
type Google struct {
	cfg Config
}

func NewGoogle(cfg Config) *Google {
	return &Google{cfg: cfg}
}

func (g *Google) Key() domain.SocialProvider { return domain.ProviderGoogle }

func (g *Google) ExchangeCode(ctx context.Context, code string) (string, error) {
	return exchangeCode(ctx, g.cfg, code)
}

func (g *Google) FetchProfile(ctx context.Context, accessToken string) (domain.SocialProfile, error) {
	var body struct {
		Sub           string `json:"sub"`
		Email         string `json:"email"`
		Name          string `json:"name"`
		EmailVerified *bool  `json:"email_verified"`
		Picture       string `json:"picture"`
	}
	if err := fetchUserinfo(ctx, g.cfg, accessToken, &body); err != nil {
		return domain.SocialProfile{}, err
	}
	if body.Sub == "" {
		return domain.SocialProfile{}, fmt.Errorf("%w: google userinfo missing sub", ErrUserinfo)
	}

	return domain.SocialProfile{
		Provider:       domain.ProviderGoogle,
		ProviderUserID: body.Sub,
		Email:          body.Email,
		DisplayName:    body.Name,
		EmailVerified:  body.EmailVerified,
		ProfileImage:   body.Picture,
	}, nil
}
