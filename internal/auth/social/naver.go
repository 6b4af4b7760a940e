package social

import (
	"context"
	"fmt"

	"github.com/wonfolio/auth/internal/auth/domain"
)

// Naver wraps its userinfo payload in a `response` object; `response.id` is
// the stable identity.
type Naver struct {
	cfg Config
}

func NewNaver(cfg Config) *Naver {
	return &Naver{cfg: cfg}
}

func (n *Naver) Key() domain.SocialProvider { return domain.ProviderNaver }

func (n *Naver) ExchangeCode(ctx context.Context, code string) (string, error) {
	return exchangeCode(ctx, n.cfg, code)
}

func (n *Naver) FetchProfile(ctx context.Context, accessToken string) (domain.SocialProfile, error) {
	var body struct {
		Response struct {
			ID           string `json:"id"`
			Email        string `json:"email"`
			Name         string `json:"name"`
			Nickname     string `json:"nickname"`
			ProfileImage string `json:"profile_image"`
		} `json:"response"`
	}
	if err := fetchUserinfo(ctx, n.cfg, accessToken, &body); err != nil {
		return domain.SocialProfile{}, err
	}
	if body.Response.ID == "" {
		return domain.SocialProfile{}, fmt.Errorf("%w: naver userinfo missing response.id", ErrUserinfo)
	}

	name := body.Response.Name
	if name == "" {
		name = body.Response.Nickname
	}

	return domain.SocialProfile{
		Provider:       domain.ProviderNaver,
		ProviderUserID: body.Response.ID,
		Email:          body.Response.Email,
		DisplayName:    name,
		ProfileImage:   body.Response.ProfileImage,
	}, nil
}
