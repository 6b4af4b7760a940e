package social

import (
	"context"
	"fmt"
	"strconv"

	"github.com/wonfolio/auth/internal/auth/domain"
)

// Kakao identifies users by a numeric `id`; email and profile live in an
// optional `kakao_account` sub-object which may be absent entirely.
type Kakao struct {
	cfg Config
}

func NewKakao(cfg Config) *Kakao {
	return &Kakao{cfg: cfg}
}

func (k *Kakao) Key() domain.SocialProvider { return domain.ProviderKakao }

func (k *Kakao) ExchangeCode(ctx context.Context, code string) (string, error) {
	return exchangeCode(ctx, k.cfg, code)
}

func (k *Kakao) FetchProfile(ctx context.Context, accessToken string) (domain.SocialProfile, error) {
	var body struct {
		ID           int64 `json:"id"`
		KakaoAccount *struct {
			Email           string `json:"email"`
			IsEmailVerified *bool  `json:"is_email_verified"`
			Profile         *struct {
				Nickname        string `json:"nickname"`
				ProfileImageURL string `json:"profile_image_url"`
			} `json:"profile"`
		} `json:"kakao_account"`
	}
	if err := fetchUserinfo(ctx, k.cfg, accessToken, &body); err != nil {
		return domain.SocialProfile{}, err
	}
	if body.ID == 0 {
		return domain.SocialProfile{}, fmt.Errorf("%w: kakao userinfo missing id", ErrUserinfo)
	}

	profile := domain.SocialProfile{
		Provider:       domain.ProviderKakao,
		ProviderUserID: strconv.FormatInt(body.ID, 10),
	}
	if acct := body.KakaoAccount; acct != nil {
		profile.Email = acct.Email
		profile.EmailVerified = acct.IsEmailVerified
		if acct.Profile != nil {
			profile.DisplayName = acct.Profile.Nickname
			profile.ProfileImage = acct.Profile.ProfileImageURL
		}
	}
	return profile, nil
}
