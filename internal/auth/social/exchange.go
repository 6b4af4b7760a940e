package social

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// exchangeCode runs the authorization-code grant against the provider's token
// endpoint. All three providers share the same form shape; the client secret
// is omitted when empty (kakao apps may not have one).
func exchangeCode(ctx context.Context, cfg Config, code string) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("client_id", cfg.ClientID)
	if cfg.ClientSecret != "" {
		form.Set("client_secret", cfg.ClientSecret)
	}
	form.Set("redirect_uri", cfg.RedirectURI)
	form.Set("code", code)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTokenExchange, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := cfg.httpClient().Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTokenExchange, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: token endpoint returned %d", ErrTokenExchange, resp.StatusCode)
	}

	var body struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("%w: %w", ErrTokenExchange, err)
	}
	if body.AccessToken == "" {
		return "", fmt.Errorf("%w: response carried no access_token", ErrTokenExchange)
	}
	return body.AccessToken, nil
}

// fetchUserinfo performs the bearer-authenticated userinfo GET and decodes the
// JSON body into out.
func fetchUserinfo(ctx context.Context, cfg Config, accessToken string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cfg.UserinfoURL, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUserinfo, err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := cfg.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUserinfo, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: userinfo endpoint returned %d", ErrUserinfo, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %w", ErrUserinfo, err)
	}
	return nil
}
