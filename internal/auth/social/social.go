// Package social talks to federated identity providers. Each provider turns
// an authorization code into an access token and the access token into a
// normalized profile. Everything past that point (account resolution, token
// issuance) belongs to the service layer.
package social

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/wonfolio/auth/internal/auth/domain"
)

var (
	ErrUnsupportedProvider = errors.New("social: unsupported provider")
	ErrTokenExchange       = errors.New("social: token exchange failed")
	ErrUserinfo            = errors.New("social: userinfo fetch failed")
)

const defaultHTTPTimeout = 5 * time.Second

// Provider exchanges an authorization code for a provider access token and
// resolves that token to a profile.
type Provider interface {
	Key() domain.SocialProvider
	ExchangeCode(ctx context.Context, code string) (string, error)
	FetchProfile(ctx context.Context, accessToken string) (domain.SocialProfile, error)
}

// Registry resolves provider keys to configured providers. Built once at
// startup; lookups never touch the network.
type Registry struct {
	providers map[domain.SocialProvider]Provider
}

func NewRegistry(providers ...Provider) *Registry {
	m := make(map[domain.SocialProvider]Provider, len(providers))
	for _, p := range providers {
		m[p.Key()] = p
	}
	return &Registry{providers: m}
}

// Resolve returns the provider for key, or ErrUnsupportedProvider.
func (r *Registry) Resolve(key string) (Provider, error) {
	p, ok := r.providers[domain.SocialProvider(key)]
	if !ok {
		return nil, ErrUnsupportedProvider
	}
	return p, nil
}

// Config is the per-provider OAuth client configuration. Endpoints are
// configurable so tests can point providers at httptest servers.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	TokenURL     string
	UserinfoURL  string

	// HTTPClient overrides the default client (5s timeout).
	HTTPClient *http.Client
}

func (c Config) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: defaultHTTPTimeout}
}
