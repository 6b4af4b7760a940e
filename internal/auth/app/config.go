package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// ProviderConfig holds the OAuth client credentials and endpoints for one
// social provider. A provider with an empty ClientID is treated as disabled.
type ProviderConfig struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	RedirectURI  string `env:"REDIRECT_URI"`
	TokenURL     string `env:"TOKEN_URL"`
	UserinfoURL  string `env:"USERINFO_URL"`
}

// Config is the full application configuration, populated from environment
// variables by LoadConfig.
type Config struct {
	Issuer    string `env:"AUTH_ISSUER"     envDefault:"wonfolio-auth"`
	JWTSecret string `env:"AUTH_JWT_SECRET"`

	AccessTokenTTL       time.Duration `env:"AUTH_ACCESS_TOKEN_TTL"`
	RefreshTokenTTL      time.Duration `env:"AUTH_REFRESH_TOKEN_TTL"`
	VerificationTokenTTL time.Duration `env:"AUTH_VERIFICATION_TOKEN_TTL"`

	DatabaseFile string `env:"AUTH_DATABASE_FILE" envDefault:"auth.db"`

	// ValkeyAddress selects the session driver: when set the Valkey-backed
	// store is used, otherwise sessions live in process memory.
	ValkeyAddress  string `env:"AUTH_VALKEY_ADDRESS"`
	ValkeyPassword string `env:"AUTH_VALKEY_PASSWORD"`
	ValkeyDB       int    `env:"AUTH_VALKEY_DB"`

	// EmailBaseURL prefixes the verification links mailed to users.
	EmailBaseURL string `env:"AUTH_EMAIL_BASE_URL" envDefault:"http://localhost:8080"`

	Google ProviderConfig `envPrefix:"AUTH_GOOGLE_"`
	Naver  ProviderConfig `envPrefix:"AUTH_NAVER_"`
	Kakao  ProviderConfig `envPrefix:"AUTH_KAKAO_"`

	Env                 string        `env:"ENV"                   envDefault:"dev"`
	LogLevel            string        `env:"LOG_LEVEL"             envDefault:"info"`
	LogFormat           string        `env:"LOG_FORMAT"            envDefault:"json"`
	Port                int           `env:"PORT"                  envDefault:"8080"`
	ShutdownGracePeriod time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`
}

// LoadConfig reads the configuration from the environment and validates the
// required settings. Provider endpoints default to the public ones so
// deployments only need to supply client credentials.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if cfg.JWTSecret == "" {
		return Config{}, errors.New("AUTH_JWT_SECRET is required")
	}

	defaultEndpoints(&cfg.Google,
		"https://oauth2.googleapis.com/token",
		"https://openidconnect.googleapis.com/v1/userinfo")
	defaultEndpoints(&cfg.Naver,
		"https://nid.naver.com/oauth2.0/token",
		"https://openapi.naver.com/v1/nid/me")
	defaultEndpoints(&cfg.Kakao,
		"https://kauth.kakao.com/oauth/token",
		"https://kapi.kakao.com/v2/user/me")

	return cfg, nil
}

func defaultEndpoints(p *ProviderConfig, tokenURL, userinfoURL string) {
	if p.TokenURL == "" {
		p.TokenURL = tokenURL
	}
	if p.UserinfoURL == "" {
		p.UserinfoURL = userinfoURL
	}
}
