package session

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"time"

	valkeygo "github.com/valkey-io/valkey-go"
)

const connectTimeout = 5 * time.Second

// ValkeyConfig holds connection settings for the Valkey-backed store.
type ValkeyConfig struct {
	// Address is the server address, e.g. "localhost:6379".
	Address string

	// Password is the optional AUTH password.
	Password string

	// DB selects the logical database (default 0).
	DB int

	// TLS enables encrypted connections when non-nil.
	TLS *tls.Config
}

// ValkeyStore is the Valkey-backed Store used in production. Every key
// carries a TTL, so expiry is handled server-side.
type ValkeyStore struct {
	client valkeygo.Client
}

var _ Store = (*ValkeyStore)(nil)

// NewValkeyStore connects to Valkey and verifies the connection.
func NewValkeyStore(cfg ValkeyConfig) (*ValkeyStore, error) {
	if cfg.Address == "" {
		return nil, errors.New("session: valkey address is required")
	}

	opts := valkeygo.ClientOption{
		InitAddress: []string{cfg.Address},
		SelectDB:    cfg.DB,
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}
	if cfg.TLS != nil {
		opts.TLSConfig = cfg.TLS
	}

	client, err := valkeygo.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("session: create valkey client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("session: connect to valkey: %w", err)
	}

	return &ValkeyStore{client: client}, nil
}

// wrap maps driver failures onto ErrUnavailable so callers can treat every
// backend outage uniformly.
func wrap(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}

func (s *ValkeyStore) setEx(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return wrap(s.client.Do(ctx, s.client.B().Set().Key(key).Value(value).Ex(ttl).Build()).Error())
}

func (s *ValkeyStore) get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Do(ctx, s.client.B().Get().Key(key).Build()).ToString()
	if err != nil {
		if valkeygo.IsValkeyNil(err) {
			return "", false, nil
		}
		return "", false, wrap(err)
	}
	return v, true, nil
}

func (s *ValkeyStore) del(ctx context.Context, key string) error {
	return wrap(s.client.Do(ctx, s.client.B().Del().Key(key).Build()).Error())
}

func (s *ValkeyStore) SaveRefresh(ctx context.Context, userID, token string, ttl time.Duration) error {
	return s.setEx(ctx, refreshKey(userID), token, ttl)
}

func (s *ValkeyStore) GetRefresh(ctx context.Context, userID string) (string, error) {
	v, _, err := s.get(ctx, refreshKey(userID))
	return v, err
}

func (s *ValkeyStore) DeleteRefresh(ctx context.Context, userID string) error {
	return s.del(ctx, refreshKey(userID))
}

func (s *ValkeyStore) Whitelist(ctx context.Context, token string, ttl time.Duration) error {
	return s.setEx(ctx, whitelistKey(token), "1", ttl)
}

func (s *ValkeyStore) IsWhitelisted(ctx context.Context, token string) (bool, error) {
	_, ok, err := s.get(ctx, whitelistKey(token))
	return ok, err
}

func (s *ValkeyStore) RemoveWhitelist(ctx context.Context, token string) error {
	return s.del(ctx, whitelistKey(token))
}

func (s *ValkeyStore) Blacklist(ctx context.Context, token string, ttl time.Duration) error {
	return s.setEx(ctx, blacklistKey(token), "1", ttl)
}

func (s *ValkeyStore) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	_, ok, err := s.get(ctx, blacklistKey(token))
	return ok, err
}

func (s *ValkeyStore) MarkEmailVerified(ctx context.Context, email string, ttl time.Duration) error {
	return s.setEx(ctx, verifiedKey(email), verifiedFlagValue, ttl)
}

func (s *ValkeyStore) IsEmailVerified(ctx context.Context, email string) (bool, error) {
	v, ok, err := s.get(ctx, verifiedKey(email))
	if err != nil {
		return false, err
	}
	return ok && v == verifiedFlagValue, nil
}

func (s *ValkeyStore) ClearEmailVerified(ctx context.Context, email string) error {
	return s.del(ctx, verifiedKey(email))
}

func (s *ValkeyStore) SetCooldown(ctx context.Context, email string, ttl time.Duration) error {
	return s.setEx(ctx, cooldownKey(email), "1", ttl)
}

func (s *ValkeyStore) InCooldown(ctx context.Context, email string) (bool, error) {
	_, ok, err := s.get(ctx, cooldownKey(email))
	return ok, err
}

func (s *ValkeyStore) IncrementAttempts(ctx context.Context, email, day string, expireIn time.Duration) (int64, error) {
	key := attemptsKey(email, day)

	n, err := s.client.Do(ctx, s.client.B().Incr().Key(key).Build()).AsInt64()
	if err != nil {
		return 0, wrap(err)
	}

	// First increment creates the key; give it an expiry so the counter
	// cannot outlive its day.
	if n == 1 && expireIn > 0 {
		if err := s.client.Do(ctx, s.client.B().Expire().Key(key).Seconds(int64(expireIn.Seconds())).Build()).Error(); err != nil {
			return n, wrap(err)
		}
	}
	return n, nil
}

func (s *ValkeyStore) AttemptCount(ctx context.Context, email, day string) (int64, error) {
	n, err := s.client.Do(ctx, s.client.B().Get().Key(attemptsKey(email, day)).Build()).AsInt64()
	if err != nil {
		if valkeygo.IsValkeyNil(err) {
			return 0, nil
		}
		return 0, wrap(err)
	}
	return n, nil
}

func (s *ValkeyStore) Ping(ctx context.Context) error {
	return wrap(s.client.Do(ctx, s.client.B().Ping().Build()).Error())
}

func (s *ValkeyStore) Close() error {
	s.client.Close()
	return nil
}
