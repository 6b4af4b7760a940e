package session

import (
	"context"
	"strconv"
	"sync"
	"time"
)

// MemoryStore is an in-process Store for tests and single-node development.
// Entries expire lazily on access.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	value     string
	expiresAt time.Time // zero means no expiry
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// NewMemoryStoreAt returns a store with an injected clock. Test helper.
func NewMemoryStoreAt(now func() time.Time) *MemoryStore {
	s := NewMemoryStore()
	s.now = now
	return s
}

// set stores a value with a TTL. Non-positive TTLs are a no-op, matching the
// valkey driver which never issues a SET without EX.
func (s *MemoryStore) set(key, value string, ttl time.Duration) {
	if ttl <= 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = memoryEntry{value: value, expiresAt: s.now().Add(ttl)}
}

// get returns the live value for key, expiring it if stale.
func (s *MemoryStore) get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return "", false
	}
	if !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt) {
		delete(s.entries, key)
		return "", false
	}
	return e.value, true
}

func (s *MemoryStore) delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

func (s *MemoryStore) SaveRefresh(_ context.Context, userID, token string, ttl time.Duration) error {
	s.set(refreshKey(userID), token, ttl)
	return nil
}

func (s *MemoryStore) GetRefresh(_ context.Context, userID string) (string, error) {
	v, _ := s.get(refreshKey(userID))
	return v, nil
}

func (s *MemoryStore) DeleteRefresh(_ context.Context, userID string) error {
	s.delete(refreshKey(userID))
	return nil
}

func (s *MemoryStore) Whitelist(_ context.Context, token string, ttl time.Duration) error {
	s.set(whitelistKey(token), "1", ttl)
	return nil
}

func (s *MemoryStore) IsWhitelisted(_ context.Context, token string) (bool, error) {
	_, ok := s.get(whitelistKey(token))
	return ok, nil
}

func (s *MemoryStore) RemoveWhitelist(_ context.Context, token string) error {
	s.delete(whitelistKey(token))
	return nil
}

func (s *MemoryStore) Blacklist(_ context.Context, token string, ttl time.Duration) error {
	s.set(blacklistKey(token), "1", ttl)
	return nil
}

func (s *MemoryStore) IsBlacklisted(_ context.Context, token string) (bool, error) {
	_, ok := s.get(blacklistKey(token))
	return ok, nil
}

func (s *MemoryStore) MarkEmailVerified(_ context.Context, email string, ttl time.Duration) error {
	s.set(verifiedKey(email), verifiedFlagValue, ttl)
	return nil
}

func (s *MemoryStore) IsEmailVerified(_ context.Context, email string) (bool, error) {
	v, ok := s.get(verifiedKey(email))
	return ok && v == verifiedFlagValue, nil
}

func (s *MemoryStore) ClearEmailVerified(_ context.Context, email string) error {
	s.delete(verifiedKey(email))
	return nil
}

func (s *MemoryStore) SetCooldown(_ context.Context, email string, ttl time.Duration) error {
	s.set(cooldownKey(email), "1", ttl)
	return nil
}

func (s *MemoryStore) InCooldown(_ context.Context, email string) (bool, error) {
	_, ok := s.get(cooldownKey(email))
	return ok, nil
}

func (s *MemoryStore) IncrementAttempts(_ context.Context, email, day string, expireIn time.Duration) (int64, error) {
	key := attemptsKey(email, day)

	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	e, ok := s.entries[key]
	if ok && (e.expiresAt.IsZero() || s.now().Before(e.expiresAt)) {
		n, _ = strconv.ParseInt(e.value, 10, 64)
	}
	n++

	next := memoryEntry{value: strconv.FormatInt(n, 10)}
	if ok {
		next.expiresAt = e.expiresAt
	} else if expireIn > 0 {
		next.expiresAt = s.now().Add(expireIn)
	}
	s.entries[key] = next
	return n, nil
}

func (s *MemoryStore) AttemptCount(_ context.Context, email, day string) (int64, error) {
	v, ok := s.get(attemptsKey(email, day))
	if !ok {
		return 0, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, nil
	}
	return n, nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }
