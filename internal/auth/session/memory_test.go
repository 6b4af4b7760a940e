package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Refresh(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("save and get", func(t *testing.T) {
		t.Parallel()
		s := NewMemoryStore()

		require.NoError(t, s.SaveRefresh(ctx, "user-1", "tok-a", time.Minute))

		got, err := s.GetRefresh(ctx, "user-1")
		require.NoError(t, err)
		require.Equal(t, "tok-a", got)
	})

	t.Run("save replaces previous token", func(t *testing.T) {
		t.Parallel()
		s := NewMemoryStore()

		require.NoError(t, s.SaveRefresh(ctx, "user-1", "tok-a", time.Minute))
		require.NoError(t, s.SaveRefresh(ctx, "user-1", "tok-b", time.Minute))

		got, err := s.GetRefresh(ctx, "user-1")
		require.NoError(t, err)
		require.Equal(t, "tok-b", got)
	})

	t.Run("absent user yields empty", func(t *testing.T) {
		t.Parallel()
		s := NewMemoryStore()

		got, err := s.GetRefresh(ctx, "nobody")
		require.NoError(t, err)
		require.Empty(t, got)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		t.Parallel()
		s := NewMemoryStore()

		require.NoError(t, s.SaveRefresh(ctx, "user-1", "tok-a", time.Minute))
		require.NoError(t, s.DeleteRefresh(ctx, "user-1"))
		require.NoError(t, s.DeleteRefresh(ctx, "user-1"))

		got, err := s.GetRefresh(ctx, "user-1")
		require.NoError(t, err)
		require.Empty(t, got)
	})

	t.Run("expires after ttl", func(t *testing.T) {
		t.Parallel()
		now := time.Now()
		s := NewMemoryStoreAt(func() time.Time { return now })

		require.NoError(t, s.SaveRefresh(ctx, "user-1", "tok-a", time.Minute))

		now = now.Add(time.Minute + time.Second)

		got, err := s.GetRefresh(ctx, "user-1")
		require.NoError(t, err)
		require.Empty(t, got)
	})
}

func TestMemoryStore_Blacklist(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("blacklisted token reported until expiry", func(t *testing.T) {
		t.Parallel()
		now := time.Now()
		s := NewMemoryStoreAt(func() time.Time { return now })

		require.NoError(t, s.Blacklist(ctx, "tok-a", time.Minute))

		ok, err := s.IsBlacklisted(ctx, "tok-a")
		require.NoError(t, err)
		require.True(t, ok)

		now = now.Add(2 * time.Minute)

		ok, err = s.IsBlacklisted(ctx, "tok-a")
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("double blacklist is a no-op", func(t *testing.T) {
		t.Parallel()
		s := NewMemoryStore()

		require.NoError(t, s.Blacklist(ctx, "tok-a", time.Minute))
		require.NoError(t, s.Blacklist(ctx, "tok-a", time.Minute))

		ok, err := s.IsBlacklisted(ctx, "tok-a")
		require.NoError(t, err)
		require.True(t, ok)
	})

	t.Run("unknown token is not blacklisted", func(t *testing.T) {
		t.Parallel()
		s := NewMemoryStore()

		ok, err := s.IsBlacklisted(ctx, "tok-z")
		require.NoError(t, err)
		require.False(t, ok)
	})
}

func TestMemoryStore_Whitelist(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Whitelist(ctx, "tok-a", time.Minute))

	ok, err := s.IsWhitelisted(ctx, "tok-a")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, s.RemoveWhitelist(ctx, "tok-a"))
	require.NoError(t, s.RemoveWhitelist(ctx, "tok-a"))

	ok, err = s.IsWhitelisted(ctx, "tok-a")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMemoryStore_EmailVerification(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("mark and consume", func(t *testing.T) {
		t.Parallel()
		s := NewMemoryStore()

		require.NoError(t, s.MarkEmailVerified(ctx, "a@example.com", 30*time.Minute))

		ok, err := s.IsEmailVerified(ctx, "a@example.com")
		require.NoError(t, err)
		require.True(t, ok)

		require.NoError(t, s.ClearEmailVerified(ctx, "a@example.com"))

		ok, err = s.IsEmailVerified(ctx, "a@example.com")
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("flag expires", func(t *testing.T) {
		t.Parallel()
		now := time.Now()
		s := NewMemoryStoreAt(func() time.Time { return now })

		require.NoError(t, s.MarkEmailVerified(ctx, "a@example.com", 30*time.Minute))

		now = now.Add(31 * time.Minute)

		ok, err := s.IsEmailVerified(ctx, "a@example.com")
		require.NoError(t, err)
		require.False(t, ok)
	})
}

func TestMemoryStore_SendLimits(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("cooldown window", func(t *testing.T) {
		t.Parallel()
		now := time.Now()
		s := NewMemoryStoreAt(func() time.Time { return now })

		require.NoError(t, s.SetCooldown(ctx, "a@example.com", time.Minute))

		ok, err := s.InCooldown(ctx, "a@example.com")
		require.NoError(t, err)
		require.True(t, ok)

		now = now.Add(61 * time.Second)

		ok, err = s.InCooldown(ctx, "a@example.com")
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("attempt counter increments per call", func(t *testing.T) {
		t.Parallel()
		s := NewMemoryStore()

		for want := int64(1); want <= 5; want++ {
			n, err := s.IncrementAttempts(ctx, "a@example.com", "2026-09-01", time.Hour)
			require.NoError(t, err)
			require.Equal(t, want, n)
		}

		n, err := s.AttemptCount(ctx, "a@example.com", "2026-09-01")
		require.NoError(t, err)
		require.Equal(t, int64(5), n)

		// A different day gets its own counter.
		n, err = s.AttemptCount(ctx, "a@example.com", "2026-09-02")
		require.NoError(t, err)
		require.Zero(t, n)
	})

	t.Run("attempt counter keeps its original expiry", func(t *testing.T) {
		t.Parallel()
		now := time.Now()
		s := NewMemoryStoreAt(func() time.Time { return now })

		_, err := s.IncrementAttempts(ctx, "a@example.com", "day", time.Hour)
		require.NoError(t, err)

		now = now.Add(30 * time.Minute)
		_, err = s.IncrementAttempts(ctx, "a@example.com", "day", time.Hour)
		require.NoError(t, err)

		// Past the first expiry; the second increment must not have
		// extended it.
		now = now.Add(31 * time.Minute)

		n, err := s.AttemptCount(ctx, "a@example.com", "day")
		require.NoError(t, err)
		require.Zero(t, n)
	})
}
