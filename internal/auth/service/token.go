package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/wonfolio/auth/internal/auth/domain"
	"github.com/wonfolio/auth/internal/auth/session"
	"github.com/wonfolio/auth/pkg/jwtx"
	"github.com/wonfolio/auth/pkg/slogx"
)

var (
	ErrInvalidToken   = errors.New("invalid_token")
	ErrExpiredToken   = errors.New("expired_token")
	ErrMissingToken   = errors.New("missing_token")
	ErrInvalidRefresh = errors.New("invalid_refresh_token")
)

// TokenService owns the token lifecycle: issuing pairs, validating access
// tokens against the revocation blacklist, rotating refresh tokens, and
// revoking on logout. A subject has at most one live refresh token; saving a
// new one replaces the old mapping.
type TokenService struct {
	Codec   *jwtx.Codec
	Session session.Store
}

// Issue mints a fresh access/refresh pair for userID, stores the refresh
// token as the subject's single live session and whitelists the access token.
// The whitelist is advisory: a write failure there is logged, not fatal.
func (s *TokenService) Issue(ctx context.Context, userID string) (*domain.TokenPair, error) {
	access, err := s.Codec.IssueAccess(userID)
	if err != nil {
		return nil, err
	}
	refresh, err := s.Codec.IssueRefresh(userID)
	if err != nil {
		return nil, err
	}

	if err := s.Session.SaveRefresh(ctx, userID, refresh, s.Codec.RefreshTTL()); err != nil {
		return nil, err
	}

	if err := s.Session.Whitelist(ctx, access, s.Codec.AccessTTL()); err != nil {
		slogx.FromContext(ctx).Warn("access token whitelist write failed",
			slog.String("user_id", userID),
			slog.Any("error", err))
	}

	return &domain.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// ValidateAccess verifies an access token and returns its subject. The
// blacklist is authoritative: a revoked token is rejected, and when the
// session store cannot answer the check fails closed.
func (s *TokenService) ValidateAccess(ctx context.Context, token string) (string, error) {
	claims, err := s.Codec.ParseType(token, jwtx.TokenTypeAccess)
	if err != nil {
		return "", mapCodecError(err)
	}

	revoked, err := s.Session.IsBlacklisted(ctx, token)
	if err != nil {
		// Unknown availability must not resurrect a revoked token.
		return "", err
	}
	if revoked {
		return "", ErrInvalidToken
	}

	return claims.Subject, nil
}

// Reissue rotates a refresh token. The presented token must match the single
// stored token for its subject; a superseded or unknown token is rejected as
// ErrInvalidRefresh even when it is itself well formed and unexpired. The old
// token is blacklisted for its remaining lifetime so a post-rotation leak
// cannot be replayed.
func (s *TokenService) Reissue(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	claims, err := s.Codec.ParseType(refreshToken, jwtx.TokenTypeRefresh)
	if err != nil {
		return nil, mapCodecError(err)
	}
	userID := claims.Subject

	revoked, err := s.Session.IsBlacklisted(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrInvalidRefresh
	}

	stored, err := s.Session.GetRefresh(ctx, userID)
	if err != nil {
		return nil, err
	}
	if stored == "" || stored != refreshToken {
		slogx.FromContext(ctx).Info("refresh token mismatch on reissue",
			slog.String("user_id", userID))
		return nil, ErrInvalidRefresh
	}

	if err := s.Session.DeleteRefresh(ctx, userID); err != nil {
		return nil, err
	}

	pair, err := s.Issue(ctx, userID)
	if err != nil {
		return nil, err
	}

	remaining, err := s.Codec.Remaining(refreshToken)
	if err != nil {
		// Already past expiry between parse and now; nothing to blacklist.
		return pair, nil
	}
	if err := s.Session.Blacklist(ctx, refreshToken, remaining); err != nil {
		return nil, err
	}

	return pair, nil
}

// Logout revokes the session identified by an access token: the subject's
// refresh mapping is deleted, the token leaves the whitelist and joins the
// blacklist for its remaining lifetime. A missing or invalid access token is
// an error, not a silent success.
func (s *TokenService) Logout(ctx context.Context, accessToken string) error {
	claims, err := s.Codec.ParseType(accessToken, jwtx.TokenTypeAccess)
	if err != nil {
		return mapCodecError(err)
	}
	userID := claims.Subject

	remaining, err := s.Codec.Remaining(accessToken)
	if err != nil {
		return ErrInvalidToken
	}

	if err := s.Session.DeleteRefresh(ctx, userID); err != nil {
		return err
	}
	if err := s.Session.RemoveWhitelist(ctx, accessToken); err != nil {
		return err
	}
	if err := s.Session.Blacklist(ctx, accessToken, remaining); err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("session revoked", slog.String("user_id", userID))
	return nil
}

// LogoutUser drops the subject's refresh mapping without needing a token in
// hand. Outstanding access tokens keep working until they expire; only the
// token-present form can blacklist them. Idempotent.
func (s *TokenService) LogoutUser(ctx context.Context, userID string) error {
	return s.Session.DeleteRefresh(ctx, userID)
}

// mapCodecError folds jwtx parse failures into the service taxonomy.
func mapCodecError(err error) error {
	switch {
	case errors.Is(err, jwtx.ErrExpired):
		return ErrExpiredToken
	default:
		return ErrInvalidToken
	}
}
