package http

import (
	"errors"
	"net/http"

	"github.com/wonfolio/auth/internal/auth/service"
	"github.com/wonfolio/auth/internal/auth/session"
	"github.com/wonfolio/auth/internal/auth/social"
	"github.com/wonfolio/auth/internal/auth/store"
	"github.com/wonfolio/auth/pkg/httpx"
	"github.com/wonfolio/auth/pkg/slogx"
)

// errorMapping pins each service sentinel to one stable machine code and
// status. Anything unmapped is an internal error and must not leak detail.
type errorMapping struct {
	status      int
	code        string
	description string
}

var errorMappings = []struct {
	err     error
	mapping errorMapping
}{
	{service.ErrInvalidToken, errorMapping{http.StatusUnauthorized, "invalid_token", "the token is malformed, revoked or carries a bad signature"}},
	{service.ErrExpiredToken, errorMapping{http.StatusUnauthorized, "expired_token", "the token has expired"}},
	{service.ErrMissingToken, errorMapping{http.StatusUnauthorized, "missing_token", "no bearer token was presented"}},
	{service.ErrInvalidRefresh, errorMapping{http.StatusUnauthorized, "invalid_refresh_token", "the refresh token is not the live one for its subject"}},
	{service.ErrLoginFailed, errorMapping{http.StatusUnauthorized, "login_failed", "unknown user or wrong password"}},
	{service.ErrDuplicateEmail, errorMapping{http.StatusConflict, "duplicate_email", "an account with this email already exists"}},
	{service.ErrDuplicateUserID, errorMapping{http.StatusConflict, "duplicate_user_id", "this user id is already taken"}},
	{service.ErrEmailNotVerified, errorMapping{http.StatusForbidden, "email_not_verified", "verify the email address before signing up"}},
	{service.ErrEmailCooldown, errorMapping{http.StatusTooManyRequests, "email_cooldown", "a mail was sent recently, wait before retrying"}},
	{service.ErrEmailDailyLimit, errorMapping{http.StatusTooManyRequests, "email_daily_limit", "daily verification mail limit reached"}},
	{service.ErrInvalidPurpose, errorMapping{http.StatusBadRequest, "invalid_verification_purpose", "the token was minted for a different flow"}},
	{store.ErrNotFound, errorMapping{http.StatusNotFound, "not_found", "no such account"}},
	{social.ErrUnsupportedProvider, errorMapping{http.StatusBadRequest, "unsupported_provider", "unknown social provider key"}},
	{social.ErrTokenExchange, errorMapping{http.StatusBadGateway, "token_exchange_failed", "the provider rejected the authorization code"}},
	{social.ErrUserinfo, errorMapping{http.StatusBadGateway, "userinfo_fetch_failed", "the provider userinfo call failed"}},
	{session.ErrUnavailable, errorMapping{http.StatusServiceUnavailable, "store_unavailable", "a backing store is temporarily unreachable"}},
}

// writeServiceError maps err onto the wire format. Unknown errors are logged
// and surfaced as a generic 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			httpx.WriteError(w, m.mapping.status, m.mapping.code, m.mapping.description)
			return
		}
	}

	slogx.FromContext(r.Context()).Error("unhandled service error", "error", err)
	httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "an unexpected error occurred")
}

func writeBadRequest(w http.ResponseWriter, description string) {
	httpx.WriteError(w, http.StatusBadRequest, "invalid_request", description)
}
