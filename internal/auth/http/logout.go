package http

import (
	"net/http"

	"github.com/wonfolio/auth/internal/auth/service"
	"github.com/wonfolio/auth/pkg/httpx"
)

// LogoutHandler serves DELETE /api/auth/logout. The access token in the
// Authorization header names the session to revoke; presenting no token (or
// a bogus one) is an error rather than a silent success.
type LogoutHandler struct {
	TokenService *service.TokenService
}

func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token := httpx.BearerToken(r)
	if token == "" {
		writeServiceError(w, r, service.ErrMissingToken)
		return
	}

	if err := h.TokenService.Logout(r.Context(), token); err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, struct{}{})
}

// LogoutUserHandler serves DELETE /api/auth/logout/user: the subject-only
// form behind the bearer middleware. It drops the refresh mapping for the
// authenticated user and is idempotent, so repeating it is harmless.
type LogoutUserHandler struct {
	TokenService *service.TokenService
}

func (h *LogoutUserHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpx.UserIDFromContext(r.Context())
	if !ok {
		writeServiceError(w, r, service.ErrMissingToken)
		return
	}

	if err := h.TokenService.LogoutUser(r.Context(), userID); err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, struct{}{})
}
