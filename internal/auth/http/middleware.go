package http

import (
	"net/http"

	"github.com/wonfolio/auth/internal/auth/service"
	"github.com/wonfolio/auth/pkg/httpx"
)

// BearerMiddleware authenticates requests with an access token. The token is
// validated against the revocation blacklist (failing closed when the session
// store cannot answer) and the subject lands in the request context.
func BearerMiddleware(tokens *service.TokenService) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := httpx.BearerToken(r)
			if token == "" {
				writeServiceError(w, r, service.ErrMissingToken)
				return
			}

			userID, err := tokens.ValidateAccess(r.Context(), token)
			if err != nil {
				writeServiceError(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(httpx.WithUserID(r.Context(), userID)))
		})
	}
}
