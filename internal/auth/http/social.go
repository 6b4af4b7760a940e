package http

import (
	"encoding/json"
	"net/http"

	"github.com/wonfolio/auth/internal/auth/service"
	"github.com/wonfolio/auth/pkg/httpx"
)

// SocialLoginHandler serves POST /api/auth/social/{provider}: authorization
// code in, token pair out. Unknown providers fail before any network call.
type SocialLoginHandler struct {
	SocialService *service.SocialService
}

type socialLoginRequest struct {
	Code string `json:"code"`
}

func (h *SocialLoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	provider := r.PathValue("provider")

	var req socialLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "malformed JSON body")
		return
	}
	if req.Code == "" {
		writeBadRequest(w, "code is required")
		return
	}

	pair, err := h.SocialService.SignIn(r.Context(), provider, req.Code)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, pair)
}
