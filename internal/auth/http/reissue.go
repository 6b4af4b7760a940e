package http

import (
	"encoding/json"
	"net/http"

	"github.com/wonfolio/auth/internal/auth/service"
	"github.com/wonfolio/auth/pkg/httpx"
)

// ReissueHandler serves POST /api/auth/reissue: refresh token rotation.
type ReissueHandler struct {
	TokenService *service.TokenService
}

type reissueRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (h *ReissueHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req reissueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "malformed JSON body")
		return
	}
	if req.RefreshToken == "" {
		writeBadRequest(w, "refresh_token is required")
		return
	}

	pair, err := h.TokenService.Reissue(r.Context(), req.RefreshToken)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, pair)
}
