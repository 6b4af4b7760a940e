package http

import (
	"encoding/json"
	"net/http"

	"github.com/wonfolio/auth/internal/auth/service"
	"github.com/wonfolio/auth/pkg/httpx"
)

// LoginHandler serves POST /api/auth/login and returns a token pair.
type LoginHandler struct {
	UserService *service.UserService
}

type loginRequest struct {
	UserID   string `json:"user_id"`
	Password string `json:"password"`
}

func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "malformed JSON body")
		return
	}
	if req.UserID == "" || req.Password == "" {
		writeBadRequest(w, "user_id and password are required")
		return
	}

	pair, err := h.UserService.Login(r.Context(), req.UserID, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, pair)
}
