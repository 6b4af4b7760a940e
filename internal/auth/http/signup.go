package http

import (
	"encoding/json"
	"net/http"

	"github.com/wonfolio/auth/internal/auth/service"
	"github.com/wonfolio/auth/pkg/httpx"
)

// SignupHandler serves POST /api/auth/signup. The email must have completed
// the verification flow first.
type SignupHandler struct {
	UserService *service.UserService
}

type signupRequest struct {
	UserID   string `json:"user_id"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Birth    string `json:"birth,omitempty"`
}

func (h *SignupHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "malformed JSON body")
		return
	}
	if req.UserID == "" || req.Password == "" || req.Name == "" || req.Email == "" {
		writeBadRequest(w, "user_id, password, name and email are required")
		return
	}

	err := h.UserService.SignUp(r.Context(), service.SignUpParams{
		UserID:   req.UserID,
		Password: req.Password,
		Name:     req.Name,
		Email:    req.Email,
		Birth:    req.Birth,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, struct{}{})
}
