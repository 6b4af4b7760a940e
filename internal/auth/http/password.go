package http

import (
	"encoding/json"
	"net/http"

	"github.com/wonfolio/auth/internal/auth/service"
	"github.com/wonfolio/auth/pkg/httpx"
)

// PasswordResetSendHandler serves POST /api/email/reset: mails a
// reset-purpose link, under the same throttles as verification mail.
type PasswordResetSendHandler struct {
	EmailService *service.EmailService
}

func (h *PasswordResetSendHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req emailSendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "malformed JSON body")
		return
	}
	if req.Email == "" {
		writeBadRequest(w, "email is required")
		return
	}

	if err := h.EmailService.SendPasswordResetLink(r.Context(), req.Email); err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, struct{}{})
}

// PasswordResetHandler serves POST /api/auth/password/reset: redeems the
// mailed token and replaces the password.
type PasswordResetHandler struct {
	UserService *service.UserService
}

type passwordResetRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

func (h *PasswordResetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req passwordResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "malformed JSON body")
		return
	}
	if req.Token == "" || req.NewPassword == "" {
		writeBadRequest(w, "token and new_password are required")
		return
	}

	if err := h.UserService.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, struct{}{})
}
