package http

import (
	"encoding/json"
	"net/http"

	"github.com/wonfolio/auth/internal/auth/service"
	"github.com/wonfolio/auth/pkg/httpx"
)

// EmailSendHandler serves POST /api/email/send: mails a verification link,
// subject to the cooldown and the daily cap.
type EmailSendHandler struct {
	EmailService *service.EmailService
}

type emailSendRequest struct {
	Email string `json:"email"`
}

func (h *EmailSendHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req emailSendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "malformed JSON body")
		return
	}
	if req.Email == "" {
		writeBadRequest(w, "email is required")
		return
	}

	if err := h.EmailService.SendVerificationLink(r.Context(), req.Email); err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, struct{}{})
}

// EmailVerifyHandler serves POST /api/email/verify. The token arrives either
// in the JSON body or, for direct link clicks, as a query parameter.
type EmailVerifyHandler struct {
	EmailService *service.EmailService
}

type emailVerifyRequest struct {
	Token string `json:"token"`
}

func (h *EmailVerifyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		var req emailVerifyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			token = req.Token
		}
	}
	if token == "" {
		writeBadRequest(w, "token is required")
		return
	}

	if err := h.EmailService.VerifyEmail(r.Context(), token); err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, struct{}{})
}
