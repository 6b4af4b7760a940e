package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/wonfolio/auth/internal/auth/domain"
	"github.com/wonfolio/auth/internal/auth/service"
	"github.com/wonfolio/auth/pkg/httpx"
)

type profileResponse struct {
	UserID         string `json:"user_id"`
	Name           string `json:"name"`
	Email          string `json:"email,omitempty"`
	Birth          string `json:"birth,omitempty"`
	SocialProvider string `json:"social_provider,omitempty"`
	ProfileImage   string `json:"profile_image,omitempty"`
	CreatedAt      string `json:"created_at"`
}

func toProfileResponse(u domain.User) profileResponse {
	return profileResponse{
		UserID:         u.UserID,
		Name:           u.Name,
		Email:          u.Email,
		Birth:          u.Birth,
		SocialProvider: string(u.SocialProvider),
		ProfileImage:   u.ProfileImage,
		CreatedAt:      u.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// ProfileHandler serves GET /api/auth/profile for the authenticated subject.
type ProfileHandler struct {
	UserService *service.UserService
}

func (h *ProfileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpx.UserIDFromContext(r.Context())
	if !ok {
		writeServiceError(w, r, service.ErrMissingToken)
		return
	}

	user, err := h.UserService.Profile(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toProfileResponse(user))
}

// UpdateProfileHandler serves PATCH /api/auth/profile.
type UpdateProfileHandler struct {
	UserService *service.UserService
}

type updateProfileRequest struct {
	Name  string `json:"name"`
	Birth string `json:"birth"`
}

func (h *UpdateProfileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpx.UserIDFromContext(r.Context())
	if !ok {
		writeServiceError(w, r, service.ErrMissingToken)
		return
	}

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "malformed JSON body")
		return
	}
	if req.Name == "" {
		writeBadRequest(w, "name is required")
		return
	}

	if err := h.UserService.UpdateProfile(r.Context(), userID, req.Name, req.Birth); err != nil {
		writeServiceError(w, r, err)
		return
	}

	user, err := h.UserService.Profile(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toProfileResponse(user))
}

// WithdrawHandler serves DELETE /api/auth/profile: deletes the authenticated
// account and revokes its session.
type WithdrawHandler struct {
	UserService *service.UserService
}

func (h *WithdrawHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpx.UserIDFromContext(r.Context())
	if !ok {
		writeServiceError(w, r, service.ErrMissingToken)
		return
	}

	if err := h.UserService.Withdraw(r.Context(), userID); err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, struct{}{})
}
