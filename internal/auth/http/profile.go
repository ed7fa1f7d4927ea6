package http

import (
	"net/http"

	"github.com/spectacle-shop/spectacle/internal/auth/service"
	"github.com/spectacle-shop/spectacle/pkg/httpx"
)

// ProfileHandler serves the account self-service endpoints.
type ProfileHandler struct {
	Users *service.UserService
}

type updateDetailsRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// HandleUpdateDetails handles PUT /auth/profile.
func (h *ProfileHandler) HandleUpdateDetails(w http.ResponseWriter, r *http.Request) {
	var req updateDetailsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx := r.Context()
	user, err := h.Users.UpdateProfile(ctx, httpx.UserIDFromContext(ctx), req.Name, req.Email, requestContext(r))
	if err != nil {
		writeAccountError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    user.Public(),
	})
}

type updatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// HandleUpdatePassword handles PUT /auth/password.
func (h *ProfileHandler) HandleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	var req updatePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx := r.Context()
	err := h.Users.ChangePassword(ctx, httpx.UserIDFromContext(ctx),
		req.CurrentPassword, req.NewPassword, requestContext(r))
	if err != nil {
		writeAccountError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Password updated successfully",
	})
}
