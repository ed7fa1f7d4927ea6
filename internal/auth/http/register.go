package http

import (
	"net/http"

	"github.com/spectacle-shop/spectacle/internal/auth/service"
	"github.com/spectacle-shop/spectacle/pkg/httpx"
)

// RegisterHandler creates new accounts.
type RegisterHandler struct {
	Users   *service.UserService
	Tokens  *service.TokenService
	Cookies CookieConfig
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// HandleRegister handles POST /auth/register. A successful registration
// logs the user straight in.
func (h *RegisterHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.Users.Register(r.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	}, requestContext(r))
	if err != nil {
		writeAccountError(w, r, err)
		return
	}

	token, err := h.Tokens.IssueSession(user.ID)
	if err != nil {
		writeServerError(w, r, err)
		return
	}

	h.Cookies.setSessionCookie(w, token)
	httpx.WriteJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"token":   token,
		"user":    user.Public(),
	})
}
