package http

import (
	"net/http"

	"github.com/spectacle-shop/spectacle/internal/auth/domain"
	"github.com/spectacle-shop/spectacle/internal/auth/service"
	"github.com/spectacle-shop/spectacle/pkg/httpx"
)

// SessionHandler serves the current-user and logout endpoints.
type SessionHandler struct {
	Users   *service.UserService
	Audit   *service.AuditService
	Cookies CookieConfig
}

// HandleMe handles GET /auth/me.
func (h *SessionHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := h.Users.Get(ctx, httpx.UserIDFromContext(ctx))
	if err != nil {
		writeAccountError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    user.Public(),
	})
}

// HandleLogout handles GET /auth/logout. Sessions are stateless, so logout
// is a cookie teardown plus an audit record; the token itself stays valid
// until it expires.
func (h *SessionHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if userID := httpx.UserIDFromContext(ctx); userID != "" {
		h.Audit.Record(ctx, userID, domain.ActionLogout, "User logged out", requestContext(r))
	}

	h.Cookies.clearSessionCookie(w)
	h.Cookies.clearCaptchaCookie(w)
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    map[string]any{},
	})
}
