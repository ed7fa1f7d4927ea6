package http

import (
	"net/http"

	"github.com/spectacle-shop/spectacle/internal/auth/service"
	"github.com/spectacle-shop/spectacle/pkg/httpx"
)

// CaptchaHandler issues login captcha challenges.
type CaptchaHandler struct {
	Captcha *service.CaptchaService
	Cookies CookieConfig
}

// HandleIssue handles GET /auth/captcha. The answer never leaves the
// server; only its HMAC digest does, in an HttpOnly cookie the login
// request carries back. Fetching a new challenge replaces the cookie, so
// the previous challenge dies with it.
func (h *CaptchaHandler) HandleIssue(w http.ResponseWriter, r *http.Request) {
	image, digest, err := h.Captcha.Issue()
	if err != nil {
		writeServerError(w, r, err)
		return
	}

	h.Cookies.setCaptchaCookie(w, digest)
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"image":   image,
	})
}
