package http

import (
	"net/http"

	"github.com/spectacle-shop/spectacle/internal/auth/service"
	"github.com/spectacle-shop/spectacle/pkg/httpx"
)

// LoginHandler runs the password login and TOTP verification endpoints.
type LoginHandler struct {
	Login   *service.LoginService
	Cookies CookieConfig
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Captcha  string `json:"captcha"`
}

// HandleLogin handles POST /auth/login.
func (h *LoginHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	// The captcha verifier travels in the HttpOnly cookie set by
	// GET /auth/captcha. No cookie means no outstanding challenge.
	var digest string
	if cookie, err := r.Cookie(CaptchaCookieName); err == nil {
		digest = cookie.Value
	}

	res, err := h.Login.Login(r.Context(), service.LoginInput{
		Email:         req.Email,
		Password:      req.Password,
		CaptchaAnswer: req.Captcha,
		CaptchaDigest: digest,
	}, requestContext(r))
	if err != nil {
		writeLoginError(w, r, err)
		return
	}

	if res.MFARequired {
		httpx.WriteJSON(w, http.StatusOK, map[string]any{
			"success":     true,
			"mfaRequired": true,
			"tempToken":   res.TempToken,
		})
		return
	}

	h.Cookies.setSessionCookie(w, res.SessionToken)
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"token":   res.SessionToken,
		"user":    res.User.Public(),
	})
}

type verifyMFARequest struct {
	TempToken string `json:"tempToken"`
	Code      string `json:"code"`
}

// HandleVerifyMFA handles POST /auth/login/verify-mfa, trading an
// intermediate token plus a valid TOTP code for a session.
func (h *LoginHandler) HandleVerifyMFA(w http.ResponseWriter, r *http.Request) {
	var req verifyMFARequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.Login.VerifyMFA(r.Context(), req.TempToken, req.Code, requestContext(r))
	if err != nil {
		writeLoginError(w, r, err)
		return
	}

	h.Cookies.setSessionCookie(w, res.SessionToken)
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"token":   res.SessionToken,
		"user":    res.User.Public(),
	})
}
