package http

import (
	"net/http"
	"time"

	"github.com/spectacle-shop/spectacle/internal/auth/service"
	"github.com/spectacle-shop/spectacle/pkg/jwtx"
)

// Cookie and header names the storefront frontend is built against.
const (
	SessionCookieName = "token"
	CaptchaCookieName = "captchaHash"
	CSRFCookieName    = "XSRF-TOKEN-V2"
	CSRFHeaderName    = "X-XSRF-TOKEN"
)

// CookieConfig carries the deployment-dependent cookie settings.
type CookieConfig struct {
	// Secure marks cookies Secure; set in production where TLS terminates
	// in front of the service.
	Secure bool
}

// setSessionCookie installs the session token. HttpOnly keeps it away from
// scripts; SameSite=Lax plus the CSRF guard covers the cross-site write
// case.
func (c CookieConfig) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(jwtx.DefaultSessionTTL),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c CookieConfig) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "none",
		Path:     "/",
		Expires:  time.Now().Add(10 * time.Second),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// setCaptchaCookie installs the captcha verifier digest. HttpOnly: the
// client never needs to read it, only carry it back on the login request.
func (c CookieConfig) setCaptchaCookie(w http.ResponseWriter, digest string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CaptchaCookieName,
		Value:    digest,
		Path:     "/",
		Expires:  time.Now().Add(service.CaptchaTTL),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c CookieConfig) clearCaptchaCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CaptchaCookieName,
		Value:    "none",
		Path:     "/",
		Expires:  time.Now().Add(10 * time.Second),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
