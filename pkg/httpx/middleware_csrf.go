package httpx

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/spectacle-shop/spectacle/pkg/cryptox"
	"github.com/spectacle-shop/spectacle/pkg/slogx"
)

// CSRFConfig configures the stateless double-submit CSRF guard.
type CSRFConfig struct {
	// CookieName is the readable cookie carrying the CSRF token.
	CookieName string
	// HeaderName is the request header the client must echo the token in.
	HeaderName string
	// Secure marks the CSRF cookie Secure (set in production).
	Secure bool
	// ExcludePaths are path prefixes exempt from header validation,
	// e.g. webhook endpoints authenticated by signature instead.
	ExcludePaths []string
}

// DefaultCSRFConfig matches the cookie and header names the storefront
// frontend expects.
func DefaultCSRFConfig() CSRFConfig {
	return CSRFConfig{
		CookieName: "XSRF-TOKEN-V2",
		HeaderName: "X-XSRF-TOKEN",
	}
}

// CSRFMiddleware implements the double-submit cookie pattern. Safe methods
// pass through, minting the token cookie when absent so the client always
// has one to echo. Unsafe methods must present a header that matches the
// cookie byte for byte; anything else is a 403. The server keeps no state -
// the guarantee rests on the same-origin policy gating cookie reads.
func CSRFMiddleware(cfg CSRFConfig) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := slogx.FromContext(r.Context())

			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				if _, err := r.Cookie(cfg.CookieName); err != nil {
					token, err := cryptox.GenerateToken(cryptox.TokenSize256)
					if err != nil {
						log.Error("csrf token generation failed", "err", err)
						WriteError(w, http.StatusInternalServerError, "internal server error")
						return
					}
					http.SetCookie(w, &http.Cookie{
						Name:     cfg.CookieName,
						Value:    token,
						Path:     "/",
						Secure:   cfg.Secure,
						HttpOnly: false, // the client must read it to echo it
						SameSite: http.SameSiteLaxMode,
					})
				}
				next.ServeHTTP(w, r)
				return
			}

			for _, prefix := range cfg.ExcludePaths {
				if strings.HasPrefix(r.URL.Path, prefix) {
					next.ServeHTTP(w, r)
					return
				}
			}

			cookie, err := r.Cookie(cfg.CookieName)
			if err != nil || cookie.Value == "" {
				log.Warn("csrf validation failed: missing cookie", "path", r.URL.Path)
				WriteError(w, http.StatusForbidden, "invalid CSRF token")
				return
			}

			header := r.Header.Get(cfg.HeaderName)
			if header == "" || subtle.ConstantTimeCompare([]byte(header), []byte(cookie.Value)) != 1 {
				log.Warn("csrf validation failed: header mismatch", "path", r.URL.Path)
				WriteError(w, http.StatusForbidden, "invalid CSRF token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
