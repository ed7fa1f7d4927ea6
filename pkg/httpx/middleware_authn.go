package httpx

import (
	"context"
	"net/http"

	"github.com/spectacle-shop/spectacle/pkg/jwtx"
	"github.com/spectacle-shop/spectacle/pkg/slogx"
)

// SessionMiddleware authenticates requests via the session cookie. The token
// is verified, checked for expiry, and its subject injected into the request
// context. Intermediate MFA tokens are rejected outright - they are not
// session credentials, even though they verify under the same key.
func SessionMiddleware(v jwtx.Verifier, cookieName string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			cookie, err := r.Cookie(cookieName)
			if err != nil || cookie.Value == "" {
				WriteError(w, http.StatusUnauthorized, "not authenticated")
				return
			}

			claims, err := v.Verify(cookie.Value)
			if err != nil {
				log.Warn("session token verify failed", "err", err)
				WriteError(w, http.StatusUnauthorized, "not authenticated")
				return
			}

			if err := claims.ValidateExpiry(); err != nil {
				WriteError(w, http.StatusUnauthorized, "session expired")
				return
			}

			if claims.MFAPending {
				WriteError(w, http.StatusUnauthorized, "not authenticated")
				return
			}

			ctx = contextWithAuth(ctx, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func contextWithAuth(ctx context.Context, c jwtx.Claims) context.Context {
	ctx = context.WithValue(ctx, CtxKeyUserID, c.Subject)
	ctx = context.WithValue(ctx, CtxKeyClaims, c)
	return ctx
}
