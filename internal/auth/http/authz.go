package http

import (
	"net/http"

	"github.com/spectacle-shop/spectacle/internal/auth/domain"
	"github.com/spectacle-shop/spectacle/pkg/httpx"
	"github.com/spectacle-shop/spectacle/pkg/slogx"
)

// requireAdmin gates a route on the admin-only log capability. The role is
// read from a fresh user record, never from the token, so a demotion takes
// effect on the next request instead of at token expiry.
func (rt *Router) requireAdmin() httpx.Middleware {
	return rt.requireCapability(domain.CapViewAllLogs)
}

func (rt *Router) requireCapability(c domain.Capability) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			userID := httpx.UserIDFromContext(ctx)
			if userID == "" {
				httpx.WriteError(w, http.StatusUnauthorized, "not authenticated")
				return
			}

			user, err := rt.UserService.Get(ctx, userID)
			if err != nil {
				// A deleted account with a live token lands here.
				httpx.WriteError(w, http.StatusUnauthorized, "not authenticated")
				return
			}

			if !user.Role.Can(c) {
				slogx.FromContext(ctx).Warn("capability denied",
					"user_id", userID,
					"role", string(user.Role),
					"capability", string(c),
				)
				httpx.WriteError(w, http.StatusForbidden, "Not authorized to access this route")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
