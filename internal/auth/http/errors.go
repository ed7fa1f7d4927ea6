package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/spectacle-shop/spectacle/internal/auth/service"
	"github.com/spectacle-shop/spectacle/internal/auth/store"
	"github.com/spectacle-shop/spectacle/pkg/httpx"
	"github.com/spectacle-shop/spectacle/pkg/slogx"
)

// writeLoginError maps login flow errors onto the response contract the
// frontend is built against. Lockout responses carry machine-readable
// fields on top of the human message.
func writeLoginError(w http.ResponseWriter, r *http.Request, err error) {
	var locked *service.LockedError
	if errors.As(err, &locked) {
		httpx.WriteJSON(w, http.StatusUnauthorized, map[string]any{
			"success": false,
			"error": fmt.Sprintf(
				"Account is temporarily locked due to multiple failed login attempts. Please try again after %d %s.",
				locked.RemainingMinutes, plural(locked.RemainingMinutes, "minute")),
			"locked":           true,
			"remainingMinutes": locked.RemainingMinutes,
		})
		return
	}

	var bad *service.BadCredentialsError
	if errors.As(err, &bad) {
		httpx.WriteJSON(w, http.StatusUnauthorized, map[string]any{
			"success": false,
			"error": fmt.Sprintf(
				"Invalid credentials. %d %s remaining before account lockout.",
				bad.RemainingAttempts, plural(bad.RemainingAttempts, "attempt")),
			"remainingAttempts": bad.RemainingAttempts,
		})
		return
	}

	switch {
	case errors.Is(err, service.ErrMissingCredentials):
		httpx.WriteError(w, http.StatusBadRequest, "Please provide email and password")
	case errors.Is(err, service.ErrCaptchaExpired):
		httpx.WriteError(w, http.StatusBadRequest, "CAPTCHA expired. Please refresh.")
	case errors.Is(err, service.ErrCaptchaMissing):
		httpx.WriteError(w, http.StatusBadRequest, "Please enter the CAPTCHA code.")
	case errors.Is(err, service.ErrCaptchaInvalid):
		httpx.WriteError(w, http.StatusBadRequest, "Invalid CAPTCHA code.")
	case errors.Is(err, service.ErrInvalidCredentials):
		httpx.WriteError(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, service.ErrMissingMFAInput):
		httpx.WriteError(w, http.StatusBadRequest, "Missing token or code")
	case errors.Is(err, service.ErrInvalidToken):
		httpx.WriteError(w, http.StatusUnauthorized, "Invalid or expired session")
	case errors.Is(err, service.ErrInvalidTOTPCode):
		httpx.WriteError(w, http.StatusBadRequest, "Invalid 2FA Code")
	default:
		writeServerError(w, r, err)
	}
}

// writeAccountError maps registration and self-service errors.
func writeAccountError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrMissingFields),
		errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrPasswordTooShort),
		errors.Is(err, service.ErrInvalidRole):
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrEmailTaken):
		httpx.WriteError(w, http.StatusBadRequest, "Email already registered")
	case errors.Is(err, service.ErrWrongPassword):
		httpx.WriteError(w, http.StatusUnauthorized, "Password is incorrect")
	case errors.Is(err, service.ErrMFAAlreadyEnabled):
		httpx.WriteError(w, http.StatusBadRequest, "2FA is already enabled")
	case errors.Is(err, service.ErrMFANotEnrolled):
		httpx.WriteError(w, http.StatusBadRequest, "2FA setup has not been started")
	case errors.Is(err, service.ErrInvalidTOTPCode):
		httpx.WriteError(w, http.StatusBadRequest, "Invalid code")
	case errors.Is(err, store.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, "User not found")
	default:
		writeServerError(w, r, err)
	}
}

func writeServerError(w http.ResponseWriter, r *http.Request, err error) {
	slogx.FromContext(r.Context()).Error("request failed",
		"path", r.URL.Path,
		"err", err,
	)
	httpx.WriteError(w, http.StatusInternalServerError, "Server Error")
}

func plural(n int, unit string) string {
	if n == 1 {
		return unit
	}
	return unit + "s"
}
