package http

import (
	"net/http"

	"github.com/spectacle-shop/spectacle/internal/auth/service"
	"github.com/spectacle-shop/spectacle/pkg/httpx"
)

// MFAHandler serves TOTP enrollment for logged-in users.
type MFAHandler struct {
	MFA *service.MFAService
}

// HandleSetup handles POST /auth/mfa/setup. It stages a fresh secret and
// returns it with the provisioning QR code; MFA stays off until the user
// proves a code against it.
func (h *MFAHandler) HandleSetup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	enroll, err := h.MFA.Enroll(ctx, httpx.UserIDFromContext(ctx))
	if err != nil {
		writeAccountError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"secret":     enroll.Secret,
		"otpauthUrl": enroll.OTPAuthURL,
		"qrCode":     enroll.QRCode,
	})
}

type enableMFARequest struct {
	Code string `json:"code"`
}

// HandleEnable handles POST /auth/mfa/enable.
func (h *MFAHandler) HandleEnable(w http.ResponseWriter, r *http.Request) {
	var req enableMFARequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx := r.Context()
	if err := h.MFA.Enable(ctx, httpx.UserIDFromContext(ctx), req.Code, requestContext(r)); err != nil {
		writeAccountError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "2FA Enabled successfully",
	})
}
