package authsdk

import (
	"context"
	"net/http"
)

// SetupMFA stages a fresh TOTP secret for the account. The secret is not
// active until EnableMFA confirms a code generated from it; calling
// SetupMFA again before that replaces the staged secret.
func (s *Session) SetupMFA(ctx context.Context) (*MFASetupResponse, error) {
	var env mfaSetupEnvelope
	if err := s.client.doJSON(ctx, http.MethodPost, "/auth/mfa/setup", nil, &env, http.StatusOK); err != nil {
		return nil, err
	}

	return &MFASetupResponse{
		Secret:     env.Secret,
		OTPAuthURL: env.OTPAuthURL,
		QRCode:     env.QRCode,
	}, nil
}

// EnableMFA activates the staged TOTP secret by proving a current code.
// Subsequent logins will require TOTP verification.
func (s *Session) EnableMFA(ctx context.Context, code string) error {
	body := map[string]string{"code": code}

	var env messageEnvelope
	return s.client.doJSON(ctx, http.MethodPost, "/auth/mfa/enable", body, &env, http.StatusOK)
}
