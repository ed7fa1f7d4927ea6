package app

import (
	"fmt"
	"log/slog"

	"github.com/spectacle-shop/spectacle/pkg/cryptox"
	"github.com/spectacle-shop/spectacle/pkg/jwtx"
)

// InitAuthSecrets loads the two service secrets, generating and persisting
// fresh ones on first boot:
//
//   - the HS256 signing secret behind every session and MFA-pending token
//   - the HMAC secret binding CAPTCHA answers to the challenge cookie
//
// Both live in files so tokens and in-flight CAPTCHA challenges survive a
// restart. Deleting the token secret file invalidates every outstanding
// session.
func InitAuthSecrets(cfg Config, logger *slog.Logger) (*jwtx.HS256, []byte, error) {
	tokenSecret, err := cryptox.LoadOrGenerateSecret(cfg.TokenSecretFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load token secret: %w", err)
	}

	signer, err := jwtx.NewHS256([]byte(tokenSecret), cfg.Issuer)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize token signer: %w", err)
	}

	captchaSecret, err := cryptox.LoadOrGenerateSecret(cfg.CaptchaSecretFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load captcha secret: %w", err)
	}

	logger.Info("auth secrets loaded",
		"token_secret_file", cfg.TokenSecretFile,
		"captcha_secret_file", cfg.CaptchaSecretFile,
		"issuer", cfg.Issuer,
	)

	return signer, []byte(captchaSecret), nil
}
