package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image/png"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	"github.com/spectacle-shop/spectacle/internal/auth/domain"
	"github.com/spectacle-shop/spectacle/internal/auth/store"
)

var (
	ErrInvalidTOTPCode   = errors.New("invalid TOTP code")
	ErrMFANotEnrolled    = errors.New("MFA not enrolled for this user")
	ErrMFAAlreadyEnabled = errors.New("MFA already enabled for this user")
)

const qrCodeSize = 200 // pixels

type MFAService struct {
	Store  store.Store
	Audit  *AuditService
	Issuer string // Issuer name for TOTP (e.g., "Spectacle")
}

// Enroll generates a TOTP secret for the user and returns it along with a
// QR code. This does NOT enable MFA yet - the user must verify a code
// first. Re-enrolling before enablement overwrites the staged secret, which
// invalidates any authenticator entry created from an earlier attempt.
func (s *MFAService) Enroll(ctx context.Context, userID string) (domain.MFAEnrollResponse, error) {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return domain.MFAEnrollResponse{}, fmt.Errorf("user lookup: %w", err)
	}
	if user.MFAEnabled {
		return domain.MFAEnrollResponse{}, ErrMFAAlreadyEnabled
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.Issuer,
		AccountName: user.Email,
		Period:      30,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return domain.MFAEnrollResponse{}, fmt.Errorf("generate TOTP key: %w", err)
	}

	// Stage the secret; MFA stays disabled until Enable verifies a code.
	if err := s.Store.Users().UpdateMFASecret(ctx, userID, key.Secret()); err != nil {
		return domain.MFAEnrollResponse{}, fmt.Errorf("store MFA secret: %w", err)
	}

	qr, err := renderQRCode(key)
	if err != nil {
		return domain.MFAEnrollResponse{}, fmt.Errorf("render QR code: %w", err)
	}

	return domain.MFAEnrollResponse{
		Secret:     key.Secret(),
		OTPAuthURL: key.URL(),
		QRCode:     qr,
	}, nil
}

// Enable verifies a code against the staged secret and switches MFA on.
// From this point logins require TOTP verification.
func (s *MFAService) Enable(ctx context.Context, userID, code string, rc RequestContext) error {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("user lookup: %w", err)
	}
	if user.MFAEnabled {
		return ErrMFAAlreadyEnabled
	}
	if user.MFASecret == nil || *user.MFASecret == "" {
		return ErrMFANotEnrolled
	}

	if !totp.Validate(code, *user.MFASecret) {
		return ErrInvalidTOTPCode
	}

	if err := s.Store.Users().EnableMFA(ctx, userID); err != nil {
		return fmt.Errorf("enable MFA: %w", err)
	}

	s.Audit.Record(ctx, userID, domain.ActionEnableMFA, "2FA enabled", rc)
	return nil
}

// renderQRCode renders the provisioning URI as a data: URL PNG the client
// can drop straight into an <img> tag.
func renderQRCode(key *otp.Key) (string, error) {
	img, err := key.Image(qrCodeSize, qrCodeSize)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
