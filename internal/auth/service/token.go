package service

import (
	"errors"
	"time"

	"github.com/spectacle-shop/spectacle/pkg/jwtx"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
)

// TokenService mints and validates the two token kinds the auth flows use:
// the 1 hour session token carried in the HttpOnly cookie, and the 10
// minute intermediate token bridging password and TOTP verification.
type TokenService struct {
	Signer        *jwtx.HS256
	Issuer        string
	SessionTTL    time.Duration
	MFAPendingTTL time.Duration

	// Now is overridable for tests; defaults to time.Now.
	Now func() time.Time
}

func (s *TokenService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *TokenService) sessionTTL() time.Duration {
	if s.SessionTTL > 0 {
		return s.SessionTTL
	}
	return jwtx.DefaultSessionTTL
}

func (s *TokenService) mfaPendingTTL() time.Duration {
	if s.MFAPendingTTL > 0 {
		return s.MFAPendingTTL
	}
	return jwtx.DefaultMFAPendingTTL
}

// IssueSession mints a full session token for the user.
func (s *TokenService) IssueSession(userID string) (string, error) {
	return s.Signer.Sign(jwtx.NewSessionClaims(userID, s.Issuer, s.sessionTTL(), s.now()))
}

// IssueMFAPending mints the short-lived intermediate token returned after a
// correct password when the account still owes a TOTP code.
func (s *TokenService) IssueMFAPending(userID string) (string, error) {
	return s.Signer.Sign(jwtx.NewMFAPendingClaims(userID, s.Issuer, s.mfaPendingTTL(), s.now()))
}

// ValidateSession verifies a session token and returns its subject.
// Intermediate MFA tokens are rejected.
func (s *TokenService) ValidateSession(token string) (string, error) {
	claims, err := s.Signer.Verify(token)
	if err != nil {
		return "", ErrInvalidToken
	}
	if claims.MFAPending {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// ValidateMFAPending verifies an intermediate token and returns its subject.
// Full session tokens are rejected - they prove a completed login, not a
// pending one.
func (s *TokenService) ValidateMFAPending(token string) (string, error) {
	claims, err := s.Signer.Verify(token)
	if err != nil {
		return "", ErrInvalidToken
	}
	if !claims.MFAPending {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
