package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default token TTLs. The session token deliberately carries nothing but the
// subject - role and profile data are re-fetched per request so they can
// never go stale inside a still-valid token.
const (
	// DefaultSessionTTL is the lifetime of the session cookie token.
	DefaultSessionTTL = time.Hour

	// DefaultMFAPendingTTL is the lifetime of the intermediate token issued
	// after a correct password when the account still owes a TOTP code.
	DefaultMFAPendingTTL = 10 * time.Minute
)

// Claims are the token claims used across the service.
type Claims struct {
	jwt.RegisteredClaims

	// MFAPending marks the short-lived intermediate token minted between
	// password verification and TOTP verification. A token carrying this
	// flag is never valid as a session credential.
	MFAPending bool `json:"mfa_pending,omitempty"`
}

// NewSessionClaims builds claims for a full session token.
func NewSessionClaims(subject, issuer string, ttl time.Duration, now time.Time) Claims {
	return newClaims(subject, issuer, ttl, now, false)
}

// NewMFAPendingClaims builds claims for the intermediate MFA token.
func NewMFAPendingClaims(subject, issuer string, ttl time.Duration, now time.Time) Claims {
	return newClaims(subject, issuer, ttl, now, true)
}

func newClaims(subject, issuer string, ttl time.Duration, now time.Time, pending bool) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		MFAPending: pending,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// ValidateExpiry ensures the token hasn't expired (exp) and isn't before nbf.
func (c *Claims) ValidateExpiry() error {
	now := time.Now().UTC()

	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Time) {
		return ErrExpired
	}

	if c.NotBefore != nil && now.Before(c.NotBefore.Time) {
		return ErrNotYetValid
	}

	return nil
}
