package authsdk

import "time"

// User is the public shape of an account as returned by the service.
type User struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	MFAEnabled bool   `json:"mfaEnabled"`
}

// CaptchaChallenge is an issued CAPTCHA. Image is a data URL suitable for
// an <img> src; the verifier travels back automatically via the cookie jar.
type CaptchaChallenge struct {
	Image string `json:"image"`
}

// MFAChallenge is returned from Login when the account has TOTP enabled.
// TempToken is only good for VerifyMFA and expires after ten minutes.
type MFAChallenge struct {
	TempToken string `json:"tempToken"`
}

// MFASetupResponse carries a staged TOTP secret awaiting confirmation.
type MFASetupResponse struct {
	Secret     string `json:"secret"`
	OTPAuthURL string `json:"otpauthUrl"`
	QRCode     string `json:"qrCode"`
}

// ActivityLog is a single audit trail entry.
type ActivityLog struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	IPAddress string    `json:"ipAddress"`
	UserAgent string    `json:"userAgent"`
	CreatedAt time.Time `json:"createdAt"`
}

// HealthResponse is the liveness probe payload.
type HealthResponse struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	Version string `json:"version"`
}

// RegisterRequest creates a new account. Role is optional and defaults to
// "user"; only self-registerable roles are accepted.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

// Internal response envelopes.

type captchaEnvelope struct {
	Success bool   `json:"success"`
	Image   string `json:"image"`
}

type authEnvelope struct {
	Success     bool   `json:"success"`
	MFARequired bool   `json:"mfaRequired"`
	TempToken   string `json:"tempToken"`
	Token       string `json:"token"`
	User        User   `json:"user"`
}

type userEnvelope struct {
	Success bool `json:"success"`
	Data    User `json:"data"`
}

type mfaSetupEnvelope struct {
	Success    bool   `json:"success"`
	Secret     string `json:"secret"`
	OTPAuthURL string `json:"otpauthUrl"`
	QRCode     string `json:"qrCode"`
}

type logsEnvelope struct {
	Success bool          `json:"success"`
	Count   int           `json:"count"`
	Data    []ActivityLog `json:"data"`
}

type messageEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
