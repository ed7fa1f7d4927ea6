package domain

// MFAChallengeResponse is returned when the password checked out but the
// account still owes a TOTP code.
type MFAChallengeResponse struct {
	MFARequired bool   `json:"mfaRequired"` // always true
	TempToken   string `json:"tempToken"`   // short-lived intermediate token
}

// MFAEnrollResponse carries the staged TOTP material back to the client.
// The secret is not active until the user proves possession of it.
type MFAEnrollResponse struct {
	Secret     string `json:"secret"`     // Base32 encoded secret for TOTP
	OTPAuthURL string `json:"otpauthUrl"` // otpauth:// provisioning URI
	QRCode     string `json:"qrCode"`     // data: URL PNG of the provisioning URI
}
