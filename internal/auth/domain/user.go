package domain

import "time"

type User struct {
	ID            string
	Name          string
	Email         string     // stored lowercase, unique
	PasswordHash  string     // argon2 encoded
	Role          Role
	LoginAttempts int        // consecutive failed logins since last success
	LockUntil     *time.Time // lockout deadline (nullable)
	MFAEnabled    bool
	MFASecret     *string    // TOTP secret (nullable, base32 encoded)
	LastLogin     *time.Time // last successful login (nullable)
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Locked reports whether the account is locked out at the given instant.
// An expired lock no longer counts.
func (u *User) Locked(now time.Time) bool {
	return u.LockUntil != nil && now.Before(*u.LockUntil)
}

// PublicUser is the user shape exposed to clients. The password hash, the
// TOTP secret and the lockout counters never leave the server.
type PublicUser struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	MFAEnabled bool   `json:"mfaEnabled"`
}

// Public projects the user into its client-facing shape.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Role:       string(u.Role),
		MFAEnabled: u.MFAEnabled,
	}
}
