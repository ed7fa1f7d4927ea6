package service

import (
	"fmt"
	"math"
	"time"
)

const (
	// LockoutThreshold is the number of consecutive failed logins that
	// locks the account.
	LockoutThreshold = 5

	// LockoutDuration is how long a lockout lasts.
	LockoutDuration = 5 * time.Minute
)

// RemainingLockMinutes reports how many whole minutes remain on a lock,
// rounded up so the client never retries early. Zero means the lock has
// expired.
func RemainingLockMinutes(lockUntil, now time.Time) int {
	d := lockUntil.Sub(now)
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Minutes()))
}

// LockedError is returned when the account is locked out. The remaining
// minutes feed the client-facing message and response body.
type LockedError struct {
	RemainingMinutes int
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("account locked, retry in %d minutes", e.RemainingMinutes)
}

// BadCredentialsError is returned on a wrong password while the account is
// still below the lockout threshold.
type BadCredentialsError struct {
	RemainingAttempts int
}

func (e *BadCredentialsError) Error() string {
	return fmt.Sprintf("invalid credentials, %d attempts remaining", e.RemainingAttempts)
}
