package store

import (
	"context"
	"errors"
	"time"

	"github.com/spectacle-shop/spectacle/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
	ErrInvalidAction = errors.New("store: invalid activity action")
)

// Store is the root data access interface. Concrete drivers (sqlite,
// postgres) implement this. It exposes sub-repositories to keep concerns
// tidy and testable. Every auth state transition touches a single user row,
// so there is no transaction surface here; the lockout counter uses an
// atomic increment-and-read instead.
type Store interface {
	Users() Users
	ActivityLogs() ActivityLogs

	ApplyMigrations() error

	// Close releases any underlying resources (optional for sqlite).
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail looks up a user for login. Email is matched lowercase.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by app via ULID).
	CreateUser(ctx context.Context, u domain.User) error

	// RecordLoginFailure atomically increments the failed-attempt counter
	// and returns the new value. Concurrent failures against the same
	// account each observe a distinct count, so exactly one caller sees
	// the lockout threshold.
	RecordLoginFailure(ctx context.Context, userID string) (int, error)

	// LockAccount sets the lockout deadline and resets the attempt counter.
	LockAccount(ctx context.Context, userID string, until time.Time) error

	// RecordLoginSuccess clears the attempt counter and any lock, and
	// stamps last_login.
	RecordLoginSuccess(ctx context.Context, userID string, at time.Time) error

	// UpdateProfile mutates name and email and bumps updated_at.
	UpdateProfile(ctx context.Context, userID, name, email string) error

	// UpdatePasswordHash sets the password_hash (argon2) and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, userID string, newHash string) error

	// UpdateMFASecret stages a TOTP secret for a user without enabling MFA.
	// Calling it again overwrites any previously staged secret.
	UpdateMFASecret(ctx context.Context, userID string, secret string) error

	// EnableMFA marks MFA as enabled for a user.
	EnableMFA(ctx context.Context, userID string) error
}

type ActivityLogs interface {
	// CreateActivityLog appends one audit record. The action must belong
	// to the known set.
	CreateActivityLog(ctx context.Context, l domain.ActivityLog) error

	// ListByUser returns the most recent records for one user, newest first.
	ListByUser(ctx context.Context, userID string, limit int) ([]domain.ActivityLog, error)

	// ListRecent returns the most recent records across all users, newest
	// first. Admin surface only.
	ListRecent(ctx context.Context, limit int) ([]domain.ActivityLog, error)
}
