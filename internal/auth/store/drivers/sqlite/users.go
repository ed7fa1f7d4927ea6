package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/spectacle-shop/spectacle/internal/auth/domain"
	"github.com/spectacle-shop/spectacle/internal/auth/store"
)

type usersRepo struct {
	db *sql.DB
}

// userRow mirrors the users table. Scanned explicitly so nullable columns
// stay nullable all the way up to the domain type.
type userRow struct {
	ID            string
	Name          string
	Email         string
	PasswordHash  string
	Role          string
	LoginAttempts int64
	LockUntil     sql.NullTime
	MFAEnabled    bool
	MFASecret     sql.NullString
	LastLogin     sql.NullTime
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

const userColumns = `id, name, email, password_hash, role, login_attempts,
	lock_until, mfa_enabled, mfa_secret, last_login, created_at, updated_at`

func scanUser(row *sql.Row) (userRow, error) {
	var u userRow
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.LoginAttempts,
		&u.LockUntil, &u.MFAEnabled, &u.MFASecret, &u.LastLogin, &u.CreatedAt, &u.UpdatedAt,
	)
	return u, err
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	row, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return mapUser(row), nil
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	row, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = lower(?)`, email))
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return mapUser(row), nil
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (
			id, name, email, password_hash, role, login_attempts,
			lock_until, mfa_enabled, mfa_secret, last_login, created_at, updated_at
		) VALUES (?, ?, lower(?), ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Email, u.PasswordHash, string(u.Role), u.LoginAttempts,
		mapOptionalTime(u.LockUntil), u.MFAEnabled, mapOptionalString(u.MFASecret),
		mapOptionalTime(u.LastLogin), u.CreatedAt, u.UpdatedAt,
	)
	return mapConstraint(err)
}

// RecordLoginFailure bumps the counter and reads the new value in one
// statement. Two concurrent failures each get a distinct count, so the
// lockout threshold fires exactly once.
func (r *usersRepo) RecordLoginFailure(ctx context.Context, userID string) (int, error) {
	var attempts int64
	err := r.db.QueryRowContext(ctx, `
		UPDATE users
		SET login_attempts = login_attempts + 1, updated_at = ?
		WHERE id = ?
		RETURNING login_attempts`,
		time.Now().UTC(), userID,
	).Scan(&attempts)
	if err != nil {
		return 0, mapNotFound(err)
	}
	return int(attempts), nil
}

func (r *usersRepo) LockAccount(ctx context.Context, userID string, until time.Time) error {
	return r.exec(ctx, `
		UPDATE users
		SET lock_until = ?, login_attempts = 0, updated_at = ?
		WHERE id = ?`,
		until.UTC(), time.Now().UTC(), userID,
	)
}

func (r *usersRepo) RecordLoginSuccess(ctx context.Context, userID string, at time.Time) error {
	return r.exec(ctx, `
		UPDATE users
		SET login_attempts = 0, lock_until = NULL, last_login = ?, updated_at = ?
		WHERE id = ?`,
		at.UTC(), time.Now().UTC(), userID,
	)
}

func (r *usersRepo) UpdateProfile(ctx context.Context, userID, name, email string) error {
	err := r.exec(ctx, `
		UPDATE users
		SET name = ?, email = lower(?), updated_at = ?
		WHERE id = ?`,
		name, email, time.Now().UTC(), userID,
	)
	return mapConstraint(err)
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, userID string, newHash string) error {
	return r.exec(ctx, `
		UPDATE users
		SET password_hash = ?, updated_at = ?
		WHERE id = ?`,
		newHash, time.Now().UTC(), userID,
	)
}

func (r *usersRepo) UpdateMFASecret(ctx context.Context, userID string, secret string) error {
	return r.exec(ctx, `
		UPDATE users
		SET mfa_secret = ?, updated_at = ?
		WHERE id = ?`,
		secret, time.Now().UTC(), userID,
	)
}

func (r *usersRepo) EnableMFA(ctx context.Context, userID string) error {
	return r.exec(ctx, `
		UPDATE users
		SET mfa_enabled = 1, updated_at = ?
		WHERE id = ?`,
		time.Now().UTC(), userID,
	)
}

// exec runs a single-row mutation and maps "no row matched" to ErrNotFound.
func (r *usersRepo) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
