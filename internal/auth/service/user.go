package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/spectacle-shop/spectacle/internal/auth/domain"
	"github.com/spectacle-shop/spectacle/internal/auth/store"
	"github.com/spectacle-shop/spectacle/pkg/cryptox"
	"github.com/spectacle-shop/spectacle/pkg/idx"
)

const (
	minPasswordLength = 8

	// ownLogLimit and adminLogLimit bound the activity log queries.
	ownLogLimit   = 20
	adminLogLimit = 100
)

var (
	ErrMissingFields    = errors.New("please provide name, email and password")
	ErrInvalidEmail     = errors.New("please provide a valid email")
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")
	ErrInvalidRole      = errors.New("invalid role")
	ErrEmailTaken       = errors.New("email already registered")
	ErrWrongPassword    = errors.New("password is incorrect")
)

// UserService covers registration and the account self-service operations.
type UserService struct {
	Store store.Store
	Audit *AuditService
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string // optional; defaults to "user"
}

// Register creates a new account. Only self-registerable roles are accepted
// here; admin accounts are provisioned out of band.
func (s *UserService) Register(ctx context.Context, in RegisterInput, rc RequestContext) (domain.User, error) {
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return domain.User{}, ErrMissingFields
	}
	if len(in.Password) < minPasswordLength {
		return domain.User{}, ErrPasswordTooShort
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return domain.User{}, ErrInvalidEmail
	}

	roleStr := in.Role
	if roleStr == "" {
		roleStr = string(domain.RoleUser)
	}
	role, ok := domain.ParseRole(roleStr)
	if !ok || !role.SelfRegisterable() {
		return domain.User{}, ErrInvalidRole
	}

	hash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:           idx.New().String(),
		Name:         in.Name,
		Email:        strings.ToLower(in.Email),
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.Store.Users().CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrEmailTaken
		}
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}

	s.Audit.Record(ctx, user.ID, domain.ActionRegister, "User registered", rc)
	return user, nil
}

// Get returns the user by ID.
func (s *UserService) Get(ctx context.Context, userID string) (domain.User, error) {
	return s.Store.Users().GetUserByID(ctx, userID)
}

// UpdateProfile changes the account's name and email.
func (s *UserService) UpdateProfile(ctx context.Context, userID, name, email string, rc RequestContext) (domain.User, error) {
	if name == "" || email == "" {
		return domain.User{}, ErrMissingFields
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return domain.User{}, ErrInvalidEmail
	}

	if err := s.Store.Users().UpdateProfile(ctx, userID, name, email); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrEmailTaken
		}
		return domain.User{}, fmt.Errorf("update profile: %w", err)
	}

	s.Audit.Record(ctx, userID, domain.ActionUpdateProfile, "Details updated", rc)
	return s.Store.Users().GetUserByID(ctx, userID)
}

// ChangePassword rotates the password after re-proving the current one.
func (s *UserService) ChangePassword(ctx context.Context, userID, current, next string, rc RequestContext) error {
	if len(next) < minPasswordLength {
		return ErrPasswordTooShort
	}

	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("user lookup: %w", err)
	}

	if err := cryptox.VerifyPassword(current, user.PasswordHash); err != nil {
		return ErrWrongPassword
	}

	hash, err := cryptox.HashPassword(next)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.Store.Users().UpdatePasswordHash(ctx, userID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	s.Audit.Record(ctx, userID, domain.ActionChangePassword, "Password changed", rc)
	return nil
}

// Logs returns the caller's recent activity, newest first.
func (s *UserService) Logs(ctx context.Context, userID string) ([]domain.ActivityLog, error) {
	return s.Store.ActivityLogs().ListByUser(ctx, userID, ownLogLimit)
}

// AllLogs returns recent activity across all users. Admin surface only;
// the capability check happens in the HTTP layer against a freshly loaded
// user record.
func (s *UserService) AllLogs(ctx context.Context) ([]domain.ActivityLog, error) {
	return s.Store.ActivityLogs().ListRecent(ctx, adminLogLimit)
}
