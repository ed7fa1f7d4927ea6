package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pquerna/otp/totp"

	"github.com/spectacle-shop/spectacle/internal/auth/domain"
	"github.com/spectacle-shop/spectacle/internal/auth/store"
	"github.com/spectacle-shop/spectacle/pkg/cryptox"
)

var (
	ErrMissingCredentials = errors.New("please provide email and password")
	ErrCaptchaExpired     = errors.New("captcha expired")
	ErrCaptchaMissing     = errors.New("captcha answer required")
	ErrCaptchaInvalid     = errors.New("invalid captcha code")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMissingMFAInput    = errors.New("missing token or code")
)

// LoginService runs the password login flow and the follow-up TOTP
// verification for MFA accounts.
type LoginService struct {
	Store   store.Store
	Captcha *CaptchaService
	Tokens  *TokenService
	Audit   *AuditService

	// Now is overridable for tests; defaults to time.Now.
	Now func() time.Time
}

type LoginInput struct {
	Email    string
	Password string

	// CaptchaAnswer is the user's transcription; CaptchaDigest is the
	// verifier from the captcha cookie.
	CaptchaAnswer string
	CaptchaDigest string
}

type LoginResult struct {
	// MFARequired means the password checked out but a TOTP code is still
	// owed; TempToken is set and SessionToken is empty.
	MFARequired  bool
	TempToken    string
	SessionToken string
	User         domain.User
}

func (s *LoginService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Login runs the ordered login gates: input presence, captcha, user lookup,
// lockout, password, then MFA dispatch. Each gate rejects without revealing
// more than the client already knows.
func (s *LoginService) Login(ctx context.Context, in LoginInput, rc RequestContext) (LoginResult, error) {
	if in.Email == "" || in.Password == "" {
		return LoginResult{}, ErrMissingCredentials
	}

	// Captcha gate. Runs before the user lookup so the database sees no
	// traffic from clients that can't solve a challenge.
	if in.CaptchaDigest == "" {
		return LoginResult{}, ErrCaptchaExpired
	}
	if in.CaptchaAnswer == "" {
		return LoginResult{}, ErrCaptchaMissing
	}
	if !s.Captcha.Verify(in.CaptchaAnswer, in.CaptchaDigest) {
		return LoginResult{}, ErrCaptchaInvalid
	}

	user, err := s.Store.Users().GetUserByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, fmt.Errorf("user lookup: %w", err)
	}

	now := s.now()
	if user.Locked(now) {
		return LoginResult{}, &LockedError{RemainingMinutes: RemainingLockMinutes(*user.LockUntil, now)}
	}

	if err := cryptox.VerifyPassword(in.Password, user.PasswordHash); err != nil {
		return LoginResult{}, s.recordFailure(ctx, user.ID, rc)
	}

	// Password verified. Clear the counters and stamp the login before the
	// MFA branch so a stalled TOTP entry doesn't leave stale lock state.
	if err := s.Store.Users().RecordLoginSuccess(ctx, user.ID, now); err != nil {
		return LoginResult{}, fmt.Errorf("record login: %w", err)
	}
	s.Audit.Record(ctx, user.ID, domain.ActionLogin, "User logged in", rc)

	if user.MFAEnabled {
		tempToken, err := s.Tokens.IssueMFAPending(user.ID)
		if err != nil {
			return LoginResult{}, fmt.Errorf("issue temp token: %w", err)
		}
		return LoginResult{MFARequired: true, TempToken: tempToken, User: user}, nil
	}

	sessionToken, err := s.Tokens.IssueSession(user.ID)
	if err != nil {
		return LoginResult{}, fmt.Errorf("issue session token: %w", err)
	}
	return LoginResult{SessionToken: sessionToken, User: user}, nil
}

// recordFailure bumps the failed-attempt counter and locks the account when
// it crosses the threshold. The increment is atomic in the store, so under
// concurrent failures exactly one caller observes the threshold and takes
// the lock.
func (s *LoginService) recordFailure(ctx context.Context, userID string, rc RequestContext) error {
	attempts, err := s.Store.Users().RecordLoginFailure(ctx, userID)
	if err != nil {
		return fmt.Errorf("record failure: %w", err)
	}

	if attempts >= LockoutThreshold {
		if err := s.Store.Users().LockAccount(ctx, userID, s.now().Add(LockoutDuration)); err != nil {
			return fmt.Errorf("lock account: %w", err)
		}
		s.Audit.Record(ctx, userID, domain.ActionAccountLocked,
			"Account locked due to failed login attempts", rc)
		return &LockedError{RemainingMinutes: int(LockoutDuration.Minutes())}
	}

	return &BadCredentialsError{RemainingAttempts: LockoutThreshold - attempts}
}

// VerifyMFA redeems an intermediate token plus a TOTP code for a full
// session.
func (s *LoginService) VerifyMFA(ctx context.Context, tempToken, code string, rc RequestContext) (LoginResult, error) {
	if tempToken == "" || code == "" {
		return LoginResult{}, ErrMissingMFAInput
	}

	userID, err := s.Tokens.ValidateMFAPending(tempToken)
	if err != nil {
		return LoginResult{}, ErrInvalidToken
	}

	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return LoginResult{}, ErrInvalidToken
		}
		return LoginResult{}, fmt.Errorf("user lookup: %w", err)
	}

	if user.MFASecret == nil || !totp.Validate(code, *user.MFASecret) {
		return LoginResult{}, ErrInvalidTOTPCode
	}

	s.Audit.Record(ctx, user.ID, domain.ActionLogin, "MFA verified", rc)

	sessionToken, err := s.Tokens.IssueSession(user.ID)
	if err != nil {
		return LoginResult{}, fmt.Errorf("issue session token: %w", err)
	}
	return LoginResult{SessionToken: sessionToken, User: user}, nil
}
