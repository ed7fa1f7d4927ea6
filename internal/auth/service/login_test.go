package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"

	"github.com/spectacle-shop/spectacle/internal/auth/domain"
	"github.com/spectacle-shop/spectacle/internal/auth/service"
)

var testRC = service.RequestContext{IP: "203.0.113.1", UserAgent: "go-test"}

func TestLoginSuccess(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.registerUser(t, "ada@example.com", "correct-horse-battery")

	res, err := env.login.Login(ctx, captchaInput("ada@example.com", "correct-horse-battery"), testRC)
	require.NoError(t, err)
	require.False(t, res.MFARequired)
	require.NotEmpty(t, res.SessionToken)
	require.Empty(t, res.TempToken)
	require.Equal(t, user.ID, res.User.ID)

	// Session token verifies as a session.
	userID, err := env.tokens.ValidateSession(res.SessionToken)
	require.NoError(t, err)
	require.Equal(t, user.ID, userID)

	// Login stamped last_login and logged the event.
	got, err := env.store.Users().GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastLogin)
	require.Contains(t, env.lastActions(t, user.ID), domain.ActionLogin)
}

func TestLoginInputGates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.registerUser(t, "ada@example.com", "correct-horse-battery")

	t.Run("missing email or password", func(t *testing.T) {
		_, err := env.login.Login(ctx, service.LoginInput{Email: "ada@example.com"}, testRC)
		require.ErrorIs(t, err, service.ErrMissingCredentials)

		_, err = env.login.Login(ctx, service.LoginInput{Password: "x"}, testRC)
		require.ErrorIs(t, err, service.ErrMissingCredentials)
	})

	t.Run("missing captcha digest", func(t *testing.T) {
		in := captchaInput("ada@example.com", "correct-horse-battery")
		in.CaptchaDigest = ""
		_, err := env.login.Login(ctx, in, testRC)
		require.ErrorIs(t, err, service.ErrCaptchaExpired)
	})

	t.Run("missing captcha answer", func(t *testing.T) {
		in := captchaInput("ada@example.com", "correct-horse-battery")
		in.CaptchaAnswer = ""
		_, err := env.login.Login(ctx, in, testRC)
		require.ErrorIs(t, err, service.ErrCaptchaMissing)
	})

	t.Run("wrong captcha answer", func(t *testing.T) {
		in := captchaInput("ada@example.com", "correct-horse-battery")
		in.CaptchaAnswer = "wrong"
		_, err := env.login.Login(ctx, in, testRC)
		require.ErrorIs(t, err, service.ErrCaptchaInvalid)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := env.login.Login(ctx, captchaInput("nobody@example.com", "whatever-password"), testRC)
		require.ErrorIs(t, err, service.ErrInvalidCredentials)
	})
}

func TestLoginLockout(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.registerUser(t, "ada@example.com", "correct-horse-battery")

	// Four wrong passwords count down the remaining attempts.
	for want := 4; want >= 1; want-- {
		_, err := env.login.Login(ctx, captchaInput("ada@example.com", "wrong-password"), testRC)
		var bad *service.BadCredentialsError
		require.ErrorAs(t, err, &bad)
		require.Equal(t, want, bad.RemainingAttempts)
	}

	// The fifth failure locks the account.
	_, err := env.login.Login(ctx, captchaInput("ada@example.com", "wrong-password"), testRC)
	var locked *service.LockedError
	require.ErrorAs(t, err, &locked)
	require.Equal(t, 5, locked.RemainingMinutes)
	require.Contains(t, env.lastActions(t, user.ID), domain.ActionAccountLocked)

	// The counter resets when the lock is taken, so the next window starts
	// clean once the lock expires.
	got, err := env.store.Users().GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	require.Zero(t, got.LoginAttempts)
	require.NotNil(t, got.LockUntil)

	t.Run("correct password is rejected while locked", func(t *testing.T) {
		_, err := env.login.Login(ctx, captchaInput("ada@example.com", "correct-horse-battery"), testRC)
		var locked *service.LockedError
		require.ErrorAs(t, err, &locked)
		require.GreaterOrEqual(t, locked.RemainingMinutes, 1)
		require.LessOrEqual(t, locked.RemainingMinutes, 5)
	})

	t.Run("login succeeds after the lock expires", func(t *testing.T) {
		env.login.Now = func() time.Time { return time.Now().UTC().Add(6 * time.Minute) }
		defer func() { env.login.Now = nil }()

		res, err := env.login.Login(ctx, captchaInput("ada@example.com", "correct-horse-battery"), testRC)
		require.NoError(t, err)
		require.NotEmpty(t, res.SessionToken)

		// Success clears the stale lock state.
		got, err := env.store.Users().GetUserByID(ctx, user.ID)
		require.NoError(t, err)
		require.Nil(t, got.LockUntil)
		require.Zero(t, got.LoginAttempts)
	})
}

func TestLoginSuccessResetsAttempts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.registerUser(t, "ada@example.com", "correct-horse-battery")

	for range 3 {
		_, err := env.login.Login(ctx, captchaInput("ada@example.com", "wrong-password"), testRC)
		require.Error(t, err)
	}

	_, err := env.login.Login(ctx, captchaInput("ada@example.com", "correct-horse-battery"), testRC)
	require.NoError(t, err)

	got, err := env.store.Users().GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	require.Zero(t, got.LoginAttempts, "success resets the failure counter")

	// A fresh failure starts a new window at 4 remaining.
	_, err = env.login.Login(ctx, captchaInput("ada@example.com", "wrong-password"), testRC)
	var bad *service.BadCredentialsError
	require.ErrorAs(t, err, &bad)
	require.Equal(t, 4, bad.RemainingAttempts)
}

func enrollAndEnable(t *testing.T, env *testEnv, userID string) string {
	t.Helper()
	ctx := context.Background()

	enroll, err := env.mfa.Enroll(ctx, userID)
	require.NoError(t, err)

	code, err := totp.GenerateCode(enroll.Secret, time.Now())
	require.NoError(t, err)
	require.NoError(t, env.mfa.Enable(ctx, userID, code, testRC))

	return enroll.Secret
}

func TestLoginWithMFA(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.registerUser(t, "ada@example.com", "correct-horse-battery")
	secret := enrollAndEnable(t, env, user.ID)

	res, err := env.login.Login(ctx, captchaInput("ada@example.com", "correct-horse-battery"), testRC)
	require.NoError(t, err)
	require.True(t, res.MFARequired)
	require.NotEmpty(t, res.TempToken)
	require.Empty(t, res.SessionToken, "no session until the TOTP code is verified")

	t.Run("temp token is not a session credential", func(t *testing.T) {
		_, err := env.tokens.ValidateSession(res.TempToken)
		require.ErrorIs(t, err, service.ErrInvalidToken)
	})

	t.Run("wrong code is rejected", func(t *testing.T) {
		_, err := env.login.VerifyMFA(ctx, res.TempToken, "000000", testRC)
		require.ErrorIs(t, err, service.ErrInvalidTOTPCode)
	})

	t.Run("missing inputs are rejected", func(t *testing.T) {
		_, err := env.login.VerifyMFA(ctx, "", "123456", testRC)
		require.ErrorIs(t, err, service.ErrMissingMFAInput)

		_, err = env.login.VerifyMFA(ctx, res.TempToken, "", testRC)
		require.ErrorIs(t, err, service.ErrMissingMFAInput)
	})

	t.Run("valid code completes the login", func(t *testing.T) {
		code, err := totp.GenerateCode(secret, time.Now())
		require.NoError(t, err)

		final, err := env.login.VerifyMFA(ctx, res.TempToken, code, testRC)
		require.NoError(t, err)
		require.NotEmpty(t, final.SessionToken)

		userID, err := env.tokens.ValidateSession(final.SessionToken)
		require.NoError(t, err)
		require.Equal(t, user.ID, userID)
	})

	t.Run("session token cannot stand in for the temp token", func(t *testing.T) {
		session, err := env.tokens.IssueSession(user.ID)
		require.NoError(t, err)

		code, err := totp.GenerateCode(secret, time.Now())
		require.NoError(t, err)

		_, err = env.login.VerifyMFA(ctx, session, code, testRC)
		require.ErrorIs(t, err, service.ErrInvalidToken)
	})

	t.Run("expired temp token is rejected", func(t *testing.T) {
		env.tokens.Now = pastClock(11 * time.Minute)
		stale, err := env.tokens.IssueMFAPending(user.ID)
		require.NoError(t, err)
		env.tokens.Now = nil

		code, err := totp.GenerateCode(secret, time.Now())
		require.NoError(t, err)

		_, err = env.login.VerifyMFA(ctx, stale, code, testRC)
		require.ErrorIs(t, err, service.ErrInvalidToken)
	})
}
