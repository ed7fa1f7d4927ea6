package authsdk_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"

	"github.com/spectacle-shop/spectacle/internal/auth/domain"
	authhttp "github.com/spectacle-shop/spectacle/internal/auth/http"
	"github.com/spectacle-shop/spectacle/internal/auth/service"
	"github.com/spectacle-shop/spectacle/internal/auth/store/drivers/sqlite"
	"github.com/spectacle-shop/spectacle/pkg/authsdk"
	"github.com/spectacle-shop/spectacle/pkg/cryptox"
	"github.com/spectacle-shop/spectacle/pkg/idx"
	"github.com/spectacle-shop/spectacle/pkg/jwtx"
)

var captchaSecret = []byte("sdk-test-captcha-secret")

func TestMain(m *testing.M) {
	pepperPath := filepath.Join(os.TempDir(), "spectacle-sdk-test-pepper")
	cryptox.SetPepperPath(pepperPath)

	os.Remove(pepperPath)
	code := m.Run()
	os.Remove(pepperPath)
	os.Exit(code)
}

type testService struct {
	server *httptest.Server
	store  *sqlite.Store
	tokens *service.TokenService
}

// newTestService stands up the real router behind an httptest server.
func newTestService(t *testing.T) *testService {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())

	signer, err := jwtx.NewHS256([]byte("sdk-test-secret"), "spectacle-auth")
	require.NoError(t, err)

	captcha := service.NewCaptchaService(captchaSecret)
	tokens := &service.TokenService{Signer: signer, Issuer: "spectacle-auth"}
	audit := &service.AuditService{Store: s}

	router := authhttp.NewRouter(signer, authhttp.CookieConfig{}, "test", s,
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	router.TokenService = tokens
	router.AuditService = audit
	router.UserService = &service.UserService{Store: s, Audit: audit}
	router.MFAService = &service.MFAService{Store: s, Audit: audit, Issuer: "Spectacle"}
	router.LoginService = &service.LoginService{Store: s, Captcha: captcha, Tokens: tokens, Audit: audit}
	router.ApplyRoutes()

	server := httptest.NewServer(router)
	t.Cleanup(func() {
		server.Close()
		_ = s.Close()
	})

	return &testService{server: server, store: s, tokens: tokens}
}

// seedCookie plants a cookie into the client's jar as if the service had
// set it, used to forge CAPTCHA verifiers with a known answer.
func seedCookie(t *testing.T, client *authsdk.SDKClient, name, value string) {
	t.Helper()

	u, err := url.Parse(client.BaseURL)
	require.NoError(t, err)
	client.HTTPClient.Jar.SetCookies(u, []*http.Cookie{{Name: name, Value: value}})
}

func seedCaptcha(t *testing.T, client *authsdk.SDKClient, answer string) {
	seedCookie(t, client, "captchaHash", cryptox.DigestHMAC(captchaSecret, answer))
}

func registerUser(t *testing.T, client *authsdk.SDKClient, email string) *authsdk.Session {
	t.Helper()

	session, err := client.Register(context.Background(), authsdk.RegisterRequest{
		Name:     "Ada Lovelace",
		Email:    email,
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)
	return session
}

func TestHealth(t *testing.T) {
	ts := newTestService(t)
	client := authsdk.NewSDKClient(ts.server.URL)

	health, err := client.Health(context.Background())
	require.NoError(t, err)
	require.Equal(t, "ok", health.Status)
	require.Equal(t, "test", health.Version)
}

func TestGetCaptcha(t *testing.T) {
	ts := newTestService(t)
	client := authsdk.NewSDKClient(ts.server.URL)

	challenge, err := client.GetCaptcha(context.Background())
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(challenge.Image, "data:image/png;base64,"))
}

func TestRegisterAndMe(t *testing.T) {
	ts := newTestService(t)
	client := authsdk.NewSDKClient(ts.server.URL)
	ctx := context.Background()

	session := registerUser(t, client, "ada@example.com")
	require.Equal(t, "ada@example.com", session.User().Email)
	require.Equal(t, "user", session.User().Role)

	me, err := session.Me(ctx)
	require.NoError(t, err)
	require.Equal(t, session.User().ID, me.ID)
	require.False(t, me.MFAEnabled)
}

func TestLoginFlow(t *testing.T) {
	ts := newTestService(t)
	ctx := context.Background()

	registerUser(t, authsdk.NewSDKClient(ts.server.URL), "ada@example.com")

	// A fresh client with no cookies has to log in.
	client := authsdk.NewSDKClient(ts.server.URL)

	t.Run("bad captcha answer", func(t *testing.T) {
		seedCaptcha(t, client, "abc42")
		_, _, err := client.Login(ctx, "ada@example.com", "correct-horse-battery", "wrong")

		var apiErr *authsdk.APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	})

	t.Run("wrong password", func(t *testing.T) {
		seedCaptcha(t, client, "abc42")
		_, _, err := client.Login(ctx, "ada@example.com", "wrong-password", "abc42")

		var apiErr *authsdk.APIError
		require.ErrorAs(t, err, &apiErr)
		require.True(t, authsdk.IsUnauthorized(err))
		require.Equal(t, 4, apiErr.RemainingAttempts)
	})

	t.Run("happy path", func(t *testing.T) {
		seedCaptcha(t, client, "abc42")
		session, mfa, err := client.Login(ctx, "ada@example.com", "correct-horse-battery", "abc42")
		require.NoError(t, err)
		require.Nil(t, mfa)
		require.Equal(t, "ada@example.com", session.User().Email)

		me, err := session.Me(ctx)
		require.NoError(t, err)
		require.Equal(t, "ada@example.com", me.Email)
	})
}

func TestLockoutSurfacesThroughSDK(t *testing.T) {
	ts := newTestService(t)
	ctx := context.Background()

	registerUser(t, authsdk.NewSDKClient(ts.server.URL), "ada@example.com")

	client := authsdk.NewSDKClient(ts.server.URL)

	var lastErr error
	for range 5 {
		seedCaptcha(t, client, "abc42")
		_, _, lastErr = client.Login(ctx, "ada@example.com", "wrong-password", "abc42")
		require.Error(t, lastErr)
	}

	require.True(t, authsdk.IsLocked(lastErr))

	var apiErr *authsdk.APIError
	require.ErrorAs(t, lastErr, &apiErr)
	require.Equal(t, 5, apiErr.RemainingMinutes)
}

func TestMFALifecycle(t *testing.T) {
	ts := newTestService(t)
	ctx := context.Background()

	setupClient := authsdk.NewSDKClient(ts.server.URL)
	session := registerUser(t, setupClient, "ada@example.com")

	setup, err := session.SetupMFA(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, setup.Secret)
	require.Contains(t, setup.OTPAuthURL, "otpauth://totp/")
	require.True(t, strings.HasPrefix(setup.QRCode, "data:image/png;base64,"))

	code, err := totp.GenerateCode(setup.Secret, time.Now())
	require.NoError(t, err)
	require.NoError(t, session.EnableMFA(ctx, code))

	me, err := session.Me(ctx)
	require.NoError(t, err)
	require.True(t, me.MFAEnabled)

	// Logging in again now requires the TOTP step.
	client := authsdk.NewSDKClient(ts.server.URL)
	seedCaptcha(t, client, "abc42")

	loggedIn, mfa, err := client.Login(ctx, "ada@example.com", "correct-horse-battery", "abc42")
	require.NoError(t, err)
	require.Nil(t, loggedIn)
	require.NotNil(t, mfa)
	require.NotEmpty(t, mfa.TempToken)

	t.Run("wrong code rejected", func(t *testing.T) {
		_, err := client.VerifyMFA(ctx, mfa.TempToken, "000000")

		var apiErr *authsdk.APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
		require.Equal(t, "Invalid 2FA Code", apiErr.Message)
	})

	t.Run("valid code completes the login", func(t *testing.T) {
		code, err := totp.GenerateCode(setup.Secret, time.Now())
		require.NoError(t, err)

		verified, err := client.VerifyMFA(ctx, mfa.TempToken, code)
		require.NoError(t, err)
		require.Equal(t, "ada@example.com", verified.User().Email)

		_, err = verified.Me(ctx)
		require.NoError(t, err)
	})
}

func TestProfileAndPassword(t *testing.T) {
	ts := newTestService(t)
	ctx := context.Background()

	client := authsdk.NewSDKClient(ts.server.URL)
	session := registerUser(t, client, "ada@example.com")

	updated, err := session.UpdateDetails(ctx, "Ada King", "ada.king@example.com")
	require.NoError(t, err)
	require.Equal(t, "Ada King", updated.Name)
	require.Equal(t, "ada.king@example.com", updated.Email)
	require.Equal(t, "Ada King", session.User().Name)

	require.NoError(t, session.UpdatePassword(ctx, "correct-horse-battery", "battery-staple-horse"))

	err = session.UpdatePassword(ctx, "correct-horse-battery", "another-password")
	require.True(t, authsdk.IsUnauthorized(err), "old password should no longer verify")
}

func TestActivityLogs(t *testing.T) {
	ts := newTestService(t)
	ctx := context.Background()

	client := authsdk.NewSDKClient(ts.server.URL)
	session := registerUser(t, client, "ada@example.com")

	logs, err := session.Logs(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, logs)
	require.Equal(t, "REGISTER", logs[0].Action)

	t.Run("admin logs forbidden for regular users", func(t *testing.T) {
		_, err := session.AdminLogs(ctx)

		var apiErr *authsdk.APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusForbidden, apiErr.StatusCode)
		require.Equal(t, "Not authorized to access this route", apiErr.Message)
	})

	t.Run("admin sees all accounts", func(t *testing.T) {
		admin := domain.User{
			ID:           idx.New().String(),
			Name:         "Root",
			Email:        "root@example.com",
			PasswordHash: "unused",
			Role:         domain.RoleAdmin,
		}
		require.NoError(t, ts.store.Users().CreateUser(ctx, admin))

		token, err := ts.tokens.IssueSession(admin.ID)
		require.NoError(t, err)

		adminClient := authsdk.NewSDKClient(ts.server.URL)
		seedCookie(t, adminClient, "token", token)

		adminSession, err := adminClient.ResumeSession(ctx)
		require.NoError(t, err)

		logs, err := adminSession.AdminLogs(ctx)
		require.NoError(t, err)
		require.NotEmpty(t, logs)
	})
}

func TestLogout(t *testing.T) {
	ts := newTestService(t)
	ctx := context.Background()

	client := authsdk.NewSDKClient(ts.server.URL)
	session := registerUser(t, client, "ada@example.com")

	require.NoError(t, session.Logout(ctx))

	_, err := session.Me(ctx)
	require.True(t, authsdk.IsUnauthorized(err))
}
