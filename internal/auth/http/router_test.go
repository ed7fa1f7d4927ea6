package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spectacle-shop/spectacle/internal/auth/domain"
	authhttp "github.com/spectacle-shop/spectacle/internal/auth/http"
	"github.com/spectacle-shop/spectacle/internal/auth/service"
	"github.com/spectacle-shop/spectacle/internal/auth/store/drivers/sqlite"
	"github.com/spectacle-shop/spectacle/pkg/cryptox"
	"github.com/spectacle-shop/spectacle/pkg/idx"
	"github.com/spectacle-shop/spectacle/pkg/jwtx"
)

var captchaSecret = []byte("router-test-captcha-secret")

func TestMain(m *testing.M) {
	pepperPath := filepath.Join(os.TempDir(), "spectacle-http-test-pepper")
	cryptox.SetPepperPath(pepperPath)

	os.Remove(pepperPath)
	code := m.Run()
	os.Remove(pepperPath)
	os.Exit(code)
}

type testServer struct {
	router *authhttp.Router
	store  *sqlite.Store
	tokens *service.TokenService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })

	signer, err := jwtx.NewHS256([]byte("router-test-secret"), "spectacle-auth")
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

	return &testServer{router: router, store: s, tokens: tokens}
}

var ipCounter int

// newRequest builds a request with a unique client IP so per-IP rate
// limits never couple unrelated test cases.
func newRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = strings.NewReader(string(raw))
	}

	req := httptest.NewRequest(method, target, reader)
	ipCounter++
	req.Header.Set("X-Real-IP", fmt.Sprintf("203.0.113.%d", ipCounter%250+1))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

// withCSRF attaches a matching CSRF cookie/header pair.
func withCSRF(req *http.Request) *http.Request {
	req.AddCookie(&http.Cookie{Name: "XSRF-TOKEN-V2", Value: "csrf-test-token"})
	req.Header.Set("X-XSRF-TOKEN", "csrf-test-token")
	return req
}

// withCaptcha attaches a solvable captcha verifier cookie for answer
// "abc42".
func withCaptcha(req *http.Request) *http.Request {
	req.AddCookie(&http.Cookie{
		Name:  "captchaHash",
		Value: cryptox.DigestHMAC(captchaSecret, "abc42"),
	})
	return req
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func cookieByName(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestCaptchaEndpoint(t *testing.T) {
	ts := newTestServer(t)

	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, newRequest(t, http.MethodGet, "/auth/captcha", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	require.Equal(t, true, body["success"])
	require.True(t, strings.HasPrefix(body["image"].(string), "data:image/png;base64,"))

	captchaCookie := cookieByName(rec.Result().Cookies(), "captchaHash")
	require.NotNil(t, captchaCookie)
	require.True(t, captchaCookie.HttpOnly)
	require.NotEmpty(t, captchaCookie.Value)

	// A fresh GET also mints the CSRF token cookie.
	csrfCookie := cookieByName(rec.Result().Cookies(), "XSRF-TOKEN-V2")
	require.NotNil(t, csrfCookie)
	require.False(t, csrfCookie.HttpOnly)
}

func TestRegisterAndMe(t *testing.T) {
	ts := newTestServer(t)

	req := withCSRF(newRequest(t, http.MethodPost, "/auth/register", map[string]string{
		"name":     "Ada Lovelace",
		"email":    "ada@example.com",
		"password": "correct-horse-battery",
	}))
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	body := decodeBody(t, rec)
	require.Equal(t, true, body["success"])
	user := body["user"].(map[string]any)
	require.Equal(t, "ada@example.com", user["email"])
	require.Equal(t, "user", user["role"])

	session := cookieByName(rec.Result().Cookies(), "token")
	require.NotNil(t, session)
	require.True(t, session.HttpOnly)

	t.Run("session cookie authenticates /auth/me", func(t *testing.T) {
		req := newRequest(t, http.MethodGet, "/auth/me", nil)
		req.AddCookie(&http.Cookie{Name: "token", Value: session.Value})
		rec := httptest.NewRecorder()
		ts.router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		data := body["data"].(map[string]any)
		require.Equal(t, "ada@example.com", data["email"])
	})

	t.Run("no cookie is unauthorized", func(t *testing.T) {
		rec := httptest.NewRecorder()
		ts.router.ServeHTTP(rec, newRequest(t, http.MethodGet, "/auth/me", nil))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestLoginEndpoint(t *testing.T) {
	ts := newTestServer(t)

	reg := withCSRF(newRequest(t, http.MethodPost, "/auth/register", map[string]string{
		"name":     "Ada Lovelace",
		"email":    "ada@example.com",
		"password": "correct-horse-battery",
	}))
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, reg)
	require.Equal(t, http.StatusCreated, rec.Code)

	t.Run("happy path sets the session cookie", func(t *testing.T) {
		req := withCaptcha(withCSRF(newRequest(t, http.MethodPost, "/auth/login", map[string]string{
			"email":    "ada@example.com",
			"password": "correct-horse-battery",
			"captcha":  "abc42",
		})))
		rec := httptest.NewRecorder()
		ts.router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		require.Equal(t, true, body["success"])
		require.NotEmpty(t, body["token"])
		require.NotNil(t, cookieByName(rec.Result().Cookies(), "token"))
	})

	t.Run("missing captcha cookie", func(t *testing.T) {
		req := withCSRF(newRequest(t, http.MethodPost, "/auth/login", map[string]string{
			"email":    "ada@example.com",
			"password": "correct-horse-battery",
			"captcha":  "abc42",
		}))
		rec := httptest.NewRecorder()
		ts.router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Contains(t, rec.Body.String(), "CAPTCHA expired")
	})

	t.Run("wrong password reports remaining attempts", func(t *testing.T) {
		req := withCaptcha(withCSRF(newRequest(t, http.MethodPost, "/auth/login", map[string]string{
			"email":    "ada@example.com",
			"password": "wrong-password",
			"captcha":  "abc42",
		})))
		rec := httptest.NewRecorder()
		ts.router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		body := decodeBody(t, rec)
		require.Equal(t, float64(4), body["remainingAttempts"])
	})

	t.Run("missing CSRF header is forbidden", func(t *testing.T) {
		req := withCaptcha(newRequest(t, http.MethodPost, "/auth/login", map[string]string{
			"email":    "ada@example.com",
			"password": "correct-horse-battery",
			"captcha":  "abc42",
		}))
		rec := httptest.NewRecorder()
		ts.router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestAdminLogsAuthorization(t *testing.T) {
	ts := newTestServer(t)

	// A regular user is turned away.
	reg := withCSRF(newRequest(t, http.MethodPost, "/auth/register", map[string]string{
		"name":     "Ada Lovelace",
		"email":    "ada@example.com",
		"password": "correct-horse-battery",
	}))
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, reg)
	require.Equal(t, http.StatusCreated, rec.Code)
	session := cookieByName(rec.Result().Cookies(), "token")

	req := newRequest(t, http.MethodGet, "/auth/admin/logs", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: session.Value})
	rec = httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)

	// An admin gets through. Admin accounts are provisioned directly.
	admin := domain.User{
		ID:           idx.New().String(),
		Name:         "Root",
		Email:        "root@example.com",
		PasswordHash: "unused",
		Role:         domain.RoleAdmin,
	}
	require.NoError(t, ts.store.Users().CreateUser(context.Background(), admin))

	adminToken, err := ts.tokens.IssueSession(admin.ID)
	require.NoError(t, err)

	req = newRequest(t, http.MethodGet, "/auth/admin/logs", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: adminToken})
	rec = httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, true, body["success"])
	require.GreaterOrEqual(t, body["count"].(float64), float64(1), "register event should be present")
}

func TestLogoutEndpoint(t *testing.T) {
	ts := newTestServer(t)

	reg := withCSRF(newRequest(t, http.MethodPost, "/auth/register", map[string]string{
		"name":     "Ada Lovelace",
		"email":    "ada@example.com",
		"password": "correct-horse-battery",
	}))
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, reg)
	session := cookieByName(rec.Result().Cookies(), "token")

	req := newRequest(t, http.MethodGet, "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: session.Value})
	rec = httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	cleared := cookieByName(rec.Result().Cookies(), "token")
	require.NotNil(t, cleared)
	require.Equal(t, "none", cleared.Value)
}

func TestSystemEndpoints(t *testing.T) {
	ts := newTestServer(t)

	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, newRequest(t, http.MethodGet, "/livez", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"status":"ok"`)

	rec = httptest.NewRecorder()
	ts.router.ServeHTTP(rec, newRequest(t, http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"status":"ready"`)
}
