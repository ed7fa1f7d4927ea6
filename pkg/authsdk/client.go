package authsdk

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"
)

// SDKClient is a client for the Spectacle authentication service. It holds
// the cookie jar that carries the session, CSRF, and CAPTCHA cookies, and
// provides the unauthenticated operations plus constructors for
// authenticated Sessions.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewSDKClient creates a new auth service client with its own cookie jar.
func NewSDKClient(baseURL string) *SDKClient {
	jar, _ := cookiejar.New(nil)

	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Jar:     jar,
			Timeout: 10 * time.Second,
		},
	}
}

// Health checks the liveness probe.
func (c *SDKClient) Health(ctx context.Context) (*HealthResponse, error) {
	var health HealthResponse
	if err := c.doJSON(ctx, http.MethodGet, "/livez", nil, &health, http.StatusOK); err != nil {
		return nil, err
	}
	return &health, nil
}

// GetCaptcha fetches a fresh CAPTCHA challenge. The verifier cookie lands
// in the jar and accompanies the next Login call automatically.
func (c *SDKClient) GetCaptcha(ctx context.Context) (*CaptchaChallenge, error) {
	var env captchaEnvelope
	if err := c.doJSON(ctx, http.MethodGet, "/auth/captcha", nil, &env, http.StatusOK); err != nil {
		return nil, err
	}
	return &CaptchaChallenge{Image: env.Image}, nil
}

// Register creates a new account and returns an authenticated session for
// it; the service logs fresh registrations straight in.
func (c *SDKClient) Register(ctx context.Context, req RegisterRequest) (*Session, error) {
	var env authEnvelope
	if err := c.doJSON(ctx, http.MethodPost, "/auth/register", req, &env, http.StatusCreated); err != nil {
		return nil, err
	}
	return &Session{client: c, user: env.User}, nil
}

// Login authenticates with email, password, and the answer to the most
// recently fetched CAPTCHA. When the account has TOTP enabled the session
// is nil and the returned MFAChallenge must be completed with VerifyMFA.
func (c *SDKClient) Login(ctx context.Context, email, password, captchaAnswer string) (*Session, *MFAChallenge, error) {
	body := map[string]string{
		"email":    email,
		"password": password,
		"captcha":  captchaAnswer,
	}

	var env authEnvelope
	if err := c.doJSON(ctx, http.MethodPost, "/auth/login", body, &env, http.StatusOK); err != nil {
		return nil, nil, err
	}

	if env.MFARequired {
		return nil, &MFAChallenge{TempToken: env.TempToken}, nil
	}
	return &Session{client: c, user: env.User}, nil, nil
}

// ResumeSession rebuilds a Session from a session cookie already present
// in the jar, for callers that persist cookies across process restarts.
// It verifies the cookie is still good by fetching the account.
func (c *SDKClient) ResumeSession(ctx context.Context) (*Session, error) {
	session := &Session{client: c}
	if _, err := session.Me(ctx); err != nil {
		return nil, err
	}
	return session, nil
}

// VerifyMFA completes a login that returned an MFAChallenge by presenting
// the intermediate token together with a current TOTP code.
func (c *SDKClient) VerifyMFA(ctx context.Context, tempToken, code string) (*Session, error) {
	body := map[string]string{
		"tempToken": tempToken,
		"code":      code,
	}

	var env authEnvelope
	if err := c.doJSON(ctx, http.MethodPost, "/auth/login/verify-mfa", body, &env, http.StatusOK); err != nil {
		return nil, err
	}
	return &Session{client: c, user: env.User}, nil
}
