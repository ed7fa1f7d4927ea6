package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/spectacle-shop/spectacle/internal/auth/service"
	"github.com/spectacle-shop/spectacle/internal/auth/store"
	"github.com/spectacle-shop/spectacle/pkg/httpx"
	"github.com/spectacle-shop/spectacle/pkg/jwtx"
	"github.com/spectacle-shop/spectacle/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	cookies      CookieConfig
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store        store.Store
	LoginService *service.LoginService
	TokenService *service.TokenService
	UserService  *service.UserService
	MFAService   *service.MFAService
	AuditService *service.AuditService
}

func NewRouter(
	verifier jwtx.Verifier,
	cookies CookieConfig,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		cookies:      cookies,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Global middleware chain. CSRF sits inside the logging middleware so
	// rejected cross-site writes still show up in the request log.
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.CSRFMiddleware(httpx.CSRFConfig{
			CookieName:   CSRFCookieName,
			HeaderName:   CSRFHeaderName,
			Secure:       cookies.Secure,
			ExcludePaths: []string{"/payments/webhook"},
		}),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerAccount()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	captchaHandler := &CaptchaHandler{Captcha: r.LoginService.Captcha, Cookies: r.cookies}
	registerHandler := &RegisterHandler{Users: r.UserService, Tokens: r.TokenService, Cookies: r.cookies}
	loginHandler := &LoginHandler{Login: r.LoginService, Cookies: r.cookies}

	// GET /auth/captcha - public, generous limit; every login page load
	// fetches one.
	r.Mux.Handle("GET /auth/captcha",
		httpx.Chain(http.HandlerFunc(captchaHandler.HandleIssue),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	// POST /auth/register - strict limit, account creation is abusable.
	r.Mux.Handle("POST /auth/register",
		httpx.Chain(http.HandlerFunc(registerHandler.HandleRegister),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /auth/login - strict limit by IP (brute force prevention on top
	// of the per-account lockout).
	r.Mux.Handle("POST /auth/login",
		httpx.Chain(http.HandlerFunc(loginHandler.HandleLogin),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /auth/login/verify-mfa - strict limit by IP; this is the only
	// brake on TOTP guessing within a temp token's lifetime.
	r.Mux.Handle("POST /auth/login/verify-mfa",
		httpx.Chain(http.HandlerFunc(loginHandler.HandleVerifyMFA),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerAccount() {
	sessionHandler := &SessionHandler{Users: r.UserService, Audit: r.AuditService, Cookies: r.cookies}
	mfaHandler := &MFAHandler{MFA: r.MFAService}
	profileHandler := &ProfileHandler{Users: r.UserService}
	logsHandler := &LogsHandler{Users: r.UserService}

	authn := httpx.SessionMiddleware(r.verifier, SessionCookieName)

	r.Mux.Handle("GET /auth/me",
		httpx.Chain(http.HandlerFunc(sessionHandler.HandleMe),
			authn,
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)

	r.Mux.Handle("GET /auth/logout",
		httpx.Chain(http.HandlerFunc(sessionHandler.HandleLogout),
			authn,
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)

	r.Mux.Handle("POST /auth/mfa/setup",
		httpx.Chain(http.HandlerFunc(mfaHandler.HandleSetup),
			authn,
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	// Strict: enable proves a TOTP code, so give guessing no room.
	r.Mux.Handle("POST /auth/mfa/enable",
		httpx.Chain(http.HandlerFunc(mfaHandler.HandleEnable),
			authn,
			httpx.RateLimitByUser(httpx.StrictLimit),
		),
	)

	r.Mux.Handle("PUT /auth/profile",
		httpx.Chain(http.HandlerFunc(profileHandler.HandleUpdateDetails),
			authn,
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("PUT /auth/password",
		httpx.Chain(http.HandlerFunc(profileHandler.HandleUpdatePassword),
			authn,
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("GET /auth/logs",
		httpx.Chain(http.HandlerFunc(logsHandler.HandleOwn),
			authn,
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)

	r.Mux.Handle("GET /auth/admin/logs",
		httpx.Chain(http.HandlerFunc(logsHandler.HandleAll),
			authn,
			r.requireAdmin(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)

	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.store),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}
