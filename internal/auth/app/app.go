package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/spectacle-shop/spectacle/internal/auth/http"
	"github.com/spectacle-shop/spectacle/internal/auth/service"
	"github.com/spectacle-shop/spectacle/internal/auth/store"
	"github.com/spectacle-shop/spectacle/internal/auth/store/drivers/sqlite"
	"github.com/spectacle-shop/spectacle/pkg/cryptox"
	"github.com/spectacle-shop/spectacle/pkg/jwtx"
	"github.com/spectacle-shop/spectacle/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application encapsulates the auth service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db     store.Store
	signer *jwtx.HS256

	// Services
	captchaService *service.CaptchaService
	tokenService   *service.TokenService
	auditService   *service.AuditService
	loginService   *service.LoginService
	userService    *service.UserService
	mfaService     *service.MFAService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "spectacle-auth",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	// Set pepper path for password hashing
	cryptox.SetPepperPath(app.cfg.PepperFile)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	signer, captchaSecret, err := InitAuthSecrets(app.cfg, app.logger)
	if err != nil {
		return nil, err
	}
	app.signer = signer

	app.initServices(captchaSecret)
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.logger.Info("auth service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

// initDatabase initializes the database and applies migrations.
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initServices initializes all business logic services.
func (app *Application) initServices(captchaSecret []byte) {
	app.captchaService = service.NewCaptchaService(captchaSecret)

	app.tokenService = &service.TokenService{
		Signer:        app.signer,
		Issuer:        app.cfg.Issuer,
		SessionTTL:    jwtx.DefaultSessionTTL,
		MFAPendingTTL: jwtx.DefaultMFAPendingTTL,
	}

	app.auditService = &service.AuditService{Store: app.db}

	app.loginService = &service.LoginService{
		Store:   app.db,
		Captcha: app.captchaService,
		Tokens:  app.tokenService,
		Audit:   app.auditService,
	}

	app.userService = &service.UserService{
		Store: app.db,
		Audit: app.auditService,
	}

	app.mfaService = &service.MFAService{
		Store:  app.db,
		Audit:  app.auditService,
		Issuer: "Spectacle",
	}
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.signer,
		httpapi.CookieConfig{Secure: app.cfg.SecureCookies},
		BuildVersion,
		app.db,
		app.logger,
	)

	// Wire services to router
	router.LoginService = app.loginService
	router.TokenService = app.tokenService
	router.UserService = app.userService
	router.MFAService = app.mfaService
	router.AuditService = app.auditService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
