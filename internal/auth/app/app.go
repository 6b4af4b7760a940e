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

	httpapi "github.com/wonfolio/auth/internal/auth/http"
	"github.com/wonfolio/auth/internal/auth/service"
	"github.com/wonfolio/auth/internal/auth/session"
	"github.com/wonfolio/auth/internal/auth/social"
	"github.com/wonfolio/auth/internal/auth/store"
	"github.com/wonfolio/auth/internal/auth/store/drivers/sqlite"
	"github.com/wonfolio/auth/pkg/jwtx"
	"github.com/wonfolio/auth/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the auth service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db      store.Store
	session session.Store
	codec   *jwtx.Codec

	// Services
	tokenService  *service.TokenService
	userService   *service.UserService
	socialService *service.SocialService
	emailService  *service.EmailService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "auth-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initSession(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	codec, err := jwtx.NewCodec(jwtx.Config{
		Secret:          []byte(cfg.JWTSecret),
		Issuer:          cfg.Issuer,
		AccessTTL:       cfg.AccessTokenTTL,
		RefreshTTL:      cfg.RefreshTokenTTL,
		VerificationTTL: cfg.VerificationTokenTTL,
	})
	if err != nil {
		_ = app.session.Close()
		_ = app.db.Close()
		return nil, fmt.Errorf("failed to initialize token codec: %w", err)
	}
	app.codec = codec

	app.initServices()
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

	if err := app.session.Close(); err != nil {
		app.logger.Error("error closing session store", "error", err)
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

// initSession picks the session driver. Valkey when an address is configured,
// an in-process store otherwise. The memory store does not survive restarts,
// so it is only suitable for development and tests.
func (app *Application) initSession() error {
	if app.cfg.ValkeyAddress == "" {
		app.logger.Warn("no valkey address configured, using in-memory session store")
		app.session = session.NewMemoryStore()
		return nil
	}

	sess, err := session.NewValkeyStore(session.ValkeyConfig{
		Address:  app.cfg.ValkeyAddress,
		Password: app.cfg.ValkeyPassword,
		DB:       app.cfg.ValkeyDB,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize session store: %w", err)
	}
	app.session = sess

	app.logger.Info("connected to valkey session store", "address", app.cfg.ValkeyAddress)
	return nil
}

// initServices initializes all business logic services.
func (app *Application) initServices() {
	app.tokenService = &service.TokenService{
		Codec:   app.codec,
		Session: app.session,
	}

	app.userService = &service.UserService{
		Store:  app.db,
		Tokens: app.tokenService,
	}

	app.socialService = &service.SocialService{
		Providers: app.initProviders(),
		Store:     app.db,
		Tokens:    app.tokenService,
	}

	app.emailService = &service.EmailService{
		Codec:   app.codec,
		Session: app.session,
		Mailer:  service.DevMailer{},
		BaseURL: app.cfg.EmailBaseURL,
	}
}

// initProviders registers the social providers that have credentials
// configured. Requests for anything else fail with unsupported_provider.
func (app *Application) initProviders() *social.Registry {
	var providers []social.Provider

	if app.cfg.Google.ClientID != "" {
		providers = append(providers, social.NewGoogle(providerConfig(app.cfg.Google)))
	}
	if app.cfg.Naver.ClientID != "" {
		providers = append(providers, social.NewNaver(providerConfig(app.cfg.Naver)))
	}
	if app.cfg.Kakao.ClientID != "" {
		providers = append(providers, social.NewKakao(providerConfig(app.cfg.Kakao)))
	}

	for _, p := range providers {
		app.logger.Info("social provider enabled", "provider", string(p.Key()))
	}

	return social.NewRegistry(providers...)
}

func providerConfig(p ProviderConfig) social.Config {
	return social.Config{
		ClientID:     p.ClientID,
		ClientSecret: p.ClientSecret,
		RedirectURI:  p.RedirectURI,
		TokenURL:     p.TokenURL,
		UserinfoURL:  p.UserinfoURL,
	}
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(BuildVersion, app.db, app.session, app.logger)

	// Wire services to router
	router.TokenService = app.tokenService
	router.UserService = app.userService
	router.SocialService = app.socialService
	router.EmailService = app.emailService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
