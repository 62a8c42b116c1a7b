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

	"github.com/talentwire/pagelink/internal/connect/graph"
	httpapi "github.com/talentwire/pagelink/internal/connect/http"
	"github.com/talentwire/pagelink/internal/connect/service"
	"github.com/talentwire/pagelink/internal/connect/store"
	"github.com/talentwire/pagelink/internal/connect/store/drivers/sqlite"
	"github.com/talentwire/pagelink/pkg/cryptox"
	"github.com/talentwire/pagelink/pkg/httpx"
	"github.com/talentwire/pagelink/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the connector service with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	db store.Store

	exchangeService *service.ExchangeService
	tokenService    *service.TokenService

	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "pagelink",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	cryptox.SetEncryptionKey(cfg.TokenEncryptionKey)
	if cryptox.KeyIsStretched() {
		app.logger.Warn("TOKEN_ENCRYPTION_KEY is not 64 hex chars; key was stretched with scrypt")
	}

	if !cfg.hasFacebookCredentials() {
		app.logger.Warn("Facebook app credentials not configured; token exchange endpoints will fail")
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

func (cfg Config) hasFacebookCredentials() bool {
	return cfg.FacebookAppID != "" && cfg.FacebookAppSecret != ""
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.logger.Info("pagelink service starting", "port", app.cfg.Port, "version", BuildVersion)

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

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down pagelink service...")

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

	app.logger.Info("pagelink service stopped")
	return nil
}

// initDatabase initializes the database and applies migrations
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

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.exchangeService = &service.ExchangeService{
		Graph: graph.NewClient(
			app.cfg.GraphBaseURL,
			app.cfg.GraphAPIVersion,
			app.cfg.FacebookAppID,
			app.cfg.FacebookAppSecret,
		),
	}

	app.tokenService = &service.TokenService{Store: app.db}
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	verifier := httpx.NewSessionVerifier(app.cfg.SessionSecret)

	router := httpapi.NewRouter(
		verifier,
		BuildVersion,
		app.db,
		app.logger,
	)

	router.ExchangeService = app.exchangeService
	router.TokenService = app.tokenService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
