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

	httpapi "github.com/ziberlive/colive/internal/membership/http"
	"github.com/ziberlive/colive/internal/membership/media"
	"github.com/ziberlive/colive/internal/membership/service"
	"github.com/ziberlive/colive/internal/membership/store"
	"github.com/ziberlive/colive/internal/membership/store/drivers/sqlite"
	"github.com/ziberlive/colive/pkg/cryptox"
	"github.com/ziberlive/colive/pkg/httpx"
	"github.com/ziberlive/colive/pkg/invitecode"
	"github.com/ziberlive/colive/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application encapsulates the membership service with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db       store.Store
	keys     *Keys
	hasher   *cryptox.Hasher
	uploader *media.Uploader

	// Services
	authService         *service.AuthService
	bootstrapService    *service.BootstrapService
	inviteService       *service.InviteService
	registrationService *service.RegistrationService
	approvalService     *service.ApprovalService
	memberService       *service.MemberService
	locationService     *service.LocationService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: cfg.ServiceName,
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	pepper, err := cryptox.LoadOrCreatePepper(cfg.PepperPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load pepper: %w", err)
	}
	app.hasher = cryptox.NewHasher(pepper)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	keys, err := InitKeys(cfg, app.logger)
	if err != nil {
		_ = app.db.Close()
		return nil, err
	}
	app.keys = keys

	if err := app.initMedia(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.logger.Info("membership service starting", "addr", app.cfg.HTTPAddr, "version", BuildVersion)

	app.housekeepingService.Start()

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
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
	app.logger.Info("shutting down membership service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("membership service stopped")
	return nil
}

// initDatabase opens the database and applies migrations. Write transactions
// take the lock up front so concurrent approvals queue instead of failing.
func (app *Application) initDatabase() error {
	dsn := fmt.Sprintf(
		"file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_txlock=immediate",
		app.cfg.DatabaseFile,
	)
	db, err := sqlite.NewStore(dsn)
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

// initMedia connects the upload bucket. Without MEDIA_BUCKET uploads answer 503.
func (app *Application) initMedia() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	uploader, err := media.NewS3Uploader(ctx, media.Config{
		Bucket:        app.cfg.MediaBucket,
		Region:        app.cfg.MediaRegion,
		Endpoint:      app.cfg.MediaEndpoint,
		PublicBaseURL: app.cfg.MediaPublicBaseURL,
		MaxBytes:      app.cfg.MediaMaxBytes,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize media uploads: %w", err)
	}
	app.uploader = uploader

	if uploader.Enabled() {
		app.logger.Info("media uploads enabled", "bucket", app.cfg.MediaBucket)
	} else {
		app.logger.Warn("media uploads disabled (MEDIA_BUCKET not set)")
	}
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.authService = &service.AuthService{
		Store:     app.db,
		Hasher:    app.hasher,
		Signer:    app.keys.Signer,
		Issuer:    app.cfg.Issuer,
		Audience:  app.cfg.Audience,
		AccessTTL: app.cfg.AccessTokenTTL,
	}
	app.bootstrapService = &service.BootstrapService{
		Store:  app.db,
		Hasher: app.hasher,
		Token:  app.cfg.BootstrapToken,
	}
	app.inviteService = &service.InviteService{
		Store:      app.db,
		Codes:      invitecode.NewGenerator(),
		DefaultTTL: app.cfg.InviteDefaultTTL,
		BaseURL:    app.cfg.PublicBaseURL,
	}
	app.registrationService = &service.RegistrationService{Store: app.db, Hasher: app.hasher}
	app.approvalService = &service.ApprovalService{Store: app.db}
	app.memberService = &service.MemberService{Store: app.db}
	app.locationService = &service.LocationService{Store: app.db}
	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
		app.cfg.InviteRetention,
	)
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.keys.KeySet,
		app.keys.Verifier,
		BuildVersion,
		app.db,
		app.logger,
	)
	router.Limits = httpx.RateLimitProfilesFromEnv()

	// Wire services to router
	router.AuthService = app.authService
	router.BootstrapService = app.bootstrapService
	router.InviteService = app.inviteService
	router.RegistrationService = app.registrationService
	router.ApprovalService = app.approvalService
	router.MemberService = app.memberService
	router.LocationService = app.locationService
	router.Uploader = app.uploader
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              app.cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
