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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpapi "github.com/stackfort/oauthd/internal/oauth/http"
	"github.com/stackfort/oauthd/internal/oauth/metrics"
	"github.com/stackfort/oauthd/internal/oauth/service"
	"github.com/stackfort/oauthd/internal/oauth/store"
	"github.com/stackfort/oauthd/internal/oauth/store/drivers/sqlite"
	"github.com/stackfort/oauthd/pkg/cryptox"
	"github.com/stackfort/oauthd/pkg/sessionx"
	"github.com/stackfort/oauthd/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application wires the authorization server together: durable store,
// services, metrics, and the HTTP surface.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db       store.Store
	sessions *sessionx.Manager
	metrics  *metrics.Metrics
	registry *prometheus.Registry

	registryService     *service.RegistryService
	codeService         *service.CodeService
	grantService        *service.GrantService
	lifecycleService    *service.LifecycleService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "oauthd",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	// Pepper for client secret hashing
	cryptox.SetPepperPath(cfg.PepperFile)

	sessions, err := sessionx.NewManager(cfg.SessionKey, cfg.Issuer, cfg.SessionTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize session manager: %w", err)
	}
	app.sessions = sessions

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.initMetrics()
	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("oauthd starting", "port", app.cfg.Port, "version", BuildVersion)

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

// Shutdown gracefully stops the server, the housekeeping worker, and the
// database connection, in that order.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down oauthd...")

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

	app.logger.Info("oauthd stopped")
	return nil
}

func (app *Application) initDatabase() error {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(dsn)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied")
	return nil
}

func (app *Application) initMetrics() {
	if !app.cfg.MetricsEnabled {
		return
	}
	app.registry = prometheus.NewRegistry()
	app.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	app.metrics = metrics.New(app.registry)
}

func (app *Application) initServices() {
	app.registryService = &service.RegistryService{
		Store:        app.db,
		StoreTimeout: app.cfg.StoreTimeout,
	}
	app.codeService = &service.CodeService{
		Store:        app.db,
		Metrics:      app.metrics,
		CodeTTL:      app.cfg.CodeTTL,
		StoreTimeout: app.cfg.StoreTimeout,
	}
	app.grantService = &service.GrantService{
		Store:               app.db,
		Registry:            app.registryService,
		Codes:               app.codeService,
		Metrics:             app.metrics,
		AccessTTL:           app.cfg.AccessTTL,
		RefreshTTL:          app.cfg.RefreshTTL,
		RotateRefreshTokens: app.cfg.RotateRefresh,
		StoreTimeout:        app.cfg.StoreTimeout,
	}
	app.lifecycleService = &service.LifecycleService{
		Store:        app.db,
		Metrics:      app.metrics,
		StoreTimeout: app.cfg.StoreTimeout,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

func (app *Application) initHTTP() {
	var metricsHandler http.Handler
	if app.registry != nil {
		metricsHandler = promhttp.HandlerFor(app.registry, promhttp.HandlerOpts{})
	}

	router := httpapi.NewRouter(
		app.sessions,
		BuildVersion,
		app.db,
		app.logger,
		metricsHandler,
	)

	router.RegistryService = app.registryService
	router.CodeService = app.codeService
	router.GrantService = app.grantService
	router.LifecycleService = app.lifecycleService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
