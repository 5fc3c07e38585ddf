package app

import (
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	"finboard.app/api"
	"finboard.app/cache"
	"finboard.app/config"
	"finboard.app/database"
	"finboard.app/providers"
	"finboard.app/scheduler"
	"finboard.app/service"
)

// Application represents the main application with all its dependencies
type Application struct {
	config    *config.Config
	db        *gorm.DB
	cache     *cache.Cache
	server    *api.Server
	scheduler *scheduler.Scheduler
}

// NewApplication creates and initializes a new application instance
func NewApplication() (*Application, error) {
	app := &Application{}

	if err := app.loadConfiguration(); err != nil {
		return nil, err
	}

	if err := app.initializeCache(); err != nil {
		return nil, err
	}

	app.initializeServices()

	return app, nil
}

func (app *Application) loadConfiguration() error {
	slog.Info("Loading configuration...")

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		return fmt.Errorf("load application configuration: %w", err)
	}

	app.config = cfg
	slog.Info("Configuration loaded successfully")
	return nil
}

// initializeCache selects the storage backend and builds the shared TTL
// cache on top of it.
func (app *Application) initializeCache() error {
	slog.Info("Initializing cache", "backend", app.config.Cache.Backend.String())

	backend, err := app.createBackend()
	if err != nil {
		slog.Error("Failed to initialize cache backend", "error", err)
		return fmt.Errorf("initialize cache backend: %w", err)
	}

	instrumented := cache.NewInstrumentedStore(backend, app.config.Cache.Backend.String())
	app.cache = cache.New(instrumented, app.config.Cache.Namespace)

	slog.Info("Cache initialized successfully", "namespace", app.config.Cache.Namespace)
	return nil
}

func (app *Application) createBackend() (cache.Backend, error) {
	switch app.config.Cache.Backend {
	case config.BackendMemory:
		return cache.NewMemoryStore(), nil

	case config.BackendRedis:
		redisCfg := app.config.Cache.Redis
		return cache.NewRedisStore(&cache.RedisOptions{
			Addr:         redisCfg.Addr,
			Password:     redisCfg.Password,
			DB:           redisCfg.DB,
			DialTimeout:  time.Duration(redisCfg.DialTimeout) * time.Second,
			ReadTimeout:  time.Duration(redisCfg.ReadTimeout) * time.Second,
			WriteTimeout: time.Duration(redisCfg.WriteTimeout) * time.Second,
		})

	case config.BackendDatabase:
		db, err := database.InitDB(app.config.Database)
		if err != nil {
			return nil, fmt.Errorf("initialize database connection: %w", err)
		}
		if err := database.RunMigrations(db); err != nil {
			return nil, fmt.Errorf("run database migrations: %w", err)
		}
		app.db = db
		return cache.NewDatabaseStore(db), nil

	default:
		return nil, fmt.Errorf("unsupported cache backend: %s", app.config.Cache.Backend)
	}
}

func (app *Application) initializeServices() {
	slog.Info("Initializing services...")

	providerManager := providers.NewManager(&app.config.Providers)
	dashboardService := service.NewDashboardService(app.cache, providerManager, app.config)

	app.server = api.NewServer(app.config, dashboardService)
	app.scheduler = scheduler.NewScheduler(dashboardService, app.config)

	slog.Info("Services initialized successfully")
}

// Start starts the application
func (app *Application) Start() error {
	slog.Info("Starting application...")

	slog.Info("Starting refresh scheduler...")
	app.scheduler.Start()

	slog.Info("Starting HTTP server", "port", app.config.Server.Port)
	return app.server.Start()
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	slog.Info("Shutting down application...")

	if app.scheduler != nil {
		app.scheduler.Stop()
	}

	if app.cache != nil {
		if err := app.cache.Close(); err != nil {
			slog.Warn("Error closing cache backend", "error", err)
		}
	}

	if app.db != nil {
		if err := database.CloseDB(app.db); err != nil {
			slog.Warn("Error closing database", "error", err)
		}
	}

	slog.Info("Application shutdown complete")
	return nil
}

// Config returns the application configuration
func (app *Application) Config() *config.Config {
	return app.config
}

// Cache returns the shared cache, used by maintenance commands
func (app *Application) Cache() *cache.Cache {
	return app.cache
}
