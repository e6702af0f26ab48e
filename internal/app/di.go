// Package app provides dependency injection container for assembling application components.
package app

import (
	"context"
	"database/sql"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/allisson/entrypass/internal/config"
	"github.com/allisson/entrypass/internal/crypto"
	"github.com/allisson/entrypass/internal/database"
	"github.com/allisson/entrypass/internal/http"
	"github.com/allisson/entrypass/internal/metrics"

	entryHTTP "github.com/allisson/entrypass/internal/entry/http"
	entryRepository "github.com/allisson/entrypass/internal/entry/repository"
	entryUsecase "github.com/allisson/entrypass/internal/entry/usecase"
)

// Container holds all application dependencies and provides methods to access them.
// It follows the lazy initialization pattern - components are created on first access.
type Container struct {
	// Configuration
	config *config.Config

	// Infrastructure
	logger *slog.Logger
	db     *sql.DB
	keeper *crypto.Keeper

	// Managers
	txManager database.TxManager

	// Repositories
	eventRepo  entryUsecase.EventRepository
	ticketRepo entryUsecase.TicketRepository

	// Use Cases
	entryUseCase entryUsecase.EntryUseCase

	// Observability
	metricsProvider *metrics.Provider

	// Servers
	httpServer    *http.Server
	metricsServer *http.MetricsServer

	// Initialization flags and mutex for thread-safety
	mu                  sync.Mutex
	loggerInit          sync.Once
	dbInit              sync.Once
	keeperInit          sync.Once
	txManagerInit       sync.Once
	eventRepoInit       sync.Once
	ticketRepoInit      sync.Once
	entryUseCaseInit    sync.Once
	metricsProviderInit sync.Once
	httpServerInit      sync.Once
	metricsServerInit   sync.Once
	initErrors          map[string]error
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance.
// It creates a new logger on first access based on the log level in configuration.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// DB returns the database connection.
// It creates and configures the database connection on first access.
func (c *Container) DB() (*sql.DB, error) {
	c.dbInit.Do(func() {
		db, err := c.initDB()
		if err != nil {
			c.initErrors["db"] = err
			return
		}
		c.db = db
	})
	if storedErr, exists := c.initErrors["db"]; exists {
		return nil, storedErr
	}
	return c.db, nil
}

// Keeper returns the key keeper used to encrypt key material at rest.
func (c *Container) Keeper(ctx context.Context) (*crypto.Keeper, error) {
	c.keeperInit.Do(func() {
		keeper, err := crypto.OpenKeeper(ctx, c.config.KeeperURL)
		if err != nil {
			c.initErrors["keeper"] = fmt.Errorf("failed to open keeper: %w", err)
			return
		}
		c.keeper = keeper
	})
	if storedErr, exists := c.initErrors["keeper"]; exists {
		return nil, storedErr
	}
	return c.keeper, nil
}

// TxManager returns the transaction manager.
// It requires a database connection to be initialized first.
func (c *Container) TxManager() (database.TxManager, error) {
	c.txManagerInit.Do(func() {
		txManager, err := c.initTxManager()
		if err != nil {
			c.initErrors["txManager"] = err
			return
		}
		c.txManager = txManager
	})
	if storedErr, exists := c.initErrors["txManager"]; exists {
		return nil, storedErr
	}
	return c.txManager, nil
}

// EventRepository returns the event repository instance.
func (c *Container) EventRepository() (entryUsecase.EventRepository, error) {
	c.eventRepoInit.Do(func() {
		repo, err := c.initEventRepository()
		if err != nil {
			c.initErrors["eventRepo"] = err
			return
		}
		c.eventRepo = repo
	})
	if storedErr, exists := c.initErrors["eventRepo"]; exists {
		return nil, storedErr
	}
	return c.eventRepo, nil
}

// TicketRepository returns the ticket repository instance.
func (c *Container) TicketRepository() (entryUsecase.TicketRepository, error) {
	c.ticketRepoInit.Do(func() {
		repo, err := c.initTicketRepository()
		if err != nil {
			c.initErrors["ticketRepo"] = err
			return
		}
		c.ticketRepo = repo
	})
	if storedErr, exists := c.initErrors["ticketRepo"]; exists {
		return nil, storedErr
	}
	return c.ticketRepo, nil
}

// EntryUseCase returns the entry use case instance.
func (c *Container) EntryUseCase(ctx context.Context) (entryUsecase.EntryUseCase, error) {
	c.entryUseCaseInit.Do(func() {
		useCase, err := c.initEntryUseCase(ctx)
		if err != nil {
			c.initErrors["entryUseCase"] = err
			return
		}
		c.entryUseCase = useCase
	})
	if storedErr, exists := c.initErrors["entryUseCase"]; exists {
		return nil, storedErr
	}
	return c.entryUseCase, nil
}

// MetricsProvider returns the metrics provider, or nil when metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	if !c.config.MetricsEnabled {
		return nil, nil
	}
	c.metricsProviderInit.Do(func() {
		provider, err := metrics.NewProvider(c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["metricsProvider"] = fmt.Errorf("failed to create metrics provider: %w", err)
			return
		}
		c.metricsProvider = provider
	})
	if storedErr, exists := c.initErrors["metricsProvider"]; exists {
		return nil, storedErr
	}
	return c.metricsProvider, nil
}

// HTTPServer returns the HTTP server instance.
func (c *Container) HTTPServer(ctx context.Context) (*http.Server, error) {
	c.httpServerInit.Do(func() {
		server, err := c.initHTTPServer(ctx)
		if err != nil {
			c.initErrors["httpServer"] = err
			return
		}
		c.httpServer = server
	})
	if storedErr, exists := c.initErrors["httpServer"]; exists {
		return nil, storedErr
	}
	return c.httpServer, nil
}

// MetricsServer returns the metrics server, or nil when metrics are disabled.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	if !c.config.MetricsEnabled {
		return nil, nil
	}
	c.metricsServerInit.Do(func() {
		provider, err := c.MetricsProvider()
		if err != nil {
			c.initErrors["metricsServer"] = err
			return
		}
		c.metricsServer = http.NewMetricsServer(
			c.config.ServerHost,
			c.config.MetricsPort,
			c.Logger(),
			provider,
		)
	})
	if storedErr, exists := c.initErrors["metricsServer"]; exists {
		return nil, storedErr
	}
	return c.metricsServer, nil
}

// MasterSecret decodes the configured base64 master secret.
func (c *Container) MasterSecret() ([]byte, error) {
	secret, err := base64.StdEncoding.DecodeString(c.config.MasterSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to decode master secret: %w", err)
	}
	if len(secret) == 0 {
		return nil, fmt.Errorf("master secret is empty")
	}
	return secret, nil
}

// Shutdown performs cleanup of all initialized resources.
// It should be called when the application is shutting down.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	if c.httpServer != nil {
		if err := c.httpServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("http server shutdown: %w", err))
		}
	}

	if c.metricsServer != nil {
		if err := c.metricsServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	if c.keeper != nil {
		if err := c.keeper.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("keeper close: %w", err))
		}
	}

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
		}
	}

	if len(shutdownErrors) > 0 {
		return fmt.Errorf("shutdown errors: %v", shutdownErrors)
	}

	return nil
}

// initLogger creates and configures a structured logger based on the log level.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}

// initDB creates and configures the database connection.
func (c *Container) initDB() (*sql.DB, error) {
	db, err := database.Connect(database.Config{
		Driver:             c.config.DBDriver,
		ConnectionString:   c.config.DBConnectionString,
		MaxOpenConnections: c.config.DBMaxOpenConnections,
		MaxIdleConnections: c.config.DBMaxIdleConnections,
		ConnMaxLifetime:    c.config.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// initTxManager creates the transaction manager using the database connection.
func (c *Container) initTxManager() (database.TxManager, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for tx manager: %w", err)
	}
	return database.NewTxManager(db), nil
}

// initEventRepository creates the event repository instance.
func (c *Container) initEventRepository() (entryUsecase.EventRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for event repository: %w", err)
	}

	// Select the appropriate repository based on the database driver
	switch c.config.DBDriver {
	case "mysql":
		return entryRepository.NewMySQLEventRepository(db), nil
	case "postgres":
		return entryRepository.NewPostgreSQLEventRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initTicketRepository creates the ticket repository instance.
func (c *Container) initTicketRepository() (entryUsecase.TicketRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for ticket repository: %w", err)
	}

	// Select the appropriate repository based on the database driver
	switch c.config.DBDriver {
	case "mysql":
		return entryRepository.NewMySQLTicketRepository(db), nil
	case "postgres":
		return entryRepository.NewPostgreSQLTicketRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initEntryUseCase creates the entry use case with all its dependencies.
func (c *Container) initEntryUseCase(ctx context.Context) (entryUsecase.EntryUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for entry use case: %w", err)
	}

	eventRepo, err := c.EventRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get event repository for entry use case: %w", err)
	}

	ticketRepo, err := c.TicketRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket repository for entry use case: %w", err)
	}

	keeper, err := c.Keeper(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get keeper for entry use case: %w", err)
	}

	masterSecret, err := c.MasterSecret()
	if err != nil {
		return nil, err
	}

	useCase := entryUsecase.NewEntryUseCase(
		txManager,
		eventRepo,
		ticketRepo,
		keeper,
		masterSecret,
		c.config.VerifySkewSteps,
	)

	// Wrap with metrics when enabled
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, err
	}
	if provider != nil {
		businessMetrics, err := metrics.NewBusinessMetrics(
			provider.MeterProvider(),
			c.config.MetricsNamespace,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create business metrics: %w", err)
		}
		useCase = entryUsecase.NewEntryUseCaseWithMetrics(useCase, businessMetrics)
	}

	return useCase, nil
}

// initHTTPServer creates the HTTP server with all its dependencies.
func (c *Container) initHTTPServer(ctx context.Context) (*http.Server, error) {
	logger := c.Logger()

	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for http server: %w", err)
	}

	entryUseCase, err := c.EntryUseCase(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get entry use case for http server: %w", err)
	}

	var verifyMiddleware gin.HandlerFunc
	if c.config.RateLimitVerifyEnabled {
		verifyMiddleware = entryHTTP.RateLimitMiddleware(
			c.config.RateLimitVerifyRequestsPerSec,
			c.config.RateLimitVerifyBurst,
			logger,
		)
	}

	handler := entryHTTP.NewEntryHandler(entryUseCase, verifyMiddleware, logger)

	server := http.NewServer(db, c.config.ServerHost, c.config.ServerPort, logger)

	routerConfig := http.RouterConfig{
		CORSEnabled:      c.config.CORSEnabled,
		CORSAllowOrigins: c.config.CORSAllowOrigins,
		MetricsNamespace: c.config.MetricsNamespace,
	}

	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, err
	}
	if provider != nil {
		server.SetupRouter(routerConfig, provider.MeterProvider(), handler)
	} else {
		server.SetupRouter(routerConfig, nil, handler)
	}

	return server, nil
}
