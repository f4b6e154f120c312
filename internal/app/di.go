// Package app provides the dependency injection container for assembling
// application components.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/allisson/vaultlite/internal/config"
	cryptoDomain "github.com/allisson/vaultlite/internal/crypto/domain"
	cryptoService "github.com/allisson/vaultlite/internal/crypto/service"
	"github.com/allisson/vaultlite/internal/database"
	"github.com/allisson/vaultlite/internal/metrics"
	"github.com/allisson/vaultlite/internal/vault/repository"
	vaultUsecase "github.com/allisson/vaultlite/internal/vault/usecase"
)

// Container holds all application dependencies and provides methods to access
// them. It follows the lazy initialization pattern - components are created on
// first access.
type Container struct {
	// Configuration
	config *config.Config

	// Infrastructure
	logger          *slog.Logger
	db              *sql.DB
	metricsProvider *metrics.Provider

	// Managers
	txManager database.TxManager

	// Repositories
	secretRepo vaultUsecase.SecretRepository

	// Crypto
	cryptoProvider cryptoService.CryptoProvider

	// Use Cases
	secretStore vaultUsecase.SecretStore

	// Initialization flags and mutex for thread-safety
	mu                 sync.Mutex
	loggerInit         sync.Once
	dbInit             sync.Once
	metricsInit        sync.Once
	txManagerInit      sync.Once
	secretRepoInit     sync.Once
	cryptoProviderInit sync.Once
	secretStoreInit    sync.Once
	initErrors         map[string]error
}

// NewContainer creates a new dependency injection container with the provided
// configuration.
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
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// DB returns the database connection.
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

// MetricsProvider returns the metrics provider instance.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	c.metricsInit.Do(func() {
		provider, err := metrics.NewProvider(c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["metrics"] = err
			return
		}
		c.metricsProvider = provider
	})
	if storedErr, exists := c.initErrors["metrics"]; exists {
		return nil, storedErr
	}
	return c.metricsProvider, nil
}

// TxManager returns the transaction manager.
func (c *Container) TxManager() (database.TxManager, error) {
	c.txManagerInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["txManager"] = fmt.Errorf("failed to get database for tx manager: %w", err)
			return
		}
		c.txManager = database.NewTxManager(db)
	})
	if storedErr, exists := c.initErrors["txManager"]; exists {
		return nil, storedErr
	}
	return c.txManager, nil
}

// SecretRepository returns the secret repository instance for the configured
// database driver.
func (c *Container) SecretRepository() (vaultUsecase.SecretRepository, error) {
	c.secretRepoInit.Do(func() {
		repo, err := c.initSecretRepository()
		if err != nil {
			c.initErrors["secretRepo"] = err
			return
		}
		c.secretRepo = repo
	})
	if storedErr, exists := c.initErrors["secretRepo"]; exists {
		return nil, storedErr
	}
	return c.secretRepo, nil
}

// CryptoProvider returns the crypto provider built from the configured key
// material.
func (c *Container) CryptoProvider() (cryptoService.CryptoProvider, error) {
	c.cryptoProviderInit.Do(func() {
		provider, err := c.initCryptoProvider()
		if err != nil {
			c.initErrors["cryptoProvider"] = err
			return
		}
		c.cryptoProvider = provider
	})
	if storedErr, exists := c.initErrors["cryptoProvider"]; exists {
		return nil, storedErr
	}
	return c.cryptoProvider, nil
}

// SecretStore returns the secret store instance, wrapped with metrics
// instrumentation when enabled.
func (c *Container) SecretStore() (vaultUsecase.SecretStore, error) {
	c.secretStoreInit.Do(func() {
		store, err := c.initSecretStore()
		if err != nil {
			c.initErrors["secretStore"] = err
			return
		}
		c.secretStore = store
	})
	if storedErr, exists := c.initErrors["secretStore"]; exists {
		return nil, storedErr
	}
	return c.secretStore, nil
}

// Shutdown performs cleanup of all initialized resources.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	if c.secretStore != nil {
		if err := c.secretStore.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("secret store close: %w", err))
		}
	}

	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
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

	// The embedded driver applies migrations at startup; server databases
	// are migrated explicitly through the migrate command.
	if c.config.DBDriver == database.DriverLibSQL {
		if err := database.Migrate(context.Background(), db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	return db, nil
}

// initSecretRepository creates the secret repository for the configured driver.
func (c *Container) initSecretRepository() (vaultUsecase.SecretRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for secret repository: %w", err)
	}

	switch c.config.DBDriver {
	case database.DriverLibSQL:
		return repository.NewLibSQLSecretRepository(db), nil
	case database.DriverMySQL:
		return repository.NewMySQLSecretRepository(db), nil
	case database.DriverPostgreSQL:
		return repository.NewPostgreSQLSecretRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initCryptoProvider builds the crypto provider. The key comes either
// directly from VAULT_KEY or from unwrapping VAULT_WRAPPED_KEY through the
// configured KMS keeper.
func (c *Container) initCryptoProvider() (cryptoService.CryptoProvider, error) {
	key := c.config.VaultKey

	if c.config.KMSKeyURI != "" {
		kms := cryptoService.NewKMSService()
		unwrapped, err := kms.UnwrapKey(context.Background(), c.config.KMSKeyURI, c.config.VaultWrappedKey)
		if err != nil {
			return nil, fmt.Errorf("failed to unwrap vault key: %w", err)
		}
		key = unwrapped
	}

	provider, err := cryptoService.NewProvider(key, cryptoDomain.Algorithm(c.config.Algorithm))
	if err != nil {
		return nil, fmt.Errorf("failed to create crypto provider: %w", err)
	}

	return provider, nil
}

// initSecretStore creates the secret store with all its dependencies.
func (c *Container) initSecretStore() (vaultUsecase.SecretStore, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for secret store: %w", err)
	}

	secretRepo, err := c.SecretRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get secret repository for secret store: %w", err)
	}

	cryptoProvider, err := c.CryptoProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get crypto provider for secret store: %w", err)
	}

	store := vaultUsecase.NewSecretStore(txManager, secretRepo, cryptoProvider)

	if c.config.MetricsEnabled {
		metricsProvider, err := c.MetricsProvider()
		if err != nil {
			return nil, fmt.Errorf("failed to get metrics provider for secret store: %w", err)
		}

		businessMetrics, err := metrics.NewBusinessMetrics(metricsProvider.MeterProvider(), c.config.MetricsNamespace)
		if err != nil {
			return nil, fmt.Errorf("failed to create business metrics for secret store: %w", err)
		}

		store = vaultUsecase.NewSecretStoreWithMetrics(store, businessMetrics)
	}

	return store, nil
}
