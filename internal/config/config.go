// Package config provides application configuration through environment variables.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/allisson/go-env"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// DBDriver is the database driver to use ("libsql", "postgres" or "mysql").
	DBDriver string
	// DBConnectionString is the connection string for the database. For the
	// libsql driver this is a file URI, e.g. "file:/var/lib/vaultlite/vault.db".
	DBConnectionString string
	// DBMaxOpenConnections is the maximum number of open connections to the database.
	DBMaxOpenConnections int
	// DBMaxIdleConnections is the maximum number of idle connections in the database pool.
	DBMaxIdleConnections int
	// DBConnMaxLifetime is the maximum amount of time a connection may be reused.
	DBConnMaxLifetime time.Duration

	// VaultKey is the base64-encoded 32-byte symmetric key protecting all
	// secret values. Mutually exclusive with KMSKeyURI/VaultWrappedKey.
	VaultKey string
	// KMSKeyURI is an optional gocloud.dev keeper URI used to unwrap the vault
	// key (e.g. "awskms://...", "hashivault://...", "base64key://...").
	KMSKeyURI string
	// VaultWrappedKey is the KMS-wrapped vault key, base64-encoded. Only used
	// when KMSKeyURI is set.
	VaultWrappedKey string
	// Algorithm selects the AEAD scheme for newly produced envelopes
	// ("aes-gcm" or "chacha20-poly1305"). Existing envelopes of either scheme
	// remain decryptable.
	Algorithm string

	// LogLevel is the logging level (e.g., "debug", "info", "warn", "error").
	LogLevel string

	// MetricsEnabled indicates whether metrics collection is enabled.
	MetricsEnabled bool
	// MetricsNamespace is the namespace for the application metrics.
	MetricsNamespace string
}

// Load loads configuration from environment variables and .env file.
func Load() *Config {
	// Try to load .env file recursively
	loadDotEnv()

	return &Config{
		// Database configuration
		DBDriver:             env.GetString("DB_DRIVER", "libsql"),
		DBConnectionString:   env.GetString("DB_CONNECTION_STRING", "file:vaultlite.db"),
		DBMaxOpenConnections: env.GetInt("DB_MAX_OPEN_CONNECTIONS", 25),
		DBMaxIdleConnections: env.GetInt("DB_MAX_IDLE_CONNECTIONS", 5),
		DBConnMaxLifetime:    env.GetDuration("DB_CONN_MAX_LIFETIME", 5, time.Minute),

		// Key material
		VaultKey:        env.GetString("VAULT_KEY", ""),
		KMSKeyURI:       env.GetString("KMS_KEY_URI", ""),
		VaultWrappedKey: env.GetString("VAULT_WRAPPED_KEY", ""),
		Algorithm:       env.GetString("VAULT_ALGORITHM", "aes-gcm"),

		// Logging
		LogLevel: env.GetString("LOG_LEVEL", "info"),

		// Metrics
		MetricsEnabled:   env.GetBool("METRICS_ENABLED", false),
		MetricsNamespace: env.GetString("METRICS_NAMESPACE", "vaultlite"),
	}
}

// loadDotEnv searches for a .env file recursively from the current directory
// up to the root directory and loads it if found.
func loadDotEnv() {
	// Get current working directory
	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	// Search for .env file recursively up the directory tree
	dir := cwd
	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			// .env file found, load it
			_ = godotenv.Load(envPath)
			return
		}

		// Move to parent directory
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root directory
			break
		}
		dir = parent
	}
}
