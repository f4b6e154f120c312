package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/vaultlite/internal/config"
	cryptoDomain "github.com/allisson/vaultlite/internal/crypto/domain"
	"github.com/allisson/vaultlite/internal/database"
	vaultDomain "github.com/allisson/vaultlite/internal/vault/domain"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	key, err := cryptoDomain.GenerateKey()
	require.NoError(t, err)

	return &config.Config{
		DBDriver:           database.DriverLibSQL,
		DBConnectionString: "file:" + filepath.Join(t.TempDir(), "vault.db"),
		VaultKey:           key,
		Algorithm:          "aes-gcm",
		LogLevel:           "info",
		MetricsNamespace:   "vaultlite",
	}
}

func TestNewContainer(t *testing.T) {
	cfg := testConfig(t)
	container := NewContainer(cfg)

	require.NotNil(t, container)
	assert.Same(t, cfg, container.Config())
}

func TestContainerLogger(t *testing.T) {
	container := NewContainer(&config.Config{LogLevel: "debug"})

	logger := container.Logger()
	require.NotNil(t, logger)

	// Same instance on repeated access.
	assert.Same(t, logger, container.Logger())
}

func TestContainerSecretStore(t *testing.T) {
	ctx := context.Background()
	container := NewContainer(testConfig(t))
	t.Cleanup(func() { require.NoError(t, container.Shutdown(ctx)) })

	store, err := container.SecretStore()
	require.NoError(t, err)

	// The embedded database is migrated at startup, so the store works
	// immediately against a fresh file.
	secret, err := store.Add(ctx, vaultDomain.NewSecretInput{
		Name:        "DB_PASS",
		Value:       "s3cr3t",
		Project:     "billing",
		Environment: "prod",
	})
	require.NoError(t, err)

	plaintext, err := store.Decrypt(ctx, secret)
	require.NoError(t, err)
	assert.Equal(t, "s3cr3t", plaintext)

	// Same instance on repeated access.
	store2, err := container.SecretStore()
	require.NoError(t, err)
	assert.Same(t, store, store2)
}

func TestContainerSecretStoreWithMetrics(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	cfg.MetricsEnabled = true
	container := NewContainer(cfg)
	t.Cleanup(func() { require.NoError(t, container.Shutdown(ctx)) })

	store, err := container.SecretStore()
	require.NoError(t, err)

	_, err = store.List(ctx, vaultDomain.Filter{})
	require.NoError(t, err)
}

func TestContainerInitializationErrors(t *testing.T) {
	t.Run("UnsupportedDriver", func(t *testing.T) {
		container := NewContainer(&config.Config{
			DBDriver:           "invalid_driver",
			DBConnectionString: "",
		})

		_, err := container.DB()
		require.Error(t, err)

		// The stored error is returned on repeated access.
		_, err2 := container.DB()
		assert.Equal(t, err, err2)
	})

	t.Run("MissingVaultKey", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.VaultKey = ""
		container := NewContainer(cfg)

		_, err := container.SecretStore()
		assert.ErrorIs(t, err, cryptoDomain.ErrKeyNotSet)
	})

	t.Run("InvalidAlgorithm", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Algorithm = "rot13"
		container := NewContainer(cfg)

		_, err := container.CryptoProvider()
		assert.ErrorIs(t, err, cryptoDomain.ErrUnsupportedAlgorithm)
	})
}

func TestContainerShutdown(t *testing.T) {
	container := NewContainer(testConfig(t))

	// Shutdown succeeds even when no components were initialized.
	require.NoError(t, container.Shutdown(context.Background()))
}
