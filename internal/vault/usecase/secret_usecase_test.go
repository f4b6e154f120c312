package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/vaultlite/internal/crypto/domain"
	cryptoService "github.com/allisson/vaultlite/internal/crypto/service"
	"github.com/allisson/vaultlite/internal/database"
	apperrors "github.com/allisson/vaultlite/internal/errors"
	"github.com/allisson/vaultlite/internal/testutil"
	vaultDomain "github.com/allisson/vaultlite/internal/vault/domain"
	"github.com/allisson/vaultlite/internal/vault/repository"
)

func newTestProvider(t *testing.T, algorithm cryptoDomain.Algorithm) *cryptoService.Provider {
	t.Helper()

	key, err := cryptoDomain.GenerateKey()
	require.NoError(t, err)

	provider, err := cryptoService.NewProvider(key, algorithm)
	require.NoError(t, err)
	return provider
}

func newTestStore(t *testing.T) SecretStore {
	t.Helper()

	db := testutil.SetupLibSQLDB(t)
	store := NewSecretStore(
		database.NewTxManager(db),
		repository.NewLibSQLSecretRepository(db),
		newTestProvider(t, cryptoDomain.AESGCM),
	)
	t.Cleanup(func() { require.NoError(t, store.Close()) })
	return store
}

func TestSecretStoreAdd(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		store := newTestStore(t)

		secret, err := store.Add(ctx, vaultDomain.NewSecretInput{
			Name:        "DB_PASS",
			Value:       "s3cr3t",
			Project:     "billing",
			Environment: "prod",
			Tags:        []string{"database"},
		})
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, secret.ID)
		assert.Equal(t, "DB_PASS", secret.Name)
		assert.NotEmpty(t, secret.EncryptedValue)
		assert.NotContains(t, secret.EncryptedValue, "s3cr3t")
		assert.False(t, secret.CreatedAt.IsZero())
		assert.Equal(t, secret.CreatedAt, secret.UpdatedAt)

		plaintext, err := store.Decrypt(ctx, secret)
		require.NoError(t, err)
		assert.Equal(t, "s3cr3t", plaintext)
	})

	t.Run("InvalidInput", func(t *testing.T) {
		store := newTestStore(t)

		_, err := store.Add(ctx, vaultDomain.NewSecretInput{Value: "v"})
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("EmptyValue", func(t *testing.T) {
		store := newTestStore(t)

		secret, err := store.Add(ctx, vaultDomain.NewSecretInput{
			Name:        "EMPTY",
			Project:     "billing",
			Environment: "dev",
		})
		require.NoError(t, err)

		plaintext, err := store.Decrypt(ctx, secret)
		require.NoError(t, err)
		assert.Empty(t, plaintext)
	})

	t.Run("DuplicateIdentity", func(t *testing.T) {
		store := newTestStore(t)
		input := vaultDomain.NewSecretInput{
			Name:        "DB_PASS",
			Value:       "one",
			Project:     "billing",
			Environment: "prod",
		}

		_, err := store.Add(ctx, input)
		require.NoError(t, err)

		input.Value = "two"
		_, err = store.Add(ctx, input)
		assert.ErrorIs(t, err, vaultDomain.ErrSecretAlreadyExists)
		assert.ErrorIs(t, err, apperrors.ErrConflict)
		assert.Contains(t, err.Error(), "billing/prod/DB_PASS")
	})
}

func TestSecretStoreGet(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	secret, err := store.Add(ctx, vaultDomain.NewSecretInput{
		Name:        "API_KEY",
		Value:       "abc123",
		Project:     "billing",
		Environment: "staging",
	})
	require.NoError(t, err)

	t.Run("ByID", func(t *testing.T) {
		got, err := store.Get(ctx, secret.ID)
		require.NoError(t, err)
		assert.Equal(t, secret.ID, got.ID)
	})

	t.Run("ByName", func(t *testing.T) {
		got, err := store.GetByName(ctx, "API_KEY", "billing", "staging")
		require.NoError(t, err)
		assert.Equal(t, secret.ID, got.ID)
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := store.Get(ctx, uuid.Must(uuid.NewV7()))
		assert.ErrorIs(t, err, vaultDomain.ErrSecretNotFound)

		_, err = store.GetByName(ctx, "API_KEY", "billing", "prod")
		assert.ErrorIs(t, err, vaultDomain.ErrSecretNotFound)
	})
}

func TestSecretStoreUpdate(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	secret, err := store.Add(ctx, vaultDomain.NewSecretInput{
		Name:        "DB_PASS",
		Value:       "old-pass",
		Project:     "billing",
		Environment: "prod",
	})
	require.NoError(t, err)

	t.Run("Success", func(t *testing.T) {
		updated, err := store.Update(ctx, secret.ID, "new-pass")
		require.NoError(t, err)
		assert.Equal(t, secret.ID, updated.ID)
		assert.Equal(t, secret.CreatedAt, updated.CreatedAt)
		assert.True(t, updated.UpdatedAt.After(secret.UpdatedAt) || updated.UpdatedAt.Equal(secret.UpdatedAt))
		assert.NotEqual(t, secret.EncryptedValue, updated.EncryptedValue)

		plaintext, err := store.Decrypt(ctx, updated)
		require.NoError(t, err)
		assert.Equal(t, "new-pass", plaintext)
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := store.Update(ctx, uuid.Must(uuid.NewV7()), "value")
		assert.ErrorIs(t, err, vaultDomain.ErrSecretNotFound)
	})
}

func TestSecretStoreDelete(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	secret, err := store.Add(ctx, vaultDomain.NewSecretInput{
		Name:        "DB_PASS",
		Value:       "s3cr3t",
		Project:     "billing",
		Environment: "prod",
	})
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, secret.ID))

	_, err = store.Get(ctx, secret.ID)
	assert.ErrorIs(t, err, vaultDomain.ErrSecretNotFound)

	// Deleting again is a no-op.
	require.NoError(t, store.Delete(ctx, secret.ID))
}

func TestSecretStoreList(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	inputs := []vaultDomain.NewSecretInput{
		{Name: "A", Value: "1", Project: "proj1", Environment: "dev", Tags: []string{"x"}},
		{Name: "B", Value: "2", Project: "proj1", Environment: "prod", Tags: []string{"x", "y"}},
		{Name: "C", Value: "3", Project: "proj2", Environment: "dev", Tags: []string{"z"}},
	}
	for _, input := range inputs {
		_, err := store.Add(ctx, input)
		require.NoError(t, err)
	}

	secrets, err := store.List(ctx, vaultDomain.Filter{})
	require.NoError(t, err)
	assert.Len(t, secrets, 3)

	secrets, err = store.List(ctx, vaultDomain.Filter{Project: "proj1", Tags: []string{"y"}})
	require.NoError(t, err)
	require.Len(t, secrets, 1)
	assert.Equal(t, "B", secrets[0].Name)
}

func TestSecretStoreRotateKey(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		store := newTestStore(t)

		values := map[string]string{"ONE": "first", "TWO": "second", "THREE": "third"}
		for name, value := range values {
			_, err := store.Add(ctx, vaultDomain.NewSecretInput{
				Name:        name,
				Value:       value,
				Project:     "billing",
				Environment: "prod",
			})
			require.NoError(t, err)
		}

		before, err := store.List(ctx, vaultDomain.Filter{})
		require.NoError(t, err)

		// Rotate onto a fresh key with a different algorithm.
		rotated, err := store.RotateKey(ctx, newTestProvider(t, cryptoDomain.ChaCha20))
		require.NoError(t, err)
		assert.Equal(t, 3, rotated)

		after, err := store.List(ctx, vaultDomain.Filter{})
		require.NoError(t, err)
		require.Len(t, after, 3)

		envelopes := make(map[uuid.UUID]string, len(before))
		for _, secret := range before {
			envelopes[secret.ID] = secret.EncryptedValue
		}
		for _, secret := range after {
			assert.NotEqual(t, envelopes[secret.ID], secret.EncryptedValue)

			plaintext, err := store.Decrypt(ctx, secret)
			require.NoError(t, err)
			assert.Equal(t, values[secret.Name], plaintext)
		}
	})

	t.Run("EmptyVault", func(t *testing.T) {
		store := newTestStore(t)

		rotated, err := store.RotateKey(ctx, newTestProvider(t, cryptoDomain.AESGCM))
		require.NoError(t, err)
		assert.Zero(t, rotated)
	})

	t.Run("NewSecretsUseNewKey", func(t *testing.T) {
		store := newTestStore(t)

		_, err := store.RotateKey(ctx, newTestProvider(t, cryptoDomain.AESGCM))
		require.NoError(t, err)

		secret, err := store.Add(ctx, vaultDomain.NewSecretInput{
			Name:        "POST_ROTATE",
			Value:       "fresh",
			Project:     "billing",
			Environment: "prod",
		})
		require.NoError(t, err)

		plaintext, err := store.Decrypt(ctx, secret)
		require.NoError(t, err)
		assert.Equal(t, "fresh", plaintext)
	})
}

func TestSecretStoreRotateKeyFailure(t *testing.T) {
	ctx := context.Background()

	db := testutil.SetupLibSQLDB(t)
	repo := repository.NewLibSQLSecretRepository(db)
	provider := newTestProvider(t, cryptoDomain.AESGCM)
	store := NewSecretStore(database.NewTxManager(db), repo, provider)
	t.Cleanup(func() { require.NoError(t, store.Close()) })

	secret, err := store.Add(ctx, vaultDomain.NewSecretInput{
		Name:        "DB_PASS",
		Value:       "s3cr3t",
		Project:     "billing",
		Environment: "prod",
	})
	require.NoError(t, err)

	// Corrupt the stored envelope so rotation cannot decrypt it.
	secret.EncryptedValue = "bm90LWFuLWVudmVsb3Bl"
	secret.UpdatedAt = time.Now().UTC()
	require.NoError(t, repo.UpdateValue(ctx, secret))

	_, err = store.RotateKey(ctx, newTestProvider(t, cryptoDomain.AESGCM))
	require.Error(t, err)
}
