package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	cryptoService "github.com/allisson/vaultlite/internal/crypto/service"
	"github.com/allisson/vaultlite/internal/database"
	apperrors "github.com/allisson/vaultlite/internal/errors"
	"github.com/allisson/vaultlite/internal/validation"
	vaultDomain "github.com/allisson/vaultlite/internal/vault/domain"
)

// rotationConcurrency bounds the number of in-flight decrypt/encrypt pairs
// during key rotation.
const rotationConcurrency = 8

// secretStore implements the SecretStore interface.
type secretStore struct {
	txManager  database.TxManager
	secretRepo SecretRepository

	mu       sync.RWMutex
	provider cryptoService.CryptoProvider
}

// NewSecretStore creates a new secret store instance with the provided
// dependencies.
func NewSecretStore(
	txManager database.TxManager,
	secretRepo SecretRepository,
	provider cryptoService.CryptoProvider,
) SecretStore {
	return &secretStore{
		txManager:  txManager,
		secretRepo: secretRepo,
		provider:   provider,
	}
}

func (s *secretStore) currentProvider() cryptoService.CryptoProvider {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.provider
}

// Add validates the input, encrypts the value, and persists a new secret.
func (s *secretStore) Add(ctx context.Context, input vaultDomain.NewSecretInput) (*vaultDomain.Secret, error) {
	if err := input.Validate(); err != nil {
		return nil, validation.WrapValidationError(err)
	}

	envelope, err := s.currentProvider().Encrypt(input.Value)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	secret := &vaultDomain.Secret{
		ID:             uuid.Must(uuid.NewV7()),
		Name:           input.Name,
		Project:        input.Project,
		Environment:    input.Environment,
		Tags:           input.Tags,
		EncryptedValue: envelope,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.secretRepo.Create(ctx, secret); err != nil {
		if apperrors.Is(err, vaultDomain.ErrSecretAlreadyExists) {
			name, project, environment := secret.Identity()
			return nil, apperrors.Wrap(err, fmt.Sprintf("secret %s/%s/%s", project, environment, name))
		}
		return nil, err
	}

	return secret, nil
}

// Get retrieves a secret by its id.
func (s *secretStore) Get(ctx context.Context, id uuid.UUID) (*vaultDomain.Secret, error) {
	return s.secretRepo.Get(ctx, id)
}

// GetByName retrieves a secret by its (name, project, environment) triple.
func (s *secretStore) GetByName(ctx context.Context, name, project, environment string) (*vaultDomain.Secret, error) {
	return s.secretRepo.GetByIdentity(ctx, name, project, environment)
}

// List retrieves secrets matching the filter, newest first.
func (s *secretStore) List(ctx context.Context, filter vaultDomain.Filter) ([]*vaultDomain.Secret, error) {
	return s.secretRepo.List(ctx, filter)
}

// Update re-encrypts a new value for an existing secret.
func (s *secretStore) Update(ctx context.Context, id uuid.UUID, value string) (*vaultDomain.Secret, error) {
	secret, err := s.secretRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	envelope, err := s.currentProvider().Encrypt(value)
	if err != nil {
		return nil, err
	}

	secret.EncryptedValue = envelope
	secret.UpdatedAt = time.Now().UTC()

	if err := s.secretRepo.UpdateValue(ctx, secret); err != nil {
		return nil, err
	}

	return secret, nil
}

// Delete removes a secret by id.
func (s *secretStore) Delete(ctx context.Context, id uuid.UUID) error {
	return s.secretRepo.Delete(ctx, id)
}

// Decrypt recovers the plaintext value of a stored secret.
func (s *secretStore) Decrypt(ctx context.Context, secret *vaultDomain.Secret) (string, error) {
	return s.currentProvider().Decrypt(secret.EncryptedValue)
}

// RotateKey re-encrypts every stored secret under the new provider. The
// decrypt/encrypt work runs concurrently; the writes happen in a single
// transaction so a failure on any secret rolls back the whole rotation.
func (s *secretStore) RotateKey(ctx context.Context, newProvider cryptoService.CryptoProvider) (int, error) {
	secrets, err := s.secretRepo.List(ctx, vaultDomain.Filter{})
	if err != nil {
		return 0, err
	}

	oldProvider := s.currentProvider()
	envelopes := make([]string, len(secrets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(rotationConcurrency)
	for i, secret := range secrets {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			plaintext, err := oldProvider.Decrypt(secret.EncryptedValue)
			if err != nil {
				return apperrors.Wrap(err, "failed to decrypt secret "+secret.ID.String())
			}
			envelopes[i], err = newProvider.Encrypt(plaintext)
			if err != nil {
				return apperrors.Wrap(err, "failed to re-encrypt secret "+secret.ID.String())
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	err = s.txManager.WithTx(ctx, func(txCtx context.Context) error {
		for i, secret := range secrets {
			secret.EncryptedValue = envelopes[i]
			secret.UpdatedAt = now
			if err := s.secretRepo.UpdateValue(txCtx, secret); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	s.provider = newProvider
	s.mu.Unlock()
	oldProvider.Close()

	return len(secrets), nil
}

// Close releases the repository's resources and zeroes the provider's key
// material.
func (s *secretStore) Close() error {
	s.currentProvider().Close()
	return s.secretRepo.Close()
}
