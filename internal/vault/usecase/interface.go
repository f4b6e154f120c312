// Package usecase implements the business logic for the secret vault. The
// secret store orchestrates validation, envelope encryption, and durable
// persistence; values only ever touch the repository in encrypted form.
package usecase

import (
	"context"

	"github.com/google/uuid"

	cryptoService "github.com/allisson/vaultlite/internal/crypto/service"
	vaultDomain "github.com/allisson/vaultlite/internal/vault/domain"
)

// SecretRepository defines the interface for secret persistence operations.
type SecretRepository interface {
	Create(ctx context.Context, secret *vaultDomain.Secret) error
	Get(ctx context.Context, id uuid.UUID) (*vaultDomain.Secret, error)
	GetByIdentity(ctx context.Context, name, project, environment string) (*vaultDomain.Secret, error)
	List(ctx context.Context, filter vaultDomain.Filter) ([]*vaultDomain.Secret, error)
	UpdateValue(ctx context.Context, secret *vaultDomain.Secret) error
	Delete(ctx context.Context, id uuid.UUID) error
	Close() error
}

// SecretStore defines the interface for the secret vault business logic.
// Stored secrets carry only the encrypted envelope; Decrypt recovers the
// plaintext on demand.
type SecretStore interface {
	// Add validates the input, encrypts the value, and persists a new secret.
	// A secret with the same (name, project, environment) identity must not
	// already exist.
	Add(ctx context.Context, input vaultDomain.NewSecretInput) (*vaultDomain.Secret, error)

	// Get retrieves a secret by its id.
	Get(ctx context.Context, id uuid.UUID) (*vaultDomain.Secret, error)

	// GetByName retrieves a secret by its (name, project, environment) triple.
	GetByName(ctx context.Context, name, project, environment string) (*vaultDomain.Secret, error)

	// List retrieves secrets matching the filter, newest first.
	List(ctx context.Context, filter vaultDomain.Filter) ([]*vaultDomain.Secret, error)

	// Update re-encrypts a new value for an existing secret. Identity fields
	// and created_at never change; updated_at is bumped.
	Update(ctx context.Context, id uuid.UUID, value string) (*vaultDomain.Secret, error)

	// Delete removes a secret by id. Deleting an absent secret is a no-op.
	Delete(ctx context.Context, id uuid.UUID) error

	// Decrypt recovers the plaintext value of a stored secret.
	Decrypt(ctx context.Context, secret *vaultDomain.Secret) (string, error)

	// RotateKey re-encrypts every stored secret under the new provider and
	// swaps it in as the active provider. All writes happen in a single
	// transaction; a failure on any secret leaves the store untouched.
	// Returns the number of rotated secrets.
	RotateKey(ctx context.Context, newProvider cryptoService.CryptoProvider) (int, error)

	// Close releases held resources: the repository's statement cache and
	// the provider's key material.
	Close() error
}
