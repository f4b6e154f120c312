package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	cryptoService "github.com/allisson/vaultlite/internal/crypto/service"
	"github.com/allisson/vaultlite/internal/metrics"
	vaultDomain "github.com/allisson/vaultlite/internal/vault/domain"
)

const metricsDomain = "vault"

// secretStoreWithMetrics decorates SecretStore with metrics instrumentation.
type secretStoreWithMetrics struct {
	next    SecretStore
	metrics metrics.BusinessMetrics
}

// NewSecretStoreWithMetrics wraps a SecretStore with metrics recording.
func NewSecretStoreWithMetrics(store SecretStore, m metrics.BusinessMetrics) SecretStore {
	return &secretStoreWithMetrics{
		next:    store,
		metrics: m,
	}
}

func (s *secretStoreWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	s.metrics.RecordOperation(ctx, metricsDomain, operation, status)
	s.metrics.RecordDuration(ctx, metricsDomain, operation, time.Since(start), status)
}

func (s *secretStoreWithMetrics) Add(ctx context.Context, input vaultDomain.NewSecretInput) (*vaultDomain.Secret, error) {
	start := time.Now()
	secret, err := s.next.Add(ctx, input)
	s.record(ctx, "secret_add", start, err)
	return secret, err
}

func (s *secretStoreWithMetrics) Get(ctx context.Context, id uuid.UUID) (*vaultDomain.Secret, error) {
	start := time.Now()
	secret, err := s.next.Get(ctx, id)
	s.record(ctx, "secret_get", start, err)
	return secret, err
}

func (s *secretStoreWithMetrics) GetByName(ctx context.Context, name, project, environment string) (*vaultDomain.Secret, error) {
	start := time.Now()
	secret, err := s.next.GetByName(ctx, name, project, environment)
	s.record(ctx, "secret_get_by_name", start, err)
	return secret, err
}

func (s *secretStoreWithMetrics) List(ctx context.Context, filter vaultDomain.Filter) ([]*vaultDomain.Secret, error) {
	start := time.Now()
	secrets, err := s.next.List(ctx, filter)
	s.record(ctx, "secret_list", start, err)
	return secrets, err
}

func (s *secretStoreWithMetrics) Update(ctx context.Context, id uuid.UUID, value string) (*vaultDomain.Secret, error) {
	start := time.Now()
	secret, err := s.next.Update(ctx, id, value)
	s.record(ctx, "secret_update", start, err)
	return secret, err
}

func (s *secretStoreWithMetrics) Delete(ctx context.Context, id uuid.UUID) error {
	start := time.Now()
	err := s.next.Delete(ctx, id)
	s.record(ctx, "secret_delete", start, err)
	return err
}

func (s *secretStoreWithMetrics) Decrypt(ctx context.Context, secret *vaultDomain.Secret) (string, error) {
	start := time.Now()
	plaintext, err := s.next.Decrypt(ctx, secret)
	s.record(ctx, "secret_decrypt", start, err)
	return plaintext, err
}

func (s *secretStoreWithMetrics) RotateKey(ctx context.Context, newProvider cryptoService.CryptoProvider) (int, error) {
	start := time.Now()
	rotated, err := s.next.RotateKey(ctx, newProvider)
	s.record(ctx, "rotate_key", start, err)
	return rotated, err
}

func (s *secretStoreWithMetrics) Close() error {
	return s.next.Close()
}
