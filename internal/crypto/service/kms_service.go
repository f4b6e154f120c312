package service

import (
	"context"
	"encoding/base64"
	"fmt"

	"gocloud.dev/secrets"

	cryptoDomain "github.com/allisson/vaultlite/internal/crypto/domain"

	// Register all KMS provider drivers
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

// Keeper is the subset of *secrets.Keeper the vault needs to unwrap its key.
type Keeper interface {
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
	Close() error
}

// KMSService wraps and unwraps the vault key using gocloud.dev/secrets
// keepers.
type KMSService interface {
	// UnwrapKey decrypts the base64-encoded wrapped vault key with the keeper
	// at keyURI and returns it re-encoded as a base64 key string suitable for
	// NewProvider.
	UnwrapKey(ctx context.Context, keyURI, wrappedKey string) (string, error)

	// WrapKey encrypts a base64-encoded vault key with the keeper at keyURI
	// and returns the wrapped blob, base64-encoded.
	WrapKey(ctx context.Context, keyURI, encodedKey string) (string, error)
}

// kmsService implements KMSService using gocloud.dev/secrets.
type kmsService struct{}

// NewKMSService creates a new KMS service instance.
func NewKMSService() KMSService {
	return &kmsService{}
}

// UnwrapKey opens a keeper for the keyURI and decrypts the wrapped vault key.
// Supports: gcpkms://, awskms://, azurekeyvault://, hashivault://, base64key://
func (k *kmsService) UnwrapKey(ctx context.Context, keyURI, wrappedKey string) (string, error) {
	wrapped, err := base64.StdEncoding.DecodeString(wrappedKey)
	if err != nil {
		return "", fmt.Errorf("%w: %v", cryptoDomain.ErrInvalidKeyBase64, err)
	}

	keeper, err := secrets.OpenKeeper(ctx, keyURI)
	if err != nil {
		return "", fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	defer func() { _ = keeper.Close() }()

	return unwrapWithKeeper(ctx, keeper, wrapped)
}

// WrapKey opens a keeper for the keyURI and encrypts the vault key.
func (k *kmsService) WrapKey(ctx context.Context, keyURI, encodedKey string) (string, error) {
	key, err := cryptoDomain.ParseKey(encodedKey)
	if err != nil {
		return "", err
	}
	defer cryptoDomain.Zero(key)

	keeper, err := secrets.OpenKeeper(ctx, keyURI)
	if err != nil {
		return "", fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	defer func() { _ = keeper.Close() }()

	wrapped, err := keeper.Encrypt(ctx, key)
	if err != nil {
		return "", fmt.Errorf("failed to wrap vault key: %w", err)
	}

	return base64.StdEncoding.EncodeToString(wrapped), nil
}

// unwrapWithKeeper decrypts the wrapped key and validates its size before
// handing it back as a base64 string.
func unwrapWithKeeper(ctx context.Context, keeper Keeper, wrapped []byte) (string, error) {
	key, err := keeper.Decrypt(ctx, wrapped)
	if err != nil {
		return "", fmt.Errorf("failed to unwrap vault key: %w", err)
	}
	defer cryptoDomain.Zero(key)

	if len(key) != cryptoDomain.KeySize {
		return "", fmt.Errorf(
			"%w: unwrapped key must be %d bytes, got %d",
			cryptoDomain.ErrInvalidKeySize,
			cryptoDomain.KeySize,
			len(key),
		)
	}

	return base64.StdEncoding.EncodeToString(key), nil
}
