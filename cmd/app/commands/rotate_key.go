package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	validation "github.com/jellydator/validation"

	cryptoService "github.com/allisson/vaultlite/internal/crypto/service"
	appvalidation "github.com/allisson/vaultlite/internal/validation"
	vaultUsecase "github.com/allisson/vaultlite/internal/vault/usecase"
)

// RunRotateKey re-encrypts every stored secret under a new vault key.
//
// The new key must be a fresh base64-encoded 32-byte key (see generate-key).
// The rotation is atomic: either every secret is re-encrypted or none are.
// After a successful rotation the old key no longer decrypts anything, so
// VAULT_KEY (or the wrapped key) must be updated before the next run.
func RunRotateKey(
	ctx context.Context,
	store vaultUsecase.SecretStore,
	logger *slog.Logger,
	w io.Writer,
	newKey, algorithmStr string,
) error {
	if err := validation.Validate(newKey, validation.Required, appvalidation.Base64); err != nil {
		return appvalidation.WrapValidationError(err)
	}

	algorithm, err := parseAlgorithm(algorithmStr)
	if err != nil {
		return err
	}

	newProvider, err := cryptoService.NewProvider(newKey, algorithm)
	if err != nil {
		return err
	}

	logger.Info("rotating vault key", slog.String("algorithm", algorithmStr))

	rotated, err := store.RotateKey(ctx, newProvider)
	if err != nil {
		return fmt.Errorf("failed to rotate vault key: %w", err)
	}

	logger.Info("vault key rotated", slog.Int("secrets", rotated))

	fmt.Fprintf(w, "rotated %d secret(s)\n", rotated)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "# Update your configuration with the new key before the next run:")
	fmt.Fprintf(w, "VAULT_KEY=%q\n", newKey)
	return nil
}
