package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	vaultDomain "github.com/allisson/vaultlite/internal/vault/domain"
	vaultUsecase "github.com/allisson/vaultlite/internal/vault/usecase"
)

// RunDeleteSecret removes a secret resolved by its (name, project,
// environment) identity. Deleting an absent secret succeeds quietly.
func RunDeleteSecret(
	ctx context.Context,
	store vaultUsecase.SecretStore,
	logger *slog.Logger,
	w io.Writer,
	name, project, environment string,
) error {
	secret, err := store.GetByName(ctx, name, project, environment)
	if err != nil {
		if errors.Is(err, vaultDomain.ErrSecretNotFound) {
			fmt.Fprintln(w, "secret not found, nothing to delete")
			return nil
		}
		return err
	}

	if err := store.Delete(ctx, secret.ID); err != nil {
		return err
	}

	logger.Info("secret deleted",
		slog.String("id", secret.ID.String()),
		slog.String("name", secret.Name),
	)

	fmt.Fprintln(w, "secret deleted")
	return nil
}
