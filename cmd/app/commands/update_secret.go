package commands

import (
	"context"
	"io"
	"log/slog"

	vaultUsecase "github.com/allisson/vaultlite/internal/vault/usecase"
)

// RunUpdateSecret re-encrypts a new value for an existing secret, resolved by
// its (name, project, environment) identity. Updating a missing secret is a
// hard failure.
func RunUpdateSecret(
	ctx context.Context,
	store vaultUsecase.SecretStore,
	logger *slog.Logger,
	w io.Writer,
	name, project, environment, value string,
	format string,
) error {
	secret, err := store.GetByName(ctx, name, project, environment)
	if err != nil {
		return err
	}

	updated, err := store.Update(ctx, secret.ID, value)
	if err != nil {
		return err
	}

	logger.Info("secret updated",
		slog.String("id", updated.ID.String()),
		slog.String("name", updated.Name),
	)

	return printSecret(w, updated, "", format)
}
