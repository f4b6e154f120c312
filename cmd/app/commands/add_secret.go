package commands

import (
	"context"
	"io"
	"log/slog"

	vaultDomain "github.com/allisson/vaultlite/internal/vault/domain"
	vaultUsecase "github.com/allisson/vaultlite/internal/vault/usecase"
)

// RunAddSecret encrypts and stores a new secret. Fails when a secret with the
// same (name, project, environment) identity already exists.
func RunAddSecret(
	ctx context.Context,
	store vaultUsecase.SecretStore,
	logger *slog.Logger,
	w io.Writer,
	name, value, project, environment string,
	tags []string,
	format string,
) error {
	secret, err := store.Add(ctx, vaultDomain.NewSecretInput{
		Name:        name,
		Value:       value,
		Project:     project,
		Environment: environment,
		Tags:        tags,
	})
	if err != nil {
		return err
	}

	logger.Info("secret created",
		slog.String("id", secret.ID.String()),
		slog.String("name", secret.Name),
		slog.String("project", secret.Project),
		slog.String("environment", secret.Environment),
	)

	return printSecret(w, secret, "", format)
}
