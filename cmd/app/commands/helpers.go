// Package commands contains CLI command implementations for the application.
package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/golang-migrate/migrate/v4"

	"github.com/allisson/vaultlite/internal/app"
	"github.com/allisson/vaultlite/internal/config"
	cryptoDomain "github.com/allisson/vaultlite/internal/crypto/domain"
	vaultDomain "github.com/allisson/vaultlite/internal/vault/domain"
	vaultUsecase "github.com/allisson/vaultlite/internal/vault/usecase"
)

// WithStore loads configuration, assembles the container, and hands the
// secret store and logger to fn. The container shuts down when fn returns.
func WithStore(fn func(store vaultUsecase.SecretStore, logger *slog.Logger) error) error {
	cfg := config.Load()
	container := app.NewContainer(cfg)
	logger := container.Logger()
	defer closeContainer(container, logger)

	store, err := container.SecretStore()
	if err != nil {
		return err
	}

	return fn(store, logger)
}

// closeContainer closes all resources in the container and logs any errors.
func closeContainer(container *app.Container, logger *slog.Logger) {
	if err := container.Shutdown(context.Background()); err != nil {
		logger.Error("failed to shutdown container", slog.Any("error", err))
	}
}

// closeMigrate closes the migration instance and logs any errors.
func closeMigrate(migrate *migrate.Migrate, logger *slog.Logger) {
	sourceError, databaseError := migrate.Close()
	if sourceError != nil || databaseError != nil {
		logger.Error(
			"failed to close the migrate",
			slog.Any("source_error", sourceError),
			slog.Any("database_error", databaseError),
		)
	}
}

// parseAlgorithm converts an algorithm string to cryptoDomain.Algorithm.
// Returns an error if the algorithm string is invalid.
func parseAlgorithm(algorithmStr string) (cryptoDomain.Algorithm, error) {
	switch algorithmStr {
	case "aes-gcm":
		return cryptoDomain.AESGCM, nil
	case "chacha20-poly1305":
		return cryptoDomain.ChaCha20, nil
	default:
		return "", fmt.Errorf(
			"invalid algorithm: %s (valid options: aes-gcm, chacha20-poly1305)",
			algorithmStr,
		)
	}
}

// secretOutput is the JSON shape for a printed secret. The plaintext value is
// only populated when the caller explicitly asked to reveal it.
type secretOutput struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Project     string   `json:"project"`
	Environment string   `json:"environment"`
	Tags        []string `json:"tags"`
	Value       string   `json:"value,omitempty"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
}

func newSecretOutput(secret *vaultDomain.Secret, value string) secretOutput {
	return secretOutput{
		ID:          secret.ID.String(),
		Name:        secret.Name,
		Project:     secret.Project,
		Environment: secret.Environment,
		Tags:        secret.Tags,
		Value:       value,
		CreatedAt:   secret.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   secret.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// printSecret writes a secret in the requested format ("text" or "json").
func printSecret(w io.Writer, secret *vaultDomain.Secret, value, format string) error {
	output := newSecretOutput(secret, value)

	if format == "json" {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(output)
	}

	fmt.Fprintf(w, "ID:          %s\n", output.ID)
	fmt.Fprintf(w, "Name:        %s\n", output.Name)
	fmt.Fprintf(w, "Project:     %s\n", output.Project)
	fmt.Fprintf(w, "Environment: %s\n", output.Environment)
	fmt.Fprintf(w, "Tags:        %v\n", output.Tags)
	if output.Value != "" {
		fmt.Fprintf(w, "Value:       %s\n", output.Value)
	}
	fmt.Fprintf(w, "Created At:  %s\n", output.CreatedAt)
	fmt.Fprintf(w, "Updated At:  %s\n", output.UpdatedAt)
	return nil
}
