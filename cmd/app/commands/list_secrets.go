package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	vaultDomain "github.com/allisson/vaultlite/internal/vault/domain"
	vaultUsecase "github.com/allisson/vaultlite/internal/vault/usecase"
)

// RunListSecrets prints the secrets matching the filter, newest first.
// Values stay encrypted; only metadata is listed.
func RunListSecrets(
	ctx context.Context,
	store vaultUsecase.SecretStore,
	w io.Writer,
	project, environment string,
	tags []string,
	format string,
) error {
	secrets, err := store.List(ctx, vaultDomain.Filter{
		Project:     project,
		Environment: environment,
		Tags:        tags,
	})
	if err != nil {
		return err
	}

	if format == "json" {
		outputs := make([]secretOutput, 0, len(secrets))
		for _, secret := range secrets {
			outputs = append(outputs, newSecretOutput(secret, ""))
		}
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(outputs)
	}

	if len(secrets) == 0 {
		fmt.Fprintln(w, "no secrets found")
		return nil
	}

	for i, secret := range secrets {
		if i > 0 {
			fmt.Fprintln(w)
		}
		if err := printSecret(w, secret, "", format); err != nil {
			return err
		}
	}
	return nil
}
