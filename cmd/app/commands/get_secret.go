package commands

import (
	"context"
	"io"

	vaultUsecase "github.com/allisson/vaultlite/internal/vault/usecase"
)

// RunGetSecret retrieves a secret by its (name, project, environment)
// identity. The plaintext value is only decrypted and printed when reveal is
// set; otherwise only metadata is shown.
func RunGetSecret(
	ctx context.Context,
	store vaultUsecase.SecretStore,
	w io.Writer,
	name, project, environment string,
	reveal bool,
	format string,
) error {
	secret, err := store.GetByName(ctx, name, project, environment)
	if err != nil {
		return err
	}

	var value string
	if reveal {
		value, err = store.Decrypt(ctx, secret)
		if err != nil {
			return err
		}
	}

	return printSecret(w, secret, value, format)
}
