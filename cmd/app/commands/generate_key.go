package commands

import (
	"context"
	"fmt"
	"io"

	cryptoDomain "github.com/allisson/vaultlite/internal/crypto/domain"
	cryptoService "github.com/allisson/vaultlite/internal/crypto/service"
)

// RunGenerateKey generates a fresh 32-byte vault key and prints it as
// environment variable assignments.
//
// Without a KMS key URI the raw base64 key is printed as VAULT_KEY. With one,
// the key is wrapped by the keeper before output so the plaintext key never
// lands in configuration; the vault unwraps it at startup.
//
// For local development use kmsKeyURI="base64key://<32-byte-url-base64-key>".
func RunGenerateKey(ctx context.Context, w io.Writer, kmsKeyURI string) error {
	key, err := cryptoDomain.GenerateKey()
	if err != nil {
		return err
	}

	if kmsKeyURI == "" {
		fmt.Fprintln(w, "# Vault Key Configuration")
		fmt.Fprintln(w, "# Copy this environment variable to your .env file or secrets manager")
		fmt.Fprintln(w)
		fmt.Fprintf(w, "VAULT_KEY=%q\n", key)
		return nil
	}

	kms := cryptoService.NewKMSService()
	wrapped, err := kms.WrapKey(ctx, kmsKeyURI, key)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, "# Vault Key Configuration (KMS Mode)")
	fmt.Fprintln(w, "# Copy these environment variables to your .env file or secrets manager")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "KMS_KEY_URI=%q\n", kmsKeyURI)
	fmt.Fprintf(w, "VAULT_WRAPPED_KEY=%q\n", wrapped)
	return nil
}
