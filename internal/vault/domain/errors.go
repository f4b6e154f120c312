package domain

import (
	"github.com/allisson/vaultlite/internal/errors"
)

// Secret-specific error definitions.
var (
	// ErrSecretNotFound indicates no secret exists for the given id or
	// identity triple. Lookups return it as an explicit absence signal;
	// updates treat it as a hard failure.
	ErrSecretNotFound = errors.Wrap(errors.ErrNotFound, "secret not found")

	// ErrSecretAlreadyExists indicates a secret with the same
	// (name, project, environment) identity already exists. Creation never
	// silently overwrites.
	ErrSecretAlreadyExists = errors.Wrap(errors.ErrConflict, "secret already exists")
)
