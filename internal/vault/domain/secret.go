// Package domain defines the core domain models for the secret vault. A
// secret is a named credential value scoped by project and environment,
// stored only as an authenticated-encryption envelope.
package domain

import (
	"time"

	validation "github.com/jellydator/validation"

	"github.com/google/uuid"
)

// Secret represents an encrypted secret with its identity and metadata.
type Secret struct {
	// ID is the unique identifier, assigned at creation, immutable.
	ID uuid.UUID
	// Name is the logical variable name (e.g. "DB_PASS"); unique only within
	// its (project, environment) scope.
	Name string
	// Project is the grouping namespace.
	Project string
	// Environment is the deployment stage label (e.g. dev/staging/prod).
	Environment string
	// Tags are free-text labels used only for filtering; order-insignificant
	// for matching.
	Tags []string
	// EncryptedValue is the authenticated-encryption envelope. Opaque to the
	// store; only the crypto provider can interpret it.
	EncryptedValue string
	// CreatedAt is the UTC timestamp when the secret was created; immutable.
	CreatedAt time.Time
	// UpdatedAt changes on every value mutation.
	UpdatedAt time.Time
}

// Identity returns the natural key the secret must be unique under.
func (s *Secret) Identity() (name, project, environment string) {
	return s.Name, s.Project, s.Environment
}

// HasAnyTag reports whether the secret's tag set intersects the requested
// tags (at least one requested tag present). An empty request matches.
func (s *Secret) HasAnyTag(tags []string) bool {
	if len(tags) == 0 {
		return true
	}
	for _, want := range tags {
		for _, have := range s.Tags {
			if want == have {
				return true
			}
		}
	}
	return false
}

// Filter narrows a listing. Zero-value fields match everything; supplied
// fields combine with AND semantics.
type Filter struct {
	Project     string
	Environment string
	Tags        []string
}

// NewSecretInput carries the caller-supplied fields for creating a secret.
type NewSecretInput struct {
	Name        string
	Value       string
	Project     string
	Environment string
	Tags        []string
}

// Validate checks the input before any encryption or persistence happens.
// The value itself may be empty; identity fields may not.
func (i *NewSecretInput) Validate() error {
	return validation.ValidateStruct(i,
		validation.Field(&i.Name, validation.Required, validation.Length(1, 255)),
		validation.Field(&i.Project, validation.Required, validation.Length(1, 255)),
		validation.Field(&i.Environment, validation.Required, validation.Length(1, 255)),
	)
}
