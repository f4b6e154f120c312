// Package repository implements durable persistence for secret records. The
// primary backend is an embedded libSQL database file; PostgreSQL and MySQL
// backends implement the same contract for deployments that already run a
// server database.
package repository

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/allisson/vaultlite/internal/errors"
	vaultDomain "github.com/allisson/vaultlite/internal/vault/domain"
)

// secretColumns is the column list every query selects, in scan order.
const secretColumns = "id, name, project, environment, tags, value_encrypted, created_at, updated_at"

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanSecret maps a row onto a typed Secret, parsing the tags JSON and the
// ISO-8601 timestamps once at the boundary. Malformed stored data fails
// loudly instead of propagating partial records.
func scanSecret(row rowScanner) (*vaultDomain.Secret, error) {
	var (
		id        string
		secret    vaultDomain.Secret
		tagsJSON  string
		createdAt string
		updatedAt string
	)

	err := row.Scan(
		&id,
		&secret.Name,
		&secret.Project,
		&secret.Environment,
		&tagsJSON,
		&secret.EncryptedValue,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	secret.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("failed to parse stored secret id %q: %w", id, err)
	}
	if err := json.Unmarshal([]byte(tagsJSON), &secret.Tags); err != nil {
		return nil, fmt.Errorf("failed to parse stored tags for secret %s: %w", id, err)
	}
	secret.CreatedAt, err = parseTimestamp(createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at for secret %s: %w", id, err)
	}
	secret.UpdatedAt, err = parseTimestamp(updatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse updated_at for secret %s: %w", id, err)
	}

	return &secret, nil
}

// encodeTags serializes a tag list as a JSON array; nil becomes the empty
// array so the column is never NULL.
func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	encoded, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("failed to encode tags: %w", err)
	}
	return string(encoded), nil
}

// timestampLayout is RFC3339 with fixed-width nanoseconds. RFC3339Nano trims
// trailing zeros, and its output does not sort in timestamp order; created_at
// is a TEXT column ordered lexicographically.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// formatTimestamp renders a timestamp in the stored ISO-8601 form (UTC).
func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// parseTimestamp parses the stored ISO-8601 form back into a time.Time.
// Variable-width fractions parse as well.
func parseTimestamp(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// filterTags applies the in-memory tag intersection after SQL narrowed the
// candidate set by project/environment. Tag matching is exact element
// membership, never substring matching over the serialized column.
func filterTags(secrets []*vaultDomain.Secret, tags []string) []*vaultDomain.Secret {
	if len(tags) == 0 {
		return secrets
	}
	filtered := make([]*vaultDomain.Secret, 0, len(secrets))
	for _, secret := range secrets {
		if secret.HasAnyTag(tags) {
			filtered = append(filtered, secret)
		}
	}
	return filtered
}

// isUniqueViolation checks if the error reports a unique constraint
// violation, in any of the supported engines' phrasings.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	// libsql/sqlite: "UNIQUE constraint failed: secrets.name, ..."
	// postgres: "duplicate key value violates unique constraint"
	// mysql: "Error 1062 (23000): Duplicate entry"
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "duplicate entry") ||
		strings.Contains(msg, "1062")
}

// conflictOrWrap maps unique violations to the conflict sentinel and wraps
// everything else with context.
func conflictOrWrap(err error, message string) error {
	if isUniqueViolation(err) {
		return vaultDomain.ErrSecretAlreadyExists
	}
	return apperrors.Wrap(err, message)
}
