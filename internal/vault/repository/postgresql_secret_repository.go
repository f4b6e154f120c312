package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/allisson/vaultlite/internal/database"
	apperrors "github.com/allisson/vaultlite/internal/errors"
	vaultDomain "github.com/allisson/vaultlite/internal/vault/domain"
)

// PostgreSQLSecretRepository handles secret persistence for PostgreSQL.
type PostgreSQLSecretRepository struct {
	db *sql.DB
}

// NewPostgreSQLSecretRepository creates a new PostgreSQLSecretRepository.
func NewPostgreSQLSecretRepository(db *sql.DB) *PostgreSQLSecretRepository {
	return &PostgreSQLSecretRepository{
		db: db,
	}
}

// Create inserts a new secret.
func (r *PostgreSQLSecretRepository) Create(ctx context.Context, secret *vaultDomain.Secret) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO secrets (id, name, project, environment, tags, value_encrypted, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	tags, err := encodeTags(secret.Tags)
	if err != nil {
		return err
	}

	_, err = querier.ExecContext(
		ctx,
		query,
		secret.ID.String(),
		secret.Name,
		secret.Project,
		secret.Environment,
		tags,
		secret.EncryptedValue,
		formatTimestamp(secret.CreatedAt),
		formatTimestamp(secret.UpdatedAt),
	)
	if err != nil {
		if isPostgreSQLUniqueViolation(err) {
			return vaultDomain.ErrSecretAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create secret")
	}
	return nil
}

// Get retrieves a secret by its id.
func (r *PostgreSQLSecretRepository) Get(ctx context.Context, id uuid.UUID) (*vaultDomain.Secret, error) {
	querier := database.GetTx(ctx, r.db)

	query := fmt.Sprintf("SELECT %s FROM secrets WHERE id = $1", secretColumns)

	secret, err := scanSecret(querier.QueryRowContext(ctx, query, id.String()))
	if err != nil {
		if apperrors.Is(err, sql.ErrNoRows) {
			return nil, vaultDomain.ErrSecretNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get secret")
	}

	return secret, nil
}

// GetByIdentity retrieves a secret by its (name, project, environment) triple.
func (r *PostgreSQLSecretRepository) GetByIdentity(ctx context.Context, name, project, environment string) (*vaultDomain.Secret, error) {
	querier := database.GetTx(ctx, r.db)

	query := fmt.Sprintf("SELECT %s FROM secrets WHERE name = $1 AND project = $2 AND environment = $3", secretColumns)

	secret, err := scanSecret(querier.QueryRowContext(ctx, query, name, project, environment))
	if err != nil {
		if apperrors.Is(err, sql.ErrNoRows) {
			return nil, vaultDomain.ErrSecretNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get secret by identity")
	}

	return secret, nil
}

// List retrieves secrets matching the filter, newest first.
func (r *PostgreSQLSecretRepository) List(ctx context.Context, filter vaultDomain.Filter) ([]*vaultDomain.Secret, error) {
	querier := database.GetTx(ctx, r.db)

	query := fmt.Sprintf("SELECT %s FROM secrets", secretColumns)
	var (
		conditions []string
		args       []any
	)
	if filter.Project != "" {
		args = append(args, filter.Project)
		conditions = append(conditions, fmt.Sprintf("project = $%d", len(args)))
	}
	if filter.Environment != "" {
		args = append(args, filter.Environment)
		conditions = append(conditions, fmt.Sprintf("environment = $%d", len(args)))
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list secrets")
	}
	defer func() { _ = rows.Close() }()

	var secrets []*vaultDomain.Secret
	for rows.Next() {
		secret, err := scanSecret(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan secret")
		}
		secrets = append(secrets, secret)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate secrets")
	}

	return filterTags(secrets, filter.Tags), nil
}

// UpdateValue replaces the encrypted value of an existing secret.
func (r *PostgreSQLSecretRepository) UpdateValue(ctx context.Context, secret *vaultDomain.Secret) error {
	querier := database.GetTx(ctx, r.db)

	query := "UPDATE secrets SET value_encrypted = $1, updated_at = $2 WHERE id = $3"

	result, err := querier.ExecContext(ctx, query, secret.EncryptedValue, formatTimestamp(secret.UpdatedAt), secret.ID.String())
	if err != nil {
		return apperrors.Wrap(err, "failed to update secret")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get affected rows")
	}
	if affected == 0 {
		return vaultDomain.ErrSecretNotFound
	}

	return nil
}

// Delete removes a secret by id. Deleting an absent secret is a no-op.
func (r *PostgreSQLSecretRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	query := "DELETE FROM secrets WHERE id = $1"

	if _, err := querier.ExecContext(ctx, query, id.String()); err != nil {
		return apperrors.Wrap(err, "failed to delete secret")
	}

	return nil
}

// Close is a no-op; the repository holds no resources beyond the shared pool.
func (r *PostgreSQLSecretRepository) Close() error {
	return nil
}

// isPostgreSQLUniqueViolation checks if the error is a PostgreSQL unique constraint violation.
func isPostgreSQLUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	// PostgreSQL: "duplicate key value violates unique constraint" or "pq: duplicate key"
	return strings.Contains(errMsg, "duplicate key") || strings.Contains(errMsg, "unique constraint")
}
