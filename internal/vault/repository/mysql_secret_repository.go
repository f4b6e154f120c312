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

// MySQLSecretRepository handles secret persistence for MySQL.
type MySQLSecretRepository struct {
	db *sql.DB
}

// NewMySQLSecretRepository creates a new MySQLSecretRepository.
func NewMySQLSecretRepository(db *sql.DB) *MySQLSecretRepository {
	return &MySQLSecretRepository{
		db: db,
	}
}

// Create inserts a new secret.
func (r *MySQLSecretRepository) Create(ctx context.Context, secret *vaultDomain.Secret) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO secrets (id, name, project, environment, tags, value_encrypted, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

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
		if isMySQLUniqueViolation(err) {
			return vaultDomain.ErrSecretAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create secret")
	}
	return nil
}

// Get retrieves a secret by its id.
func (r *MySQLSecretRepository) Get(ctx context.Context, id uuid.UUID) (*vaultDomain.Secret, error) {
	querier := database.GetTx(ctx, r.db)

	query := fmt.Sprintf("SELECT %s FROM secrets WHERE id = ?", secretColumns)

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
func (r *MySQLSecretRepository) GetByIdentity(ctx context.Context, name, project, environment string) (*vaultDomain.Secret, error) {
	querier := database.GetTx(ctx, r.db)

	query := fmt.Sprintf("SELECT %s FROM secrets WHERE name = ? AND project = ? AND environment = ?", secretColumns)

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
func (r *MySQLSecretRepository) List(ctx context.Context, filter vaultDomain.Filter) ([]*vaultDomain.Secret, error) {
	querier := database.GetTx(ctx, r.db)

	query := fmt.Sprintf("SELECT %s FROM secrets", secretColumns)
	var (
		conditions []string
		args       []any
	)
	if filter.Project != "" {
		conditions = append(conditions, "project = ?")
		args = append(args, filter.Project)
	}
	if filter.Environment != "" {
		conditions = append(conditions, "environment = ?")
		args = append(args, filter.Environment)
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
func (r *MySQLSecretRepository) UpdateValue(ctx context.Context, secret *vaultDomain.Secret) error {
	querier := database.GetTx(ctx, r.db)

	query := "UPDATE secrets SET value_encrypted = ?, updated_at = ? WHERE id = ?"

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
func (r *MySQLSecretRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	query := "DELETE FROM secrets WHERE id = ?"

	if _, err := querier.ExecContext(ctx, query, id.String()); err != nil {
		return apperrors.Wrap(err, "failed to delete secret")
	}

	return nil
}

// Close is a no-op; the repository holds no resources beyond the shared pool.
func (r *MySQLSecretRepository) Close() error {
	return nil
}

// isMySQLUniqueViolation checks if the error is a MySQL unique constraint violation.
func isMySQLUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	// MySQL: "Error 1062 (23000): Duplicate entry"
	return strings.Contains(errMsg, "duplicate entry") || strings.Contains(errMsg, "1062")
}
