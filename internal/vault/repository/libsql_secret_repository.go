package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/allisson/vaultlite/internal/database"
	apperrors "github.com/allisson/vaultlite/internal/errors"
	vaultDomain "github.com/allisson/vaultlite/internal/vault/domain"
)

// LibSQLSecretRepository implements persistence on an embedded libSQL
// database file. Statements are prepared once per query shape and cached for
// reuse across calls.
type LibSQLSecretRepository struct {
	db *sql.DB

	mu    sync.Mutex
	stmts map[string]*sql.Stmt
}

// NewLibSQLSecretRepository creates a new libSQL-backed secret repository.
func NewLibSQLSecretRepository(db *sql.DB) *LibSQLSecretRepository {
	return &LibSQLSecretRepository{
		db:    db,
		stmts: make(map[string]*sql.Stmt),
	}
}

// stmt returns the cached prepared statement for a query shape, preparing it
// on first use. When a transaction is active a cached statement is rebound to
// it; a statement not yet cached is prepared on the transaction itself, since
// the pool holds a single connection and preparing on it would block behind
// the transaction.
func (r *LibSQLSecretRepository) stmt(ctx context.Context, shape, query string) (*sql.Stmt, error) {
	tx, inTx := database.TxFromContext(ctx)

	r.mu.Lock()
	prepared, ok := r.stmts[shape]
	r.mu.Unlock()
	if ok {
		if inTx {
			return tx.StmtContext(ctx, prepared), nil
		}
		return prepared, nil
	}

	if inTx {
		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return nil, apperrors.Wrap(err, fmt.Sprintf("failed to prepare %s statement", shape))
		}
		return stmt, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if prepared, ok := r.stmts[shape]; ok {
		return prepared, nil
	}
	prepared, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		return nil, apperrors.Wrap(err, fmt.Sprintf("failed to prepare %s statement", shape))
	}
	r.stmts[shape] = prepared
	return prepared, nil
}

// Create inserts a new secret. A unique violation on the
// (name, project, environment) identity maps to ErrSecretAlreadyExists.
func (r *LibSQLSecretRepository) Create(ctx context.Context, secret *vaultDomain.Secret) error {
	query := `
		INSERT INTO secrets (id, name, project, environment, tags, value_encrypted, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	stmt, err := r.stmt(ctx, "create", query)
	if err != nil {
		return err
	}

	tags, err := encodeTags(secret.Tags)
	if err != nil {
		return err
	}

	_, err = stmt.ExecContext(
		ctx,
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
		return conflictOrWrap(err, "failed to create secret")
	}

	return nil
}

// Get retrieves a secret by its id.
func (r *LibSQLSecretRepository) Get(ctx context.Context, id uuid.UUID) (*vaultDomain.Secret, error) {
	query := fmt.Sprintf("SELECT %s FROM secrets WHERE id = ?", secretColumns)
	stmt, err := r.stmt(ctx, "get", query)
	if err != nil {
		return nil, err
	}

	secret, err := scanSecret(stmt.QueryRowContext(ctx, id.String()))
	if err != nil {
		if apperrors.Is(err, sql.ErrNoRows) {
			return nil, vaultDomain.ErrSecretNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get secret")
	}

	return secret, nil
}

// GetByIdentity retrieves a secret by its (name, project, environment) triple.
func (r *LibSQLSecretRepository) GetByIdentity(ctx context.Context, name, project, environment string) (*vaultDomain.Secret, error) {
	query := fmt.Sprintf("SELECT %s FROM secrets WHERE name = ? AND project = ? AND environment = ?", secretColumns)
	stmt, err := r.stmt(ctx, "get_by_identity", query)
	if err != nil {
		return nil, err
	}

	secret, err := scanSecret(stmt.QueryRowContext(ctx, name, project, environment))
	if err != nil {
		if apperrors.Is(err, sql.ErrNoRows) {
			return nil, vaultDomain.ErrSecretNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get secret by identity")
	}

	return secret, nil
}

// List retrieves secrets matching the filter, newest first. Project and
// environment narrow the query in SQL; tags are matched in memory as an
// exact-element intersection.
func (r *LibSQLSecretRepository) List(ctx context.Context, filter vaultDomain.Filter) ([]*vaultDomain.Secret, error) {
	shape := "list"
	query := fmt.Sprintf("SELECT %s FROM secrets", secretColumns)
	var args []any

	switch {
	case filter.Project != "" && filter.Environment != "":
		shape = "list_project_environment"
		query += " WHERE project = ? AND environment = ?"
		args = append(args, filter.Project, filter.Environment)
	case filter.Project != "":
		shape = "list_project"
		query += " WHERE project = ?"
		args = append(args, filter.Project)
	case filter.Environment != "":
		shape = "list_environment"
		query += " WHERE environment = ?"
		args = append(args, filter.Environment)
	}
	query += " ORDER BY created_at DESC"

	stmt, err := r.stmt(ctx, shape, query)
	if err != nil {
		return nil, err
	}

	rows, err := stmt.QueryContext(ctx, args...)
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

// UpdateValue replaces the encrypted value of an existing secret and bumps
// updated_at. Updating a missing secret is a hard failure.
func (r *LibSQLSecretRepository) UpdateValue(ctx context.Context, secret *vaultDomain.Secret) error {
	query := "UPDATE secrets SET value_encrypted = ?, updated_at = ? WHERE id = ?"
	stmt, err := r.stmt(ctx, "update_value", query)
	if err != nil {
		return err
	}

	result, err := stmt.ExecContext(ctx, secret.EncryptedValue, formatTimestamp(secret.UpdatedAt), secret.ID.String())
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
func (r *LibSQLSecretRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := "DELETE FROM secrets WHERE id = ?"
	stmt, err := r.stmt(ctx, "delete", query)
	if err != nil {
		return err
	}

	if _, err := stmt.ExecContext(ctx, id.String()); err != nil {
		return apperrors.Wrap(err, "failed to delete secret")
	}

	return nil
}

// Close releases all cached prepared statements. The repository must not be
// used after Close.
func (r *LibSQLSecretRepository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var firstErr error
	for shape, stmt := range r.stmts {
		if err := stmt.Close(); err != nil && firstErr == nil {
			firstErr = apperrors.Wrap(err, fmt.Sprintf("failed to close %s statement", shape))
		}
		delete(r.stmts, shape)
	}
	return firstErr
}
