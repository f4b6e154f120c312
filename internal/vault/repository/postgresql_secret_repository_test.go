package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vaultDomain "github.com/allisson/vaultlite/internal/vault/domain"
)

func newMockRows(secret *vaultDomain.Secret) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "name", "project", "environment", "tags", "value_encrypted", "created_at", "updated_at",
	}).AddRow(
		secret.ID.String(),
		secret.Name,
		secret.Project,
		secret.Environment,
		`["database"]`,
		secret.EncryptedValue,
		formatTimestamp(secret.CreatedAt),
		formatTimestamp(secret.UpdatedAt),
	)
}

func TestPostgreSQLSecretRepository(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*PostgreSQLSecretRepository, sqlmock.Sqlmock) {
		t.Helper()
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		t.Cleanup(func() { _ = db.Close() })
		return NewPostgreSQLSecretRepository(db), mock
	}

	t.Run("Create", func(t *testing.T) {
		repo, mock := setup(t)
		secret := newTestSecret("DB_PASS", "billing", "prod", []string{"database"})

		mock.ExpectExec(`INSERT INTO secrets`).
			WithArgs(
				secret.ID.String(),
				secret.Name,
				secret.Project,
				secret.Environment,
				`["database"]`,
				secret.EncryptedValue,
				sqlmock.AnyArg(),
				sqlmock.AnyArg(),
			).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Create(ctx, secret))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("CreateDuplicate", func(t *testing.T) {
		repo, mock := setup(t)
		secret := newTestSecret("DB_PASS", "billing", "prod", nil)

		mock.ExpectExec(`INSERT INTO secrets`).
			WillReturnError(assert.AnError)
		mock.ExpectExec(`INSERT INTO secrets`).
			WillReturnError(errDuplicateKeyPostgres{})

		err := repo.Create(ctx, secret)
		assert.Error(t, err)
		assert.NotErrorIs(t, err, vaultDomain.ErrSecretAlreadyExists)

		err = repo.Create(ctx, secret)
		assert.ErrorIs(t, err, vaultDomain.ErrSecretAlreadyExists)
	})

	t.Run("Get", func(t *testing.T) {
		repo, mock := setup(t)
		secret := newTestSecret("DB_PASS", "billing", "prod", nil)

		mock.ExpectQuery(`SELECT (.+) FROM secrets WHERE id = \$1`).
			WithArgs(secret.ID.String()).
			WillReturnRows(newMockRows(secret))

		got, err := repo.Get(ctx, secret.ID)
		require.NoError(t, err)
		assert.Equal(t, secret.ID, got.ID)
		assert.Equal(t, []string{"database"}, got.Tags)
	})

	t.Run("GetNotFound", func(t *testing.T) {
		repo, mock := setup(t)
		id := uuid.Must(uuid.NewV7())

		mock.ExpectQuery(`SELECT (.+) FROM secrets WHERE id = \$1`).
			WithArgs(id.String()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.Get(ctx, id)
		assert.ErrorIs(t, err, vaultDomain.ErrSecretNotFound)
	})

	t.Run("GetByIdentity", func(t *testing.T) {
		repo, mock := setup(t)
		secret := newTestSecret("DB_PASS", "billing", "prod", nil)

		mock.ExpectQuery(`SELECT (.+) FROM secrets WHERE name = \$1 AND project = \$2 AND environment = \$3`).
			WithArgs("DB_PASS", "billing", "prod").
			WillReturnRows(newMockRows(secret))

		got, err := repo.GetByIdentity(ctx, "DB_PASS", "billing", "prod")
		require.NoError(t, err)
		assert.Equal(t, secret.ID, got.ID)
	})

	t.Run("ListWithFilters", func(t *testing.T) {
		repo, mock := setup(t)
		secret := newTestSecret("DB_PASS", "billing", "prod", []string{"database"})

		mock.ExpectQuery(`SELECT (.+) FROM secrets WHERE project = \$1 AND environment = \$2 ORDER BY created_at DESC`).
			WithArgs("billing", "prod").
			WillReturnRows(newMockRows(secret))

		secrets, err := repo.List(ctx, vaultDomain.Filter{Project: "billing", Environment: "prod"})
		require.NoError(t, err)
		require.Len(t, secrets, 1)
		assert.Equal(t, "DB_PASS", secrets[0].Name)

		// Tag filtering happens after the query, on the typed records.
		mock.ExpectQuery(`SELECT (.+) FROM secrets ORDER BY created_at DESC`).
			WillReturnRows(newMockRows(secret))

		secrets, err = repo.List(ctx, vaultDomain.Filter{Tags: []string{"cache"}})
		require.NoError(t, err)
		assert.Empty(t, secrets)
	})

	t.Run("UpdateValue", func(t *testing.T) {
		repo, mock := setup(t)
		secret := newTestSecret("DB_PASS", "billing", "prod", nil)

		mock.ExpectExec(`UPDATE secrets SET value_encrypted = \$1, updated_at = \$2 WHERE id = \$3`).
			WithArgs(secret.EncryptedValue, sqlmock.AnyArg(), secret.ID.String()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.UpdateValue(ctx, secret))
	})

	t.Run("UpdateValueNotFound", func(t *testing.T) {
		repo, mock := setup(t)
		secret := newTestSecret("DB_PASS", "billing", "prod", nil)

		mock.ExpectExec(`UPDATE secrets`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateValue(ctx, secret)
		assert.ErrorIs(t, err, vaultDomain.ErrSecretNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		repo, mock := setup(t)
		id := uuid.Must(uuid.NewV7())

		mock.ExpectExec(`DELETE FROM secrets WHERE id = \$1`).
			WithArgs(id.String()).
			WillReturnResult(sqlmock.NewResult(0, 0))

		// Zero rows affected is still a success.
		require.NoError(t, repo.Delete(ctx, id))
	})
}

// errDuplicateKeyPostgres mimics the lib/pq unique violation error text.
type errDuplicateKeyPostgres struct{}

func (errDuplicateKeyPostgres) Error() string {
	return `pq: duplicate key value violates unique constraint "secrets_name_project_environment_key"`
}

func TestIsPostgreSQLUniqueViolation(t *testing.T) {
	assert.False(t, isPostgreSQLUniqueViolation(nil))
	assert.False(t, isPostgreSQLUniqueViolation(assert.AnError))
	assert.True(t, isPostgreSQLUniqueViolation(errDuplicateKeyPostgres{}))
}
