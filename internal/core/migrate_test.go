// AngelaMos | 2026
// migrate_test.go

package core

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func TestMigrationsAreOrdered(t *testing.T) {
	ms, err := Migrations()
	require.NoError(t, err)
	require.Len(t, ms, 3)
	assert.Equal(t, "0001_users_auth", ms[0].Version)
	assert.Equal(t, "0003_wallet_chat_kyc", ms[2].Version)
	for _, m := range ms {
		assert.NotEmpty(t, m.SQL, m.Version)
	}
}

func expectApply(mock sqlmock.Sqlmock, version string) {
	mock.ExpectBegin()
	mock.ExpectExec("CREATE").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO schema_migrations (version) VALUES ($1)")).
		WithArgs(version).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
}

func TestMigrateSkipsAppliedVersions(t *testing.T) {
	db, mock := mockDB(t)

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS schema_migrations")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT version FROM schema_migrations")).
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow("0001_users_auth"))
	expectApply(mock, "0002_marketplace")
	expectApply(mock, "0003_wallet_chat_kyc")

	ran, err := Migrate(context.Background(), db)
	require.NoError(t, err)
	assert.Equal(t, []string{"0002_marketplace", "0003_wallet_chat_kyc"}, ran)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateStopsAtFailingFile(t *testing.T) {
	db, mock := mockDB(t)

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS schema_migrations")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT version FROM schema_migrations")).
		WillReturnRows(sqlmock.NewRows([]string{"version"}).
			AddRow("0001_users_auth").
			AddRow("0002_marketplace"))
	mock.ExpectBegin()
	mock.ExpectExec("CREATE").WillReturnError(errors.New("syntax error"))
	mock.ExpectRollback()

	ran, err := Migrate(context.Background(), db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "apply 0003_wallet_chat_kyc")
	assert.Empty(t, ran)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateNothingPending(t *testing.T) {
	db, mock := mockDB(t)

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS schema_migrations")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT version FROM schema_migrations")).
		WillReturnRows(sqlmock.NewRows([]string{"version"}).
			AddRow("0001_users_auth").
			AddRow("0002_marketplace").
			AddRow("0003_wallet_chat_kyc"))

	ran, err := Migrate(context.Background(), db)
	require.NoError(t, err)
	assert.Empty(t, ran)
	assert.NoError(t, mock.ExpectationsWereMet())
}
