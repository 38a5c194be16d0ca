// AngelaMos | 2026
// repository_test.go

package user

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/classifieds/internal/core"
)

func mockRepo(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewRepository(sqlx.NewDb(db, "sqlmock")), mock
}

func TestListBindsFiltersInOrder(t *testing.T) {
	repo, mock := mockRepo(t)
	banned := true

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT COUNT(*) FROM users WHERE deleted_at IS NULL AND "+
			"(email ILIKE $1 OR name ILIKE $1) AND tier = $2 AND banned = $3")).
		WithArgs(`%50\%%`, core.TierPro, true).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("LIMIT $4 OFFSET $5")).
		WithArgs(`%50\%%`, core.TierPro, true, 10, 10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email"}).AddRow("u1", "a@b.c"))

	users, total, err := repo.List(context.Background(), ListUsersParams{
		Page: 2, PageSize: 10, Search: "50%", Tier: core.TierPro, Banned: &banned,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, users, 1)
	assert.Equal(t, "a@b.c", users[0].Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetBannedMissingUser(t *testing.T) {
	repo, mock := mockRepo(t)
	mock.ExpectExec(regexp.QuoteMeta("SET banned = $2")).
		WithArgs("ghost", true).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetBanned(context.Background(), "ghost", true)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestCreateMapsDuplicateEmail(t *testing.T) {
	repo, mock := mockRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := repo.Create(context.Background(), &User{ID: "u1", Email: "a@b.c"})
	assert.ErrorIs(t, err, core.ErrDuplicateKey)
}
