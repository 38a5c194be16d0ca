// AngelaMos | 2026
// repository_test.go

package favorite

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/classifieds/internal/core"
)

func newMock(t *testing.T) (*Service, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewService(NewRepository(sqlx.NewDb(db, "sqlmock")), nil), mock
}

func TestAddIsIdempotent(t *testing.T) {
	svc, mock := newMock(t)

	for range 2 {
		mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (user_id, listing_id) DO NOTHING")).
			WithArgs("u1", "l1").
			WillReturnResult(sqlmock.NewResult(0, 0))
	}

	require.NoError(t, svc.Add(context.Background(), "u1", "l1"))
	require.NoError(t, svc.Add(context.Background(), "u1", "l1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListPagesWithCursor(t *testing.T) {
	svc, mock := newMock(t)
	at := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	cols := []string{"id", "seller_id", "title", "status", "images", "favorited_at"}
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY f.created_at DESC, f.listing_id DESC LIMIT 2")).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("l2", "s", "Lamp", "approved", []byte(`[]`), at.Add(time.Minute)).
			AddRow("l1", "s", "Desk", "approved", []byte(`["x"]`), at))

	items, next, err := svc.List(context.Background(), "u1", "", 1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "l2", items[0].ID)
	require.NotEmpty(t, next)

	c, err := core.DecodeCursor(next)
	require.NoError(t, err)
	assert.Equal(t, "l2", c.ID)
	assert.True(t, c.At.Equal(at.Add(time.Minute)))

	mock.ExpectQuery(regexp.QuoteMeta("(f.created_at, f.listing_id) < ($2, $3)")).
		WithArgs("u1", c.At, "l2").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("l1", "s", "Desk", "approved", []byte(`["x"]`), at))

	items, next, err = svc.List(context.Background(), "u1", next, 1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, []string{"x"}, []string(items[0].Images))
	assert.Empty(t, next)
	assert.NoError(t, mock.ExpectationsWereMet())
}
