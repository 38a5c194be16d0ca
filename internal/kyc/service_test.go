// AngelaMos | 2026
// service_test.go

package kyc

import (
	"context"
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/classifieds/internal/core"
)

var submissionCols = []string{
	"id", "user_id", "full_name", "document_number", "document_url",
	"selfie_url", "status", "note", "reviewed_by", "reviewed_at", "created_at",
}

func newMockService(t *testing.T) (*Service, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	sx := sqlx.NewDb(db, "sqlmock")
	return NewService(&core.Database{DB: sx}, NewRepository(sx), nil, nil), mock
}

func submissionRow(status string) *sqlmock.Rows {
	return sqlmock.NewRows(submissionCols).AddRow(
		"k1", "u1", "Ana Lee", "X123", "https://cdn/doc.jpg", "https://cdn/selfie.jpg",
		status, "", nil, nil, time.Now(),
	)
}

func TestApproveVerifiesUserInSameTransaction(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).WithArgs("k1").
		WillReturnRows(submissionRow(StatusPending))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE kyc_submissions")).
		WithArgs("k1", StatusApproved, "admin", sqlmock.AnyArg(), "").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET verified")).
		WithArgs("u1", true).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	sub, err := svc.Approve(context.Background(), "k1", "admin")
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, sub.Status)
	require.NotNil(t, sub.ReviewedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewedSubmissionIsFinal(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).WithArgs("k1").
		WillReturnRows(submissionRow(StatusRejected))
	mock.ExpectRollback()

	_, err := svc.Approve(context.Background(), "k1", "admin")
	require.ErrorIs(t, err, ErrAlreadyReviewed)
	assert.Equal(t, http.StatusConflict, core.MapError(err, "kyc").StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRejectLeavesUserUnverified(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).WithArgs("k1").
		WillReturnRows(submissionRow(StatusPending))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE kyc_submissions")).
		WithArgs("k1", StatusRejected, "admin", sqlmock.AnyArg(), "photo unreadable").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	sub, err := svc.Reject(context.Background(), "k1", "admin", "photo unreadable")
	require.NoError(t, err)
	assert.Equal(t, "photo unreadable", sub.Note)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOnlyOnePendingSubmission(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO kyc_submissions")).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := svc.Submit(context.Background(), "u1", SubmitRequest{
		FullName:       "Ana Lee",
		DocumentNumber: "X123",
		DocumentURL:    "https://cdn/doc.jpg",
		SelfieURL:      "https://cdn/selfie.jpg",
	})
	assert.ErrorIs(t, err, ErrSubmissionPending)
}
