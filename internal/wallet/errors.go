// AngelaMos | 2026
// errors.go

package wallet

import (
	"errors"
	"net/http"

	"github.com/carterperez-dev/classifieds/internal/core"
)

// Admin tooling matches on these exact messages.
//
//nolint:staticcheck // ST1005: user-facing messages keep their casing
var (
	ErrTransactionNotFound = errors.New("Transaction not found")
	ErrUserNotFound        = errors.New("User not found")
	ErrAlreadyProcessed    = errors.New("Transaction already processed")
	ErrNotApprovable       = errors.New("transaction type cannot be approved")
)

var walletErrors = []struct {
	err    error
	status int
	code   string
}{
	{ErrTransactionNotFound, http.StatusNotFound, "TRANSACTION_NOT_FOUND"},
	{ErrUserNotFound, http.StatusNotFound, "USER_NOT_FOUND"},
	{ErrAlreadyProcessed, http.StatusConflict, "ALREADY_PROCESSED"},
	{ErrNotApprovable, http.StatusUnprocessableEntity, "NOT_APPROVABLE"},
}

// toAppError maps wallet failures onto HTTP responses carrying the bare
// sentinel message. Anything else goes through core.MapError.
func toAppError(err error) *core.AppError {
	for _, we := range walletErrors {
		if errors.Is(err, we.err) {
			return core.NewAppError(err, we.err.Error(), we.status, we.code)
		}
	}
	return core.MapError(err, "transaction")
}
