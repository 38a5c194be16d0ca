// AngelaMos | 2026
// errors.go

package core

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound          = errors.New("resource not found")
	ErrDuplicateKey      = errors.New("duplicate key")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidInput      = errors.New("invalid input")
	ErrConflict          = errors.New("conflict")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrTokenExpired      = errors.New("token expired")
	ErrTokenRevoked      = errors.New("token revoked")
	ErrTokenInvalid      = errors.New("token invalid")
	ErrUnavailable       = errors.New("service unavailable")
)

// AppError carries the HTTP status and machine-readable code a handler
// should respond with.
type AppError struct {
	Err        error
	Message    string
	StatusCode int
	Code       string
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(err error, message string, status int, code string) *AppError {
	return &AppError{
		Err:        err,
		Message:    message,
		StatusCode: status,
		Code:       code,
	}
}

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

func NotFoundError(resource string) *AppError {
	return NewAppError(
		ErrNotFound,
		resource+" not found",
		http.StatusNotFound,
		"NOT_FOUND",
	)
}

func DuplicateError(field string) *AppError {
	return NewAppError(
		ErrDuplicateKey,
		field+" already exists",
		http.StatusConflict,
		"DUPLICATE",
	)
}

func UnauthorizedError(message string) *AppError {
	if message == "" {
		message = "authentication required"
	}
	return NewAppError(
		ErrUnauthorized,
		message,
		http.StatusUnauthorized,
		"UNAUTHORIZED",
	)
}

func ForbiddenError(message string) *AppError {
	if message == "" {
		message = "access denied"
	}
	return NewAppError(ErrForbidden, message, http.StatusForbidden, "FORBIDDEN")
}

func BadRequestError(message string) *AppError {
	return NewAppError(
		ErrInvalidInput,
		message,
		http.StatusBadRequest,
		"BAD_REQUEST",
	)
}

func ConflictError(message string) *AppError {
	return NewAppError(ErrConflict, message, http.StatusConflict, "CONFLICT")
}

func InsufficientFundsError() *AppError {
	return NewAppError(
		ErrInsufficientFunds,
		"insufficient wallet balance",
		http.StatusPaymentRequired,
		"INSUFFICIENT_FUNDS",
	)
}

func TokenExpiredError() *AppError {
	return NewAppError(
		ErrTokenExpired,
		"token has expired",
		http.StatusUnauthorized,
		"TOKEN_EXPIRED",
	)
}

func TokenRevokedError() *AppError {
	return NewAppError(
		ErrTokenRevoked,
		"token has been revoked",
		http.StatusUnauthorized,
		"TOKEN_REVOKED",
	)
}

func TokenInvalidError() *AppError {
	return NewAppError(
		ErrTokenInvalid,
		"token is invalid",
		http.StatusUnauthorized,
		"TOKEN_INVALID",
	)
}

func InternalError(err error) *AppError {
	return NewAppError(
		err,
		"internal server error",
		http.StatusInternalServerError,
		"INTERNAL_ERROR",
	)
}

// MapError translates sentinel errors into the response a handler should
// send. Unknown errors become a 500.
func MapError(err error, resource string) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return NotFoundError(resource)
	case errors.Is(err, ErrDuplicateKey):
		return DuplicateError(resource)
	case errors.Is(err, ErrForbidden):
		return ForbiddenError("")
	case errors.Is(err, ErrUnauthorized):
		return UnauthorizedError("")
	case errors.Is(err, ErrInvalidInput):
		return BadRequestError(err.Error())
	case errors.Is(err, ErrConflict):
		return ConflictError(err.Error())
	case errors.Is(err, ErrInsufficientFunds):
		return InsufficientFundsError()
	case errors.Is(err, ErrUnavailable):
		return NewAppError(
			err,
			"service unavailable",
			http.StatusServiceUnavailable,
			"UNAVAILABLE",
		)
	default:
		return InternalError(err)
	}
}
