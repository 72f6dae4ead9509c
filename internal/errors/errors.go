// Package errors provides custom error types for the funbudget API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// Reference-data errors.
var (
	ErrPersonNotFound  = &AppError{Code: "PERSON_NOT_FOUND", Message: "Person not found", StatusCode: http.StatusNotFound}
	ErrPayeeNotFound   = &AppError{Code: "PAYEE_NOT_FOUND", Message: "Payee not found", StatusCode: http.StatusNotFound}
	ErrAccountNotFound = &AppError{Code: "ACCOUNT_NOT_FOUND", Message: "Account not found", StatusCode: http.StatusNotFound}
)

// Budget errors.
var (
	ErrBudgetNotFound       = &AppError{Code: "BUDGET_NOT_FOUND", Message: "Budget not found", StatusCode: http.StatusNotFound}
	ErrInvalidPeriodType    = &AppError{Code: "INVALID_PERIOD_TYPE", Message: "Unrecognized period type", StatusCode: http.StatusBadRequest}
	ErrOverflowLimitMissing = &AppError{Code: "OVERFLOW_LIMIT_MISSING", Message: "Overflow limit is required when policy is LIMITED", StatusCode: http.StatusBadRequest}
)

// Period errors.
var (
	ErrPeriodNotFound = &AppError{Code: "PERIOD_NOT_FOUND", Message: "Budget period not found", StatusCode: http.StatusNotFound}

	// ErrPeriodWindowClosed reports that a period already exists for the
	// exact computed window but is CLOSED. Callers decide whether to skip,
	// advance, or fail; the period store never silently hands back a
	// closed period as if it were current.
	ErrPeriodWindowClosed = &AppError{Code: "PERIOD_WINDOW_CLOSED", Message: "A closed period already covers this window", StatusCode: http.StatusConflict}
)

// Transaction errors.
var (
	ErrTransactionNotFound = &AppError{Code: "TRANSACTION_NOT_FOUND", Message: "Transaction not found", StatusCode: http.StatusNotFound}
	ErrNonPositiveAmount   = &AppError{Code: "NON_POSITIVE_AMOUNT", Message: "Amount must be greater than zero", StatusCode: http.StatusBadRequest}
	ErrSameBudgetTransfer  = &AppError{Code: "SAME_BUDGET_TRANSFER", Message: "Cannot transfer to the same budget", StatusCode: http.StatusBadRequest}
)

// Rule errors.
var (
	ErrRuleNotFound     = &AppError{Code: "RULE_NOT_FOUND", Message: "Rule not found", StatusCode: http.StatusNotFound}
	ErrInvalidFrequency = &AppError{Code: "INVALID_FREQUENCY", Message: "Unrecognized rule frequency", StatusCode: http.StatusBadRequest}
)
