// Package errors provides custom error types for the budget plan API.
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

// Is matches AppErrors by code so wrapped copies still compare equal to
// their sentinel under errors.Is.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Authentication & authorization errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
	ErrForbidden          = &AppError{Code: "FORBIDDEN", Message: "Access denied", StatusCode: http.StatusForbidden}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// Staff errors.
var (
	ErrStaffNotFound  = &AppError{Code: "STAFF_NOT_FOUND", Message: "Staff member not found", StatusCode: http.StatusNotFound}
	ErrDuplicateEmail = &AppError{Code: "DUPLICATE_EMAIL", Message: "A staff member with this email already exists", StatusCode: http.StatusConflict}
)

// Budget plan errors.
var (
	ErrPlanNotFound        = &AppError{Code: "PLAN_NOT_FOUND", Message: "Budget plan not found", StatusCode: http.StatusNotFound}
	ErrDuplicatePlanYear   = &AppError{Code: "DUPLICATE_PLAN_YEAR", Message: "A budget plan for this year already exists", StatusCode: http.StatusConflict}
	ErrDuplicateBudgetItem = &AppError{Code: "DUPLICATE_BUDGET_ITEM", Message: "Budget item names must be unique within a plan", StatusCode: http.StatusBadRequest}
	ErrInvalidCategory     = &AppError{Code: "INVALID_CATEGORY", Message: "Unknown budget category", StatusCode: http.StatusBadRequest}
	ErrPlanArchived        = &AppError{Code: "PLAN_ARCHIVED", Message: "Budget plan is archived", StatusCode: http.StatusConflict}
	ErrPlanNotArchived     = &AppError{Code: "PLAN_NOT_ARCHIVED", Message: "Only archived budget plans can be deleted", StatusCode: http.StatusConflict}
	ErrPlanHasHistory      = &AppError{Code: "PLAN_HAS_HISTORY", Message: "Budget plan has recorded history and cannot be deleted", StatusCode: http.StatusConflict}
	ErrPlanVersionConflict = &AppError{Code: "PLAN_VERSION_CONFLICT", Message: "Budget plan was modified concurrently", StatusCode: http.StatusConflict}
	ErrPlanLocked          = &AppError{Code: "PLAN_LOCKED", Message: "Budget plan is being modified, try again", StatusCode: http.StatusConflict}
	ErrOverLimit           = &AppError{Code: "OVER_LIMIT", Message: "Allocation exceeds a budget ceiling", StatusCode: http.StatusUnprocessableEntity}
)

// Transfer errors.
var (
	ErrInvalidAmount       = &AppError{Code: "INVALID_AMOUNT", Message: "Transfer amount must be a positive number", StatusCode: http.StatusBadRequest}
	ErrInsufficientBalance = &AppError{Code: "INSUFFICIENT_BALANCE", Message: "Source item has insufficient balance", StatusCode: http.StatusBadRequest}
	ErrSameItemTransfer    = &AppError{Code: "SAME_ITEM_TRANSFER", Message: "Cannot transfer to the same budget item", StatusCode: http.StatusBadRequest}
	ErrCrossPlanTransfer   = &AppError{Code: "CROSS_PLAN_TRANSFER", Message: "Budget items belong to different plans", StatusCode: http.StatusBadRequest}
	ErrUnknownItem         = &AppError{Code: "UNKNOWN_ITEM", Message: "Budget item not found", StatusCode: http.StatusNotFound}
	ErrTransferFailed      = &AppError{Code: "TRANSFER_FAILED", Message: "Transfer could not be completed and was rolled back, please retry", StatusCode: http.StatusServiceUnavailable}
)

// History errors.
var (
	ErrHistoryNotFound  = &AppError{Code: "HISTORY_NOT_FOUND", Message: "No history recorded for that point in time", StatusCode: http.StatusNotFound}
	ErrHistoryImmutable = &AppError{Code: "HISTORY_IMMUTABLE", Message: "History records cannot be modified", StatusCode: http.StatusForbidden}
)
