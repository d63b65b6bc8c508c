package apperror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
)

// AppError represents an application error with HTTP status code
type AppError struct {
	Code    int          `json:"code"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// FieldError represents a validation error for a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	return e.Message
}

// Common errors
var (
	ErrNotFound           = &AppError{Code: http.StatusNotFound, Message: "Resource not found"}
	ErrUnauthorized       = &AppError{Code: http.StatusUnauthorized, Message: "Unauthorized"}
	ErrForbidden          = &AppError{Code: http.StatusForbidden, Message: "Forbidden"}
	ErrBadRequest         = &AppError{Code: http.StatusBadRequest, Message: "Bad request"}
	ErrInternalServer     = &AppError{Code: http.StatusInternalServerError, Message: "Internal server error"}
	ErrConflict           = &AppError{Code: http.StatusConflict, Message: "Resource already exists"}
	ErrUnprocessable      = &AppError{Code: http.StatusUnprocessableEntity, Message: "Unprocessable entity"}
	ErrInvalidCredentials = &AppError{Code: http.StatusUnauthorized, Message: "Invalid email or password"}
	ErrEmailNotVerified   = &AppError{Code: http.StatusForbidden, Message: "Email not verified"}
	ErrTokenExpired       = &AppError{Code: http.StatusUnauthorized, Message: "Token has expired"}
	ErrInvalidToken       = &AppError{Code: http.StatusUnauthorized, Message: "Invalid token"}

	// Payment and statement errors
	ErrNoOutstandingBalance = &AppError{Code: http.StatusUnprocessableEntity, Message: "Customer has no outstanding balance"}
	ErrInvalidDateRange     = &AppError{Code: http.StatusBadRequest, Message: "End date must not be before start date"}
	ErrAllocationConflict   = &AppError{Code: http.StatusConflict, Message: "Invoice balances changed during allocation"}
)

// AllocationPersistenceError reports a failed allocation commit together with
// what the engine was trying to write, so the operator can tell which payment
// attempt died and against which invoices.
type AllocationPersistenceError struct {
	CustomerID  uuid.UUID
	AmountCents int64
	InvoiceIDs  []uuid.UUID
	Err         error
}

func (e *AllocationPersistenceError) Error() string {
	return fmt.Sprintf("failed to persist allocation of %d cents for customer %s across %d invoice(s): %v",
		e.AmountCents, e.CustomerID, len(e.InvoiceIDs), e.Err)
}

func (e *AllocationPersistenceError) Unwrap() error {
	return e.Err
}

// NewAllocationPersistenceError wraps a commit failure with the allocation's context
func NewAllocationPersistenceError(err error, customerID uuid.UUID, amountCents int64, invoiceIDs []uuid.UUID) *AllocationPersistenceError {
	return &AllocationPersistenceError{
		CustomerID:  customerID,
		AmountCents: amountCents,
		InvoiceIDs:  invoiceIDs,
		Err:         err,
	}
}

// NewAppError creates a new application error
func NewAppError(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(fieldErrors []FieldError) *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Message: "Validation failed",
		Errors:  fieldErrors,
	}
}

// NewNotFoundError creates a not found error with a custom message
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Code:    http.StatusNotFound,
		Message: resource + " not found",
	}
}

// NewConflictError creates a conflict error with a custom message
func NewConflictError(message string) *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Message: message,
	}
}

// NewBadRequestError creates a bad request error with a custom message
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Message: message,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError converts an error to AppError if possible
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return &AppError{
		Code:    http.StatusInternalServerError,
		Message: err.Error(),
	}
}
