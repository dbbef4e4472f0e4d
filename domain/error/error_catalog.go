package error

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a unique error code
type ErrorCode string

// Error codes for different categories
const (
	// Authentication Errors (1xxx)
	ErrCodeUnknownUser    ErrorCode = "AUTH_1001"
	ErrCodeBadCredential  ErrorCode = "AUTH_1002"
	ErrCodeInvalidSession ErrorCode = "AUTH_1003"

	// Validation Errors (2xxx)
	ErrCodeValidation           ErrorCode = "VALID_2001"
	ErrCodeConfirmationRequired ErrorCode = "VALID_2002"

	// Rate Limiting Errors (3xxx)
	ErrCodeTooManyAttempts ErrorCode = "RATE_3001"

	// Lookup Errors (4xxx)
	ErrCodeNotFound          ErrorCode = "NOTFOUND_4001"
	ErrCodeAmbiguousSelector ErrorCode = "CONFLICT_4091"

	// Storage Errors (5xxx)
	ErrCodePersistence    ErrorCode = "DB_5001"
	ErrCodeMissingStorage ErrorCode = "DB_5002"

	// Server Errors (6xxx)
	ErrCodeInternalServerError ErrorCode = "SERVER_6001"

	// Security Errors (7xxx)
	ErrCodeForbidden ErrorCode = "SEC_7001"
)

// AppError represents a structured application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
	Cause   error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the cause error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches any AppError carrying the same code, so sentinel-style checks
// like errors.Is(err, ErrNotFound("")) work regardless of details.
func (e *AppError) Is(target error) bool {
	var other *AppError
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

// NewAppError creates a new application error
func NewAppError(code ErrorCode, message string, details string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Details: details,
		Cause:   cause,
	}
}

// HasCode reports whether err carries the given code anywhere in its chain.
func HasCode(err error, code ErrorCode) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// Authentication errors
func ErrUnknownUser(username string) *AppError {
	return NewAppError(ErrCodeUnknownUser, "Unknown user", fmt.Sprintf("Username: %s", username), nil)
}

func ErrBadCredential(username string) *AppError {
	return NewAppError(ErrCodeBadCredential, "Invalid username or password", fmt.Sprintf("Username: %s", username), nil)
}

func ErrInvalidSession(details string) *AppError {
	return NewAppError(ErrCodeInvalidSession, "Invalid or expired session", details, nil)
}

// Validation errors
func ErrValidation(details string) *AppError {
	return NewAppError(ErrCodeValidation, "Validation failed", details, nil)
}

func ErrMissingField(field string) *AppError {
	return NewAppError(ErrCodeValidation, "Missing required field", fmt.Sprintf("Field: %s", field), nil)
}

func ErrConfirmationRequired(selector string) *AppError {
	return NewAppError(ErrCodeConfirmationRequired, "Deletion must be confirmed", fmt.Sprintf("Selector: %s", selector), nil)
}

// Rate limiting errors
func ErrTooManyAttempts(username string, retryAfter string) *AppError {
	return NewAppError(ErrCodeTooManyAttempts, "Too many failed login attempts", fmt.Sprintf("Username: %s, Retry after: %s", username, retryAfter), nil)
}

// Lookup errors
func ErrNotFound(table, selector string) *AppError {
	return NewAppError(ErrCodeNotFound, "Record not found", fmt.Sprintf("Table: %s, Selector: %s", table, selector), nil)
}

func ErrAmbiguousSelector(table, selector string, matches int) *AppError {
	return NewAppError(ErrCodeAmbiguousSelector, "Selector matches more than one record", fmt.Sprintf("Table: %s, Selector: %s, Matches: %d", table, selector, matches), nil)
}

// Storage errors
func ErrPersistence(operation string, cause error) *AppError {
	return NewAppError(ErrCodePersistence, "Persistence failed", fmt.Sprintf("Operation: %s", operation), cause)
}

func ErrMissingStorage(table string) *AppError {
	return NewAppError(ErrCodeMissingStorage, "Durable storage missing", fmt.Sprintf("Table: %s", table), nil)
}

// Server errors
func ErrInternalServerError(details string, cause error) *AppError {
	return NewAppError(ErrCodeInternalServerError, "Internal server error", details, cause)
}

// Security errors
func ErrForbidden(username string, permission string) *AppError {
	return NewAppError(ErrCodeForbidden, "Permission denied", fmt.Sprintf("User: %s, Permission: %s", username, permission), nil)
}

// GetHTTPStatusCode maps an error to its HTTP status.
func GetHTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		switch appErr.Code {
		case ErrCodeUnknownUser, ErrCodeBadCredential, ErrCodeInvalidSession:
			return http.StatusUnauthorized
		case ErrCodeValidation, ErrCodeConfirmationRequired:
			return http.StatusBadRequest
		case ErrCodeTooManyAttempts:
			return http.StatusTooManyRequests
		case ErrCodeNotFound:
			return http.StatusNotFound
		case ErrCodeAmbiguousSelector:
			return http.StatusConflict
		case ErrCodePersistence, ErrCodeMissingStorage:
			return http.StatusServiceUnavailable
		case ErrCodeForbidden:
			return http.StatusForbidden
		}
	}
	return http.StatusInternalServerError
}
