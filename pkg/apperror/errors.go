package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Authentication & Authorization (AUTH) ----

func ErrUnauthorized() *AppError {
	return New("AUTH_001", "Unauthorized: no valid identity token", http.StatusUnauthorized)
}

func ErrForbidden() *AppError {
	return New("AUTH_002", "Forbidden: access denied", http.StatusForbidden)
}

func ErrInvalidCredentials() *AppError {
	return New("AUTH_003", "Invalid credentials", http.StatusUnauthorized)
}

// ---- Validation (VAL) ----

func ErrMissingFields(fields string) *AppError {
	return New("VAL_001", fmt.Sprintf("Missing required parameters: %s", fields), http.StatusBadRequest)
}

func ErrMethodNotAllowed() *AppError {
	return New("VAL_002", "Method not allowed", http.StatusMethodNotAllowed)
}

func ErrInvalidAmount() *AppError {
	return New("VAL_003", "Invalid amount", http.StatusBadRequest)
}

// Validation returns a VAL_001-style validation error with a custom message.
func Validation(message string) *AppError {
	return New("VAL_001", message, http.StatusBadRequest)
}

// ---- Provider upstream (PRV) ----

// ErrUpstream deliberately carries a generic client-facing message; the raw
// upstream error stays server-side only.
func ErrUpstream(err error) *AppError {
	return Wrap("PRV_001", "Failed to fetch from API provider. The provider may be blocking our server.", http.StatusInternalServerError, err)
}

func ErrProviderNotFound() *AppError {
	return New("PRV_002", "Provider not found", http.StatusNotFound)
}

// ---- Fund settlement (FND) ----

func ErrSettlementFailed(err error) *AppError {
	return Wrap("FND_001", "Fund request settlement failed", http.StatusInternalServerError, err)
}

func ErrRequestAlreadySettled() *AppError {
	return New("FND_002", "Fund request is no longer pending", http.StatusConflict)
}

func ErrNotFound(entity string) *AppError {
	return New("FND_003", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

// ---- Withdrawals (WDR) ----

func ErrWithdrawalAlreadySettled() *AppError {
	return New("WDR_001", "Withdrawal request is no longer pending", http.StatusConflict)
}

// ---- Rate limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

func ErrDatabaseError(err error) *AppError {
	return Wrap("SYS_001", "Internal database error", http.StatusInternalServerError, err)
}

func ErrEncryptionFailure(err error) *AppError {
	return Wrap("SYS_002", "Encryption service failure", http.StatusInternalServerError, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}
