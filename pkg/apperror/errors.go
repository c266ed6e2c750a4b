package apperror

import (
	"errors"
	"fmt"
)

// AppError is a structured, coded domain error.
type AppError struct {
	Code    string `json:"error_code"`
	Message string `json:"message"`
	Err     error  `json:"-"` // Wrapped internal error (not exposed)
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

// Is matches AppErrors by code, so errors.Is works against the
// constructor helpers.
func (e *AppError) Is(target error) bool {
	var other *AppError
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

// New creates a new AppError.
func New(code string, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// CodeOf returns the code of the AppError in err's chain, or "" if none.
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// ---- Amount validation (AMT) ----

func ErrInvalidAmount() *AppError {
	return New("AMT_001", "Invalid amount")
}

func ErrNegativeAmount() *AppError {
	return New("AMT_002", "Amount must not be negative")
}

// ---- Transfer preconditions (PAY) ----

func ErrInsufficientFunds() *AppError {
	return New("PAY_001", "Insufficient funds on source card")
}

// ---- Capacity (CAP) ----

func ErrCapacityExceeded() *AppError {
	return New("CAP_001", "Card capacity exceeded")
}

// ---- Cards (CARD) ----

func ErrDuplicateCard() *AppError {
	return New("CARD_001", "Card already exists")
}

func ErrCardNotFound() *AppError {
	return New("CARD_002", "Card not found")
}

func ErrInvalidCard() *AppError {
	return New("CARD_003", "Not a valid card reference")
}

func ErrCardFrozen() *AppError {
	return New("CARD_004", "Card is frozen")
}

// ---- Bank account identifiers (ACC) ----

func ErrInvalidFormat(field string) *AppError {
	return New("ACC_001", fmt.Sprintf("Invalid %s format", field))
}

func ErrMissingField(field string) *AppError {
	return New("ACC_002", fmt.Sprintf("Missing %s", field))
}

// ---- Wallet policy (WAL) ----

func ErrInvalidPIN() *AppError {
	return New("WAL_001", "PIN verification failed")
}

func ErrInvalidArgument(message string) *AppError {
	return New("WAL_002", message)
}

func ErrInsufficientCards() *AppError {
	return New("WAL_003", "At least two cards are required")
}

func ErrSameCard() *AppError {
	return New("WAL_004", "Source and target card are the same")
}

// ---- System & storage (SYS) ----

// InternalError wraps a storage or other infrastructure failure.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal storage error", err)
}
