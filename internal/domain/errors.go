package domain

import (
	"errors"
	"fmt"
)

// AppError is the base domain error type.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Cause }

// Is matches any *AppError with the same code, so sentinel comparisons survive wrapping.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// Error codes.
const (
	CodeNotFound   = "NOT_FOUND"
	CodeConflict   = "CONFLICT"
	CodeValidation = "VALIDATION_ERROR"
	CodeCorruptLog = "CORRUPT_EVENT_LOG"
	CodeInternal   = "INTERNAL_ERROR"
)

// Standard domain error constructors.

func ErrNotFound(entity, id string) *AppError {
	return &AppError{Code: CodeNotFound, Message: fmt.Sprintf("%s %s not found", entity, id)}
}

func ErrConflict(msg string) *AppError {
	return &AppError{Code: CodeConflict, Message: msg}
}

func ErrValidation(msg string) *AppError {
	return &AppError{Code: CodeValidation, Message: msg}
}

func ErrInternal(msg string, cause error) *AppError {
	return &AppError{Code: CodeInternal, Message: msg, Cause: cause}
}

// ErrConcurrentAppend is returned by event stores when the expected version no
// longer matches the log length.
var ErrConcurrentAppend = ErrConflict("game was modified concurrently")

// ErrCorruptLog marks an event log that cannot be folded.
func ErrCorruptLog(format string, args ...any) *AppError {
	return &AppError{Code: CodeCorruptLog, Message: fmt.Sprintf(format, args...)}
}

// RejectionCode identifies why a command was declined.
type RejectionCode string

const (
	RejectGameNotFound          RejectionCode = "GAME_NOT_FOUND"
	RejectGameAlreadyForfeited  RejectionCode = "GAME_ALREADY_FORFEITED"
	RejectGameAlreadyCompleted  RejectionCode = "GAME_ALREADY_COMPLETED"
	RejectStockEmpty            RejectionCode = "STOCK_EMPTY"
	RejectStockNotEmpty         RejectionCode = "STOCK_NOT_EMPTY"
	RejectWasteEmpty            RejectionCode = "WASTE_EMPTY"
	RejectTableauEmpty          RejectionCode = "TABLEAU_EMPTY"
	RejectFoundationAceRequired RejectionCode = "FOUNDATION_ACE_REQUIRED"
	RejectFoundationSequence    RejectionCode = "FOUNDATION_SEQUENCE"
	RejectTableauSequence       RejectionCode = "TABLEAU_SEQUENCE"
	RejectInvalidMove           RejectionCode = "INVALID_MOVE"
	RejectGameNotWon            RejectionCode = "GAME_NOT_WON"
)

// Rejection is the expected, recoverable outcome of an illegal command.
// It is a value, not an error: no event is appended and state is unchanged.
type Rejection struct {
	Code    RejectionCode `json:"code"`
	Message string        `json:"message"`
}

func (r Rejection) String() string {
	return fmt.Sprintf("%s: %s", r.Code, r.Message)
}
