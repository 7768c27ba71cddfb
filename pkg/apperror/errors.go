package apperror

import (
	"errors"
	"fmt"
)

// Code identifies the kind of a ledger error. Callers branch on the code,
// never on the message text.
type Code string

const (
	CodeAlreadyExists     Code = "ALREADY_EXISTS"
	CodeNotFound          Code = "NOT_FOUND"
	CodeInvalidAmount     Code = "INVALID_AMOUNT"
	CodeInsufficientFunds Code = "INSUFFICIENT_FUNDS"
	CodeStoreUnavailable  Code = "STORE_UNAVAILABLE"
)

// AppError is a structured error carrying a stable code and a
// human-readable message. The wrapped cause is internal detail and is not
// part of the rendered message contract.
type AppError struct {
	Code    Code   `json:"error_code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
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

// Retryable reports whether the caller may retry the operation unmodified.
// Only store failures are potentially transient; every other code is
// permanent for the given input.
func (e *AppError) Retryable() bool {
	return e.Code == CodeStoreUnavailable
}

// New creates a new AppError.
func New(code Code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code Code, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// CodeOf extracts the AppError code from err, or CodeStoreUnavailable if
// err is not an AppError (an unclassified failure is by definition a
// store-layer problem leaking through).
func CodeOf(err error) Code {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeStoreUnavailable
}

func ErrAlreadyExists(entity string) *AppError {
	return New(CodeAlreadyExists, fmt.Sprintf("%s already exists", entity))
}

func ErrNotFound(entity string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", entity))
}

func ErrInvalidAmount(reason string) *AppError {
	return New(CodeInvalidAmount, reason)
}

func ErrInsufficientFunds(holder string) *AppError {
	return New(CodeInsufficientFunds, fmt.Sprintf("insufficient %s balance", holder))
}

// ErrStoreUnavailable wraps an underlying persistence failure. A failed
// atomic commit is a fully rolled-back no-op for the caller.
func ErrStoreUnavailable(err error) *AppError {
	return Wrap(CodeStoreUnavailable, "ledger store unavailable", err)
}
