package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	e := ErrNotFound("merchant")
	assert.Equal(t, "[NOT_FOUND] merchant not found", e.Error())

	cause := errors.New("connection refused")
	wrapped := ErrStoreUnavailable(cause)
	assert.Contains(t, wrapped.Error(), "STORE_UNAVAILABLE")
	assert.Contains(t, wrapped.Error(), "connection refused")
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("broken pipe")
	wrapped := ErrStoreUnavailable(cause)
	assert.ErrorIs(t, wrapped, cause)
}

func TestAppError_Retryable(t *testing.T) {
	assert.True(t, ErrStoreUnavailable(errors.New("timeout")).Retryable())
	assert.False(t, ErrAlreadyExists("administrator").Retryable())
	assert.False(t, ErrNotFound("client").Retryable())
	assert.False(t, ErrInvalidAmount("amount must be positive").Retryable())
	assert.False(t, ErrInsufficientFunds("merchant").Retryable())
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeInsufficientFunds, CodeOf(ErrInsufficientFunds("admin")))
	assert.Equal(t, CodeNotFound, CodeOf(fmt.Errorf("outer: %w", ErrNotFound("client"))))
	assert.Equal(t, CodeStoreUnavailable, CodeOf(errors.New("plain error")))
}
