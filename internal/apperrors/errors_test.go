package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationError_Error(t *testing.T) {
	ve := NewValidationError("email", "enter a valid email address")
	ve.Add("address", "this field is required")
	ve.Add("email", "ignored second message")

	assert.Equal(t, "enter a valid email address", ve.Fields["email"])
	assert.Equal(t, "validation failed: address: this field is required; email: enter a valid email address", ve.Error())
}

func TestIsValidation_Wrapped(t *testing.T) {
	err := fmt.Errorf("checkout: %w", NewValidationError("first_name", "required"))

	ve, ok := IsValidation(err)
	require.True(t, ok)
	assert.Contains(t, ve.Fields, "first_name")

	_, ok = IsValidation(errors.New("boom"))
	assert.False(t, ok)
}

func TestPersistenceError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("checkout: %w", &PersistenceError{Op: "create order", Err: cause})

	assert.True(t, IsPersistence(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "create order")
}

func TestNotificationError_Unwrap(t *testing.T) {
	cause := errors.New("503 from mailer")
	err := &NotificationError{OrderID: 42, Err: cause}

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "order 42 confirmation not delivered: 503 from mailer", err.Error())
}
