package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/maika/internal/actions"
	"github.com/phrazzld/maika/internal/auth"
	"github.com/phrazzld/maika/internal/domain"
	"github.com/phrazzld/maika/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedMsg    string
	}{
		{
			name:           "nil error",
			err:            nil,
			expectedStatus: http.StatusInternalServerError,
			expectedMsg:    "An unexpected error occurred",
		},
		{
			name:           "invalid token",
			err:            auth.ErrInvalidToken,
			expectedStatus: http.StatusUnauthorized,
			expectedMsg:    "Invalid token",
		},
		{
			name:           "wrapped expired token",
			err:            fmt.Errorf("failed to validate: %w", auth.ErrExpiredToken),
			expectedStatus: http.StatusUnauthorized,
			expectedMsg:    "Token expired",
		},
		{
			name:           "unknown action",
			err:            fmt.Errorf("%w: action_nope", actions.ErrUnknownAction),
			expectedStatus: http.StatusNotFound,
			expectedMsg:    "Unknown action",
		},
		{
			name:           "invalid input",
			err:            domain.NewInvalidInputError("user_id", "", "cannot be empty"),
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "Invalid request",
		},
		{
			name:           "storage failure",
			err:            store.NewStorageError("xp_event", "append", errors.New("database is locked")),
			expectedStatus: http.StatusServiceUnavailable,
			expectedMsg:    "Service temporarily unavailable",
		},
		{
			name:           "unknown error",
			err:            errors.New("something odd"),
			expectedStatus: http.StatusInternalServerError,
			expectedMsg:    "An unexpected error occurred",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expectedStatus, MapErrorToStatusCode(tc.err))
			assert.Equal(t, tc.expectedMsg, GetSafeErrorMessage(tc.err))
		})
	}
}

func TestGetSafeErrorMessage_DoesNotLeak(t *testing.T) {
	t.Parallel()

	err := store.NewStorageError("xp_event", "append",
		errors.New("open /var/lib/maika/maika.db: permission denied"))
	msg := GetSafeErrorMessage(err)
	assert.NotContains(t, msg, "/var/lib")
	assert.NotContains(t, msg, "xp_event")
}

func TestSanitizeValidationError(t *testing.T) {
	t.Parallel()

	type payload struct {
		NextAction string `validate:"required"`
		SenderID   string `validate:"max=3"`
	}

	v := validator.New()
	assert.Equal(t, "Invalid NextAction: required field",
		SanitizeValidationError(v.Struct(payload{SenderID: "a"})))
	assert.Equal(t, "Invalid SenderID: too long",
		SanitizeValidationError(v.Struct(payload{NextAction: "x", SenderID: "abcd"})))

	assert.Equal(t, "Invalid Email: validation failed", SanitizeValidationError(errors.New(
		"Key: 'X.Email' Error:Field validation for 'Email' failed on the 'email' tag")))
	assert.Equal(t, "Validation error", SanitizeValidationError(errors.New("nope")))
}
