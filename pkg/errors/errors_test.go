package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsUnwrapsWrappedAppError(t *testing.T) {
	err := fmt.Errorf("saving ticket: %w", Persistence("Failed to create ticket", stderrors.New("unavailable")))

	assert.True(t, Is(err, CodePersistence))
	assert.False(t, Is(err, CodeUpload))
	assert.False(t, Is(stderrors.New("plain"), CodePersistence))
}

func TestAuthMessages(t *testing.T) {
	tests := []struct {
		code    string
		status  int
		message string
	}{
		{CodeEmailInUse, http.StatusConflict, "This email is already registered. Try logging in."},
		{CodeWeakPassword, http.StatusBadRequest, "Password should be at least 6 characters."},
		{CodeInvalidEmail, http.StatusBadRequest, "Please enter a valid email address."},
		{"something-else", http.StatusInternalServerError, "An error occurred. Please try again."},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := Auth(tt.code, nil)
			assert.Equal(t, tt.status, err.Status)
			assert.Equal(t, tt.message, err.Message)
		})
	}
}

func TestFromFindsAppErrorInChain(t *testing.T) {
	wrapped := fmt.Errorf("redeem: %w", NotFound("Invite", nil))

	appErr, ok := From(wrapped)
	assert.True(t, ok)
	assert.Equal(t, http.StatusNotFound, appErr.Status)

	_, ok = From(stderrors.New("plain"))
	assert.False(t, ok)
}
