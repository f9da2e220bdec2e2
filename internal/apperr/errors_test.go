package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"not found", NotFound("album not found"), CodeNotFound},
		{"forbidden", Forbidden("no access"), CodeForbidden},
		{"unauthenticated", Unauthenticated("login required"), CodeUnauthenticated},
		{"conflict", Conflict("email taken"), CodeConflict},
		{"invalid input", InvalidInput("empty content"), CodeInvalidInput},
		{"wrapped", fmt.Errorf("handler: %w", Forbidden("no access")), CodeForbidden},
		{"plain error", errors.New("disk on fire"), CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CodeOf(tt.err))
			assert.True(t, Is(tt.err, tt.want))
		})
	}
	assert.False(t, Is(nil, CodeInternal))
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Internal("failed to save message", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to save message: connection refused", err.Error())
}

func TestMessageOf_HidesInternal(t *testing.T) {
	assert.Equal(t, "album not found", MessageOf(NotFound("album not found")))
	assert.Equal(t, "Internal server error", MessageOf(Internal("db exploded", errors.New("x"))))
	assert.Equal(t, "Internal server error", MessageOf(errors.New("raw")))
}
