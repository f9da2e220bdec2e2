package utils

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/anoixa/album-chat/internal/apperr"
	"github.com/stretchr/testify/assert"
)

func TestIsClientDisconnect(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "nil error", err: nil, expected: false},
		{name: "direct context.Canceled", err: context.Canceled, expected: true},
		{name: "wrapped context.Canceled", err: fmt.Errorf("wrapped: %w", context.Canceled), expected: true},
		{name: "inside an internal app error", err: apperr.Internal("failed to list messages", context.Canceled), expected: true},
		{name: "deadline exceeded", err: context.DeadlineExceeded, expected: false},
		{name: "other error", err: errors.New("some other error"), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsClientDisconnect(tt.err))
		})
	}
}

func TestIsContextDone(t *testing.T) {
	assert.True(t, IsContextDone(context.Canceled))
	assert.True(t, IsContextDone(fmt.Errorf("query: %w", context.DeadlineExceeded)))
	assert.False(t, IsContextDone(errors.New("disk full")))
	assert.False(t, IsContextDone(nil))
}
