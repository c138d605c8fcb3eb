package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorUnwrapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{
			name:     "not found",
			err:      NewNotFoundError("book", "vol-1"),
			sentinel: ErrNotFound,
		},
		{
			name:     "already exists",
			err:      NewAlreadyExistsError("user", "reader"),
			sentinel: ErrAlreadyExists,
		},
		{
			name:     "validation",
			err:      NewValidationError("title", "title is required"),
			sentinel: ErrInvalidInput,
		},
		{
			name:     "external API",
			err:      NewExternalAPIError("GoogleBooks", 503, "backend offline", nil),
			sentinel: ErrServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.sentinel)

			// Wrapping preserves the sentinel.
			wrapped := fmt.Errorf("outer: %w", tt.err)
			assert.ErrorIs(t, wrapped, tt.sentinel)
		})
	}
}

func TestExternalAPIError_Fields(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewExternalAPIError("GoogleBooks", 502, "bad gateway", cause)

	var apiErr *ExternalAPIError
	require.ErrorAs(t, fmt.Errorf("search failed: %w", err), &apiErr)
	assert.Equal(t, "GoogleBooks", apiErr.Source)
	assert.Equal(t, 502, apiErr.StatusCode)
	assert.Equal(t, cause, apiErr.Cause)
	assert.Contains(t, apiErr.Error(), "status 502")
}

func TestNotFoundError_Message(t *testing.T) {
	err := NewNotFoundError("recommendation", "a1b2")
	assert.Equal(t, "recommendation not found: a1b2", err.Error())
}
