package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestIDContext(t *testing.T) {
	t.Run("stores and retrieves request ID", func(t *testing.T) {
		ctx := context.Background()
		ctx = WithRequestID(ctx, "req-123")

		result := RequestIDFromContext(ctx)
		assert.Equal(t, "req-123", result)
	})

	t.Run("returns empty string when not set", func(t *testing.T) {
		ctx := context.Background()
		result := RequestIDFromContext(ctx)
		assert.Equal(t, "", result)
	})
}

func TestUserIDContext(t *testing.T) {
	t.Run("stores and retrieves user ID", func(t *testing.T) {
		ctx := context.Background()
		ctx = WithUserID(ctx, "user-456")

		result := UserIDFromContext(ctx)
		assert.Equal(t, "user-456", result)
	})

	t.Run("returns empty string when not set", func(t *testing.T) {
		ctx := context.Background()
		result := UserIDFromContext(ctx)
		assert.Equal(t, "", result)
	})
}

func TestContextChaining(t *testing.T) {
	ctx := context.Background()

	ctx = WithRequestID(ctx, "req-1")
	ctx = WithUserID(ctx, "user-1")

	assert.Equal(t, "req-1", RequestIDFromContext(ctx))
	assert.Equal(t, "user-1", UserIDFromContext(ctx))
}

func TestContextOverwrite(t *testing.T) {
	ctx := context.Background()

	ctx = WithRequestID(ctx, "req-1")
	ctx = WithRequestID(ctx, "req-2")

	assert.Equal(t, "req-2", RequestIDFromContext(ctx))
}
