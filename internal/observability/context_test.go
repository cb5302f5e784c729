package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestIDFromContext(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-123")
	assert.Equal(t, "req-123", RequestIDFromContext(ctx))

	assert.Empty(t, RequestIDFromContext(context.Background()))

	// Overwriting keeps the innermost value.
	inner := WithRequestID(ctx, "req-456")
	assert.Equal(t, "req-456", RequestIDFromContext(inner))
	assert.Equal(t, "req-123", RequestIDFromContext(ctx))
}
