package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitEmptyEndpointIsNoOp(t *testing.T) {
	shutdown, err := Init(context.Background(), "walletsvc-test", "", true)
	require.NoError(t, err)
	require.NotNil(t, shutdown)

	assert.NoError(t, shutdown(context.Background()))
	// Shutdown stays safe to call twice.
	assert.NoError(t, shutdown(context.Background()))
}

func TestTracerReturnsNonNil(t *testing.T) {
	shutdown, err := Init(context.Background(), "walletsvc-test", "", true)
	require.NoError(t, err)
	defer shutdown(context.Background())

	assert.NotNil(t, Tracer("wallet-aggregator"))
}
