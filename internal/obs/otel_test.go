package obs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"github.com/iliyamo/stadium-tickets/internal/config"
)

func TestInitTracer_Disabled(t *testing.T) {
	shutdown, err := InitTracer(context.Background(), config.OtelConfig{Enabled: false}, "test")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
	assert.NotNil(t, otel.GetTextMapPropagator())
}

func TestInitTracer_EnabledIsLazy(t *testing.T) {
	// grpc.NewClient does not connect up front, so an unreachable endpoint
	// still yields a working provider.
	shutdown, err := InitTracer(context.Background(), config.OtelConfig{
		Enabled: true, Endpoint: "127.0.0.1:1", ServiceName: "stadium-tickets-test",
	}, "test")
	require.NoError(t, err)

	_, span := otel.Tracer("test").Start(context.Background(), "noop")
	span.End()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = shutdown(ctx)
}
