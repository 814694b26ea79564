package telemetry_test

import (
	"context"
	"testing"

	"github.com/recoverly/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewTracerProvider(t *testing.T) {
	t.Run("disabled config yields a no-op provider", func(t *testing.T) {
		tp, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
			Enabled: false,
		}, zap.NewNop())

		require.NoError(t, err)
		assert.False(t, tp.IsEnabled())
		assert.NotNil(t, tp.Tracer("test"))
	})

	t.Run("disabled provider shuts down cleanly", func(t *testing.T) {
		tp, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
			Enabled: false,
		}, zap.NewNop())
		require.NoError(t, err)

		assert.NoError(t, tp.Shutdown(context.Background()))
		assert.NoError(t, tp.ForceFlush(context.Background()))
	})
}
