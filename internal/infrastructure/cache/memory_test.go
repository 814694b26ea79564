package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryReportCache(t *testing.T) {
	ctx := context.Background()

	t.Run("get returns stored payload", func(t *testing.T) {
		c := NewInMemoryReportCache()
		defer c.Close()

		require.NoError(t, c.Set(ctx, "report:risk:t1", []byte(`{"ok":true}`), time.Minute))

		payload, ok, err := c.Get(ctx, "report:risk:t1")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []byte(`{"ok":true}`), payload)
	})

	t.Run("miss on unknown key", func(t *testing.T) {
		c := NewInMemoryReportCache()
		defer c.Close()

		_, ok, err := c.Get(ctx, "report:risk:missing")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("expired entry is a miss", func(t *testing.T) {
		c := NewInMemoryReportCache()
		defer c.Close()

		require.NoError(t, c.Set(ctx, "report:risk:t1", []byte("x"), -time.Second))

		_, ok, err := c.Get(ctx, "report:risk:t1")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("invalidate removes keys", func(t *testing.T) {
		c := NewInMemoryReportCache()
		defer c.Close()

		tenantID := uuid.New()
		for _, key := range ReportKeys(tenantID) {
			require.NoError(t, c.Set(ctx, key, []byte("x"), time.Minute))
		}
		assert.Equal(t, 3, c.Size())

		require.NoError(t, c.Invalidate(ctx, ReportKeys(tenantID)...))
		assert.Equal(t, 0, c.Size())
	})

	t.Run("invalidating a missing key is not an error", func(t *testing.T) {
		c := NewInMemoryReportCache()
		defer c.Close()

		assert.NoError(t, c.Invalidate(ctx, "report:health:missing"))
	})

	t.Run("cleanup drops expired entries", func(t *testing.T) {
		c := NewInMemoryReportCache()
		defer c.Close()

		require.NoError(t, c.Set(ctx, "stale", []byte("x"), -time.Second))
		require.NoError(t, c.Set(ctx, "fresh", []byte("x"), time.Minute))

		c.cleanup()

		assert.Equal(t, 1, c.Size())
	})

	t.Run("close is idempotent", func(t *testing.T) {
		c := NewInMemoryReportCache()
		require.NoError(t, c.Close())
		require.NoError(t, c.Close())
	})
}

func TestReportKeys(t *testing.T) {
	tenantID := uuid.New()
	now := time.Now().UTC()

	keys := ReportKeys(tenantID)
	assert.Equal(t, []string{
		RiskReportKey(tenantID, now),
		ForecastReportKey(tenantID, now),
		HealthReportKey(tenantID, now),
	}, keys)

	other := uuid.New()
	assert.NotEqual(t, RiskReportKey(tenantID, now), RiskReportKey(other, now))

	// Same tenant, different as-of dates must never share an entry
	assert.NotEqual(t,
		RiskReportKey(tenantID, now),
		RiskReportKey(tenantID, now.AddDate(0, 0, -1)))
}
