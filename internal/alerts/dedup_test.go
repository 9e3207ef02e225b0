// FilePath: internal/alerts/dedup_test.go
package alerts

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlertKey(t *testing.T) {
	assert.Equal(t, "alert_iot_rd_abc123", AlertKey("rd_abc123"))
}

func TestMemoryDeduplicatorSuppressesWithinWindow(t *testing.T) {
	d := NewMemoryDeduplicator(0)
	ctx := context.Background()

	ok, err := d.Acquire(ctx, "alert_iot_1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = d.Acquire(ctx, "alert_iot_1", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	// A different reading is an independent window.
	ok, err = d.Acquire(ctx, "alert_iot_2", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryDeduplicatorExpiry(t *testing.T) {
	d := NewMemoryDeduplicator(0)
	ctx := context.Background()

	ok, err := d.Acquire(ctx, "alert_iot_1", 10*time.Millisecond)
	require.NoError(t, err)
	assert.True(t, ok)

	time.Sleep(20 * time.Millisecond)

	ok, err = d.Acquire(ctx, "alert_iot_1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "expired key must be acquirable again")
}

func TestMemoryDeduplicatorEmptyKey(t *testing.T) {
	d := NewMemoryDeduplicator(0)

	ok, err := d.Acquire(context.Background(), "", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = d.Acquire(context.Background(), "", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "empty keys are never suppressed")
}
