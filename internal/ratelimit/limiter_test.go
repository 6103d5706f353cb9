package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitWithinBurst(t *testing.T) {
	l := New(10, time.Second)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		require.NoError(t, l.Wait(ctx))
	}

	snap := l.Snapshot()
	assert.Equal(t, int64(10), snap.TotalWaits)
	assert.Equal(t, int64(10), snap.WeightSpent)
	assert.Equal(t, int64(0), snap.DeniedWaits)
}

func TestWaitNConsumesWeight(t *testing.T) {
	l := New(10, time.Second)
	ctx := context.Background()

	require.NoError(t, l.WaitN(ctx, 5))
	require.NoError(t, l.WaitN(ctx, 5))

	// Bucket is drained; the next request must block past cancellation.
	cancelCtx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	err := l.Wait(cancelCtx)
	assert.Error(t, err)

	snap := l.Snapshot()
	assert.Equal(t, int64(1), snap.DeniedWaits)
}

func TestWaitNClampsOversizedWeight(t *testing.T) {
	l := New(5, time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	// Weight above burst is clamped to the full bucket instead of erroring.
	assert.NoError(t, l.WaitN(ctx, 50))
}

func TestWaitBlocksWhenExhausted(t *testing.T) {
	l := New(1, time.Second)
	ctx := context.Background()

	require.NoError(t, l.Wait(ctx))

	start := time.Now()
	cancelCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	err := l.Wait(cancelCtx)
	assert.Error(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 15*time.Millisecond)
}

func TestBucketsAreIndependent(t *testing.T) {
	l := New(1, time.Second)
	ctx := context.Background()

	require.NoError(t, l.Wait(ctx))

	// Draining the global limit must not affect the orders bucket.
	require.NoError(t, l.WaitBucket(ctx, "orders"))

	snap := l.Snapshot()
	assert.Equal(t, int32(1), snap.BucketCount)
}

func TestSetBucketLimit(t *testing.T) {
	l := New(100, time.Second)
	l.SetBucketLimit("orders", 2, time.Second)
	ctx := context.Background()

	require.NoError(t, l.WaitBucket(ctx, "orders"))
	require.NoError(t, l.WaitBucket(ctx, "orders"))

	cancelCtx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	assert.Error(t, l.WaitBucket(cancelCtx, "orders"))
}
