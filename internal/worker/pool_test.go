package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPoolRunsAndDrains(t *testing.T) {
	p := NewPool(3, zap.NewNop())
	var n atomic.Int32
	for i := 0; i < 50; i++ {
		require.NoError(t, p.Submit(func(context.Context) { n.Add(1) }))
	}
	require.NoError(t, p.Stop(context.Background()))
	assert.Equal(t, int32(50), n.Load())

	assert.ErrorIs(t, p.Submit(func(context.Context) {}), ErrStopped)
}

func TestPoolSurvivesPanic(t *testing.T) {
	p := NewPool(1, zap.NewNop())
	var ran atomic.Bool
	require.NoError(t, p.Submit(func(context.Context) { panic("boom") }))
	require.NoError(t, p.Submit(func(context.Context) { ran.Store(true) }))
	require.NoError(t, p.Stop(context.Background()))
	assert.True(t, ran.Load())
}

func TestPoolStopTimeoutCancelsTasks(t *testing.T) {
	p := NewPool(1, zap.NewNop())
	cancelled := make(chan struct{})
	require.NoError(t, p.Submit(func(ctx context.Context) {
		<-ctx.Done()
		close(cancelled)
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, p.Stop(ctx), context.DeadlineExceeded)

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("task context was not cancelled")
	}
}
