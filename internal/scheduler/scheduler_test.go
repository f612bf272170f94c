package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Guliveer/netspeed/internal/models"
)

type countingSampler struct {
	calls    atomic.Int32
	inFlight atomic.Int32
	overlap  atomic.Bool
}

func (c *countingSampler) Sample(ctx context.Context) (models.RateSample, bool) {
	if c.inFlight.Add(1) > 1 {
		c.overlap.Store(true)
	}
	defer c.inFlight.Add(-1)
	c.calls.Add(1)
	return models.RateSample{DownloadKBps: 1}, true
}

func TestNew_DefaultInterval(t *testing.T) {
	s := New(&countingSampler{}, 0, zap.NewNop())
	require.Equal(t, DefaultInterval, s.Interval())

	s = New(&countingSampler{}, 250*time.Millisecond, zap.NewNop())
	require.Equal(t, 250*time.Millisecond, s.Interval())
}

func TestStart_TicksUntilCancelled(t *testing.T) {
	sampler := &countingSampler{}
	s := New(sampler, 5*time.Millisecond, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return sampler.calls.Load() >= 3 }, 2*time.Second, time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}
	require.False(t, sampler.overlap.Load())
}
