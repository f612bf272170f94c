// Package scheduler implements the tick-based trigger that drives sampling.
// It calls Sample at a fixed interval; results reach the host through the
// sampler's observers, never through the scheduler itself.
package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Guliveer/netspeed/internal/models"
)

// DefaultInterval is the reference sampling cadence.
const DefaultInterval = time.Second

// sampleTimeout bounds a single counter read so a stuck OS call cannot stall
// the loop forever.
const sampleTimeout = 5 * time.Second

// Sampler is the part of the rate sampler the scheduler drives.
type Sampler interface {
	Sample(ctx context.Context) (models.RateSample, bool)
}

// Scheduler triggers periodic sampling.
type Scheduler struct {
	sampler  Sampler
	interval time.Duration
	logger   *zap.Logger
}

// New creates a new Scheduler. A non-positive interval falls back to
// DefaultInterval.
func New(sampler Sampler, interval time.Duration, logger *zap.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{
		sampler:  sampler,
		interval: interval,
		logger:   logger.Named("scheduler"),
	}
}

// Interval returns the effective tick interval.
func (s *Scheduler) Interval() time.Duration { return s.interval }

// Start runs the sampling loop. It blocks until the context is cancelled.
// Exactly one Sample call is in flight at any time.
func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Debug("Sampling loop started", zap.Duration("interval", s.interval))

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("Sampling loop stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	sampleCtx, cancel := context.WithTimeout(ctx, sampleTimeout)
	defer cancel()

	if sample, ok := s.sampler.Sample(sampleCtx); ok {
		s.logger.Debug("Sampled",
			zap.Float64("download_kbps", sample.DownloadKBps),
			zap.Float64("upload_kbps", sample.UploadKBps))
	}
}
