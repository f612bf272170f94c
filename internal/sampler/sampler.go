// Package sampler converts cumulative network byte counters into throughput.
// The host drives Sample on a fixed cadence; every successful sample is
// published to the registered observers and kept as the latest value.
package sampler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/Guliveer/netspeed/internal/collector"
	"github.com/Guliveer/netspeed/internal/models"
)

// ErrCounterUnavailable is returned by New when the initial counter read fails.
var ErrCounterUnavailable = errors.New("network counters unavailable")

// DefaultMinInterval is the shortest interval a rate is computed over.
// Calls closer together than this are ignored.
const DefaultMinInterval = 100 * time.Millisecond

const bytesPerKB = 1024.0

// Option configures a Sampler.
type Option func(*Sampler)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Sampler) { s.now = now }
}

// WithMinInterval overrides DefaultMinInterval.
func WithMinInterval(d time.Duration) Option {
	return func(s *Sampler) { s.minInterval = d }
}

type subscriber struct {
	id int
	fn func(models.RateSample)
}

// Sampler holds the last counter snapshot and computes rates against it.
// Sample must not be called concurrently with itself; Subscribe and Latest
// are safe from any goroutine.
type Sampler struct {
	reader      collector.CounterReader
	logger      *zap.Logger
	now         func() time.Time
	minInterval time.Duration

	last models.NetworkCounterSnapshot

	latest atomic.Pointer[models.RateSample]

	mu        sync.Mutex
	observers []subscriber
	nextID    int
}

// New reads the initial snapshot. A failure here means no rate can ever be
// computed, so the error wraps ErrCounterUnavailable.
func New(ctx context.Context, reader collector.CounterReader, logger *zap.Logger, opts ...Option) (*Sampler, error) {
	s := &Sampler{
		reader:      reader,
		logger:      logger.Named("sampler"),
		now:         time.Now,
		minInterval: DefaultMinInterval,
	}
	for _, opt := range opts {
		opt(s)
	}

	snap, err := s.read(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCounterUnavailable, err)
	}
	s.last = snap

	s.logger.Debug("Initial counters",
		zap.String("reader", reader.Name()),
		zap.Uint64("sent", snap.BytesSent),
		zap.Uint64("recv", snap.BytesReceived))
	return s, nil
}

// Subscribe registers fn to receive every published sample. Delivery is
// synchronous on the sampling goroutine, in registration order. The returned
// function removes the observer.
func (s *Sampler) Subscribe(fn func(models.RateSample)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.observers = append(s.observers, subscriber{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, o := range s.observers {
				if o.id == id {
					s.observers = append(s.observers[:i:i], s.observers[i+1:]...)
					return
				}
			}
		})
	}
}

// Latest returns the most recently published sample.
func (s *Sampler) Latest() (models.RateSample, bool) {
	p := s.latest.Load()
	if p == nil {
		return models.RateSample{}, false
	}
	return *p, true
}

// Sample reads fresh counters and computes the rate since the last snapshot.
// It returns false without publishing when the read fails or when less than
// the minimum interval has elapsed; the stored snapshot is left untouched in
// both cases so the next sample covers the whole gap.
func (s *Sampler) Sample(ctx context.Context) (models.RateSample, bool) {
	current, err := s.read(ctx)
	if err != nil {
		s.logger.Warn("Counter read failed, skipping sample",
			zap.String("reader", s.reader.Name()),
			zap.Error(err))
		return models.RateSample{}, false
	}

	dt := current.Timestamp.Sub(s.last.Timestamp)
	if dt < s.minInterval {
		s.logger.Debug("Sample interval too short, skipping",
			zap.Duration("dt", dt),
			zap.Duration("min", s.minInterval))
		return models.RateSample{}, false
	}

	seconds := dt.Seconds()
	sample := models.RateSample{
		UploadKBps:   float64(s.delta("sent", s.last.BytesSent, current.BytesSent)) / seconds / bytesPerKB,
		DownloadKBps: float64(s.delta("recv", s.last.BytesReceived, current.BytesReceived)) / seconds / bytesPerKB,
		Interval:     dt,
		Timestamp:    current.Timestamp,
	}
	s.last = current
	s.latest.Store(&sample)

	s.publish(sample)
	return sample, true
}

// delta returns cur-prev, or zero when the counter went backwards after an
// interface reset or wrap.
func (s *Sampler) delta(counter string, prev, cur uint64) uint64 {
	if cur < prev {
		s.logger.Warn("Counter went backwards, reporting zero throughput",
			zap.String("counter", counter),
			zap.Uint64("previous", prev),
			zap.Uint64("current", cur))
		return 0
	}
	return cur - prev
}

func (s *Sampler) read(ctx context.Context) (models.NetworkCounterSnapshot, error) {
	sent, recv, err := s.reader.ReadCounters(ctx)
	if err != nil {
		return models.NetworkCounterSnapshot{}, err
	}
	return models.NetworkCounterSnapshot{
		BytesSent:     sent,
		BytesReceived: recv,
		Timestamp:     s.now(),
	}, nil
}

func (s *Sampler) publish(sample models.RateSample) {
	s.mu.Lock()
	observers := make([]subscriber, len(s.observers))
	copy(observers, s.observers)
	s.mu.Unlock()

	for _, o := range observers {
		o.fn(sample)
	}
}
