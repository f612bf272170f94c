// Package collector reads the cumulative network byte counters the sampler
// turns into throughput.
package collector

import "context"

// CounterReader reports the cumulative bytes sent and received since boot
// (or since the last interface reset).
type CounterReader interface {
	// Name returns the identifier used in log fields.
	Name() string

	// ReadCounters returns the current cumulative totals.
	// The context allows for cancellation and timeout control.
	ReadCounters(ctx context.Context) (sent, recv uint64, err error)
}
