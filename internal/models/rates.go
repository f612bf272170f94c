// Package models defines the data structures shared between the sampler,
// the scheduler and whatever host renders the rates.
package models

import "time"

// NetworkCounterSnapshot is a point-in-time reading of the cumulative byte
// counters reported by the OS. Timestamp keeps Go's monotonic clock reading,
// so intervals between snapshots are immune to wall-clock adjustments.
type NetworkCounterSnapshot struct {
	BytesSent     uint64    `json:"bytes_sent"`
	BytesReceived uint64    `json:"bytes_received"`
	Timestamp     time.Time `json:"timestamp"`
}

// RateSample is the throughput computed from two consecutive snapshots.
type RateSample struct {
	DownloadKBps float64       `json:"download_kbps"`
	UploadKBps   float64       `json:"upload_kbps"`
	Interval     time.Duration `json:"interval"`
	Timestamp    time.Time     `json:"timestamp"`
}
