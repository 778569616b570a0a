// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Session verification
	IncSessionVerified(status string) // status: "ok" or "rejected"

	// Share grant lifecycle
	IncGrantIssued()
	IncGrantRevoked()
	IncShareResolved(status string) // status: "ok", "expired", "not_found"

	// Reaper sweeps
	IncGrantsReaped(count int64)
	ObserveSweepDuration(duration time.Duration)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
