package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncSessionVerified is a no-op.
func (n *NoopRecorder) IncSessionVerified(status string) {}

// IncGrantIssued is a no-op.
func (n *NoopRecorder) IncGrantIssued() {}

// IncGrantRevoked is a no-op.
func (n *NoopRecorder) IncGrantRevoked() {}

// IncShareResolved is a no-op.
func (n *NoopRecorder) IncShareResolved(status string) {}

// IncGrantsReaped is a no-op.
func (n *NoopRecorder) IncGrantsReaped(count int64) {}

// ObserveSweepDuration is a no-op.
func (n *NoopRecorder) ObserveSweepDuration(duration time.Duration) {}
