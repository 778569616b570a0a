package metrics

import (
	"sync"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	SessionsVerified map[string]uint64
	GrantsIssued     uint64
	GrantsRevoked    uint64
	SharesResolved   map[string]uint64
	GrantsReaped     uint64
	SweepCount       uint64
	SweepTotalNs     int64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	mu               sync.Mutex
	sessionsVerified map[string]uint64
	grantsIssued     uint64
	grantsRevoked    uint64
	sharesResolved   map[string]uint64
	grantsReaped     uint64
	sweepCount       uint64
	sweepTotalNs     int64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{
		sessionsVerified: make(map[string]uint64),
		sharesResolved:   make(map[string]uint64),
	}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	sessions := make(map[string]uint64, len(m.sessionsVerified))
	for k, v := range m.sessionsVerified {
		sessions[k] = v
	}
	resolved := make(map[string]uint64, len(m.sharesResolved))
	for k, v := range m.sharesResolved {
		resolved[k] = v
	}

	return Snapshot{
		SessionsVerified: sessions,
		GrantsIssued:     m.grantsIssued,
		GrantsRevoked:    m.grantsRevoked,
		SharesResolved:   resolved,
		GrantsReaped:     m.grantsReaped,
		SweepCount:       m.sweepCount,
		SweepTotalNs:     m.sweepTotalNs,
	}
}

// IncSessionVerified increments the verification counter per status.
func (m *InMemoryRecorder) IncSessionVerified(status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessionsVerified[status]++
}

// IncGrantIssued increments the issued-grant counter.
func (m *InMemoryRecorder) IncGrantIssued() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.grantsIssued++
}

// IncGrantRevoked increments the revoked-grant counter.
func (m *InMemoryRecorder) IncGrantRevoked() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.grantsRevoked++
}

// IncShareResolved increments the resolution counter per status.
func (m *InMemoryRecorder) IncShareResolved(status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sharesResolved[status]++
}

// IncGrantsReaped adds the number of grants removed by a sweep.
func (m *InMemoryRecorder) IncGrantsReaped(count int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.grantsReaped += uint64(count)
}

// ObserveSweepDuration records one sweep execution.
func (m *InMemoryRecorder) ObserveSweepDuration(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweepCount++
	m.sweepTotalNs += duration.Nanoseconds()
}
