package correction

import "sync/atomic"

// Metrics holds the process-wide correction counters. A single instance is
// created at startup and passed by handle into the pipeline; counters reset
// only on process restart. All updates are atomic, so concurrent correction
// attempts never observe a torn read.
type Metrics struct {
	attempts      atomic.Int64
	deterministic atomic.Int64
	escalated     atomic.Int64
	failures      atomic.Int64
}

// NewMetrics creates a zeroed counter set.
func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) recordAttempt()       { m.attempts.Add(1) }
func (m *Metrics) recordDeterministic() { m.deterministic.Add(1) }
func (m *Metrics) recordEscalated()     { m.escalated.Add(1) }
func (m *Metrics) recordFailure()       { m.failures.Add(1) }

// Snapshot is the read-only view exposed at the monitoring boundary.
type Snapshot struct {
	TotalAttempts      int64   `json:"total_attempts"`
	TotalDeterministic int64   `json:"total_deterministic"`
	TotalLLM           int64   `json:"total_llm"`
	TotalFailures      int64   `json:"total_failures"`
	DeterministicRate  float64 `json:"deterministic_rate"`
}

// Snapshot returns a point-in-time copy of the counters with the derived
// deterministic rate.
func (m *Metrics) Snapshot() Snapshot {
	attempts := m.attempts.Load()
	deterministic := m.deterministic.Load()

	var rate float64
	if attempts > 0 {
		rate = float64(deterministic) / float64(attempts)
	}

	return Snapshot{
		TotalAttempts:      attempts,
		TotalDeterministic: deterministic,
		TotalLLM:           m.escalated.Load(),
		TotalFailures:      m.failures.Load(),
		DeterministicRate:  rate,
	}
}
