package aggregate

import (
	"sync"
	"time"

	"jobradar/internal/logger"
)

// quality ratio below this triggers a selector-drift warning
const qualityAlertThreshold = 0.8

// SourceHealth is the cumulative per-source monitoring view exposed on the
// stats endpoint.
type SourceHealth struct {
	Attempts      int       `json:"attempts"`
	Successes     int       `json:"successes"`
	Failures      int       `json:"failures"`
	JobsFound     int       `json:"jobs_found"`
	LastSuccessAt time.Time `json:"last_success_at,omitempty"`
	LastError     string    `json:"last_error,omitempty"`
	LastErrorAt   time.Time `json:"last_error_at,omitempty"`
	// QualityRatio is admitted records over cards inspected for the most
	// recent successful pass; rejected cards are the ones missing a
	// mandatory field.
	QualityRatio float64 `json:"quality_ratio"`
}

// Monitor accumulates per-source counters across cycles. Safe for concurrent
// use by scrape workers.
type Monitor struct {
	mu      sync.Mutex
	log     *logger.Logger
	sources map[string]*SourceHealth
}

func NewMonitor() *Monitor {
	return &Monitor{
		log:     logger.New("SourceMonitor"),
		sources: map[string]*SourceHealth{},
	}
}

func (m *Monitor) get(source string) *SourceHealth {
	h, ok := m.sources[source]
	if !ok {
		h = &SourceHealth{}
		m.sources[source] = h
	}
	return h
}

// RecordSuccess registers a successful source pass. complete and total feed
// the quality ratio; a low ratio usually means the portal changed its markup
// and a selector set is partially matching.
func (m *Monitor) RecordSuccess(source string, jobsFound, complete, total int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	h := m.get(source)
	h.Attempts++
	h.Successes++
	h.JobsFound += jobsFound
	h.LastSuccessAt = time.Now()
	if total > 0 {
		h.QualityRatio = float64(complete) / float64(total)
	} else {
		h.QualityRatio = 1
	}
	if h.QualityRatio < qualityAlertThreshold {
		m.log.Warn().
			Str("source", source).
			Float64("quality_ratio", h.QualityRatio).
			Int("total", total).
			Msg("record quality below threshold, selectors may have drifted")
	}
}

// RecordFailure registers a failed source pass.
func (m *Monitor) RecordFailure(source string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	h := m.get(source)
	h.Attempts++
	h.Failures++
	if err != nil {
		h.LastError = err.Error()
	}
	h.LastErrorAt = time.Now()
}

// Snapshot returns a copy of the per-source health map.
func (m *Monitor) Snapshot() map[string]SourceHealth {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]SourceHealth, len(m.sources))
	for name, h := range m.sources {
		out[name] = *h
	}
	return out
}
