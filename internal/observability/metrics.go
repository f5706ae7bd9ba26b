package observability

import (
	"sync"
)

// Metrics provides basic in-memory counters for engine activity.
type Metrics struct {
	mu                sync.Mutex
	filesLoaded       int64
	rowsNormalized    int64
	dateParseFailures map[string]int64
	queryCount        map[string]int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		dateParseFailures: make(map[string]int64),
		queryCount:        make(map[string]int64),
	}
}

// RecordLoad counts a successful file load and its normalized rows.
func (m *Metrics) RecordLoad(rows int) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.filesLoaded++
	m.rowsNormalized += int64(rows)
}

// RecordDateParseFailures adds per-column unparseable date counts.
func (m *Metrics) RecordDateParseFailures(column string, count int) {
	if m == nil || count == 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dateParseFailures[column] += int64(count)
}

// RecordQuery increments the counter for a named query or aggregation.
func (m *Metrics) RecordQuery(name string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queryCount[name]++
}

// Snapshot returns copies of the current counter values.
func (m *Metrics) Snapshot() (filesLoaded, rowsNormalized int64, parseFailures, queries map[string]int64) {
	if m == nil {
		return 0, 0, nil, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	parseFailures = make(map[string]int64, len(m.dateParseFailures))
	for k, v := range m.dateParseFailures {
		parseFailures[k] = v
	}
	queries = make(map[string]int64, len(m.queryCount))
	for k, v := range m.queryCount {
		queries[k] = v
	}
	return m.filesLoaded, m.rowsNormalized, parseFailures, queries
}
