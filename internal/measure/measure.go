// Package measure collects wall-clock timings for the analysis passes.
// Each pass owns one Metric; workers feed it per-block durations and the
// analyzer reads the aggregates back for its debug summary.
package measure

import (
	"sync"
	"time"
)

// Measure is the registry of pass metrics for a single run.
type Measure struct {
	mu      sync.Mutex
	order   []string
	metrics map[string]*Metric
}

func New() *Measure {
	return &Measure{
		metrics: make(map[string]*Metric),
	}
}

// Metric returns the metric registered under name, creating it on first
// use.
func (m *Measure) Metric(name string) *Metric {
	m.mu.Lock()
	defer m.mu.Unlock()

	if mt, ok := m.metrics[name]; ok {
		return mt
	}

	mt := &Metric{name: name}
	m.metrics[name] = mt
	m.order = append(m.order, name)

	return mt
}

// Metrics returns every registered metric in registration order.
func (m *Measure) Metrics() []*Metric {
	m.mu.Lock()
	defer m.mu.Unlock()

	all := make([]*Metric, 0, len(m.order))
	for _, name := range m.order {
		all = append(all, m.metrics[name])
	}

	return all
}

// Metric accumulates the per-block durations of one pass. All methods are
// safe for concurrent use.
type Metric struct {
	mu      sync.Mutex
	name    string
	total   int64
	elapsed time.Duration
	wall    time.Duration
}

func (mt *Metric) Name() string {
	return mt.name
}

func (mt *Metric) AddDuration(elapsed time.Duration) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.total++
	mt.elapsed += elapsed
}

// Count returns how many durations have been recorded.
func (mt *Metric) Count() int64 {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	return mt.total
}

// AVGDuration returns the mean recorded duration, rounded to a readable
// unit. Zero when nothing was recorded.
func (mt *Metric) AVGDuration() time.Duration {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	if mt.total == 0 {
		return time.Duration(0)
	}

	return round(time.Duration(float64(mt.elapsed) / float64(mt.total)))
}

// SetTotalDuration records the wall-clock span of the whole pass, which
// differs from the sum of block durations whenever blocks run concurrently.
func (mt *Metric) SetTotalDuration(endDuration time.Duration) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.wall = endDuration
}

func (mt *Metric) TotalDuration() time.Duration {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	return round(mt.wall)
}

func round(d time.Duration) time.Duration {
	switch {
	case d > time.Hour:
		d = d.Round(time.Minute)
	case d > time.Minute:
		d = d.Round(time.Second)
	case d > time.Second:
		d = d.Round(10 * time.Millisecond)
	case d > time.Millisecond:
		d = d.Round(time.Microsecond)
	}

	return d
}
