package observability

import (
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// AdapterStats is a point-in-time copy of one adapter's counters.
type AdapterStats struct {
	Adapter  string
	Received uint64
	Handled  uint64
	Failed   uint64
	Other    uint64
	QueueLen int
	QueueCap int
}

// ProcessStats is the latest self sample taken by the heartbeat.
type ProcessStats struct {
	RSSBytes   uint64
	CPUPercent float64
	Status     string
	Goroutines int
	SampledAt  time.Time
}

type adapterCounters struct {
	received atomic.Uint64
	handled  atomic.Uint64
	failed   atomic.Uint64
	other    atomic.Uint64
	queueLen  atomic.Int64
	queueCap  atomic.Int64
	saturated atomic.Bool
}

// Monitor keeps per-adapter counters for the drain side and the latest
// process sample. Counters are atomic, the map itself is guarded.
type Monitor struct {
	log      *slog.Logger
	mu       sync.RWMutex
	adapters map[string]*adapterCounters
	process  ProcessStats
}

func NewMonitor(log *slog.Logger) *Monitor {
	return &Monitor{
		log:      log,
		adapters: make(map[string]*adapterCounters),
	}
}

func (m *Monitor) counters(adapter string) *adapterCounters {
	m.mu.RLock()
	c, ok := m.adapters[adapter]
	m.mu.RUnlock()
	if ok {
		return c
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok = m.adapters[adapter]; !ok {
		c = &adapterCounters{}
		m.adapters[adapter] = c
	}
	return c
}

func (m *Monitor) IncrReceived(adapter string) { m.counters(adapter).received.Add(1) }

func (m *Monitor) IncrHandled(adapter string) { m.counters(adapter).handled.Add(1) }

func (m *Monitor) IncrFailed(adapter string) { m.counters(adapter).failed.Add(1) }

func (m *Monitor) IncrOther(adapter string) { m.counters(adapter).other.Add(1) }

// UpdateQueue records a queue sample. Entering and leaving saturation is
// logged once per transition.
func (m *Monitor) UpdateQueue(adapter string, length, capacity int) {
	c := m.counters(adapter)
	c.queueLen.Store(int64(length))
	c.queueCap.Store(int64(capacity))

	full := capacity > 0 && length >= capacity
	if c.saturated.CompareAndSwap(!full, full) {
		if full {
			m.log.Debug("Adapter queue saturated", "adapter", adapter, "len", length, "cap", capacity)
		} else {
			m.log.Debug("Adapter queue drained", "adapter", adapter, "len", length, "cap", capacity)
		}
	}
}

func (m *Monitor) UpdateProcess(stats ProcessStats) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.process = stats
}

func (m *Monitor) Process() ProcessStats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.process
}

// Stats returns the counters of one adapter. Unknown adapters read as zero.
func (m *Monitor) Stats(adapter string) AdapterStats {
	m.mu.RLock()
	c, ok := m.adapters[adapter]
	m.mu.RUnlock()
	if !ok {
		return AdapterStats{Adapter: adapter}
	}
	return c.snapshot(adapter)
}

// Snapshot returns every adapter's counters sorted by adapter name.
func (m *Monitor) Snapshot() []AdapterStats {
	m.mu.RLock()
	stats := make([]AdapterStats, 0, len(m.adapters))
	for name, c := range m.adapters {
		stats = append(stats, c.snapshot(name))
	}
	m.mu.RUnlock()

	sort.Slice(stats, func(i, j int) bool { return stats[i].Adapter < stats[j].Adapter })
	return stats
}

func (c *adapterCounters) snapshot(name string) AdapterStats {
	return AdapterStats{
		Adapter:  name,
		Received: c.received.Load(),
		Handled:  c.handled.Load(),
		Failed:   c.failed.Load(),
		Other:    c.other.Load(),
		QueueLen: int(c.queueLen.Load()),
		QueueCap: int(c.queueCap.Load()),
	}
}
