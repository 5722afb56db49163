package ringmux

import (
	"sync/atomic"
	"time"
)

// Metrics tracks operational statistics for a Mux's event loop: how many
// SQEs were pushed and completed, how often the backlog had to absorb an
// SQ-full condition, how many Warn control-flow results were produced
// (one counter for the whole Mux, not per slot), and how many slab slots were marked "reused" by OnCompletion
// but never resubmitted (see the Open Questions in SPEC_FULL.md §9).
type Metrics struct {
	Pushed          atomic.Uint64 // SQEs successfully pushed to the SQ
	BacklogSpills   atomic.Uint64 // pushes diverted to the backlog
	BacklogDrained  atomic.Uint64 // entries moved from backlog to SQ
	Completions     atomic.Uint64 // CQEs dispatched to a handler
	DroppedZero     atomic.Uint64 // CQEs with a zero token, silently discarded
	Warnings        atomic.Uint64 // Warn control-flow results
	TeardownErrors  atomic.Uint64 // OnTeardownCompletion failures
	ReusedNoPush    atomic.Uint64 // slab slots reused but never resubmitted
	MaxInFlight     atomic.Uint64 // highest in-flight count sampled after each completion and at the end of Run; the count right after a push is not sampled

	StartTime atomic.Int64 // UnixNano when NewMetrics was called
	StopTime  atomic.Int64 // UnixNano when Stop was called, 0 if still running
}

// NewMetrics creates a zeroed metrics instance with StartTime set to now.
func NewMetrics() *Metrics {
	m := &Metrics{}
	m.StartTime.Store(time.Now().UnixNano())
	return m
}

func (m *Metrics) recordPush()           { m.Pushed.Add(1) }
func (m *Metrics) recordBacklogSpill()   { m.BacklogSpills.Add(1) }
func (m *Metrics) recordBacklogDrained() { m.BacklogDrained.Add(1) }
func (m *Metrics) recordCompletion()     { m.Completions.Add(1) }
func (m *Metrics) recordDroppedZero()    { m.DroppedZero.Add(1) }
func (m *Metrics) recordWarning()        { m.Warnings.Add(1) }
func (m *Metrics) recordTeardownError()  { m.TeardownErrors.Add(1) }
func (m *Metrics) recordReusedNoPush()   { m.ReusedNoPush.Add(1) }

func (m *Metrics) recordInFlight(n int) {
	for {
		cur := m.MaxInFlight.Load()
		if uint64(n) <= cur {
			return
		}
		if m.MaxInFlight.CompareAndSwap(cur, uint64(n)) {
			return
		}
	}
}

// Stop marks the ring as no longer running; Snapshot().UptimeNs freezes
// at this point rather than continuing to advance.
func (m *Metrics) Stop() {
	m.StopTime.Store(time.Now().UnixNano())
}

// Snapshot is a point-in-time, non-atomic copy of Metrics suitable for
// logging or exporting.
type Snapshot struct {
	Pushed         uint64
	BacklogSpills  uint64
	BacklogDrained uint64
	Completions    uint64
	DroppedZero    uint64
	Warnings       uint64
	TeardownErrors uint64
	ReusedNoPush   uint64
	MaxInFlight    uint64
	UptimeNs       uint64
}

// Snapshot copies the current counter values.
func (m *Metrics) Snapshot() Snapshot {
	snap := Snapshot{
		Pushed:         m.Pushed.Load(),
		BacklogSpills:  m.BacklogSpills.Load(),
		BacklogDrained: m.BacklogDrained.Load(),
		Completions:    m.Completions.Load(),
		DroppedZero:    m.DroppedZero.Load(),
		Warnings:       m.Warnings.Load(),
		TeardownErrors: m.TeardownErrors.Load(),
		ReusedNoPush:   m.ReusedNoPush.Load(),
		MaxInFlight:    m.MaxInFlight.Load(),
	}

	start := m.StartTime.Load()
	if stop := m.StopTime.Load(); stop > 0 {
		snap.UptimeNs = uint64(stop - start)
	} else {
		snap.UptimeNs = uint64(time.Now().UnixNano() - start)
	}
	return snap
}

// Reset zeroes all counters and restarts the uptime clock. Useful in tests
// that reuse one Metrics across several Mux runs.
func (m *Metrics) Reset() {
	m.Pushed.Store(0)
	m.BacklogSpills.Store(0)
	m.BacklogDrained.Store(0)
	m.Completions.Store(0)
	m.DroppedZero.Store(0)
	m.Warnings.Store(0)
	m.TeardownErrors.Store(0)
	m.ReusedNoPush.Store(0)
	m.MaxInFlight.Store(0)
	m.StartTime.Store(time.Now().UnixNano())
	m.StopTime.Store(0)
}

// Observer lets callers plug in their own metrics backend instead of (or
// alongside) the built-in Metrics. All methods must be safe to call from
// the event loop goroutine only — the Mux never calls an Observer from
// more than one goroutine, but implementations that fan out to a shared
// backend (e.g. a process-wide Prometheus registry) must still be safe
// for concurrent use by other parts of the host program.
type Observer interface {
	ObservePush()
	ObserveBacklogSpill()
	ObserveBacklogDrained()
	ObserveCompletion()
	ObserveDroppedZero()
	ObserveWarning()
	ObserveTeardownError()
	ObserveReusedNoPush()
	ObserveInFlight(n int)
}

// NoOpObserver discards every observation. It is the default when no
// Observer is configured via Option.
type NoOpObserver struct{}

func (NoOpObserver) ObservePush()           {}
func (NoOpObserver) ObserveBacklogSpill()   {}
func (NoOpObserver) ObserveBacklogDrained() {}
func (NoOpObserver) ObserveCompletion()     {}
func (NoOpObserver) ObserveDroppedZero()    {}
func (NoOpObserver) ObserveWarning()        {}
func (NoOpObserver) ObserveTeardownError()  {}
func (NoOpObserver) ObserveReusedNoPush()   {}
func (NoOpObserver) ObserveInFlight(int)    {}

// MetricsObserver adapts the built-in Metrics to the Observer interface.
type MetricsObserver struct {
	metrics *Metrics
}

// NewMetricsObserver returns an Observer that records into m.
func NewMetricsObserver(m *Metrics) *MetricsObserver {
	return &MetricsObserver{metrics: m}
}

func (o *MetricsObserver) ObservePush()           { o.metrics.recordPush() }
func (o *MetricsObserver) ObserveBacklogSpill()   { o.metrics.recordBacklogSpill() }
func (o *MetricsObserver) ObserveBacklogDrained() { o.metrics.recordBacklogDrained() }
func (o *MetricsObserver) ObserveCompletion()     { o.metrics.recordCompletion() }
func (o *MetricsObserver) ObserveDroppedZero()    { o.metrics.recordDroppedZero() }
func (o *MetricsObserver) ObserveWarning()        { o.metrics.recordWarning() }
func (o *MetricsObserver) ObserveTeardownError()  { o.metrics.recordTeardownError() }
func (o *MetricsObserver) ObserveReusedNoPush()   { o.metrics.recordReusedNoPush() }
func (o *MetricsObserver) ObserveInFlight(n int)  { o.metrics.recordInFlight(n) }

var (
	_ Observer = (*MetricsObserver)(nil)
	_ Observer = (*NoOpObserver)(nil)
)
