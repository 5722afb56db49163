package ringmux

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetrics()
	obs := NewMetricsObserver(m)

	obs.ObservePush()
	obs.ObservePush()
	obs.ObserveBacklogSpill()
	obs.ObserveCompletion()
	obs.ObserveCompletion()
	obs.ObserveCompletion()
	obs.ObserveDroppedZero()
	obs.ObserveWarning()
	obs.ObserveTeardownError()
	obs.ObserveReusedNoPush()
	obs.ObserveInFlight(3)
	obs.ObserveInFlight(1)
	obs.ObserveInFlight(7)

	snap := m.Snapshot()
	assert.Equal(t, uint64(2), snap.Pushed)
	assert.Equal(t, uint64(1), snap.BacklogSpills)
	assert.Equal(t, uint64(3), snap.Completions)
	assert.Equal(t, uint64(1), snap.DroppedZero)
	assert.Equal(t, uint64(1), snap.Warnings)
	assert.Equal(t, uint64(1), snap.TeardownErrors)
	assert.Equal(t, uint64(1), snap.ReusedNoPush)
	assert.Equal(t, uint64(7), snap.MaxInFlight)
}

func TestMetricsReset(t *testing.T) {
	m := NewMetrics()
	m.recordPush()
	m.recordInFlight(5)

	m.Reset()

	snap := m.Snapshot()
	assert.Zero(t, snap.Pushed)
	assert.Zero(t, snap.MaxInFlight)
}

func TestNoOpObserverSatisfiesInterface(t *testing.T) {
	var o Observer = NoOpObserver{}
	o.ObservePush()
	o.ObserveInFlight(42)
}
