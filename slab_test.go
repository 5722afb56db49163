package ringmux

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlabTakeNeverReturnsZero(t *testing.T) {
	s := newSlab[string]()
	for i := 0; i < 5; i++ {
		idx := s.take("x")
		assert.NotZero(t, idx)
	}
}

func TestSlabTakePeekRelease(t *testing.T) {
	s := newSlab[int]()
	idx := s.take(42)
	assert.Equal(t, 42, s.peek(idx))
	assert.Equal(t, 1, s.len())

	got := s.release(idx)
	assert.Equal(t, 42, got)
	assert.Zero(t, s.len())
}

func TestSlabReusesFreedIndex(t *testing.T) {
	s := newSlab[int]()
	a := s.take(1)
	s.release(a)
	b := s.take(2)
	assert.Equal(t, a, b)
}

func TestSlabOverwriteKeepsSlotAllocated(t *testing.T) {
	s := newSlab[int]()
	idx := s.take(1)
	s.overwrite(idx, 99)
	assert.Equal(t, 99, s.peek(idx))
	assert.Equal(t, 1, s.len())
}

func TestSlabLenExcludesPlaceholder(t *testing.T) {
	s := newSlab[int]()
	assert.Zero(t, s.len())
}

func TestSlabReapStaleReleasesUnrepushedReuse(t *testing.T) {
	s := newSlab[int]()
	idx := s.take(1)
	s.overwrite(idx, 2)

	assert.Equal(t, 1, s.reapStale())
	assert.Zero(t, s.len())
	assert.Zero(t, s.reapStale(), "already-reaped slots must not be counted twice")
}

func TestSlabClearReusedPreventsReap(t *testing.T) {
	s := newSlab[int]()
	idx := s.take(1)
	s.overwrite(idx, 2)
	s.clearReused(idx)

	assert.Zero(t, s.reapStale())
	assert.Equal(t, 1, s.len(), "a retagged slot must survive the reap")
}
