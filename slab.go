package ringmux

// slab is a dense arena of boxed payloads for one slot, indexed by a
// uint32 so the token codec can embed the index in the low 48 bits of a
// 64-bit word instead of a live pointer (SPEC_FULL.md §9: Go's GC can't
// track an object reachable only through a uint64 sitting in kernel-owned
// ring memory). Freed indices are recycled via a free list, so take/release
// are O(1) amortized.
type slab[D any] struct {
	entries []D
	used    []bool
	reused  []bool
	free    []uint32
}

func newSlab[D any]() *slab[D] {
	// Index 0 is never handed out: encodeOp(0, 0) == 0, the reserved
	// "zero token" sentinel (§3/§4.1), so slot 0's slab must not be able to
	// produce index 0 for a real allocation. Seeding one permanently-used
	// placeholder entry shifts every real allocation to index >= 1.
	var placeholder D
	return &slab[D]{entries: []D{placeholder}, used: []bool{true}, reused: []bool{false}}
}

// take stores data and returns a fresh slot index, reusing a freed one when
// available.
func (s *slab[D]) take(data D) uint32 {
	if n := len(s.free); n > 0 {
		idx := s.free[n-1]
		s.free = s.free[:n-1]
		s.entries[idx] = data
		s.used[idx] = true
		s.reused[idx] = false
		return idx
	}
	idx := uint32(len(s.entries))
	s.entries = append(s.entries, data)
	s.used = append(s.used, true)
	s.reused = append(s.reused, false)
	return idx
}

// peek returns the payload at idx without freeing the slot.
func (s *slab[D]) peek(idx uint32) D {
	return s.entries[idx]
}

// overwrite replaces the payload at idx in place; the slot stays allocated
// and is marked "reused, awaiting a fresh push" until clearReused retags it
// or reapStale sweeps it up.
func (s *slab[D]) overwrite(idx uint32, data D) {
	s.entries[idx] = data
	s.reused[idx] = true
}

// clearReused marks idx as retagged with a fresh push, per §9's
// reused-but-never-repushed tracking. An index this slab never handed out
// is ignored.
func (s *slab[D]) clearReused(idx uint32) {
	if int(idx) >= len(s.reused) {
		return
	}
	s.reused[idx] = false
}

// reapStale releases every slot still marked reused (overwritten by
// OnCompletion but never retagged with a fresh push before the boundary),
// returning how many were found.
func (s *slab[D]) reapStale() int {
	n := 0
	for idx, r := range s.reused {
		if r && s.used[idx] {
			s.release(uint32(idx))
			n++
		}
	}
	return n
}

// release returns the payload at idx and frees the slot for reuse.
func (s *slab[D]) release(idx uint32) D {
	data := s.entries[idx]
	var zero D
	s.entries[idx] = zero
	s.used[idx] = false
	s.reused[idx] = false
	s.free = append(s.free, idx)
	return data
}

// len reports how many slots are currently allocated, for leak diagnostics.
// The index-0 placeholder is never counted as live.
func (s *slab[D]) len() int {
	return len(s.entries) - 1 - len(s.free)
}
