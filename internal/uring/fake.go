package uring

import (
	"fmt"
	"time"
)

type fakeOpKind int

const (
	fakeOpNop fakeOpKind = iota
	fakeOpTimeout
	fakeOpCancelAll
)

type fakeSQE struct {
	kind         fakeOpKind
	userData     uint64
	drain        bool
	timeoutCount uint32
}

func (s *fakeSQE) SetUserData(token uint64) { s.userData = token }
func (s *fakeSQE) SetDrainFlag()            { s.drain = true }

type armedTimeout struct {
	sqe     *fakeSQE
	armedAt uint64
}

// cqeResCancelled is the Res value attached to every submission
// force-completed by a cancel-all, standing in for -ECANCELED without
// pulling in an OS-specific errno constant.
const cqeResCancelled int32 = -125

// FakeRing is an in-memory Ring used by tests that exercise the event loop
// without a kernel. It has no real clock: a plain timeout (count == 0)
// completes on the submit-wait cycle after the one that staged it, and a
// counted timeout (count > 0) completes once that many other completions
// have been observed — close enough to the real
// IORING_TIMEOUT_ETIME_SUCCESS "counted completion" semantics the drain
// barrier relies on to exercise the dispatch code deterministically. A
// cancel-all force-completes every timeout armed strictly before it in
// submission order, mirroring IORING_OP_ASYNC_CANCEL rather than silently
// ignoring outstanding work.
type FakeRing struct {
	capacity      uint32
	pending       []*fakeSQE
	ready         []CQE
	armedTimeouts []armedTimeout
	totalObserved uint64
	closed        bool
}

// NewFakeRing returns a FakeRing with the given SQ/CQ capacity.
func NewFakeRing(capacity uint32) *FakeRing {
	return &FakeRing{capacity: capacity}
}

func (r *FakeRing) SQSpace() uint32 {
	return r.capacity - uint32(len(r.pending))
}

func (r *FakeRing) prepare(kind fakeOpKind, count uint32) (SQE, error) {
	if r.SQSpace() == 0 {
		return nil, ErrSQFull
	}
	sqe := &fakeSQE{kind: kind, timeoutCount: count}
	r.pending = append(r.pending, sqe)
	return sqe, nil
}

func (r *FakeRing) PrepareNop() (SQE, error) { return r.prepare(fakeOpNop, 0) }

func (r *FakeRing) PrepareTimeout(d time.Duration, count uint32) (SQE, error) {
	return r.prepare(fakeOpTimeout, count)
}

// PrepareAsyncCancelAll stages a cancel-all. Processed in submission order
// against whatever else is in the same batch: every timeout armed before it
// is force-completed as cancelled; anything submitted after it in the same
// batch (the shutdown coordinator's own drain barrier, always pushed next)
// is unaffected, matching the real kernel's in-order SQE processing.
func (r *FakeRing) PrepareAsyncCancelAll() (SQE, error) { return r.prepare(fakeOpCancelAll, 0) }

func (r *FakeRing) SubmitAndWait(minComplete uint32) (uint32, error) {
	submitted := r.pending
	r.pending = nil

	for _, sqe := range submitted {
		switch sqe.kind {
		case fakeOpNop:
			r.ready = append(r.ready, CQE{UserData: sqe.userData})
		case fakeOpCancelAll:
			r.forceCancelArmed()
			r.ready = append(r.ready, CQE{UserData: sqe.userData})
		case fakeOpTimeout:
			if sqe.timeoutCount == 0 {
				r.ready = append(r.ready, CQE{UserData: sqe.userData})
			} else {
				r.armedTimeouts = append(r.armedTimeouts, armedTimeout{sqe: sqe, armedAt: r.totalObserved})
			}
		}
	}

	if len(submitted) == 0 && len(r.ready) == 0 && len(r.armedTimeouts) == 0 {
		return 0, fmt.Errorf("uring: nothing staged and nothing to wait for")
	}
	return uint32(len(submitted)), nil
}

// forceCancelArmed force-completes every currently armed timeout with a
// cancelled result instead of leaving it stranded, the way a real
// IORING_OP_ASYNC_CANCEL forces outstanding requests to complete.
func (r *FakeRing) forceCancelArmed() {
	for _, at := range r.armedTimeouts {
		r.ready = append(r.ready, CQE{UserData: at.sqe.userData, Res: cqeResCancelled})
	}
	r.armedTimeouts = nil
}

func (r *FakeRing) PeekCQE() (CQE, bool) {
	if len(r.ready) == 0 {
		return CQE{}, false
	}
	return r.ready[0], true
}

func (r *FakeRing) SeenCQE() {
	if len(r.ready) == 0 {
		return
	}
	r.ready = r.ready[1:]
	r.totalObserved++

	var remaining []armedTimeout
	for _, at := range r.armedTimeouts {
		if r.totalObserved-at.armedAt >= uint64(at.sqe.timeoutCount) {
			r.ready = append(r.ready, CQE{UserData: at.sqe.userData})
		} else {
			remaining = append(remaining, at)
		}
	}
	r.armedTimeouts = remaining
}

func (r *FakeRing) Close() error {
	r.closed = true
	return nil
}

// Closed reports whether Close has been called, for test assertions.
func (r *FakeRing) Closed() bool { return r.closed }

var _ Ring = (*FakeRing)(nil)
