package ringmux

import (
	"errors"

	"github.com/behrlich/ringmux/internal/uring"
)

var errBatchLengthMismatch = errors.New("ringmux: PushBatch builds and data must be the same length")

// SQEBuilder prepares one submission against ring and returns the prepared
// entry. It is re-invoked by the backlog drain, so it must not assume it
// runs exactly once.
type SQEBuilder func(ring uring.Ring) (uring.SQE, error)

// Submitter is the capability handed to a slot's Handler callbacks. It is
// bound to one slot for the Mux's whole lifetime — logically "constructed
// per-call" per the distilled design, but since it carries no per-call
// state beyond the slot binding, constructing it once is observationally
// identical and avoids per-completion allocation.
type Submitter[D any] struct {
	mux     *Mux
	slotIdx uint16
	slab    *slab[D]
}

// Push tags build's entry with a fresh token for data and enqueues it,
// spilling to the backlog on SQ-full.
func (s *Submitter[D]) Push(build SQEBuilder, data D) error {
	idx := s.slab.take(data)
	token := encodeOp(s.slotIdx, idx)
	if err := s.mux.enqueueOne(token, build); err != nil {
		s.slab.release(idx)
		return err
	}
	return nil
}

// PushBatch tags each build in builds with a fresh token for the
// corresponding data and enqueues them as one unit: either all enter the
// SQ, or the whole batch becomes a single backlog entry, or the call
// returns a PushError and takes nothing. builds and data must be the same
// length.
func (s *Submitter[D]) PushBatch(builds []SQEBuilder, data []D) error {
	if len(builds) != len(data) {
		return newError(KindPush, "", errBatchLengthMismatch)
	}
	entries := make([]backlogEntry, len(builds))
	idxs := make([]uint32, len(builds))
	for i := range builds {
		idxs[i] = s.slab.take(data[i])
		entries[i] = backlogEntry{token: encodeOp(s.slotIdx, idxs[i]), build: builds[i]}
	}
	if err := s.mux.enqueueBatch(entries); err != nil {
		for _, idx := range idxs {
			s.slab.release(idx)
		}
		return err
	}
	return nil
}

// PushRaw enqueues build with user-data left at zero: its completion will
// be silently dropped and no handler callback fires for it.
func (s *Submitter[D]) PushRaw(build SQEBuilder) error {
	return s.mux.enqueueOne(0, build)
}

// PushRawToken enqueues build carrying a token produced by a sibling
// submitter of the same Mux (for example, cqe.Token passed back in to
// implement the resubmission optimization of §4.5). The caller is
// responsible for the invariants of §3: only push a token you are entitled
// to reuse.
func (s *Submitter[D]) PushRawToken(build SQEBuilder, token uint64) error {
	return s.mux.enqueueOne(token, build)
}
