package ringmux

import "errors"

// errBacklogFull is returned by backlog.push when the backlog is capped and
// the incoming batch would exceed that cap; the batch is not taken.
var errBacklogFull = errors.New("ringmux: backlog full")

// backlogEntry is one SQE awaiting space in the SQ: its already-encoded
// token plus the builder that will (re-)prepare the submission once room
// exists. Builders are re-invoked rather than cached as prepared SQEs
// because a prepared entry is only valid until the next submit cycle on a
// real ring.
type backlogEntry struct {
	token uint64
	build SQEBuilder
}

// backlog is a FIFO of batches (SQE builders that must enter the SQ
// together or not at all) that overflowed the SQ at push time. Drained
// opportunistically, head-first, preserving submission order.
type backlog struct {
	batches [][]backlogEntry
	limit   int // -1 means uncapped
	size    int
}

// newBacklog returns an empty backlog. A negative limit means uncapped;
// any overflow is accepted.
func newBacklog(limit int) *backlog {
	return &backlog{limit: limit}
}

func (b *backlog) push(entries []backlogEntry) error {
	if b.limit >= 0 && b.size+len(entries) > b.limit {
		return errBacklogFull
	}
	b.batches = append(b.batches, entries)
	b.size += len(entries)
	return nil
}

func (b *backlog) empty() bool { return len(b.batches) == 0 }

func (b *backlog) len() int { return b.size }

// drain moves whole batches into the ring while space allows, via tag
// (which (re-)builds and tags each entry). It stops at the first batch that
// doesn't fit, restoring nothing since that batch was never removed. It
// returns the number of entries moved.
func (b *backlog) drain(space func() uint32, tag func(backlogEntry) error) (int, error) {
	moved := 0
	for len(b.batches) > 0 {
		head := b.batches[0]
		if uint32(len(head)) > space() {
			break
		}
		for _, e := range head {
			if err := tag(e); err != nil {
				return moved, err
			}
		}
		b.batches = b.batches[1:]
		b.size -= len(head)
		moved += len(head)
	}
	return moved, nil
}
