//go:build linux

package uring

import (
	"fmt"
	"time"

	"github.com/pawelgaczynski/giouring"
	"golang.org/x/sys/unix"

	"github.com/behrlich/ringmux/internal/constants"
)

// Open builds the real kernel-backed Ring via giouring, configured
// single-issuer with cooperative task-run (and deferred task-run when the
// running kernel supports it, falling back to plain cooperative task-run
// otherwise).
func Open(cfg Config) (Ring, error) {
	if cfg.Entries < constants.MinRingEntries || cfg.Entries&(cfg.Entries-1) != 0 {
		return nil, fmt.Errorf("uring: Entries must be a power of two >= %d, got %d", constants.MinRingEntries, cfg.Entries)
	}

	params := &giouring.IOUringParams{
		Flags: giouring.SetupSingleIssuer | giouring.SetupCoopTaskrun | giouring.SetupDeferTaskrun,
	}
	ring, err := giouring.CreateRingWithParams(cfg.Entries, params)
	if err != nil {
		params.Flags = giouring.SetupSingleIssuer | giouring.SetupCoopTaskrun
		ring, err = giouring.CreateRingWithParams(cfg.Entries, params)
		if err != nil {
			return nil, fmt.Errorf("uring: create ring: %w", err)
		}
	}
	return &giouringRing{ring: ring}, nil
}

type giouringRing struct {
	ring *giouring.Ring
}

type giouringSQE struct {
	sqe *giouring.SubmissionQueueEntry
}

func (s *giouringSQE) SetUserData(token uint64) { s.sqe.UserData = token }
func (s *giouringSQE) SetDrainFlag()            { s.sqe.Flags |= uint8(giouring.SqeIoDrain) }

func (r *giouringRing) getSQE() (*giouring.SubmissionQueueEntry, error) {
	sqe := r.ring.GetSQE()
	if sqe == nil {
		return nil, ErrSQFull
	}
	return sqe, nil
}

func (r *giouringRing) PrepareNop() (SQE, error) {
	sqe, err := r.getSQE()
	if err != nil {
		return nil, err
	}
	sqe.PrepareNop()
	return &giouringSQE{sqe: sqe}, nil
}

func (r *giouringRing) PrepareTimeout(d time.Duration, count uint32) (SQE, error) {
	sqe, err := r.getSQE()
	if err != nil {
		return nil, err
	}
	ts := unix.NsecToTimespec(d.Nanoseconds())
	sqe.PrepareTimeout(&ts, count, 0)
	return &giouringSQE{sqe: sqe}, nil
}

func (r *giouringRing) PrepareAsyncCancelAll() (SQE, error) {
	sqe, err := r.getSQE()
	if err != nil {
		return nil, err
	}
	sqe.PrepareAsyncCancel64(0, giouring.AsyncCancelAll)
	return &giouringSQE{sqe: sqe}, nil
}

func (r *giouringRing) SQSpace() uint32 {
	return r.ring.SQSpaceLeft()
}

func (r *giouringRing) SubmitAndWait(minComplete uint32) (uint32, error) {
	n, err := r.ring.SubmitAndWait(minComplete)
	if err != nil {
		return 0, err
	}
	return uint32(n), nil
}

func (r *giouringRing) PeekCQE() (CQE, bool) {
	cqe, err := r.ring.PeekCQE()
	if err != nil || cqe == nil {
		return CQE{}, false
	}
	return CQE{UserData: cqe.UserData, Res: cqe.Res, Flags: cqe.Flags}, true
}

func (r *giouringRing) SeenCQE() {
	if cqe, err := r.ring.PeekCQE(); err == nil && cqe != nil {
		r.ring.SeenCQE(cqe)
	}
}

func (r *giouringRing) Close() error {
	r.ring.QueueExit()
	return nil
}

var _ Ring = (*giouringRing)(nil)
