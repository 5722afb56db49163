// Package uring is the external-collaborator boundary named in
// SPEC_FULL.md §1: the underlying ring's queue mechanics, its submit
// primitive, and the three opcodes this driver needs (no-op, timeout,
// async-cancel). The core package never imports the kernel ABI directly —
// it only ever sees the Ring interface defined here, satisfied on Linux by
// a giouring-backed implementation and in tests by an in-memory fake.
package uring

import (
	"errors"
	"time"
)

// ErrSQFull is returned by a PrepareX call when the submission queue has no
// free slot. Callers (the ringmux submitter) are expected to treat this as
// a routine backlog-spill signal, not a fatal error.
var ErrSQFull = errors.New("uring: submission queue full")

// CQEFlagMore mirrors the kernel's IORING_CQE_F_MORE bit: the completion is
// not terminal and further completions for the same submission will follow.
const CQEFlagMore = 1 << 1

// SQE is the narrow, already-prepared-submission view the core needs: a way
// to tag an entry with its user-data token and, for the shutdown
// coordinator's drain barrier, the kernel's IO-drain flag. Every other field
// of the real submission entry is opaque to the core by design (§3 of
// SPEC_FULL.md: "the core treats SQEs as opaque except that it sets
// user-data").
type SQE interface {
	SetUserData(token uint64)
	SetDrainFlag()
}

// CQE is a read-only view of one completion queue entry.
type CQE struct {
	UserData uint64
	Res      int32
	Flags    uint32
}

// More reports whether the kernel's MORE flag is set on this completion.
func (c CQE) More() bool { return c.Flags&CQEFlagMore != 0 }

// Config configures a new Ring.
type Config struct {
	// Entries is the SQ/CQ entry count; must be a power of two no smaller
	// than constants.MinRingEntries (2).
	Entries uint32
}

// Ring abstracts the three opcodes this driver issues (no-op, timeout,
// async-cancel-all) plus the submit/complete cycle. Implementations are
// single-issuer and are not safe for concurrent use, mirroring giouring's
// own single-threaded-submitter contract.
type Ring interface {
	// PrepareNop stages a no-op submission, used as the drain barrier when
	// nothing is in flight at shutdown.
	PrepareNop() (SQE, error)
	// PrepareTimeout stages a timeout submission. When count is non-zero,
	// it is a counted completion timeout (fires once count other
	// completions have been observed) used as the drain barrier when
	// requests are still in flight; when zero, it is a plain duration
	// timeout.
	PrepareTimeout(d time.Duration, count uint32) (SQE, error)
	// PrepareAsyncCancelAll stages a cancel-all submission targeting every
	// request still in flight on this ring.
	PrepareAsyncCancelAll() (SQE, error)

	// SQSpace reports how many more entries can be staged before the next
	// SubmitAndWait.
	SQSpace() uint32
	// SubmitAndWait flushes staged entries to the kernel and blocks until
	// at least minComplete completions are available (0 means don't wait).
	// It returns the number of entries submitted.
	SubmitAndWait(minComplete uint32) (uint32, error)

	// PeekCQE returns the oldest unconsumed completion without removing it.
	PeekCQE() (CQE, bool)
	// SeenCQE removes the completion last returned by PeekCQE, advancing
	// the CQ head.
	SeenCQE()

	// Close releases the ring's kernel resources.
	Close() error
}
