package ringmux

import (
	"errors"
	"fmt"
	"syscall"
)

// Kind categorizes the five error conditions §7 of the design distinguishes:
// a failed handler Setup, a handler reporting Error from OnCompletion, a
// failed OnTeardownCompletion, an underlying ring syscall failure, and a
// submission-queue push that the backlog also refused.
type Kind string

const (
	KindSetup      Kind = "setup"
	KindCompletion Kind = "completion"
	KindTeardown   Kind = "teardown"
	KindAPI        Kind = "api"
	KindPush       Kind = "push"
)

// Error is a structured error carrying the slot that produced it (empty for
// ring-level failures that aren't attributable to one handler) alongside
// the kernel errno when one is available.
type Error struct {
	Kind  Kind
	Slot  string
	Errno syscall.Errno
	Msg   string
	Inner error
}

func (e *Error) Error() string {
	var parts []string
	if e.Slot != "" {
		parts = append(parts, fmt.Sprintf("slot=%s", e.Slot))
	}
	if e.Errno != 0 {
		parts = append(parts, fmt.Sprintf("errno=%d", e.Errno))
	}

	msg := e.Msg
	if msg == "" && e.Inner != nil {
		msg = e.Inner.Error()
	}
	if msg == "" {
		msg = string(e.Kind)
	}

	if len(parts) > 0 {
		return fmt.Sprintf("ringmux: %s: %s (%s)", e.Kind, msg, parts[0])
	}
	return fmt.Sprintf("ringmux: %s: %s", e.Kind, msg)
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Inner
}

// Is matches on Kind, so callers can do errors.Is(err, &Error{Kind: KindPush}).
func (e *Error) Is(target error) bool {
	te, ok := target.(*Error)
	if !ok || te == nil {
		return false
	}
	if te.Kind != "" && te.Kind != e.Kind {
		return false
	}
	if te.Slot != "" && te.Slot != e.Slot {
		return false
	}
	return true
}

// newError builds a structured *Error, wrapping inner and mapping a bare
// syscall.Errno (the common case: a push or ring syscall failed) into the
// Errno field so callers can branch on it without re-unwrapping.
func newError(kind Kind, slot string, inner error) *Error {
	if inner == nil {
		return &Error{Kind: kind, Slot: slot}
	}
	e := &Error{Kind: kind, Slot: slot, Inner: inner, Msg: inner.Error()}
	var errno syscall.Errno
	if errors.As(inner, &errno) {
		e.Errno = errno
	}
	return e
}
