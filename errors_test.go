package ringmux

import (
	"errors"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStructuredError(t *testing.T) {
	err := newError(KindPush, "timers", errors.New("queue full"))

	assert.Equal(t, KindPush, err.Kind)
	assert.Equal(t, "timers", err.Slot)
	assert.Equal(t, "ringmux: push: queue full (slot=timers)", err.Error())
}

func TestErrorWrapsErrno(t *testing.T) {
	err := newError(KindAPI, "", syscall.EAGAIN)

	require.ErrorIs(t, err, syscall.EAGAIN)
	assert.Equal(t, syscall.EAGAIN, err.Errno)
}

func TestErrorIsMatchesOnKind(t *testing.T) {
	err := newError(KindTeardown, "echo", errors.New("boom"))

	assert.True(t, errors.Is(err, &Error{Kind: KindTeardown}))
	assert.False(t, errors.Is(err, &Error{Kind: KindSetup}))
	assert.True(t, errors.Is(err, &Error{Kind: KindTeardown, Slot: "echo"}))
	assert.False(t, errors.Is(err, &Error{Kind: KindTeardown, Slot: "other"}))
}

func TestErrorUnwrap(t *testing.T) {
	inner := errors.New("underlying failure")
	err := newError(KindCompletion, "echo", inner)

	assert.Same(t, inner, errors.Unwrap(err))
}
