package uring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeRingNopRoundTrip(t *testing.T) {
	r := NewFakeRing(4)

	sqe, err := r.PrepareNop()
	require.NoError(t, err)
	sqe.SetUserData(7)

	_, err = r.SubmitAndWait(1)
	require.NoError(t, err)

	cqe, ok := r.PeekCQE()
	require.True(t, ok)
	assert.Equal(t, uint64(7), cqe.UserData)
	r.SeenCQE()

	_, ok = r.PeekCQE()
	assert.False(t, ok)
}

func TestFakeRingSQFull(t *testing.T) {
	r := NewFakeRing(2)

	_, err := r.PrepareNop()
	require.NoError(t, err)
	_, err = r.PrepareNop()
	require.NoError(t, err)

	_, err = r.PrepareNop()
	assert.ErrorIs(t, err, ErrSQFull)
}

func TestFakeRingSpaceFreesAfterSubmit(t *testing.T) {
	r := NewFakeRing(1)

	sqe, err := r.PrepareNop()
	require.NoError(t, err)
	sqe.SetUserData(1)
	assert.Equal(t, uint32(0), r.SQSpace())

	_, err = r.SubmitAndWait(1)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), r.SQSpace())
}

func TestFakeRingCountedTimeoutFiresAfterNObservations(t *testing.T) {
	r := NewFakeRing(8)

	barrier, err := r.PrepareTimeout(5*time.Second, 2)
	require.NoError(t, err)
	barrier.SetUserData(99)

	for i := 0; i < 2; i++ {
		sqe, err := r.PrepareNop()
		require.NoError(t, err)
		sqe.SetUserData(uint64(i + 1))
	}

	_, err = r.SubmitAndWait(1)
	require.NoError(t, err)

	var seen []uint64
	for {
		cqe, ok := r.PeekCQE()
		if !ok {
			break
		}
		seen = append(seen, cqe.UserData)
		r.SeenCQE()
	}

	require.Len(t, seen, 3)
	assert.Equal(t, []uint64{1, 2, 99}, seen)
}

func TestFakeRingPlainTimeoutFiresNextCycle(t *testing.T) {
	r := NewFakeRing(4)

	sqe, err := r.PrepareTimeout(time.Millisecond, 0)
	require.NoError(t, err)
	sqe.SetUserData(42)

	_, err = r.SubmitAndWait(1)
	require.NoError(t, err)

	cqe, ok := r.PeekCQE()
	require.True(t, ok)
	assert.Equal(t, uint64(42), cqe.UserData)
}

func TestFakeRingCancelAllForceCompletesArmedTimeouts(t *testing.T) {
	r := NewFakeRing(8)

	stranded, err := r.PrepareTimeout(5*time.Second, 10)
	require.NoError(t, err)
	stranded.SetUserData(4)

	_, err = r.SubmitAndWait(0)
	require.NoError(t, err)

	cancel, err := r.PrepareAsyncCancelAll()
	require.NoError(t, err)
	cancel.SetUserData(0)

	barrier, err := r.PrepareTimeout(5*time.Second, 1)
	require.NoError(t, err)
	barrier.SetUserData(99)

	_, err = r.SubmitAndWait(0)
	require.NoError(t, err)

	var seen []uint64
	var res []int32
	for {
		cqe, ok := r.PeekCQE()
		if !ok {
			break
		}
		seen = append(seen, cqe.UserData)
		res = append(res, cqe.Res)
		r.SeenCQE()
	}

	// The stranded timeout and the cancel-all's own completion fire
	// immediately; the barrier, armed after the cancel in the same batch,
	// is untouched by it and only fires once its own count is satisfied.
	require.Len(t, seen, 3)
	assert.Equal(t, []uint64{4, 0, 99}, seen)
	assert.Equal(t, cqeResCancelled, res[0])
	assert.Zero(t, res[1])
	assert.Zero(t, res[2])
}

func TestFakeRingClose(t *testing.T) {
	r := NewFakeRing(1)
	assert.False(t, r.Closed())
	require.NoError(t, r.Close())
	assert.True(t, r.Closed())
}
