package ringmux

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func spaceFunc(n *uint32) func() uint32 {
	return func() uint32 { return *n }
}

func TestBacklogPushAndDrainOrderPreserving(t *testing.T) {
	b := newBacklog(-1)
	require.NoError(t, b.push([]backlogEntry{{token: 1}}))
	require.NoError(t, b.push([]backlogEntry{{token: 2}}))

	var order []uint64
	space := uint32(10)
	moved, err := b.drain(spaceFunc(&space), func(e backlogEntry) error {
		order = append(order, e.token)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, moved)
	assert.Equal(t, []uint64{1, 2}, order)
	assert.True(t, b.empty())
}

func TestBacklogDrainStopsWhenHeadDoesntFit(t *testing.T) {
	b := newBacklog(-1)
	require.NoError(t, b.push([]backlogEntry{{token: 1}, {token: 2}}))
	require.NoError(t, b.push([]backlogEntry{{token: 3}}))

	space := uint32(1)
	moved, err := b.drain(spaceFunc(&space), func(e backlogEntry) error { return nil })
	require.NoError(t, err)
	assert.Zero(t, moved)
	assert.Equal(t, 3, b.len())
}

func TestBacklogCappedRejectsOverflow(t *testing.T) {
	b := newBacklog(1)
	require.NoError(t, b.push([]backlogEntry{{token: 1}}))

	err := b.push([]backlogEntry{{token: 2}})
	assert.ErrorIs(t, err, errBacklogFull)
}

func TestBacklogUncappedAcceptsAnyOverflow(t *testing.T) {
	b := newBacklog(-1)
	for i := 0; i < 1000; i++ {
		require.NoError(t, b.push([]backlogEntry{{token: uint64(i)}}))
	}
	assert.Equal(t, 1000, b.len())
}
