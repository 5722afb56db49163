package ringmux

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tok := encodeOp(3, 12345)

	ctrl, slot, idx := decodeToken(tok)
	assert.False(t, ctrl)
	assert.Equal(t, uint16(3), slot)
	assert.Equal(t, uint32(12345), idx)
}

func TestEncodeZeroSlotZeroIndex(t *testing.T) {
	tok := encodeOp(0, 0)
	assert.Zero(t, tok)
}

func TestDrainSentinelDecodesAsControl(t *testing.T) {
	ctrl, _, _ := decodeToken(drainSentinel)
	assert.True(t, ctrl)
}

func TestDrainSentinelNeverCollidesWithOperationToken(t *testing.T) {
	for _, slot := range []uint16{0, 1, 0x7fff} {
		for _, idx := range []uint32{0, 1, 0xffffffff} {
			tok := encodeOp(slot, idx)
			assert.NotEqual(t, drainSentinel, tok)
		}
	}
}
