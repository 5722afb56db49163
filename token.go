package ringmux

import "github.com/behrlich/ringmux/internal/constants"

// encodeOp packs a slot discriminant and a slab index into an operation
// token: bit 63 clear, bits 62..48 the slot, bits 47..0 the slab index.
func encodeOp(slot uint16, idx uint32) uint64 {
	return (uint64(slot)&constants.SlotMask)<<constants.SlotShift | uint64(idx)&constants.SlabIndexMask
}

// decodeToken splits tok into its control bit, slot discriminant and slab
// index. slot/idx are only meaningful when control is false.
func decodeToken(tok uint64) (control bool, slot uint16, idx uint32) {
	if tok&constants.ControlBit != 0 {
		return true, 0, 0
	}
	slot = uint16((tok >> constants.SlotShift) & constants.SlotMask)
	idx = uint32(tok & constants.SlabIndexMask)
	return false, slot, idx
}

// drainSentinel is the Cancel(MAX) token the shutdown coordinator's drain
// barrier carries; the teardown loop terminates on observing it.
const drainSentinel = constants.DrainSentinel
