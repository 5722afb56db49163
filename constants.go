package ringmux

import "github.com/behrlich/ringmux/internal/constants"

// Re-exported tunables for callers who don't want to reach into internal/constants.
const (
	// DefaultDrainTimeout is the drain-barrier timeout used when the
	// shutdown coordinator must wait on in-flight completions rather than
	// issue a bare NOP.
	DefaultDrainTimeout = constants.DefaultDrainTimeout

	// MaxSlots is the largest number of handlers New will accept.
	MaxSlots = constants.MaxSlots
)
