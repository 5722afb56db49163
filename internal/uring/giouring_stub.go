//go:build !linux

package uring

import (
	"fmt"
	"runtime"
)

// Open always fails on non-Linux platforms: io_uring is a Linux-only kernel
// facility and there is no portable emulation (see SPEC_FULL.md §1
// Non-goals). Callers that need to run the event loop off-target use
// NewFakeRing instead.
func Open(cfg Config) (Ring, error) {
	return nil, fmt.Errorf("uring: io_uring is only available on linux (GOOS=%s)", runtime.GOOS)
}
