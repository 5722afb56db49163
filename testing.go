package ringmux

import "sync/atomic"

// FuncHandler adapts three plain closures to the Handler[D] interface so
// tests (and small example programs) don't need to declare a named type
// per slot. Any nil callback is treated as a no-op that returns success /
// Continue with no resubmission.
type FuncHandler[D any] struct {
	SetupFn                func(*Submitter[D]) error
	OnCompletionFn         func(CompletionView, D, *Submitter[D]) (ControlFlow, *D)
	OnTeardownCompletionFn func(CompletionView, D, *Submitter[D]) error

	setupCalls      atomic.Int64
	completionCalls atomic.Int64
	teardownCalls   atomic.Int64
}

func (h *FuncHandler[D]) Setup(s *Submitter[D]) error {
	h.setupCalls.Add(1)
	if h.SetupFn == nil {
		return nil
	}
	return h.SetupFn(s)
}

func (h *FuncHandler[D]) OnCompletion(cqe CompletionView, data D, s *Submitter[D]) (ControlFlow, *D) {
	h.completionCalls.Add(1)
	if h.OnCompletionFn == nil {
		return Continue(), nil
	}
	return h.OnCompletionFn(cqe, data, s)
}

func (h *FuncHandler[D]) OnTeardownCompletion(cqe CompletionView, data D, s *Submitter[D]) error {
	h.teardownCalls.Add(1)
	if h.OnTeardownCompletionFn == nil {
		return nil
	}
	return h.OnTeardownCompletionFn(cqe, data, s)
}

// SetupCalls returns how many times Setup has been invoked.
func (h *FuncHandler[D]) SetupCalls() int64 { return h.setupCalls.Load() }

// CompletionCalls returns how many times OnCompletion has been invoked.
func (h *FuncHandler[D]) CompletionCalls() int64 { return h.completionCalls.Load() }

// TeardownCalls returns how many times OnTeardownCompletion has been invoked.
func (h *FuncHandler[D]) TeardownCalls() int64 { return h.teardownCalls.Load() }

var _ Handler[int] = (*FuncHandler[int])(nil)
