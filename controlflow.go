package ringmux

import "github.com/behrlich/ringmux/internal/uring"

// ControlFlow is the result a handler's OnCompletion returns: exactly one
// of Continue, Exit, Warn(err) or Fail(err). Build one with the matching
// constructor rather than a zero value.
//
// The distilled design names the fourth variant "Error", but this package
// already exports a type named Error (errors.go) and Go functions and
// types share one namespace at package scope, so the control-flow
// constructor is named Fail instead.
type ControlFlow struct {
	kind flowKind
	err  error
}

type flowKind int

const (
	flowContinue flowKind = iota
	flowExit
	flowWarn
	flowFail
)

// Continue proceeds to the next completion.
func Continue() ControlFlow { return ControlFlow{kind: flowContinue} }

// Exit stops dispatching further completions and begins shutdown.
func Exit() ControlFlow { return ControlFlow{kind: flowExit} }

// Warn logs err at warn level and continues to the next completion.
func Warn(err error) ControlFlow { return ControlFlow{kind: flowWarn, err: err} }

// Fail records err as the run's completion error, stops dispatching, and
// begins shutdown.
func Fail(err error) ControlFlow { return ControlFlow{kind: flowFail, err: err} }

func (f ControlFlow) isContinue() bool { return f.kind == flowContinue }
func (f ControlFlow) isExit() bool     { return f.kind == flowExit }
func (f ControlFlow) isWarn() bool     { return f.kind == flowWarn }
func (f ControlFlow) isFail() bool     { return f.kind == flowFail }

// CompletionView is the read-only view of a completion handed to a
// handler's OnCompletion/OnTeardownCompletion. Token is the raw user-data
// word the completion carried; a handler implementing the resubmission
// optimization (§4.5) passes it back via Submitter.PushRawToken to reuse
// its own slab slot instead of allocating a fresh one.
type CompletionView struct {
	Res   int32
	Flags uint32
	Token uint64
}

// More reports whether the kernel's MORE flag was set: further completions
// for the same submission will follow, and the in-flight counter was not
// decremented for this one.
func (c CompletionView) More() bool { return c.Flags&uring.CQEFlagMore != 0 }

// Handler is implemented once per declared slot. Setup issues the slot's
// initial submissions; OnCompletion interprets each completion belonging
// to this slot and decides whether to resubmit, exit, or report;
// OnTeardownCompletion handles completions that arrive after shutdown has
// begun.
type Handler[D any] interface {
	Setup(s *Submitter[D]) error
	OnCompletion(cqe CompletionView, data D, s *Submitter[D]) (ControlFlow, *D)
	OnTeardownCompletion(cqe CompletionView, data D, s *Submitter[D]) error
}
