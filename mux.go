package ringmux

import (
	"context"
	"errors"
	"time"

	"github.com/behrlich/ringmux/internal/logging"
	"github.com/behrlich/ringmux/internal/uring"
)

var (
	errNoHandlers             = errors.New("ringmux: at least one handler slot required")
	errTooManySlots           = errors.New("ringmux: too many handler slots")
	errUnexpectedControlToken = errors.New("ringmux: unexpected control token during operational phase")
)

// Mux multiplexes a fixed set of handler slots onto a single ring. One Mux
// per New call; Run drives it to completion exactly once.
type Mux struct {
	ring     uring.Ring
	bindings []Binding
	backlog  *backlog
	inFlight int

	logger       *logging.Logger
	observer     Observer
	drainTimeout time.Duration

	firstErr error
}

// New constructs a Mux over ring with the given handler bindings, assigning
// each a discriminant in the order given.
func New(ring uring.Ring, handlers []Binding, opts ...Option) (*Mux, error) {
	if len(handlers) == 0 {
		return nil, newError(KindSetup, "", errNoHandlers)
	}
	if len(handlers) > MaxSlots {
		return nil, newError(KindSetup, "", errTooManySlots)
	}

	m := &Mux{
		ring:         ring,
		bindings:     handlers,
		backlog:      newBacklog(-1),
		logger:       logging.Default(),
		observer:     NoOpObserver{},
		drainTimeout: DefaultDrainTimeout,
	}
	for _, opt := range opts {
		opt(m)
	}
	for i, b := range m.bindings {
		b.bind(uint16(i), m)
	}
	return m, nil
}

// Run invokes Setup on every slot in binding order, then drives the
// operational loop until a handler returns Exit/Fail or ctx is cancelled,
// then runs the shutdown protocol and the teardown loop. ctx cancellation
// is treated as if the last-dispatched handler had returned Exit.
func (m *Mux) Run(ctx context.Context) error {
	for _, b := range m.bindings {
		if err := b.runSetup(); err != nil {
			return err
		}
	}

	if err := m.operationalLoop(ctx); err != nil {
		m.firstErr = err
	}

	m.shutdown()

	if err := m.teardownLoop(); err != nil && m.firstErr == nil {
		m.firstErr = err
	}

	m.observer.ObserveInFlight(m.inFlight)
	return m.firstErr
}

func (m *Mux) operationalLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if _, err := m.ring.SubmitAndWait(1); err != nil {
			return newError(KindAPI, "", err)
		}

		moved, err := m.backlog.drain(m.ring.SQSpace, m.retagBacklogEntry)
		if err != nil {
			return err
		}
		m.inFlight += moved
		for i := 0; i < moved; i++ {
			m.observer.ObserveBacklogDrained()
		}

		for {
			cqe, ok := m.ring.PeekCQE()
			if !ok {
				break
			}
			m.ring.SeenCQE()

			if cqe.Flags&uring.CQEFlagMore == 0 {
				m.inFlight--
			}
			m.observer.ObserveInFlight(m.inFlight)

			if cqe.UserData == 0 {
				m.observer.ObserveDroppedZero()
				m.logger.Trace("dropped zero-token completion")
				continue
			}

			ctrl, slotIdx, idx := decodeToken(cqe.UserData)
			if ctrl {
				return newError(KindCompletion, "", errUnexpectedControlToken)
			}

			view := CompletionView{Res: cqe.Res, Flags: cqe.Flags, Token: cqe.UserData}
			m.observer.ObserveCompletion()

			b := m.bindings[slotIdx]
			m.logger.Trace("completion", "slot", b.name(), "res", cqe.Res)
			flow := b.dispatchCompletion(view, idx)

			switch {
			case flow.isContinue():
				continue
			case flow.isWarn():
				m.observer.ObserveWarning()
				m.logger.Warn("handler warning", "slot", b.name(), "err", flow.err)
				continue
			case flow.isExit():
				return nil
			case flow.isFail():
				return newError(KindCompletion, b.name(), flow.err)
			}
		}
	}
}

func (m *Mux) retagBacklogEntry(e backlogEntry) error {
	sqe, err := e.build(m.ring)
	if err != nil {
		return newError(KindAPI, "", err)
	}
	sqe.SetUserData(e.token)
	return nil
}

func (m *Mux) enqueueOne(token uint64, build SQEBuilder) error {
	if m.ring.SQSpace() < 1 {
		if err := m.spillToBacklog([]backlogEntry{{token: token, build: build}}); err != nil {
			return err
		}
		m.notePush(token)
		return nil
	}
	sqe, err := build(m.ring)
	if err != nil {
		if err := m.spillToBacklog([]backlogEntry{{token: token, build: build}}); err != nil {
			return err
		}
		m.notePush(token)
		return nil
	}
	sqe.SetUserData(token)
	m.inFlight++
	m.observer.ObservePush()
	m.logger.Trace("pushed sqe", "token", token)
	m.notePush(token)
	return nil
}

func (m *Mux) enqueueBatch(entries []backlogEntry) error {
	if uint32(len(entries)) > m.ring.SQSpace() {
		if err := m.spillToBacklog(entries); err != nil {
			return err
		}
		for _, e := range entries {
			m.notePush(e.token)
		}
		return nil
	}
	for _, e := range entries {
		sqe, err := e.build(m.ring)
		if err != nil {
			if err := m.spillToBacklog(entries); err != nil {
				return err
			}
			for _, spilled := range entries {
				m.notePush(spilled.token)
			}
			return nil
		}
		sqe.SetUserData(e.token)
	}
	m.inFlight += len(entries)
	for range entries {
		m.observer.ObservePush()
	}
	m.logger.Trace("pushed batch", "entries", len(entries))
	for _, e := range entries {
		m.notePush(e.token)
	}
	return nil
}

// notePush clears the reused-but-not-repushed mark on token's slab slot, if
// any (§9), once the push has actually succeeded (entered the SQ or was
// accepted into the backlog). It is a no-op for the zero token and for
// control tokens, which never name a real slot allocation.
func (m *Mux) notePush(token uint64) {
	if token == 0 {
		return
	}
	ctrl, slotIdx, idx := decodeToken(token)
	if ctrl || int(slotIdx) >= len(m.bindings) {
		return
	}
	m.bindings[slotIdx].notePush(idx)
}

func (m *Mux) spillToBacklog(entries []backlogEntry) error {
	if err := m.backlog.push(entries); err != nil {
		return newError(KindPush, "", err)
	}
	m.observer.ObserveBacklogSpill()
	m.logger.Warn("backlog spill", "entries", len(entries))
	return nil
}

