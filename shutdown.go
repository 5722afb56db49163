package ringmux

import "github.com/behrlich/ringmux/internal/uring"

// shutdown implements the three-step protocol of SPEC_FULL.md §4.6: a
// blanket cancel-all push (token 0, dropped on completion), followed by a
// drain barrier carrying the Cancel(MAX) sentinel and the kernel's
// IO-drain flag so it cannot complete ahead of everything already
// submitted. The barrier is a NOP when nothing was in flight at shutdown
// initiation, or a counted timeout otherwise.
//
// Both pushes bypass Submitter/enqueueOne entirely — they are the
// coordinator's own bookkeeping, not slot traffic — so neither increments
// m.inFlight. teardownLoop mirrors this on the way out.
func (m *Mux) shutdown() {
	m.logger.Debug("shutdown: begin", "inFlight", m.inFlight)

	for _, b := range m.bindings {
		b.reapStaleReuses(m.observer)
	}

	if cancelSQE, err := m.ring.PrepareAsyncCancelAll(); err != nil {
		m.logger.Warn("shutdown: cancel-all push failed", "err", err)
	} else {
		cancelSQE.SetUserData(0)
	}

	n := m.inFlight
	var barrier uring.SQE
	var err error
	if n <= 0 {
		barrier, err = m.ring.PrepareNop()
	} else {
		barrier, err = m.ring.PrepareTimeout(m.drainTimeout, uint32(n))
	}
	if err != nil {
		m.logger.Warn("shutdown: drain barrier push failed", "err", err)
		if m.firstErr == nil {
			m.firstErr = newError(KindPush, "", err)
		}
		return
	}
	barrier.SetDrainFlag()
	barrier.SetUserData(drainSentinel)

	if _, err := m.ring.SubmitAndWait(0); err != nil {
		m.logger.Warn("shutdown: submit failed", "err", err)
	}
	m.logger.Debug("shutdown: barrier armed", "inFlight", n)
}

// teardownLoop drains completions after shutdown has been issued, routing
// each to its slot's OnTeardownCompletion until the drain-barrier sentinel
// is observed. Per SPEC_FULL.md §7, the last teardown error observed (if
// any) is what's returned; Run only lets it become the run's error when
// the operational loop itself produced none.
func (m *Mux) teardownLoop() error {
	var teardownErr error
	for {
		if _, err := m.ring.SubmitAndWait(1); err != nil {
			return newError(KindAPI, "", err)
		}

		for {
			cqe, ok := m.ring.PeekCQE()
			if !ok {
				break
			}
			m.ring.SeenCQE()

			// The cancel-all push (token 0) and the drain barrier (the
			// control-bit sentinel) are the shutdown coordinator's own
			// bookkeeping submissions; they were never counted into
			// in-flight on the way in (they bypass Submitter entirely), so
			// their completions must not be counted out either.
			if cqe.UserData != 0 && cqe.UserData != drainSentinel && cqe.Flags&uring.CQEFlagMore == 0 {
				m.inFlight--
			}

			if cqe.UserData == 0 {
				continue
			}

			ctrl, slotIdx, idx := decodeToken(cqe.UserData)
			if ctrl {
				if cqe.UserData == drainSentinel {
					m.logger.Debug("shutdown: drain barrier observed")
					return teardownErr
				}
				continue
			}

			view := CompletionView{Res: cqe.Res, Flags: cqe.Flags, Token: cqe.UserData}
			b := m.bindings[slotIdx]
			if err := b.dispatchTeardown(view, idx); err != nil {
				m.observer.ObserveTeardownError()
				m.logger.Error("teardown handler error", "slot", b.name(), "err", err)
				teardownErr = newError(KindTeardown, b.name(), err)
			}
		}
	}
}
