package ringmux

// Binding is the type-erased result of Slot[D](...): the idiomatic-Go
// stand-in for the declaration macro that materializes a concrete
// per-handler-set ring type in the distilled design (§4.7). Its methods
// are unexported so the only way to produce one is Slot.
type Binding interface {
	name() string
	bind(idx uint16, m *Mux)
	runSetup() error
	dispatchCompletion(cqe CompletionView, idx uint32) ControlFlow
	dispatchTeardown(cqe CompletionView, idx uint32) error
	notePush(idx uint32)
	reapStaleReuses(observer Observer)
}

type slotAdapter[D any] struct {
	slotName  string
	handler   Handler[D]
	slab      *slab[D]
	slotIdx   uint16
	submitter *Submitter[D]
}

// Slot binds a concrete Handler to a slot name. The discriminant is
// assigned later, in the order Bindings are passed to New.
func Slot[D any](name string, h Handler[D]) Binding {
	return &slotAdapter[D]{slotName: name, handler: h, slab: newSlab[D]()}
}

func (b *slotAdapter[D]) name() string { return b.slotName }

func (b *slotAdapter[D]) bind(idx uint16, m *Mux) {
	b.slotIdx = idx
	b.submitter = &Submitter[D]{mux: m, slotIdx: idx, slab: b.slab}
}

func (b *slotAdapter[D]) runSetup() error {
	if err := b.handler.Setup(b.submitter); err != nil {
		return newError(KindSetup, b.slotName, err)
	}
	return nil
}

func (b *slotAdapter[D]) dispatchCompletion(cqe CompletionView, idx uint32) ControlFlow {
	data := b.slab.peek(idx)
	// Mark the slot as awaiting a push before the callback runs, so a
	// repush of this token from inside OnCompletion clears the mark.
	b.slab.reused[idx] = true
	flow, newData := b.handler.OnCompletion(cqe, data, b.submitter)
	if newData != nil {
		b.slab.entries[idx] = *newData
	} else {
		b.slab.release(idx)
	}
	return flow
}

func (b *slotAdapter[D]) dispatchTeardown(cqe CompletionView, idx uint32) error {
	data := b.slab.release(idx)
	return b.handler.OnTeardownCompletion(cqe, data, b.submitter)
}

// notePush retags idx as freshly pushed, clearing any pending "reused"
// mark left by the OnCompletion resubmission optimization (§4.5/§9).
func (b *slotAdapter[D]) notePush(idx uint32) {
	b.slab.clearReused(idx)
}

// reapStaleReuses sweeps this slot's slab for entries that were reused by
// OnCompletion but never retagged with a fresh push, releasing each and
// reporting it to observer (§9's leak counter).
func (b *slotAdapter[D]) reapStaleReuses(observer Observer) {
	n := b.slab.reapStale()
	for i := 0; i < n; i++ {
		observer.ObserveReusedNoPush()
	}
}

var _ Binding = (*slotAdapter[int])(nil)
