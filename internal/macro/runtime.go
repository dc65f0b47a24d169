package macro

import (
	"github.com/input-remapper/inputremapperd/internal/event"
)

// Writer is the subset of internal/uinputdev.Registry a macro needs:
// emitting one raw event to a named target device.
type Writer interface {
	Write(e event.InputEvent, target string) error
}

// SymbolLookup resolves a bare key-symbol name to its kernel keycode,
// satisfied by internal/symboltable.Table.Lookup.
type SymbolLookup func(name string) (event.EvCode, bool)

// runtime is the shared context every compiled task reads at
// execution time: where to write events, how to resolve symbols, the
// process-wide variable map, and the release/cancel signaling every
// suspended task subscribes to.
type runtime struct {
	sched   Scheduler
	writer  Writer
	symbols SymbolLookup
	vars    *VarMap
	target  string
	origin  string // the InputEvent.Origin stamped on every synthesized event

	released       bool
	releaseWaiters []func()
	cancelled      bool
	cancelWaiters  []func()
}

func newRuntime(sched Scheduler, writer Writer, symbols SymbolLookup, vars *VarMap, target, origin string) *runtime {
	return &runtime{sched: sched, writer: writer, symbols: symbols, vars: vars, target: target, origin: origin}
}

// onRelease registers fn to run the moment the trigger releases (or
// immediately, if it already has). Used by hold/if_tap/if_single/
// mod_tap to discover a release while suspended.
func (rt *runtime) onRelease(fn func()) {
	if rt.released {
		fn()
		return
	}
	rt.releaseWaiters = append(rt.releaseWaiters, fn)
}

func (rt *runtime) signalReleased() {
	if rt.released {
		return
	}
	rt.released = true
	waiters := rt.releaseWaiters
	rt.releaseWaiters = nil
	for _, w := range waiters {
		w()
	}
}

// resetForNextPress clears the released latch so a macro bound to a
// combination that is pressed again (after a prior full press/release
// cycle) starts from a clean slate.
func (rt *runtime) resetForNextPress() {
	rt.released = false
}

func (rt *runtime) onCancel(fn func()) {
	if rt.cancelled {
		fn()
		return
	}
	rt.cancelWaiters = append(rt.cancelWaiters, fn)
}

func (rt *runtime) signalCancelled() {
	if rt.cancelled {
		return
	}
	rt.cancelled = true
	waiters := rt.cancelWaiters
	rt.cancelWaiters = nil
	for _, w := range waiters {
		w()
	}
}

// emit writes one key/rel/abs event followed by its implicit sync,
// stamped with this macro's origin.
func (rt *runtime) emit(typ event.EvType, code event.EvCode, value int32) {
	e := event.New(typ, code, value, rt.origin).Modify(event.WithAction(event.ActionSynthetic))
	_ = rt.writer.Write(e, rt.target)
}
