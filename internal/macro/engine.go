package macro

// Engine runs one compiled Program against one trigger's press/release
// lifecycle, matching spec.md §4.F's "two lifecycle signals: press...
// and release". One Engine exists per active (mapping, combination)
// pair for the lifetime of an injection.
type Engine struct {
	prog *Program
	rt   *runtime
}

// NewEngine binds a Program to a runtime built from the injection's
// shared scheduler, writer, symbol table, and variable map.
func NewEngine(prog *Program, sched Scheduler, writer Writer, symbols SymbolLookup, vars *VarMap, target, origin string) *Engine {
	return &Engine{prog: prog, rt: newRuntime(sched, writer, symbols, vars, target, origin)}
}

// Press starts (or restarts, after a prior full cycle) the macro tree.
func (e *Engine) Press() {
	e.rt.sched.Post(func() {
		e.rt.resetForNextPress()
		e.prog.root.press(e.rt, func() {})
	})
}

// Release notifies every suspended task that the trigger let go. It
// is safe to call even if no task is currently waiting on it.
func (e *Engine) Release() {
	e.rt.sched.Post(func() {
		e.rt.signalReleased()
	})
}

// Cancel stops every descendant task and releases any keys they are
// holding, per spec.md §4.F's cancellation contract. Safe to call
// more than once.
func (e *Engine) Cancel() {
	e.rt.sched.Post(func() {
		e.rt.signalReleased()
		e.rt.signalCancelled()
	})
}
