package macro

// runner is one compiled task. press starts (or restarts) it; the
// task must eventually invoke done (possibly synchronously, possibly
// via the scheduler) exactly once per press. Release is not a runner
// method: a task that acts on the triggering combination letting go
// registers with runtime.onRelease (most leaf tasks complete so
// quickly that the release arrives after done already fired).
type runner interface {
	press(rt *runtime, done func())
}

// sequenceRunner runs its steps one after another in program order,
// matching the `.` operator -- a macro-language statement separator
// (see DESIGN.md's Open Question decision), not the data-flow pipe
// its syntax note alone might suggest.
type sequenceRunner struct {
	steps []runner
}

func (s *sequenceRunner) press(rt *runtime, done func()) {
	s.runFrom(0, rt, done)
}

func (s *sequenceRunner) runFrom(i int, rt *runtime, done func()) {
	if rt.cancelled {
		done()
		return
	}
	if i >= len(s.steps) {
		done()
		return
	}
	s.steps[i].press(rt, func() {
		s.runFrom(i+1, rt, done)
	})
}

// parallelRunner runs left and right concurrently; done fires once
// both have completed. "Concurrently" here means both are started in
// the same scheduler tick before either's continuation runs --
// ordering between them is deliberately left unspecified, per
// spec.md §4.F's "writes from parallel siblings are not ordered".
type parallelRunner struct {
	left, right runner
}

func (p *parallelRunner) press(rt *runtime, done func()) {
	remaining := 2
	finish := func() {
		remaining--
		if remaining == 0 {
			done()
		}
	}
	p.left.press(rt, finish)
	p.right.press(rt, finish)
}

// funcRunner adapts a plain function to runner, for leaf tasks whose
// entire behavior is "do one thing then call done".
type funcRunner struct {
	fn func(rt *runtime, done func())
}

func (f *funcRunner) press(rt *runtime, done func()) { f.fn(rt, done) }
