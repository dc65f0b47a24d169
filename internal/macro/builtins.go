package macro

import (
	"time"

	"github.com/input-remapper/inputremapperd/internal/event"
)

// compileWait suspends for ms milliseconds via the scheduler's timer,
// never blocking the scheduler goroutine itself.
func compileWait(ms float64) runner {
	return &funcRunner{fn: func(rt *runtime, done func()) {
		if rt.cancelled {
			done()
			return
		}
		fired := false
		timer := rt.sched.AfterFunc(time.Duration(ms*float64(time.Millisecond)), func() {
			fired = true
			done()
		})
		rt.onCancel(func() {
			if !fired && timer.Stop() {
				fired = true
				done()
			}
		})
	}}
}

// compileRepeat runs body n times in sequence, then signals done.
func compileRepeat(n int, body runner) runner {
	return &funcRunner{fn: func(rt *runtime, done func()) {
		var step func(i int)
		step = func(i int) {
			if rt.cancelled || i >= n {
				done()
				return
			}
			body.press(rt, func() { step(i + 1) })
		}
		step(0)
	}}
}

// compileHold runs body repeatedly while the trigger remains pressed
// (testable property: no emissions after release). Each iteration
// must complete before the next starts; if release arrives while an
// iteration is in flight, the loop still stops cleanly once that
// iteration's done fires.
// holdRepeatInterval paces successive iterations of a held body so a
// long press doesn't flood the output with back-to-back repeats,
// matching the repeat cadence a physical held key would produce.
const holdRepeatInterval = 100 * time.Millisecond

func compileHold(body runner) runner {
	return &funcRunner{fn: func(rt *runtime, done func()) {
		var loop func()
		loop = func() {
			if rt.cancelled || rt.released {
				done()
				return
			}
			body.press(rt, func() {
				if rt.cancelled || rt.released {
					done()
					return
				}
				rt.sched.AfterFunc(holdRepeatInterval, loop)
			})
		}
		loop()
	}}
}

// compileModify holds symbol down for the duration of body, then
// releases it.
func compileModify(symbolName string, body runner) runner {
	return &funcRunner{fn: func(rt *runtime, done func()) {
		code, ok := rt.symbols(symbolName)
		if !ok {
			done()
			return
		}
		rt.emit(event.EvKey, code, 1)
		body.press(rt, func() {
			rt.emit(event.EvKey, code, 0)
			done()
		})
	}}
}

// compileRelPair emits one instantaneous (x, y) relative-axis pair,
// used by both mouse (REL_X/REL_Y) and wheel (REL_HWHEEL/REL_WHEEL).
func compileRelPair(xCode, yCode event.EvCode, x, y int32) runner {
	return &funcRunner{fn: func(rt *runtime, done func()) {
		if x != 0 {
			rt.emit(event.EvRel, xCode, x)
		}
		if y != 0 {
			rt.emit(event.EvRel, yCode, y)
		}
		done()
	}}
}

func compileSet(name string, value float64) runner {
	return &funcRunner{fn: func(rt *runtime, done func()) {
		rt.vars.Set(name, value)
		done()
	}}
}

func compileAdd(name string, delta float64) runner {
	return &funcRunner{fn: func(rt *runtime, done func()) {
		rt.vars.Add(name, delta)
		done()
	}}
}

// compileParallelAll generalizes parallelRunner to N branches, all
// running concurrently with a shared completion counter.
func compileParallelAll(branches []runner) runner {
	return &funcRunner{fn: func(rt *runtime, done func()) {
		remaining := len(branches)
		if remaining == 0 {
			done()
			return
		}
		finish := func() {
			remaining--
			if remaining == 0 {
				done()
			}
		}
		for _, b := range branches {
			b.press(rt, finish)
		}
	}}
}

// compileIfTap races a release-before-timeout against the timeout
// itself: if the trigger releases first, then runs; otherwise els
// runs. Exactly one of the two branches executes.
func compileIfTap(then, els runner, timeoutMs float64) runner {
	return &funcRunner{fn: func(rt *runtime, done func()) {
		decided := false
		timer := rt.sched.AfterFunc(time.Duration(timeoutMs*float64(time.Millisecond)), func() {
			if decided {
				return
			}
			decided = true
			els.press(rt, done)
		})
		rt.onRelease(func() {
			if decided {
				return
			}
			decided = true
			timer.Stop()
			then.press(rt, done)
		})
	}}
}

// compileModTap is if_tap specialized to two key outputs: tap emits
// tapSymbol, hold emits holdSymbol for the remainder of the press.
func compileModTap(tapSymbol, holdSymbol string, timeoutMs float64) runner {
	tap := compileKey(tapSymbol)
	hold := &funcRunner{fn: func(rt *runtime, done func()) {
		code, ok := rt.symbols(holdSymbol)
		if !ok {
			done()
			return
		}
		rt.emit(event.EvKey, code, 1)
		rt.onRelease(func() {
			rt.emit(event.EvKey, code, 0)
		})
		done()
	}}
	return compileIfTap(tap, hold, timeoutMs)
}
