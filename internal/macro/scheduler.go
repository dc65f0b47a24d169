package macro

import "time"

// Timer is a cancellable pending continuation, returned by
// Scheduler.AfterFunc.
type Timer interface {
	Stop() bool
}

// Scheduler is the single-threaded cooperative executor every macro
// in one injection shares, per spec.md §4.F/§5 ("reader loops ... and
// macro tasks" share one scheduler; "no task may block on I/O, all
// waits are expressed as timed suspensions"). Posted funcs and fired
// timers all run on the same goroutine, so handler/task code never
// needs its own locking.
type Scheduler interface {
	// Post enqueues fn to run on the scheduler goroutine.
	Post(fn func())
	// AfterFunc arranges for fn to be Post-ed after d elapses.
	AfterFunc(d time.Duration, fn func()) Timer
}

// RealScheduler runs posted funcs on a single dedicated goroutine,
// started by NewRealScheduler and stopped by Close. Grounded on the same
// single-goroutine-owns-all-mutation shape as
// other_examples/oxoao-resetti's ctl.Controller.run (one loop goroutine
// selects on a channel; every other caller only ever posts work onto
// it) generalized from "one control loop" to "one scheduler queue with
// timer-driven re-entry".
type RealScheduler struct {
	jobs chan func()
	done chan struct{}
}

// NewRealScheduler creates a scheduler and starts its goroutine. Stop
// via Close.
func NewRealScheduler() *RealScheduler {
	s := &RealScheduler{jobs: make(chan func(), 64), done: make(chan struct{})}
	go s.run()
	return s
}

func (s *RealScheduler) run() {
	for {
		select {
		case fn := <-s.jobs:
			fn()
		case <-s.done:
			return
		}
	}
}

// Post implements Scheduler.
func (s *RealScheduler) Post(fn func()) {
	select {
	case s.jobs <- fn:
	case <-s.done:
	}
}

// AfterFunc implements Scheduler.
func (s *RealScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, func() { s.Post(fn) })
}

// Close stops the scheduler goroutine. Pending jobs are discarded.
func (s *RealScheduler) Close() {
	close(s.done)
}

// SyncScheduler runs everything inline and immediately, for unit
// tests that want deterministic, synchronous macro execution without
// spinning up a goroutine. AfterFunc runs fn immediately rather than
// after d, since tests assert on the cumulative effect, not timing.
type SyncScheduler struct{}

func (SyncScheduler) Post(fn func()) { fn() }
func (SyncScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	fn()
	return noopTimer{}
}

type noopTimer struct{}

func (noopTimer) Stop() bool { return true }
