package handler

import (
	"sync"
	"time"

	"github.com/input-remapper/inputremapperd/internal/event"
)

// fakeLeaf records Press/Release calls for assertions.
type fakeLeaf struct {
	mu       sync.Mutex
	presses  int
	releases int
}

func (l *fakeLeaf) Press() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.presses++
}

func (l *fakeLeaf) Release() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.releases++
}

func (l *fakeLeaf) snapshot() (presses, releases int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.presses, l.releases
}

// fakeWriter records every write for assertions.
type fakeWriter struct {
	mu     sync.Mutex
	writes []event.InputEvent
}

func (w *fakeWriter) Write(e event.InputEvent, target string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.writes = append(w.writes, e)
	return nil
}

func (w *fakeWriter) snapshot() []event.InputEvent {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]event.InputEvent, len(w.writes))
	copy(out, w.writes)
	return out
}

// fakeTimer and fakeScheduler give tests a deterministic, non-blocking
// stand-in for the real single-goroutine scheduler: Post and AfterFunc
// both run fn inline, matching macro.SyncScheduler's contract.
type fakeTimer struct{ stopped bool }

func (t *fakeTimer) Stop() bool {
	already := t.stopped
	t.stopped = true
	return !already
}

type fakeScheduler struct{}

func (fakeScheduler) Post(fn func()) { fn() }
func (fakeScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	fn()
	return &fakeTimer{}
}

// pendingCall pairs a captured AfterFunc continuation with the timer
// handle returned for it, so a stopped timer's continuation can be
// skipped the way the real time.AfterFunc would skip it.
type pendingCall struct {
	timer *fakeTimer
	fn    func()
}

// capturingScheduler records AfterFunc continuations instead of
// running them inline, so a test can step a self-rescheduling handler
// (like AbsToRelHandler's per-tick loop) one tick at a time instead of
// recursing to a stack overflow under an always-immediate scheduler.
type capturingScheduler struct {
	pending []pendingCall
}

func (s *capturingScheduler) Post(fn func()) { fn() }
func (s *capturingScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	t := &fakeTimer{}
	s.pending = append(s.pending, pendingCall{timer: t, fn: fn})
	return t
}

// fireNext runs and discards the oldest pending continuation, skipping
// over (but still discarding) any that were stopped before firing.
func (s *capturingScheduler) fireNext() {
	for len(s.pending) > 0 {
		call := s.pending[0]
		s.pending = s.pending[1:]
		if call.timer.stopped {
			continue
		}
		call.fn()
		return
	}
}

func key(code event.EvCode, origin string, value int32) event.InputEvent {
	return event.New(event.EvKey, code, value, origin)
}

func keyConfig(code event.EvCode, origin string) event.InputConfig {
	cfg, _ := event.NewInputConfig(event.EvKey, code, origin, nil)
	return cfg
}
