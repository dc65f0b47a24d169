package handler

import (
	"testing"
	"time"

	"github.com/input-remapper/inputremapperd/internal/event"
)

func TestAbsToBtnLatchesAndReleases(t *testing.T) {
	leaf := &fakeLeaf{}
	h := &AbsToBtnHandler{Min: -32768, Max: 32767, ThresholdPercent: 50, Leaf: leaf, Sched: fakeScheduler{}}

	h.Handle(event.New(event.EvAbs, 0, 0, "pad0"))     // at rest
	if p, _ := leaf.snapshot(); p != 0 {
		t.Fatalf("should not fire at rest")
	}
	h.Handle(event.New(event.EvAbs, 0, 30000, "pad0")) // well past +50%
	if p, _ := leaf.snapshot(); p != 1 {
		t.Fatalf("expected latch to fire, got %d presses", p)
	}
	h.Handle(event.New(event.EvAbs, 0, 0, "pad0")) // back to rest
	if _, r := leaf.snapshot(); r != 1 {
		t.Fatalf("expected release on return to rest")
	}
}

func TestAbsToBtnNegativeThreshold(t *testing.T) {
	leaf := &fakeLeaf{}
	h := &AbsToBtnHandler{Min: -32768, Max: 32767, ThresholdPercent: -50, Leaf: leaf, Sched: fakeScheduler{}}

	h.Handle(event.New(event.EvAbs, 0, -30000, "pad0"))
	if p, _ := leaf.snapshot(); p != 1 {
		t.Fatalf("expected negative threshold to latch, got %d", p)
	}
}

func TestAbsToBtnForceReleaseTimeout(t *testing.T) {
	leaf := &fakeLeaf{}
	sched := &capturingScheduler{}
	h := &AbsToBtnHandler{
		Min: -32768, Max: 32767, ThresholdPercent: 50,
		ForceReleaseTimeout: 50 * time.Millisecond,
		Leaf:                leaf,
		Sched:               sched,
	}

	h.Handle(event.New(event.EvAbs, 0, 30000, "pad0"))
	if p, _ := leaf.snapshot(); p != 1 {
		t.Fatalf("expected initial latch")
	}
	sched.fireNext() // the timeout fires since no further sample arrived
	if _, r := leaf.snapshot(); r != 1 {
		t.Fatalf("expected forced release once the timer fires")
	}
}

func TestRelToBtnLatchesAndReleasesOnTimer(t *testing.T) {
	leaf := &fakeLeaf{}
	sched := &capturingScheduler{}
	h := &RelToBtnHandler{SpeedThreshold: 10, ReleaseAfter: 20 * time.Millisecond, Leaf: leaf, Sched: sched}

	h.Handle(event.New(event.EvRel, 0, 15, "mouse0"))
	if p, _ := leaf.snapshot(); p != 1 {
		t.Fatalf("expected latch on qualifying sample")
	}
	sched.fireNext()
	if _, r := leaf.snapshot(); r != 1 {
		t.Fatalf("expected release once the idle timer fires")
	}
}

func TestRelToBtnResetsTimerOnRepeatedSamples(t *testing.T) {
	leaf := &fakeLeaf{}
	sched := &capturingScheduler{}
	h := &RelToBtnHandler{SpeedThreshold: 10, ReleaseAfter: 20 * time.Millisecond, Leaf: leaf, Sched: sched}

	h.Handle(event.New(event.EvRel, 0, 15, "mouse0"))
	h.Handle(event.New(event.EvRel, 0, 15, "mouse0")) // re-arms, doesn't re-fire Press
	if p, _ := leaf.snapshot(); p != 1 {
		t.Fatalf("expected exactly 1 press across repeated samples, got %d", p)
	}
	// fireNext skips the stopped stale timer and runs the live one.
	sched.fireNext()
	if _, r := leaf.snapshot(); r != 1 {
		t.Fatalf("expected exactly 1 release once the live timer fires, got %d", r)
	}
}
