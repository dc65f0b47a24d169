package handler

import (
	"testing"

	"github.com/input-remapper/inputremapperd/internal/event"
)

func TestCombinationFiresOnlyWhenAllPressed(t *testing.T) {
	a := keyConfig(30, "kbd0")
	b := keyConfig(31, "kbd0")
	combo := event.NewCombination(a, b)
	leaf := &fakeLeaf{}
	h := NewCombinationHandler(combo, leaf)

	h.Handle(key(31, "kbd0", 1), false) // terminal alone: must not fire
	if p, _ := leaf.snapshot(); p != 0 {
		t.Fatalf("leaf fired before all sub-inputs pressed")
	}
	h.Handle(key(31, "kbd0", 0), false)
	h.Handle(key(30, "kbd0", 1), false)
	h.Handle(key(31, "kbd0", 1), false) // re-press of terminal completes it
	if p, _ := leaf.snapshot(); p != 1 {
		t.Fatalf("expected 1 press, got %d", p)
	}
	if !h.Active() {
		t.Fatalf("expected handler active after completion")
	}
}

func TestCombinationReleasesOnAnySubInputRelease(t *testing.T) {
	a := keyConfig(30, "kbd0")
	b := keyConfig(31, "kbd0")
	combo := event.NewCombination(a, b)
	leaf := &fakeLeaf{}
	h := NewCombinationHandler(combo, leaf)

	h.Handle(key(30, "kbd0", 1), false)
	h.Handle(key(31, "kbd0", 1), false)
	h.Handle(key(30, "kbd0", 0), false)

	_, r := leaf.snapshot()
	if r != 1 {
		t.Fatalf("expected 1 release, got %d", r)
	}
	if h.Active() {
		t.Fatalf("expected handler inactive after release")
	}
}

func TestCombinationIgnoresDuplicatePressWhileActive(t *testing.T) {
	single := event.NewCombination(keyConfig(30, "kbd0"))
	leaf := &fakeLeaf{}
	h := NewCombinationHandler(single, leaf)

	h.Handle(key(30, "kbd0", 1), false)
	h.Handle(key(30, "kbd0", 1), false) // autorepeat-style duplicate

	if p, _ := leaf.snapshot(); p != 1 {
		t.Fatalf("expected exactly 1 press despite duplicate, got %d", p)
	}
}

func TestCombinationSuppressFireBlocksFreshPressOnly(t *testing.T) {
	single := event.NewCombination(keyConfig(30, "kbd0"))
	leaf := &fakeLeaf{}
	h := NewCombinationHandler(single, leaf)

	h.Handle(key(30, "kbd0", 1), true) // suppressed: must not fire
	if p, _ := leaf.snapshot(); p != 0 {
		t.Fatalf("expected suppressed press to not fire")
	}
	if h.Active() {
		t.Fatalf("handler should not be active")
	}
}
