package handler

import (
	"testing"

	"github.com/input-remapper/inputremapperd/internal/event"
)

func TestHierarchySuppressesShorterCombinationWhileLongerActive(t *testing.T) {
	shift := keyConfig(42, "kbd0")
	a := keyConfig(30, "kbd0")

	shortCombo := event.NewCombination(a)       // "a"
	longCombo := event.NewCombination(shift, a) // "shift+a"

	shortLeaf := &fakeLeaf{}
	longLeaf := &fakeLeaf{}
	shortH := NewCombinationHandler(shortCombo, shortLeaf)
	longH := NewCombinationHandler(longCombo, longLeaf)

	hh := NewHierarchyHandler([]*CombinationHandler{shortH, longH})

	hh.Handle(key(42, "kbd0", 1))
	hh.Handle(key(30, "kbd0", 1))

	if p, _ := shortLeaf.snapshot(); p != 0 {
		t.Fatalf("expected short combination suppressed, got %d presses", p)
	}
	if p, _ := longLeaf.snapshot(); p != 1 {
		t.Fatalf("expected long combination to fire once, got %d", p)
	}
}

func TestHierarchyFiresShortCombinationWhenLongerNotSatisfied(t *testing.T) {
	shift := keyConfig(42, "kbd0")
	a := keyConfig(30, "kbd0")

	shortCombo := event.NewCombination(a)
	longCombo := event.NewCombination(shift, a)

	shortLeaf := &fakeLeaf{}
	longLeaf := &fakeLeaf{}
	shortH := NewCombinationHandler(shortCombo, shortLeaf)
	longH := NewCombinationHandler(longCombo, longLeaf)

	hh := NewHierarchyHandler([]*CombinationHandler{shortH, longH})

	hh.Handle(key(30, "kbd0", 1)) // "a" alone, shift never pressed

	if p, _ := shortLeaf.snapshot(); p != 1 {
		t.Fatalf("expected short combination to fire, got %d", p)
	}
	if p, _ := longLeaf.snapshot(); p != 0 {
		t.Fatalf("long combination should not have fired")
	}
}
