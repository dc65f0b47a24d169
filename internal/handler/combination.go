package handler

import "github.com/input-remapper/inputremapperd/internal/event"

// CombinationHandler implements spec.md §4.G's "combination handler":
// it holds a bitset of which sub-inputs are currently pressed and
// fires its leaf exactly once on the transition into "all pressed",
// releasing it the moment any sub-input lets go.
type CombinationHandler struct {
	combination event.InputCombination
	terminal    event.Signature
	signatures  []event.Signature
	leaf        Leaf

	pressed map[event.Signature]bool
	active  bool
}

// NewCombinationHandler builds a handler for combination driving leaf.
func NewCombinationHandler(combination event.InputCombination, leaf Leaf) *CombinationHandler {
	terminal, _ := combination.Terminal()
	return &CombinationHandler{
		combination: combination,
		terminal:    terminal.Signature(),
		signatures:  combination.Signatures(),
		leaf:        leaf,
		pressed:     make(map[event.Signature]bool),
	}
}

// Active reports whether this combination's leaf is currently pressed.
func (h *CombinationHandler) Active() bool { return h.active }

// Handle updates the bitset from e (value != 0 means pressed) and
// fires or releases the leaf per the transition rules. suppressFire,
// set by a HierarchyHandler wrapping multiple specificities of the
// same signature, blocks a fresh Press without blocking the eventual
// Release of an already-active handler.
func (h *CombinationHandler) Handle(e event.InputEvent, suppressFire bool) Result {
	sig := event.Signature{Type: e.Type, Code: e.Code, Origin: e.Origin}
	pressedNow := e.Value != 0
	wasPressed := h.pressed[sig]
	h.pressed[sig] = pressedNow

	if h.active {
		if !pressedNow {
			h.leaf.Release()
			h.active = false
		}
		return Consumed
	}

	if sig == h.terminal && pressedNow && !wasPressed && !suppressFire {
		if h.allOthersPressed(sig) {
			h.active = true
			h.leaf.Press()
		}
	}
	return Consumed
}

func (h *CombinationHandler) allOthersPressed(except event.Signature) bool {
	for _, sig := range h.signatures {
		if sig == except {
			continue
		}
		if !h.pressed[sig] {
			return false
		}
	}
	return true
}
