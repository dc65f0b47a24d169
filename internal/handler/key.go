package handler

import "github.com/input-remapper/inputremapperd/internal/event"

// KeyWriter is the subset of the output registry a key/macro leaf
// needs: one event write to a named target, satisfied by
// internal/uinputdev.Registry.
type KeyWriter interface {
	Write(e event.InputEvent, target string) error
}

// KeyHandler is the leaf spec.md §4.G calls the "key handler": it
// emits a single key event (value 1 on Press, 0 on Release) to the
// target uinput, using the keycode resolved at build time from the
// process-global symbol table.
type KeyHandler struct {
	Code   event.EvCode
	Writer KeyWriter
	Target string
	Origin string
}

func (h *KeyHandler) Press() {
	h.Writer.Write(event.New(event.EvKey, h.Code, 1, h.Origin), h.Target)
}

func (h *KeyHandler) Release() {
	h.Writer.Write(event.New(event.EvKey, h.Code, 0, h.Origin), h.Target)
}
