// Package handler implements SPEC_FULL.md components G and H: building
// a HandlerGraph from a validated Preset and a device's capability
// catalog, and the per-signature dispatch the event reader loop
// (internal/reader) drives it with.
package handler

import "github.com/input-remapper/inputremapperd/internal/event"

// Result is a handler's verdict on one event, per spec.md §4.H.
type Result int

const (
	// Consumed means do not forward the event to the per-device
	// forward uinput.
	Consumed Result = iota
	// NotHandled means forward the event verbatim.
	NotHandled
	// Chain means pass the event to the next handler registered for
	// this signature.
	Chain
)

// Handler reacts to one input signature's events.
type Handler interface {
	Handle(e event.InputEvent) Result
}

// Leaf is the terminal action a combination handler (or an axis-as-
// button wrapper feeding one) drives: a key emission or a macro run.
type Leaf interface {
	Press()
	Release()
}
