// Package reader implements SPEC_FULL.md component I: the per-device
// event reader loop that drives a HandlerGraph. Grounded on palaver's
// internal/hotkey/hotkey_linux.go Start/Stop (a goroutine blocked on
// ReadOne, unblocked by closing the device out from under it, with the
// resulting error classified as a clean stop rather than a real I/O
// failure), generalized from "one hotkey listener" to "one reader per
// grabbed device in an injection".
package reader

import (
	"fmt"
	"os"
	"strings"
	"sync"

	evdev "github.com/holoplot/go-evdev"

	"github.com/input-remapper/inputremapperd/internal/event"
)

// Device is the subset of an already-grabbed evdev node the reader
// needs. Component J (internal/injector) owns grabbing and capability
// copy; the reader only reads frames and, at stop, ungrabs and closes.
type Device interface {
	ReadOne() (*evdev.InputEvent, error)
	Ungrab() error
	Close() error
}

// Dispatcher is the HandlerGraph surface the reader drives; satisfied
// by *internal/handler.HandlerGraph.
type Dispatcher interface {
	Dispatch(e event.InputEvent) bool
}

// Forwarder writes an event verbatim to a named uinput; satisfied by
// *internal/uinputdev.Registry.
type Forwarder interface {
	Write(e event.InputEvent, target string) error
}

// Reader runs one grabbed device's read loop: every frame is looked up
// in the HandlerGraph by (type, code, origin); a signature with no
// handler, or one whose handlers all report NotHandled, is forwarded
// verbatim to the per-device forward uinput. Syn events carry no
// handler registration either, so they fall through to the same
// forwarding path -- which is what keeps them "preserved" per
// spec.md §4.H, since the registry's capability check always accepts
// EV_SYN.
type Reader struct {
	dev         Device
	origin      string
	forwardName string
	graph       Dispatcher
	forward     Forwarder

	mu     sync.Mutex
	closed bool
}

// New builds a Reader for one already-grabbed device node. origin is
// the device group's key, stamped on every InputEvent this reader
// produces so overlapping capabilities across devices in one group
// never collide (spec.md §3's origin_hash). forwardName is the
// per-device forward uinput's registry name.
func New(dev Device, origin, forwardName string, graph Dispatcher, forward Forwarder) *Reader {
	return &Reader{dev: dev, origin: origin, forwardName: forwardName, graph: graph, forward: forward}
}

// Run blocks, reading and dispatching events until the device is
// closed by Stop (or the device itself vanishes). It returns nil for a
// clean stop; a non-nil error means the device failed unexpectedly,
// which the supervisor treats per spec.md §7's DeviceUnavailable path.
func (r *Reader) Run() error {
	for {
		raw, err := r.dev.ReadOne()
		if err != nil {
			r.mu.Lock()
			closed := r.closed
			r.mu.Unlock()
			if closed || isCleanClose(err) {
				return nil
			}
			return fmt.Errorf("reader %s: read event: %w", r.origin, err)
		}
		r.dispatch(raw)
	}
}

func (r *Reader) dispatch(raw *evdev.InputEvent) {
	e := event.New(raw.Type, raw.Code, raw.Value, r.origin)
	if r.graph.Dispatch(e) {
		return
	}
	// A transient forward write failure is RuntimeIoError (spec.md §7):
	// logged by the caller wrapping this reader, never fatal to the loop.
	_ = r.forward.Write(e, r.forwardName)
}

// Stop ungrabs and closes the device, unblocking a pending ReadOne in
// Run. Safe to call more than once and from a different goroutine
// than the one running Run.
func (r *Reader) Stop() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	r.mu.Unlock()
	_ = r.dev.Ungrab()
	_ = r.dev.Close()
}

func isCleanClose(err error) bool {
	if os.IsNotExist(err) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "file already closed") || strings.Contains(msg, "bad file descriptor")
}
