package uinputdev

import (
	"errors"
	"fmt"
	"sync"

	"github.com/input-remapper/inputremapperd/internal/event"
)

// Target uinput names, per SPEC_FULL.md's naming convention.
const (
	Keyboard         = "keyboard"
	Mouse            = "mouse"
	Gamepad          = "gamepad"
	KeyboardAndMouse = "keyboard+mouse"

	// ForwardedSuffix is appended to a source device's name to build
	// its per-device passthrough uinput name.
	ForwardedSuffix = " forwarded"
	// projectPrefix names every synthetic device this daemon creates.
	projectPrefix = "input-remapper"
)

// ErrUinputNotAvailable is returned by Write when target names no
// known output device.
var ErrUinputNotAvailable = errors.New("uinputdev: uinput not available")

// ErrEventNotHandled is returned by Write when the target device does
// not expose the capability for the event's (type, code).
var ErrEventNotHandled = errors.New("uinputdev: event not handled by target")

// device is the minimal surface the registry needs from a concrete
// output, real or introspection-only.
type device interface {
	write(typ event.EvType, code event.EvCode, value int32) error
	sync() error
	close() error
	capabilities() Capabilities
}

// Mode selects whether the registry backs devices with the real
// kernel uinput layer or merely tracks capabilities for introspection
// (used by the unprivileged editor process, which previews mappings
// without ever emitting events).
type Mode int

const (
	// ModeReal creates genuine /dev/uinput-backed devices.
	ModeReal Mode = iota
	// ModeIntrospection discards every write but still reports
	// capabilities, so the editor can validate mappings offline.
	ModeIntrospection
)

// Registry is the global output registry (component B): a small fixed
// catalog of named synthetic devices, lazily instantiated on first
// use, plus any number of per-source forwarded devices registered by
// the injector. It is safe for concurrent use.
type Registry struct {
	mode Mode
	mu   sync.Mutex
	devs map[string]device
}

// New creates a Registry in the given mode. No devices are created
// until first requested.
func New(mode Mode) *Registry {
	return &Registry{mode: mode, devs: make(map[string]device)}
}

// EnsureTarget lazily instantiates one of the four fixed global
// targets (Keyboard, Mouse, Gamepad, KeyboardAndMouse) if it does not
// already exist. Re-requesting an existing name is a no-op.
func (r *Registry) EnsureTarget(name string) error {
	caps, ok := catalogFor(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUinputNotAvailable, name)
	}
	return r.ensure(name, caps)
}

// RegisterForwarded creates (or returns the existing) per-source
// forwarded uinput for a device named sourceName, cloning its
// capabilities with SYN/FF stripped and any erroneous ABS_VOLUME
// capability removed, per SPEC_FULL.md's forward-uinput contract. id
// is copied onto the forwarded device verbatim so vendor/product-keyed
// hotplug rules apply consistently.
func (r *Registry) RegisterForwarded(sourceName string, caps Capabilities, id DeviceID) (string, error) {
	name := projectPrefix + " " + sourceName + ForwardedSuffix
	cleaned := stripForwardCapabilities(caps)
	cleaned.ID = &id
	if err := r.ensure(name, cleaned); err != nil {
		return "", err
	}
	return name, nil
}

// stripForwardCapabilities removes SYN (implicit, emitted by every
// write) and any capability this registry does not model (FF is never
// modeled at all since it is write-only from the kernel's side here),
// and drops ABS_VOLUME (code 32) if present -- observed upstream to
// break keyboards and mice that spuriously advertise it.
func stripForwardCapabilities(caps Capabilities) Capabilities {
	const absVolume = event.EvCode(32)
	out := Capabilities{Keys: caps.Keys, Rels: caps.Rels}
	for _, a := range caps.Abs {
		if a.Code == absVolume {
			continue
		}
		out.Abs = append(out.Abs, a)
	}
	return out
}

func (r *Registry) ensure(name string, caps Capabilities) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.devs[name]; ok {
		return nil
	}
	d, err := r.newDevice(name, caps)
	if err != nil {
		return err
	}
	r.devs[name] = d
	return nil
}

// Get returns the named output device's capabilities and whether it
// exists.
func (r *Registry) Get(name string) (Capabilities, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.devs[name]
	if !ok {
		return Capabilities{}, false
	}
	return d.capabilities(), true
}

// Write emits e's (type, code, value) to the named target, followed
// implicitly by a sync event, per component B's contract.
func (r *Registry) Write(e event.InputEvent, target string) error {
	r.mu.Lock()
	d, ok := r.devs[target]
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUinputNotAvailable, target)
	}
	if !hasCapability(d.capabilities(), e.Type, e.Code) {
		return fmt.Errorf("%w: %s does not expose (%d,%d)", ErrEventNotHandled, target, e.Type, e.Code)
	}
	if err := d.write(e.Type, e.Code, e.Value); err != nil {
		return err
	}
	return d.sync()
}

// Close tears down every created device. Best-effort: the first error
// encountered is returned but every device is still attempted.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var firstErr error
	for name, d := range r.devs {
		if err := d.close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close %s: %w", name, err)
		}
		delete(r.devs, name)
	}
	return firstErr
}

// CloseOne tears down and forgets a single device (used when a
// per-device forward uinput is no longer needed, e.g. its source was
// unplugged mid-injection).
func (r *Registry) CloseOne(name string) error {
	r.mu.Lock()
	d, ok := r.devs[name]
	if ok {
		delete(r.devs, name)
	}
	r.mu.Unlock()
	if !ok {
		return nil
	}
	return d.close()
}

func hasCapability(caps Capabilities, typ event.EvType, code event.EvCode) bool {
	switch typ {
	case event.EvKey:
		for _, k := range caps.Keys {
			if k == code {
				return true
			}
		}
	case event.EvRel:
		for _, r := range caps.Rels {
			if r == code {
				return true
			}
		}
	case event.EvAbs:
		for _, a := range caps.Abs {
			if a.Code == code {
				return true
			}
		}
	case event.EvSyn:
		return true
	}
	return false
}

func (r *Registry) newDevice(name string, caps Capabilities) (device, error) {
	if r.mode == ModeIntrospection {
		return &introspectionDevice{caps: caps}, nil
	}
	return newRealDevice(name, caps)
}

// introspectionDevice backs ModeIntrospection: it reports capabilities
// faithfully but silently discards every write, matching the editor
// process' unprivileged preview mode.
type introspectionDevice struct {
	caps Capabilities
}

func (d *introspectionDevice) write(event.EvType, event.EvCode, int32) error { return nil }
func (d *introspectionDevice) sync() error                                  { return nil }
func (d *introspectionDevice) close() error                                 { return nil }
func (d *introspectionDevice) capabilities() Capabilities                   { return d.caps }
