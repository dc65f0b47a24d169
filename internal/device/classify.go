package device

import "github.com/input-remapper/inputremapperd/internal/event"

// Type is one of the device classifications spec.md's component A
// assigns, in priority order (see classify).
type Type string

const (
	TypeGraphicsTablet Type = "graphics-tablet"
	TypeTouchpad       Type = "touchpad"
	TypeGamepad        Type = "gamepad"
	TypeMouse          Type = "mouse"
	TypeCamera         Type = "camera"
	TypeKeyboard       Type = "keyboard"
	TypeUnknown        Type = "unknown"
)

// Capability codes used only for classification, named per the kernel
// input-event-codes uapi header the way uinputdev/catalog.go names
// its gamepad/mouse codes.
const (
	btnStylus        event.EvCode = 0x14b
	absMtPositionX   event.EvCode = 0x35
	keyCamera        event.EvCode = 0xd4
	keyA             event.EvCode = 30
	absX             event.EvCode = 0x00
	absY             event.EvCode = 0x01
	relX             event.EvCode = 0x00
	relY             event.EvCode = 0x01
	relWheel         event.EvCode = 0x08
	btnLeft          event.EvCode = 0x110
	btnSouth         event.EvCode = 0x130
	btnEast          event.EvCode = 0x131
	btnThumbL        event.EvCode = 0x13d
)

var gamepadButtonCodes = []event.EvCode{btnSouth, btnEast, btnThumbL}

// snapshot is the subset of a device's identity and capability
// bitmaps classification needs, decoupled from go-evdev so unit tests
// can construct fixtures without a real /dev/input node.
type snapshot struct {
	Name  string
	Phys  string
	Bus   uint16
	Vendor uint16
	Product uint16
	Types []event.EvType
	Keys  map[event.EvCode]bool
	Rels  map[event.EvCode]bool
	Abs   map[event.EvCode]bool
}

func (s snapshot) hasType(t event.EvType) bool {
	for _, x := range s.Types {
		if x == t {
			return true
		}
	}
	return false
}

// classify assigns the first matching rule, in the order spec.md §4.A
// mandates: stylus devices are checked before gamepad/mouse because
// graphics tablets also expose axes that would otherwise match those
// rules.
func classify(s snapshot) Type {
	if s.Keys[btnStylus] {
		return TypeGraphicsTablet
	}
	if s.Abs[absMtPositionX] {
		return TypeTouchpad
	}
	hasGamepadButton := false
	for _, c := range gamepadButtonCodes {
		if s.Keys[c] {
			hasGamepadButton = true
			break
		}
	}
	if hasGamepadButton && s.Abs[absX] && s.Abs[absY] {
		return TypeGamepad
	}
	if s.Rels[relX] && s.Rels[relY] && s.Rels[relWheel] && s.Keys[btnLeft] {
		return TypeMouse
	}
	if len(s.Keys) == 1 && s.Keys[keyCamera] {
		return TypeCamera
	}
	if s.Keys[keyA] {
		return TypeKeyboard
	}
	return TypeUnknown
}
