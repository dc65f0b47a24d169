package uinputdev

import "github.com/input-remapper/inputremapperd/internal/event"

// Gamepad button and axis codes, named per the kernel input-event-codes
// uapi header (the same naming convention other_examples/bnema-waymon
// uses for evdev.BTN_LEFT/REL_X/etc., generalized here to the gamepad
// range since go-evdev only exports the constants it re-derives from
// the same header).
const (
	btnSouth  event.EvCode = 0x130
	btnEast   event.EvCode = 0x131
	btnNorth  event.EvCode = 0x133
	btnWest   event.EvCode = 0x134
	btnTL     event.EvCode = 0x136
	btnTR     event.EvCode = 0x137
	btnTL2    event.EvCode = 0x138
	btnTR2    event.EvCode = 0x139
	btnSelect event.EvCode = 0x13a
	btnStart  event.EvCode = 0x13b
	btnMode   event.EvCode = 0x13c
	btnThumbL event.EvCode = 0x13d
	btnThumbR event.EvCode = 0x13e

	absX    event.EvCode = 0x00
	absY    event.EvCode = 0x01
	absZ    event.EvCode = 0x02
	absRX   event.EvCode = 0x03
	absRY   event.EvCode = 0x04
	absRZ   event.EvCode = 0x05
	absHat0X event.EvCode = 0x10
	absHat0Y event.EvCode = 0x11

	btnLeft   event.EvCode = 0x110
	btnRight  event.EvCode = 0x111
	btnMiddle event.EvCode = 0x112
	btnSide   event.EvCode = 0x113
	btnExtra  event.EvCode = 0x114

	relX      event.EvCode = 0x00
	relY      event.EvCode = 0x01
	relWheel  event.EvCode = 0x08
	relHWheel event.EvCode = 0x06
)

// allKeyCodes covers the standard kernel EV_KEY range a keyboard
// uinput exposes (1..248), the same range palaver's raw-uinput sibling
// (miken90-fkey) enables for 0..255.
func allKeyCodes() []event.EvCode {
	out := make([]event.EvCode, 0, 248)
	for c := event.EvCode(1); c <= 248; c++ {
		out = append(out, c)
	}
	return out
}

func mouseButtons() []event.EvCode {
	return []event.EvCode{btnLeft, btnRight, btnMiddle, btnSide, btnExtra}
}

func gamepadButtons() []event.EvCode {
	return []event.EvCode{
		btnSouth, btnEast, btnNorth, btnWest, btnTL, btnTR, btnTL2, btnTR2,
		btnSelect, btnStart, btnMode, btnThumbL, btnThumbR,
	}
}

func gamepadAxes() []AbsAxis {
	axis := func(code event.EvCode) AbsAxis { return AbsAxis{Code: code, Min: -32768, Max: 32767, Flat: 16} }
	return []AbsAxis{
		axis(absX), axis(absY), axis(absZ), axis(absRX), axis(absRY), axis(absRZ),
		{Code: absHat0X, Min: -1, Max: 1}, {Code: absHat0Y, Min: -1, Max: 1},
	}
}

// catalogFor returns the fixed capability set for one of the four
// global target names.
func catalogFor(name string) (Capabilities, bool) {
	switch name {
	case Keyboard:
		return Capabilities{Keys: allKeyCodes()}, true
	case Mouse:
		return Capabilities{Keys: mouseButtons(), Rels: []event.EvCode{relX, relY, relWheel, relHWheel}}, true
	case Gamepad:
		return Capabilities{Keys: gamepadButtons(), Abs: gamepadAxes()}, true
	case KeyboardAndMouse:
		return Capabilities{
			Keys: append(allKeyCodes(), mouseButtons()...),
			Rels: []event.EvCode{relX, relY, relWheel, relHWheel},
		}, true
	}
	return Capabilities{}, false
}
