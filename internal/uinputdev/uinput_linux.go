//go:build linux

// Package uinputdev implements the global output registry (SPEC_FULL.md
// component B): a small fixed catalog of synthetic output devices
// (keyboard, mouse, gamepad, combined keyboard+mouse) plus one
// per-source-device "forwarded" uinput created at injection time.
//
// The low-level device creation in this file is grounded on
// other_examples/miken90-fkey's uinput.go: the same open /dev/uinput,
// UI_SET_EVBIT/UI_SET_KEYBIT ioctl, write-legacy-uinput_user_dev,
// UI_DEV_CREATE sequence, generalized here from keys-only to
// key/relative/absolute capability bits so gamepad and mouse outputs
// can be created too.
package uinputdev

import (
	"fmt"
	"os"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/input-remapper/inputremapperd/internal/event"
)

const uinputMaxNameSize = 80
const absSize = 64

// ioctl request numbers, matching linux/uinput.h.
const (
	uiSetEvBit  = 0x40045564
	uiSetKeyBit = 0x40045565
	uiSetRelBit = 0x40045566
	uiSetAbsBit = 0x40045567
	uiDevCreate = 0x5501
	uiDevDestroy = 0x5502
)

// uinputUserDev mirrors struct uinput_user_dev from linux/uinput.h,
// the legacy (pre UI_DEV_SETUP) device description, chosen for
// portability across kernel versions the way the ioctl-era userspace
// tools (and miken90-fkey's wrapper) do.
type uinputUserDev struct {
	Name       [uinputMaxNameSize]byte
	ID         inputID
	FFEffectsMax uint32
	AbsMax     [absSize]int32
	AbsMin     [absSize]int32
	AbsFuzz    [absSize]int32
	AbsFlat    [absSize]int32
}

type inputID struct {
	Bustype uint16
	Vendor  uint16
	Product uint16
	Version uint16
}

// inputEventWire mirrors struct input_event for the write(2) syscall.
type inputEventWire struct {
	Sec   int64
	Usec  int64
	Type  uint16
	Code  uint16
	Value int32
}

// Capabilities describes the event-type -> code-list bitmap a uinput
// device should expose, and optionally the abs-axis ranges.
type Capabilities struct {
	Keys []event.EvCode
	Rels []event.EvCode
	Abs  []AbsAxis
	// ID carries the source device's identity for a forwarded uinput,
	// copied verbatim per SPEC_FULL.md so hotplug rules keyed on
	// vendor/product apply consistently. Nil for the four fixed global
	// targets, which use a fixed synthetic identity.
	ID *DeviceID
}

// DeviceID mirrors the bustype/vendor/product/version tuple a forward
// uinput copies from its source device.
type DeviceID struct {
	Bustype uint16
	Vendor  uint16
	Product uint16
	Version uint16
}

// AbsAxis is one absolute-axis capability with its reported range,
// used both for the six gamepad axes and for the forwarded uinput's
// copy of a source device's native abs range.
type AbsAxis struct {
	Code  event.EvCode
	Min   int32
	Max   int32
	Fuzz  int32
	Flat  int32
}

// lowLevelDevice is one real /dev/uinput-backed virtual device.
type lowLevelDevice struct {
	fd   int
	name string
}

func openUinput() (int, error) {
	fd, err := unix.Open("/dev/uinput", unix.O_WRONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return -1, fmt.Errorf("uinputdev: open /dev/uinput: %w (is the user in the input group?)", err)
	}
	return fd, nil
}

func ioctlInt(fd int, req uint, arg int) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), uintptr(req), uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}

// createLowLevelDevice opens /dev/uinput and brings up a virtual
// device exposing caps, named name.
func createLowLevelDevice(name string, id inputID, caps Capabilities) (*lowLevelDevice, error) {
	fd, err := openUinput()
	if err != nil {
		return nil, err
	}
	dev := &lowLevelDevice{fd: fd, name: name}

	if len(caps.Keys) > 0 {
		if err := ioctlInt(fd, uiSetEvBit, int(event.EvKey)); err != nil {
			dev.Close()
			return nil, fmt.Errorf("uinputdev: UI_SET_EVBIT(EV_KEY): %w", err)
		}
		for _, k := range caps.Keys {
			if err := ioctlInt(fd, uiSetKeyBit, int(k)); err != nil {
				dev.Close()
				return nil, fmt.Errorf("uinputdev: UI_SET_KEYBIT(%d): %w", k, err)
			}
		}
	}
	if len(caps.Rels) > 0 {
		if err := ioctlInt(fd, uiSetEvBit, int(event.EvRel)); err != nil {
			dev.Close()
			return nil, fmt.Errorf("uinputdev: UI_SET_EVBIT(EV_REL): %w", err)
		}
		for _, r := range caps.Rels {
			if err := ioctlInt(fd, uiSetRelBit, int(r)); err != nil {
				dev.Close()
				return nil, fmt.Errorf("uinputdev: UI_SET_RELBIT(%d): %w", r, err)
			}
		}
	}
	if len(caps.Abs) > 0 {
		if err := ioctlInt(fd, uiSetEvBit, int(event.EvAbs)); err != nil {
			dev.Close()
			return nil, fmt.Errorf("uinputdev: UI_SET_EVBIT(EV_ABS): %w", err)
		}
		for _, a := range caps.Abs {
			if err := ioctlInt(fd, uiSetAbsBit, int(a.Code)); err != nil {
				dev.Close()
				return nil, fmt.Errorf("uinputdev: UI_SET_ABSBIT(%d): %w", a.Code, err)
			}
		}
	}

	var uu uinputUserDev
	copy(uu.Name[:], name)
	uu.ID = id
	for _, a := range caps.Abs {
		if int(a.Code) >= absSize {
			continue
		}
		uu.AbsMin[a.Code] = a.Min
		uu.AbsMax[a.Code] = a.Max
		uu.AbsFuzz[a.Code] = a.Fuzz
		uu.AbsFlat[a.Code] = a.Flat
	}

	buf := (*[unsafe.Sizeof(uu)]byte)(unsafe.Pointer(&uu))[:]
	if _, err := unix.Write(fd, buf); err != nil {
		dev.Close()
		return nil, fmt.Errorf("uinputdev: write uinput_user_dev: %w", err)
	}

	if err := ioctlInt(fd, uiDevCreate, 0); err != nil {
		dev.Close()
		return nil, fmt.Errorf("uinputdev: UI_DEV_CREATE: %w", err)
	}

	// Give udev a moment to create the device node, matching the
	// settle delay observed by every uinput-creating example in the
	// retrieval pack.
	time.Sleep(50 * time.Millisecond)

	return dev, nil
}

// write emits one raw kernel input_event.
func (d *lowLevelDevice) write(typ event.EvType, code event.EvCode, value int32) error {
	now := time.Now()
	ev := inputEventWire{
		Sec:   now.Unix(),
		Usec:  int64(now.Nanosecond() / 1000),
		Type:  uint16(typ),
		Code:  uint16(code),
		Value: value,
	}
	buf := (*[unsafe.Sizeof(ev)]byte)(unsafe.Pointer(&ev))[:]
	_, err := unix.Write(d.fd, buf)
	return err
}

// sync emits a SYN_REPORT, flushing any pending writes to the kernel
// and hence to every consumer reading this device.
func (d *lowLevelDevice) sync() error {
	return d.write(event.EvSyn, 0, 0)
}

// Close destroys the virtual device and releases the file descriptor.
func (d *lowLevelDevice) Close() error {
	if d.fd < 0 {
		return nil
	}
	ioctlInt(d.fd, uiDevDestroy, 0)
	err := unix.Close(d.fd)
	d.fd = -1
	return err
}

// realDevice adapts lowLevelDevice to the registry's device interface.
type realDevice struct {
	low  *lowLevelDevice
	caps Capabilities
}

func newRealDevice(name string, caps Capabilities) (device, error) {
	id := inputID{Bustype: 0x03, Vendor: 0x0001, Product: 0x0001, Version: 1}
	if caps.ID != nil {
		id = inputID{Bustype: caps.ID.Bustype, Vendor: caps.ID.Vendor, Product: caps.ID.Product, Version: caps.ID.Version}
	}
	low, err := createLowLevelDevice(name, id, caps)
	if err != nil {
		return nil, err
	}
	return &realDevice{low: low, caps: caps}, nil
}

func (d *realDevice) write(typ event.EvType, code event.EvCode, value int32) error {
	return d.low.write(typ, code, value)
}
func (d *realDevice) sync() error                { return d.low.sync() }
func (d *realDevice) close() error               { return d.low.Close() }
func (d *realDevice) capabilities() Capabilities { return d.caps }

// Available reports whether /dev/uinput can be opened for writing,
// used to distinguish a genuinely missing kernel feature from a
// permissions problem when building a friendlier startup error.
func Available() bool {
	f, err := os.OpenFile("/dev/uinput", os.O_WRONLY, 0)
	if err != nil {
		return false
	}
	f.Close()
	return true
}
