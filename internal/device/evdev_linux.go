//go:build linux

package device

import (
	"fmt"

	evdev "github.com/holoplot/go-evdev"

	"github.com/input-remapper/inputremapperd/internal/event"
)

// evdevReader adapts *evdev.InputDevice to the enumerator's reader
// interface.
type evdevReader struct {
	dev *evdev.InputDevice
}

func openEvdev(path string) (reader, error) {
	dev, err := evdev.Open(path)
	if err != nil {
		return nil, fmt.Errorf("device: open %s: %w", path, err)
	}
	return &evdevReader{dev: dev}, nil
}

func (r *evdevReader) Name() (string, error) { return r.dev.Name() }
func (r *evdevReader) Phys() (string, error) { return r.dev.Phys() }

func (r *evdevReader) BusVendorProduct() (bus, vendor, product uint16, err error) {
	id, err := r.dev.InputID()
	if err != nil {
		return 0, 0, 0, err
	}
	return id.Bustype, id.Vendor, id.Product, nil
}

func (r *evdevReader) CapableTypes() []event.EvType {
	return r.dev.CapableTypes()
}

func (r *evdevReader) CapableEvents(t event.EvType) []event.EvCode {
	return r.dev.CapableEvents(t)
}

func (r *evdevReader) Close() error { return r.dev.Close() }
