package device

import (
	"testing"

	"github.com/input-remapper/inputremapperd/internal/event"
)

type fakeReader struct {
	name                   string
	phys                   string
	bus, vendor, product   uint16
	types                  []event.EvType
	keys                   []event.EvCode
	rels                   []event.EvCode
	abs                    []event.EvCode
}

func (f *fakeReader) Name() (string, error) { return f.name, nil }
func (f *fakeReader) Phys() (string, error) { return f.phys, nil }
func (f *fakeReader) BusVendorProduct() (uint16, uint16, uint16, error) {
	return f.bus, f.vendor, f.product, nil
}
func (f *fakeReader) CapableTypes() []event.EvType { return f.types }
func (f *fakeReader) CapableEvents(t event.EvType) []event.EvCode {
	switch t {
	case event.EvKey:
		return f.keys
	case event.EvRel:
		return f.rels
	case event.EvAbs:
		return f.abs
	}
	return nil
}
func (f *fakeReader) Close() error { return nil }

func keyboardFixture(name, path, phys string) *fakeReader {
	return &fakeReader{
		name: name, phys: phys, bus: 3, vendor: 1, product: 2,
		types: []event.EvType{event.EvKey},
		keys:  []event.EvCode{keyA, 16, 44},
	}
}

func newFixtureEnumerator(fixtures map[string]*fakeReader) *Enumerator {
	paths := make([]string, 0, len(fixtures))
	for p := range fixtures {
		paths = append(paths, p)
	}
	return NewWithBackend(
		func(path string) (reader, error) { return fixtures[path], nil },
		func() ([]string, error) { return paths, nil },
	)
}

func TestClassifyKeyboard(t *testing.T) {
	s := snapshot{Keys: map[event.EvCode]bool{keyA: true}}
	if got := classify(s); got != TypeKeyboard {
		t.Fatalf("got %v, want keyboard", got)
	}
}

func TestClassifyStylusBeatsGamepad(t *testing.T) {
	s := snapshot{
		Keys: map[event.EvCode]bool{btnStylus: true, btnSouth: true},
		Abs:  map[event.EvCode]bool{absX: true, absY: true},
	}
	if got := classify(s); got != TypeGraphicsTablet {
		t.Fatalf("got %v, want graphics-tablet", got)
	}
}

func TestClassifyMouse(t *testing.T) {
	s := snapshot{
		Keys: map[event.EvCode]bool{btnLeft: true},
		Rels: map[event.EvCode]bool{relX: true, relY: true, relWheel: true},
	}
	if got := classify(s); got != TypeMouse {
		t.Fatalf("got %v, want mouse", got)
	}
}

func TestClassifyCameraExcluded(t *testing.T) {
	s := snapshot{Keys: map[event.EvCode]bool{keyCamera: true}}
	if got := classify(s); got != TypeCamera {
		t.Fatalf("got %v, want camera", got)
	}
}

func TestRefreshGroupsByIdentity(t *testing.T) {
	kbdEvent := keyboardFixture("Logitech Keyboard", "/dev/input/event0", "usb-0000:00:14.0-1/input0")
	kbdEvent2 := &fakeReader{
		name: "Logitech Keyboard Consumer Control", phys: "usb-0000:00:14.0-1/input1",
		bus: 3, vendor: 1, product: 2, types: []event.EvType{event.EvKey}, keys: []event.EvCode{keyA},
	}
	mouse := &fakeReader{
		name: "Logitech Mouse", phys: "usb-0000:00:14.0-2/input0",
		bus: 3, vendor: 1, product: 3, types: []event.EvType{event.EvRel, event.EvKey},
		keys: []event.EvCode{btnLeft}, rels: []event.EvCode{relX, relY, relWheel},
	}

	e := newFixtureEnumerator(map[string]*fakeReader{
		"/dev/input/event0": kbdEvent,
		"/dev/input/event1": kbdEvent2,
		"/dev/input/event2": mouse,
	})

	groups, err := e.Refresh(false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2: %+v", len(groups), groups)
	}

	var kbdGroup *Group
	for i := range groups {
		if groups[i].HasType(TypeKeyboard) {
			kbdGroup = &groups[i]
		}
	}
	if kbdGroup == nil {
		t.Fatal("expected a keyboard group")
	}
	if len(kbdGroup.Paths) != 2 {
		t.Fatalf("expected keyboard group to combine both nodes, got %v", kbdGroup.Paths)
	}
	if kbdGroup.Name != "Logitech Keyboard" {
		t.Fatalf("expected shortest name to win, got %q", kbdGroup.Name)
	}
}

func TestRefreshExcludesSelfAndDenylist(t *testing.T) {
	self := &fakeReader{name: "input-remapper keyboard", phys: "p0", types: []event.EvType{event.EvKey}, keys: []event.EvCode{keyA}}
	yubi := &fakeReader{name: "Yubikey 4 OTP+FIDO+CCID", phys: "p1", types: []event.EvType{event.EvKey}, keys: []event.EvCode{keyA}}
	e := newFixtureEnumerator(map[string]*fakeReader{
		"/dev/input/event0": self,
		"/dev/input/event1": yubi,
	})
	groups, err := e.Refresh(false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(groups) != 0 {
		t.Fatalf("expected self-produced and denylisted devices to be excluded, got %+v", groups)
	}
}

func TestRefreshNameCollisionSuffix(t *testing.T) {
	a := &fakeReader{name: "Generic Keyboard", phys: "p0", bus: 1, vendor: 1, product: 1, types: []event.EvType{event.EvKey}, keys: []event.EvCode{keyA}}
	b := &fakeReader{name: "Generic Keyboard", phys: "p1", bus: 1, vendor: 1, product: 2, types: []event.EvType{event.EvKey}, keys: []event.EvCode{keyA}}
	e := newFixtureEnumerator(map[string]*fakeReader{
		"/dev/input/event0": a,
		"/dev/input/event1": b,
	})
	groups, err := e.Refresh(false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}
	names := map[string]bool{groups[0].Name: true, groups[1].Name: true}
	if !names["Generic Keyboard"] || !names["Generic Keyboard 2"] {
		t.Fatalf("expected collision suffix, got %v", names)
	}
}
