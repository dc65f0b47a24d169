package uinputdev

import (
	"errors"
	"testing"

	"github.com/input-remapper/inputremapperd/internal/event"
)

func TestEnsureTargetIsIdempotent(t *testing.T) {
	r := New(ModeIntrospection)
	if err := r.EnsureTarget(Keyboard); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := r.EnsureTarget(Keyboard); err != nil {
		t.Fatalf("re-request should be a no-op, got: %v", err)
	}
	if _, ok := r.Get(Keyboard); !ok {
		t.Fatal("expected keyboard target to exist")
	}
}

func TestWriteUnknownTarget(t *testing.T) {
	r := New(ModeIntrospection)
	err := r.Write(event.New(event.EvKey, 30, 1, "kbd"), "nonexistent")
	if !errors.Is(err, ErrUinputNotAvailable) {
		t.Fatalf("got %v, want ErrUinputNotAvailable", err)
	}
}

func TestWriteUnhandledCapability(t *testing.T) {
	r := New(ModeIntrospection)
	if err := r.EnsureTarget(Mouse); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := r.Write(event.New(event.EvKey, 30, 1, "kbd"), Mouse)
	if !errors.Is(err, ErrEventNotHandled) {
		t.Fatalf("got %v, want ErrEventNotHandled", err)
	}
}

func TestWriteSucceedsForHandledCapability(t *testing.T) {
	r := New(ModeIntrospection)
	if err := r.EnsureTarget(Keyboard); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := r.Write(event.New(event.EvKey, 30, 1, "kbd"), Keyboard); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestForwardedStripsAbsVolume(t *testing.T) {
	r := New(ModeIntrospection)
	caps := Capabilities{Keys: []event.EvCode{30}, Abs: []AbsAxis{{Code: 32, Min: 0, Max: 100}}}
	name, err := r.RegisterForwarded("Some Keyboard", caps, DeviceID{Bustype: 3, Vendor: 1, Product: 1, Version: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := r.Get(name)
	if len(got.Abs) != 0 {
		t.Fatalf("expected ABS_VOLUME to be stripped, got %v", got.Abs)
	}
}
