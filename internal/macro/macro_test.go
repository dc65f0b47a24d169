package macro

import (
	"sync"
	"testing"
	"time"

	"github.com/input-remapper/inputremapperd/internal/event"
)

type recordedWrite struct {
	typ    event.EvType
	code   event.EvCode
	value  int32
	target string
}

type fakeWriter struct {
	mu     sync.Mutex
	writes []recordedWrite
}

func (w *fakeWriter) Write(e event.InputEvent, target string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.writes = append(w.writes, recordedWrite{typ: e.Type, code: e.Code, value: e.Value, target: target})
	return nil
}

func (w *fakeWriter) snapshot() []recordedWrite {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]recordedWrite, len(w.writes))
	copy(out, w.writes)
	return out
}

var testSymbols = map[string]event.EvCode{
	"a":     30,
	"b":     48,
	"shift": 42,
}

func lookupTestSymbol(name string) (event.EvCode, bool) {
	c, ok := testSymbols[name]
	return c, ok
}

func TestParseUnknownTaskIsParseError(t *testing.T) {
	_, cerr := Compile("frobnicate(a)")
	if cerr == nil {
		t.Fatal("expected compile error for unknown task")
	}
	if _, ok := cerr.(*ParseError); !ok {
		t.Fatalf("expected *ParseError, got %T: %v", cerr, cerr)
	}
}

func TestParseUnbalancedParens(t *testing.T) {
	_, err := Parse("key(a")
	if err == nil {
		t.Fatal("expected a parse error for unbalanced parens")
	}
}

func TestCompileAndRunSimpleKey(t *testing.T) {
	prog, err := Compile("key(a)")
	if err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}
	w := &fakeWriter{}
	e := NewEngine(prog, SyncScheduler{}, w, lookupTestSymbol, NewVarMap(), "keyboard", "origin-a")
	e.Press()

	writes := w.snapshot()
	if len(writes) != 2 {
		t.Fatalf("expected press+release writes, got %d: %+v", len(writes), writes)
	}
	if writes[0].value != 1 || writes[1].value != 0 {
		t.Fatalf("expected press(1) then release(0), got %+v", writes)
	}
}

func TestCompileSequence(t *testing.T) {
	prog, err := Compile("key(a).key(b)")
	if err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}
	w := &fakeWriter{}
	e := NewEngine(prog, SyncScheduler{}, w, lookupTestSymbol, NewVarMap(), "keyboard", "origin-a")
	e.Press()

	writes := w.snapshot()
	if len(writes) != 4 {
		t.Fatalf("expected 4 writes (two key taps), got %d: %+v", len(writes), writes)
	}
	if writes[0].code != 30 || writes[2].code != 48 {
		t.Fatalf("expected a then b in program order, got %+v", writes)
	}
}

func TestCompileRepeat(t *testing.T) {
	prog, err := Compile("repeat(3, key(a))")
	if err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}
	w := &fakeWriter{}
	e := NewEngine(prog, SyncScheduler{}, w, lookupTestSymbol, NewVarMap(), "keyboard", "origin-a")
	e.Press()

	writes := w.snapshot()
	if len(writes) != 6 {
		t.Fatalf("expected 3 key taps (6 writes), got %d: %+v", len(writes), writes)
	}
}

func TestSetAndAddCoordinateAcrossMacros(t *testing.T) {
	vars := NewVarMap()
	p1, err := Compile("set(counter, 1)")
	if err != nil {
		t.Fatal(err)
	}
	p2, err := Compile("add(counter, 2)")
	if err != nil {
		t.Fatal(err)
	}
	w := &fakeWriter{}
	NewEngine(p1, SyncScheduler{}, w, lookupTestSymbol, vars, "keyboard", "o").Press()
	NewEngine(p2, SyncScheduler{}, w, lookupTestSymbol, vars, "keyboard", "o").Press()

	if got := vars.Get("counter"); got != 3 {
		t.Fatalf("expected shared variable to read 3, got %v", got)
	}
}

func TestHoldStopsEmittingAfterRelease(t *testing.T) {
	prog, err := Compile("hold(key(a))")
	if err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}
	w := &fakeWriter{}
	sched := NewRealScheduler()
	defer sched.Close()
	e := NewEngine(prog, sched, w, lookupTestSymbol, NewVarMap(), "keyboard", "origin-a")

	e.Press()
	time.Sleep(30 * time.Millisecond)
	e.Release()
	time.Sleep(30 * time.Millisecond)

	countAtRelease := len(w.snapshot())
	time.Sleep(50 * time.Millisecond)
	countAfter := len(w.snapshot())

	if countAtRelease == 0 {
		t.Fatal("expected hold to have emitted at least once before release")
	}
	if countAfter != countAtRelease {
		t.Fatalf("expected no further emissions after release, got %d -> %d", countAtRelease, countAfter)
	}
}

func TestIfTapRunsThenOnEarlyRelease(t *testing.T) {
	prog, err := Compile("if_tap(key(a), key(b), 50)")
	if err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}
	w := &fakeWriter{}
	sched := NewRealScheduler()
	defer sched.Close()
	e := NewEngine(prog, sched, w, lookupTestSymbol, NewVarMap(), "keyboard", "origin-a")

	e.Press()
	time.Sleep(5 * time.Millisecond)
	e.Release()
	time.Sleep(30 * time.Millisecond)

	writes := w.snapshot()
	if len(writes) != 2 || writes[0].code != 30 {
		t.Fatalf("expected the tap branch (symbol a), got %+v", writes)
	}
}

func TestIfTapRunsElseOnTimeout(t *testing.T) {
	prog, err := Compile("if_tap(key(a), key(b), 20)")
	if err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}
	w := &fakeWriter{}
	sched := NewRealScheduler()
	defer sched.Close()
	e := NewEngine(prog, sched, w, lookupTestSymbol, NewVarMap(), "keyboard", "origin-a")

	e.Press()
	time.Sleep(60 * time.Millisecond)

	writes := w.snapshot()
	if len(writes) != 2 || writes[0].code != 48 {
		t.Fatalf("expected the hold branch (symbol b), got %+v", writes)
	}
}

func TestParallelRunsBothBranches(t *testing.T) {
	prog, err := Compile("key(a) + key(b)")
	if err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}
	w := &fakeWriter{}
	e := NewEngine(prog, SyncScheduler{}, w, lookupTestSymbol, NewVarMap(), "keyboard", "origin-a")
	e.Press()

	writes := w.snapshot()
	if len(writes) != 4 {
		t.Fatalf("expected both branches to emit (4 writes), got %d: %+v", len(writes), writes)
	}
}
