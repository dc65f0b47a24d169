// Package injector implements SPEC_FULL.md component J: the injector
// lifecycle state machine (grab, copy capabilities, build the handler
// graph, run one reader per grabbed device, ungrab) plus the
// supervisor that tracks one Injection per device group and enforces
// "at most one RUNNING injection per group_key" (testable property 9).
//
// The select-multiplexed command loop shape internal/control drives
// this package with is grounded on other_examples/oxoao-resetti's
// ctl.Controller.run: one goroutine owns all mutation of a shared
// catalog, every other caller only ever posts a request onto a
// channel the loop selects on.
package injector

import (
	"errors"
	"fmt"
	"sync"
	"time"

	evdev "github.com/holoplot/go-evdev"

	"github.com/input-remapper/inputremapperd/internal/device"
	"github.com/input-remapper/inputremapperd/internal/event"
	"github.com/input-remapper/inputremapperd/internal/handler"
	"github.com/input-remapper/inputremapperd/internal/macro"
	"github.com/input-remapper/inputremapperd/internal/mapping"
	"github.com/input-remapper/inputremapperd/internal/reader"
	"github.com/input-remapper/inputremapperd/internal/symboltable"
	"github.com/input-remapper/inputremapperd/internal/uinputdev"
)

// GrabRetryAttempts and GrabRetryInterval are the retry budget spec.md
// §4.I assigns to device grabbing: 10 attempts at 200ms each.
const (
	GrabRetryAttempts = 10
	GrabRetryInterval = 200 * time.Millisecond
)

// GrabbedNode is the subset of an opened evdev device node the
// injector needs: the capability/identity surface internal/device
// already reads for enumeration, plus Grab/Ungrab/ReadOne for the
// reader loop this device drives once grabbed.
type GrabbedNode interface {
	Name() (string, error)
	InputID() (evdev.InputID, error)
	CapableTypes() []event.EvType
	CapableEvents(t event.EvType) []event.EvCode
	AbsInfos() (map[evdev.EvCode]evdev.AbsInfo, error)
	Grab() error
	Ungrab() error
	ReadOne() (*evdev.InputEvent, error)
	Close() error
}

// Opener opens one device node path for grabbing. Production wraps
// evdev.Open (Linux-only); tests inject a fake.
type Opener func(path string) (GrabbedNode, error)

func openEvdevNode(path string) (GrabbedNode, error) {
	dev, err := evdev.Open(path)
	if err != nil {
		return nil, fmt.Errorf("injector: open %s: %w", path, err)
	}
	return dev, nil
}

// Registry is the global output registry surface an injection needs:
// satisfied by *internal/uinputdev.Registry.
type Registry interface {
	EnsureTarget(name string) error
	RegisterForwarded(sourceName string, caps uinputdev.Capabilities, id uinputdev.DeviceID) (string, error)
	Get(name string) (uinputdev.Capabilities, bool)
	Write(e event.InputEvent, target string) error
	CloseOne(name string) error
}

// Injection is one running (or terminated) instance of a preset bound
// to a device group: the unit a Supervisor tracks by group key.
type Injection struct {
	groupKey string

	mu    sync.Mutex
	state State

	stopOnce sync.Once
	readers  []*reader.Reader
	forwards []string // forwarded uinput names this injection created, for CloseOne on stop
	registry Registry

	savedNumlock    int
	hasSavedNumlock bool

	readerDone chan struct{}
}

// GetState returns the injection's current lifecycle state.
func (inj *Injection) GetState() State {
	inj.mu.Lock()
	defer inj.mu.Unlock()
	return inj.state
}

func (inj *Injection) setState(s State) {
	inj.mu.Lock()
	inj.state = s
	inj.mu.Unlock()
}

// startConfig bundles everything one start() needs, so Supervisor.Start
// stays a thin per-group-key dispatch and the actual worker logic is
// independently testable.
type startConfig struct {
	groupKey string
	group    device.Group
	preset   *mapping.Preset
	symbols  *symboltable.Table
	registry Registry
	open     Opener
}

// start runs the STARTING worker synchronously: grab every device path
// in the group (retrying per path up to GrabRetryAttempts times), copy
// capabilities into a forwarded uinput per device, build the handler
// graph, and spawn one reader per grabbed device. It returns the
// constructed Injection already in RUNNING (or a terminal error state).
func start(cfg startConfig) *Injection {
	inj := &Injection{groupKey: cfg.groupKey, registry: cfg.registry, readerDone: make(chan struct{})}
	inj.setState(State{Phase: PhaseStarting})

	if value, ok := numlockState(); ok {
		inj.savedNumlock = value
		inj.hasSavedNumlock = true
	}

	var grabs []grabbedDevice
	for _, path := range cfg.group.Paths {
		node, err := grabWithRetry(cfg.open, path)
		if err != nil {
			if errors.Is(err, ErrUpgradeEvdev) {
				inj.setState(State{Phase: PhaseUpgradeEvdev, Reason: err.Error()})
				return inj
			}
			continue
		}
		grabs = append(grabs, grabbedDevice{node: node, path: path})
	}

	if len(grabs) == 0 {
		inj.setState(State{Phase: PhaseNoGrab, Reason: ErrNoGrab.Error()})
		return inj
	}

	catalog := handler.NewCatalog()
	vars := macro.NewVarMap()
	sched := macro.NewRealScheduler()

	abortCapabilityCopy := func(err error) *Injection {
		for _, name := range inj.forwards {
			_ = cfg.registry.CloseOne(name)
		}
		releaseAll(grabs)
		sched.Close()
		inj.setState(State{Phase: PhaseFailed, Reason: fmt.Errorf("%w: %v", ErrCapability, err).Error()})
		return inj
	}

	for _, g := range grabs {
		caps, id, err := sourceCapabilities(g.node)
		if err != nil {
			return abortCapabilityCopy(err)
		}
		for _, a := range caps.Abs {
			catalog.RegisterSource(cfg.groupKey, int(a.Code), handler.AxisRange{Min: a.Min, Max: a.Max})
		}
		forwardName, err := cfg.registry.RegisterForwarded(g.path, caps, id)
		if err != nil {
			return abortCapabilityCopy(err)
		}
		inj.forwards = append(inj.forwards, forwardName)
	}
	for _, name := range []string{uinputdev.Keyboard, uinputdev.Mouse, uinputdev.Gamepad, uinputdev.KeyboardAndMouse} {
		_ = cfg.registry.EnsureTarget(name)
		if caps, ok := cfg.registry.Get(name); ok {
			for _, a := range caps.Abs {
				catalog.RegisterTarget(name, int(a.Code), handler.AxisRange{Min: a.Min, Max: a.Max})
			}
		}
	}

	graph, err := handler.Build(cfg.preset, catalog, cfg.registry, sched, symbolLookup(cfg.symbols), vars)
	if err != nil {
		for _, name := range inj.forwards {
			_ = cfg.registry.CloseOne(name)
		}
		releaseAll(grabs)
		sched.Close()
		inj.setState(State{Phase: PhaseFailed, Reason: err.Error()})
		return inj
	}

	var wg sync.WaitGroup
	for i, g := range grabs {
		forwardName := inj.forwards[i]
		r := reader.New(g.node, cfg.groupKey, forwardName, graph, cfg.registry)
		inj.readers = append(inj.readers, r)
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = r.Run()
		}()
	}
	go func() {
		wg.Wait()
		sched.Close()
		close(inj.readerDone)
	}()

	inj.setState(State{Phase: PhaseRunning})
	return inj
}

// grabWithRetry opens and exclusively grabs path, retrying up to
// GrabRetryAttempts times at GrabRetryInterval apart, per spec.md
// §4.I and §5 ("briefly after plug or after a previous ungrab, the
// device may still be held").
func grabWithRetry(open Opener, path string) (GrabbedNode, error) {
	var lastErr error
	for attempt := 0; attempt < GrabRetryAttempts; attempt++ {
		node, err := open(path)
		if err != nil {
			lastErr = err
			time.Sleep(GrabRetryInterval)
			continue
		}
		if err := node.Grab(); err != nil {
			_ = node.Close()
			lastErr = err
			time.Sleep(GrabRetryInterval)
			continue
		}
		return node, nil
	}
	return nil, fmt.Errorf("injector: grab %s after %d attempts: %w", path, GrabRetryAttempts, lastErr)
}

// grabbedDevice pairs a successfully grabbed node with the path it was
// opened from, so releaseAll and start's per-device loop share one type.
type grabbedDevice struct {
	node GrabbedNode
	path string
}

func releaseAll(grabs []grabbedDevice) {
	for _, g := range grabs {
		_ = g.node.Ungrab()
		_ = g.node.Close()
	}
}

// sourceCapabilities reads node's capability bitmaps and identity into
// the shape internal/uinputdev.Registry.RegisterForwarded consumes.
func sourceCapabilities(node GrabbedNode) (uinputdev.Capabilities, uinputdev.DeviceID, error) {
	var caps uinputdev.Capabilities
	for _, t := range node.CapableTypes() {
		switch t {
		case event.EvKey:
			caps.Keys = node.CapableEvents(event.EvKey)
		case event.EvRel:
			caps.Rels = node.CapableEvents(event.EvRel)
		case event.EvAbs:
			infos, err := node.AbsInfos()
			if err != nil {
				return caps, uinputdev.DeviceID{}, fmt.Errorf("%w: abs info: %v", ErrCapability, err)
			}
			for _, code := range node.CapableEvents(event.EvAbs) {
				info := infos[code]
				caps.Abs = append(caps.Abs, uinputdev.AbsAxis{
					Code: code, Min: info.Minimum, Max: info.Maximum, Fuzz: info.Fuzz, Flat: info.Flat,
				})
			}
		}
	}
	id, err := node.InputID()
	if err != nil {
		return caps, uinputdev.DeviceID{}, fmt.Errorf("%w: input id: %v", ErrCapability, err)
	}
	return caps, uinputdev.DeviceID{Bustype: id.Bustype, Vendor: id.Vendor, Product: id.Product, Version: id.Version}, nil
}

func symbolLookup(t *symboltable.Table) macro.SymbolLookup {
	return func(name string) (event.EvCode, bool) {
		code, err := t.Lookup(name)
		if err != nil {
			return 0, false
		}
		return code, true
	}
}

// stop ungrabs every device, closes the forwarded uinputs, restores
// numlock, and transitions to STOPPED. It writes no release events:
// a key that a handler or macro of this injection pressed on an output
// uinput is left as it is. It blocks until every reader goroutine has
// exited (bounded by the ~5s cap spec.md §5 assigns the supervisor for
// a hard force-stop, enforced by the caller, not here); an injection
// that never started a reader returns at once.
func (inj *Injection) stop() {
	inj.stopOnce.Do(func() {
		for _, r := range inj.readers {
			r.Stop()
		}
		if len(inj.readers) > 0 {
			<-inj.readerDone
		}
		for _, name := range inj.forwards {
			_ = inj.registry.CloseOne(name)
		}
		if inj.hasSavedNumlock {
			_ = restoreNumlockState(inj.savedNumlock)
		}
		inj.setState(State{Phase: PhaseStopped})
	})
}
