package injector

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/input-remapper/inputremapperd/internal/device"
	"github.com/input-remapper/inputremapperd/internal/mapping"
	"github.com/input-remapper/inputremapperd/internal/symboltable"
	"github.com/input-remapper/inputremapperd/internal/uinputdev"
)

// Grouper resolves a device group key to its current Group, satisfied
// by *internal/device.Enumerator.
type Grouper interface {
	Refresh(includeSelf bool) ([]device.Group, error)
}

// Supervisor tracks at most one RUNNING Injection per device group key
// (testable property 9): a second start for an already-running group
// stops the first before starting the new one. Every exported method
// that reads or changes the injection map takes Supervisor's lock while
// it does so: Start holds it for the whole call, while Stop, StopAll
// and GetState release it before stopping or querying an injection,
// and Groups takes no lock. internal/control's command loop calls in
// from one goroutine, so calls from it never overlap.
type Supervisor struct {
	registry Registry
	open     Opener
	symbols  *symboltable.Table
	grouper  Grouper
	presets  string // directory LoadPreset resolves preset names against

	mu         sync.Mutex
	injections map[string]*Injection
}

// NewSupervisor builds a Supervisor. presetDir is the directory preset
// names are resolved against (name -> presetDir/name.json), matching
// spec.md §2's preset file layout.
func NewSupervisor(registry Registry, grouper Grouper, symbols *symboltable.Table, presetDir string) *Supervisor {
	return &Supervisor{
		registry:   registry,
		open:       openEvdevNode,
		symbols:    symbols,
		grouper:    grouper,
		presets:    presetDir,
		injections: make(map[string]*Injection),
	}
}

// Start begins (or restarts) an injection for groupKey using the named
// preset. If groupKey already has a RUNNING injection, it is stopped
// first -- invariant 9 never allows two live injections on one group.
// started reports whether the new injection reached RUNNING.
func (s *Supervisor) Start(groupKey, presetName string) (started bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.injections[groupKey]; ok {
		existing.stop()
		delete(s.injections, groupKey)
	}

	groups, err := s.grouper.Refresh(false)
	if err != nil {
		return false, fmt.Errorf("injector: refresh devices: %w", err)
	}
	var group device.Group
	found := false
	for _, g := range groups {
		if g.Key == groupKey {
			group, found = g, true
			break
		}
	}
	if !found {
		return false, fmt.Errorf("injector: device group %q not present", groupKey)
	}

	preset, loadErrs, err := mapping.LoadFile(filepath.Join(s.presets, presetName+".json"))
	if err != nil {
		return false, fmt.Errorf("injector: load preset %q: %w", presetName, err)
	}
	if len(loadErrs) > 0 {
		return false, fmt.Errorf("injector: preset %q has %d invalid mapping(s): %w", presetName, len(loadErrs), loadErrs[0])
	}

	inj := start(startConfig{
		groupKey: groupKey,
		group:    group,
		preset:   preset,
		symbols:  s.symbols,
		registry: s.registry,
		open:     s.open,
	})
	s.injections[groupKey] = inj
	return inj.GetState().Phase == PhaseRunning, nil
}

// Stop stops groupKey's injection, if any. It is a no-op for an
// unknown or already-stopped group key.
func (s *Supervisor) Stop(groupKey string) {
	s.mu.Lock()
	inj, ok := s.injections[groupKey]
	if ok {
		delete(s.injections, groupKey)
	}
	s.mu.Unlock()
	if ok {
		inj.stop()
	}
}

// StopAll stops every tracked injection, per spec.md's stop_all
// control operation.
func (s *Supervisor) StopAll() {
	s.mu.Lock()
	injs := make([]*Injection, 0, len(s.injections))
	for k, inj := range s.injections {
		injs = append(injs, inj)
		delete(s.injections, k)
	}
	s.mu.Unlock()
	for _, inj := range injs {
		inj.stop()
	}
}

// GetState returns groupKey's current injection state.
func (s *Supervisor) GetState(groupKey string) (State, bool) {
	s.mu.Lock()
	inj, ok := s.injections[groupKey]
	s.mu.Unlock()
	if !ok {
		return State{}, false
	}
	return inj.GetState(), true
}

// Groups lists every device group the Supervisor's Grouper currently
// sees, for autoload to iterate.
func (s *Supervisor) Groups() ([]device.Group, error) {
	return s.grouper.Refresh(false)
}

// SetPresetDir changes the directory preset names resolve against,
// per spec.md §6's set_config_dir control operation.
func (s *Supervisor) SetPresetDir(dir string) {
	s.mu.Lock()
	s.presets = dir
	s.mu.Unlock()
}

// This compile-time assertion checks that *uinputdev.Registry
// satisfies the injector.Registry interface; it adds no behavior.
var _ Registry = (*uinputdev.Registry)(nil)
