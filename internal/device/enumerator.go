// Package device implements SPEC_FULL.md component A: scanning every
// kernel input node, classifying it, and grouping nodes that belong to
// the same physical device. Grounded on palaver's
// internal/hotkey/hotkey_linux.go (FindKeyboard/isKeyboard), generalized
// from "find one keyboard" to "enumerate and group every device".
package device

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/input-remapper/inputremapperd/internal/event"
)

// Group is SPEC_FULL.md's DeviceGroup: every kernel input node
// belonging to one physical device, aggregated.
type Group struct {
	Key   string
	Name  string
	Paths []string
	Types []Type
}

// HasType reports whether any node in the group classified as t.
func (g Group) HasType(t Type) bool {
	for _, x := range g.Types {
		if x == t {
			return true
		}
	}
	return false
}

// denylist excludes devices whose name contains one of these
// substrings (case-insensitive), per spec.md's "Yubikey, Eee PC
// hotkeys" examples.
var denylist = []string{"yubikey", "eee pc wmi hotkeys"}

// selfPrefix marks nodes this daemon itself created (the synthetic
// output devices from internal/uinputdev); they are excluded from
// enumeration results by default.
const selfPrefix = "input-remapper"

// reader abstracts the subset of an open evdev device the enumerator
// needs, so tests can supply fixtures without a real /dev/input node.
type reader interface {
	Name() (string, error)
	Phys() (string, error)
	BusVendorProduct() (bus, vendor, product uint16, err error)
	CapableTypes() []event.EvType
	CapableEvents(t event.EvType) []event.EvCode
	Close() error
}

// Opener opens one device node for enumeration. The production
// implementation (Linux-only) wraps go-evdev; tests inject a fake.
type Opener func(path string) (reader, error)

// Lister returns every candidate device path to probe. Production
// globs /dev/input/event*; tests inject a fixed list.
type Lister func() ([]string, error)

// Enumerator discovers and groups input devices. Refresh is idempotent
// and may be called at any time; it never affects already-running
// injections, only what a future start() sees.
type Enumerator struct {
	open Opener
	list Lister
}

// New returns an Enumerator backed by the real kernel (Linux-only).
func New() *Enumerator {
	return &Enumerator{open: openEvdev, list: globInputNodes}
}

// NewWithBackend builds an Enumerator over injected opener/lister
// functions, for unit tests.
func NewWithBackend(open Opener, list Lister) *Enumerator {
	return &Enumerator{open: open, list: list}
}

func globInputNodes() ([]string, error) {
	matches, err := filepath.Glob("/dev/input/event*")
	if err != nil {
		return nil, fmt.Errorf("device: glob /dev/input/event*: %w", err)
	}
	sort.Slice(matches, func(i, j int) bool {
		ni, _ := strconv.Atoi(strings.TrimPrefix(matches[i], "/dev/input/event"))
		nj, _ := strconv.Atoi(strings.TrimPrefix(matches[j], "/dev/input/event"))
		return ni < nj
	})
	return matches, nil
}

type identityKey struct {
	bus, vendor, product uint16
	physHead             string
}

type probed struct {
	path    string
	name    string
	typ     Type
	ident   identityKey
}

// Refresh scans every input node, classifies it, and groups nodes by
// (bus, vendor, product, first phys segment). includeSelf controls
// whether this daemon's own synthetic outputs are returned (normally
// false; true is only useful for diagnostics).
func (e *Enumerator) Refresh(includeSelf bool) ([]Group, error) {
	paths, err := e.list()
	if err != nil {
		return nil, err
	}

	var nodes []probed
	for _, path := range paths {
		dev, err := e.open(path)
		if err != nil {
			continue
		}
		name, _ := dev.Name()
		if !includeSelf && strings.HasPrefix(name, selfPrefix) {
			dev.Close()
			continue
		}
		if isDenied(name) {
			dev.Close()
			continue
		}

		bus, vendor, product, _ := dev.BusVendorProduct()
		phys, _ := dev.Phys()

		snap := snapshot{Name: name, Phys: phys, Bus: bus, Vendor: vendor, Product: product,
			Types: dev.CapableTypes(), Keys: map[event.EvCode]bool{}, Rels: map[event.EvCode]bool{}, Abs: map[event.EvCode]bool{}}
		if snap.hasType(event.EvKey) {
			for _, c := range dev.CapableEvents(event.EvKey) {
				snap.Keys[c] = true
			}
		}
		if snap.hasType(event.EvRel) {
			for _, c := range dev.CapableEvents(event.EvRel) {
				snap.Rels[c] = true
			}
		}
		if snap.hasType(event.EvAbs) {
			for _, c := range dev.CapableEvents(event.EvAbs) {
				snap.Abs[c] = true
			}
		}
		dev.Close()

		typ := classify(snap)
		if typ == TypeCamera {
			continue
		}

		nodes = append(nodes, probed{
			path: path,
			name: name,
			typ:  typ,
			ident: identityKey{bus: bus, vendor: vendor, product: product, physHead: firstPhysSegment(phys)},
		})
	}

	return groupNodes(nodes), nil
}

func isDenied(name string) bool {
	lower := strings.ToLower(name)
	for _, d := range denylist {
		if strings.Contains(lower, d) {
			return true
		}
	}
	return false
}

func firstPhysSegment(phys string) string {
	if i := strings.IndexAny(phys, "/"); i >= 0 {
		return phys[:i]
	}
	return phys
}

// groupNodes aggregates nodes sharing an identityKey into Groups,
// picking the shortest contained name as the group name and resolving
// collisions with a numeric suffix, per spec.md §4.A. The first
// non-colliding variant becomes the stable Key. Duplicate device paths
// across groups are not expected to occur from a single scan; if they
// somehow do, first-wins per spec.md §9.
func groupNodes(nodes []probed) []Group {
	order := make([]identityKey, 0)
	byIdent := make(map[identityKey][]probed)
	for _, n := range nodes {
		if _, ok := byIdent[n.ident]; !ok {
			order = append(order, n.ident)
		}
		byIdent[n.ident] = append(byIdent[n.ident], n)
	}

	usedNames := make(map[string]int)
	groups := make([]Group, 0, len(order))
	seenPath := make(map[string]bool)
	for _, ident := range order {
		members := byIdent[ident]

		name := members[0].name
		for _, m := range members {
			if len(m.name) < len(name) {
				name = m.name
			}
		}

		baseName := name
		usedNames[baseName]++
		finalName := baseName
		if n := usedNames[baseName]; n > 1 {
			finalName = fmt.Sprintf("%s %d", baseName, n)
		}

		typeSet := make(map[Type]bool)
		paths := make([]string, 0, len(members))
		for _, m := range members {
			if seenPath[m.path] {
				continue
			}
			seenPath[m.path] = true
			paths = append(paths, m.path)
			if m.typ != TypeUnknown {
				typeSet[m.typ] = true
			}
		}

		types := make([]Type, 0, len(typeSet))
		for t := range typeSet {
			types = append(types, t)
		}
		sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

		groups = append(groups, Group{Key: finalName, Name: finalName, Paths: paths, Types: types})
	}
	return groups
}
