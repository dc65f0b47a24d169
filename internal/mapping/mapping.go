// Package mapping implements SPEC_FULL.md component D: the immutable
// Mapping/Preset data model, with the structural validation spec.md §4.D
// requires. Grounded on the shape of the original implementation's
// inputremapper/mapping.py (a preset is a collection of input-combination
// keyed records with metadata, loaded/saved as JSON) generalized from a
// flat key->symbol dict to the two-variant output union spec.md §3
// defines (KeyMacro, Analog).
package mapping

import (
	"fmt"
	"math"

	"github.com/input-remapper/inputremapperd/internal/event"
)

// OutputKind discriminates Mapping's tagged output variant.
type OutputKind string

const (
	OutputKeyMacro OutputKind = "key_macro"
	OutputAnalog   OutputKind = "analog"
)

// KeyMacroOutput covers both plain key presses and macro programs: a
// symbol that is just a key name (e.g. "a") runs as a single key-emit
// leaf, anything else is handed to internal/macro to parse, matching
// the original implementation's single "symbol" field serving both
// roles.
type KeyMacroOutput struct {
	Symbol                 string
	ReleaseCombinationKeys bool
	ReleaseTimeout         float64 // seconds
}

// AnalogOutput drives an axis handler (internal/axis) that maps one
// analog input to an analog or relative output.
type AnalogOutput struct {
	OutputType          event.EvType
	OutputCode          event.EvCode
	Gain                float64
	Expo                float64
	Deadzone            float64
	RelToAbsInputCutoff float64
	ForceReleaseTimeout bool
}

// Mapping is one immutable rule: an input combination bound to a
// target uinput and exactly one output action. A Mapping is never
// mutated in place after construction except by Validate recomputing
// its validity; a changed mapping is a new Mapping value.
type Mapping struct {
	Combination event.InputCombination
	TargetUinput string
	Kind        OutputKind
	KeyMacro    KeyMacroOutput
	Analog      AnalogOutput

	valid bool
	errs  []FieldError
}

// FieldError names the offending field path, matching spec.md §4.D's
// "reported with a path" requirement.
type FieldError struct {
	Path    string
	Message string
}

func (e FieldError) Error() string { return fmt.Sprintf("%s: %s", e.Path, e.Message) }

// Valid reports whether the last Validate call accepted this mapping.
func (m *Mapping) Valid() bool { return m.valid }

// Errors returns the field errors from the last Validate call, empty
// if the mapping is valid.
func (m *Mapping) Errors() []FieldError { return m.errs }

// knownTypes is the kernel event-type taxonomy component D validates
// type/code pairs against; internal/event only models the three the
// injector ever needs to transform.
var knownTypes = map[event.EvType]bool{
	event.EvKey: true,
	event.EvRel: true,
	event.EvAbs: true,
}

// Validate applies spec.md §4.D's structural validation and records
// the outcome on the mapping (idempotent; safe to call repeatedly,
// e.g. after a symbol table reload changes what resolves).
func (m *Mapping) Validate() bool {
	m.errs = m.errs[:0]

	if m.Combination.IsEmpty() {
		m.addErr("input_combination", "must contain at least one input")
	}
	analogConfigs := 0
	for i, c := range m.Combination.Configs() {
		if !knownTypes[c.Type] {
			m.addErr(fmt.Sprintf("input_combination[%d].type", i), "unknown event type")
		}
		if c.Type == event.EvKey && c.AnalogThreshold != nil {
			m.addErr(fmt.Sprintf("input_combination[%d].analog_threshold", i), "must be absent for EV_KEY inputs")
		}
		if c.IsAnalog() {
			analogConfigs++
		}
	}
	if m.TargetUinput == "" {
		m.addErr("target_uinput", "must not be empty")
	}

	switch m.Kind {
	case OutputKeyMacro:
		if m.KeyMacro.Symbol == "" {
			m.addErr("key_macro.symbol", "must not be empty")
		}
		if m.KeyMacro.ReleaseTimeout <= 0 {
			m.addErr("key_macro.release_timeout", "must be > 0")
		}
		if !m.Combination.AllButtonLike() {
			m.addErr("input_combination", "key_macro mapping requires every input to resolve to a discrete press/release")
		}
	case OutputAnalog:
		if !knownTypes[m.Analog.OutputType] {
			m.addErr("analog.output_type", "unknown event type")
		}
		if math.IsNaN(m.Analog.Gain) || math.IsInf(m.Analog.Gain, 0) {
			m.addErr("analog.gain", "must be finite")
		}
		if m.Analog.Expo < -1 || m.Analog.Expo > 1 {
			m.addErr("analog.expo", "must be in [-1, 1]")
		}
		if m.Analog.Deadzone < 0 || m.Analog.Deadzone >= 0.9 {
			m.addErr("analog.deadzone", "must be in [0, 0.9)")
		}
		if analogConfigs != 1 {
			m.addErr("input_combination", "analog mapping requires exactly one analog-defining input")
		}
	default:
		m.addErr("kind", "unknown output kind")
	}

	m.valid = len(m.errs) == 0
	return m.valid
}

func (m *Mapping) addErr(path, msg string) {
	m.errs = append(m.errs, FieldError{Path: path, Message: msg})
}

// New constructs a bare Mapping for combination/kind; callers set the
// KeyMacro/Analog field that applies to kind, then call Validate.
func New(combination event.InputCombination, targetUinput string, kind OutputKind) *Mapping {
	return &Mapping{Combination: combination, TargetUinput: targetUinput, Kind: kind}
}
