// Package event defines the typed input/output event records and the
// trigger-side value types (InputConfig, InputCombination) that flow
// through the device readers, the handler graph, and the macro engine.
package event

import (
	"fmt"
	"sort"
	"time"

	evdev "github.com/holoplot/go-evdev"
)

// EvType and EvCode reuse the kernel input-event taxonomy exposed by
// go-evdev instead of redefining local constants, the way palaver's
// hotkey_linux.go reuses evdev.EV_REL/evdev.EV_KEY directly.
type EvType = evdev.EvType
type EvCode = evdev.EvCode

const (
	EvSyn = evdev.EV_SYN
	EvKey = evdev.EV_KEY
	EvRel = evdev.EV_REL
	EvAbs = evdev.EV_ABS
)

// Action is a side-channel classification a handler attaches to an
// event as it flows downstream (e.g. "this press originated as a
// negative-axis trigger"). It never mutates the original event record.
type Action int

const (
	// ActionNegativeTrigger marks a synthetic press/release produced by
	// an abs-to-btn or rel-to-btn handler whose threshold was negative.
	ActionNegativeTrigger Action = iota
	// ActionPositiveTrigger is the positive-threshold counterpart.
	ActionPositiveTrigger
	// ActionSynthetic marks any event synthesized by a handler rather
	// than read off a physical device.
	ActionSynthetic
)

// Actions is a small set of Action tags. The zero value is the empty set.
type Actions map[Action]struct{}

// Has reports whether a is present in the set.
func (a Actions) Has(act Action) bool {
	_, ok := a[act]
	return ok
}

// With returns a new set with act added, leaving the receiver untouched.
func (a Actions) With(act Action) Actions {
	out := make(Actions, len(a)+1)
	for k := range a {
		out[k] = struct{}{}
	}
	out[act] = struct{}{}
	return out
}

// InputEvent is the (type, code, value, timestamp, origin) tuple that
// flows from a physical device (or a handler that synthesizes one)
// through the pipeline. Equality and hashing ignore Timestamp and
// Actions; Modify never mutates the receiver.
type InputEvent struct {
	Type      EvType
	Code      EvCode
	Value     int32
	Timestamp time.Time
	Origin    string
	Actions   Actions
}

// New constructs an InputEvent stamped with the current time.
func New(typ EvType, code EvCode, value int32, origin string) InputEvent {
	return InputEvent{Type: typ, Code: code, Value: value, Timestamp: time.Now(), Origin: origin}
}

// Equal reports whether e and o describe the same (type, code, value,
// origin), ignoring timestamp and the actions side-channel.
func (e InputEvent) Equal(o InputEvent) bool {
	return e.Type == o.Type && e.Code == o.Code && e.Value == o.Value && e.Origin == o.Origin
}

// EventOption mutates a copy of an InputEvent inside Modify.
type EventOption func(*InputEvent)

// WithValue replaces the event's value.
func WithValue(v int32) EventOption { return func(e *InputEvent) { e.Value = v } }

// WithCode replaces the event's code.
func WithCode(c EvCode) EventOption { return func(e *InputEvent) { e.Code = c } }

// WithType replaces the event's type.
func WithType(t EvType) EventOption { return func(e *InputEvent) { e.Type = t } }

// WithTimestamp replaces the event's timestamp.
func WithTimestamp(t time.Time) EventOption { return func(e *InputEvent) { e.Timestamp = t } }

// WithAction adds an action tag to the copy.
func WithAction(a Action) EventOption {
	return func(e *InputEvent) { e.Actions = e.Actions.With(a) }
}

// Modify returns a new event with the given fields replaced, leaving
// the receiver untouched. The copy's timestamp is set to the current
// time unless WithTimestamp replaces it.
func (e InputEvent) Modify(opts ...EventOption) InputEvent {
	out := e
	out.Timestamp = time.Now()
	for _, opt := range opts {
		opt(&out)
	}
	return out
}

func (e InputEvent) String() string {
	return fmt.Sprintf("InputEvent{type=%d code=%d value=%d origin=%s}", e.Type, e.Code, e.Value, e.Origin)
}

// InputConfig describes one triggering input: (type, code, origin,
// analog_threshold). It is immutable once constructed. AnalogThreshold
// is nil for key inputs and for analog-axis-as-axis inputs; for abs
// inputs it is a percentage in [-100,100], for rel inputs a speed
// value, disambiguating the synthetic press direction for axis-as-
// button handlers.
type InputConfig struct {
	Type            EvType
	Code            EvCode
	Origin          string
	AnalogThreshold *int
}

// NewInputConfig validates and builds an InputConfig. The invariant
// "type EV_KEY implies AnalogThreshold == nil" is enforced here.
func NewInputConfig(typ EvType, code EvCode, origin string, threshold *int) (InputConfig, error) {
	if typ == EvKey && threshold != nil {
		return InputConfig{}, fmt.Errorf("input config: EV_KEY input cannot carry an analog_threshold")
	}
	return InputConfig{Type: typ, Code: code, Origin: origin, AnalogThreshold: threshold}, nil
}

// IsAnalog reports whether this config names an absolute or relative
// axis (as opposed to a discrete key).
func (c InputConfig) IsAnalog() bool {
	return c.Type == EvAbs || c.Type == EvRel
}

// IsAxisAsButton reports whether this analog config is wrapped by an
// abs-to-btn/rel-to-btn handler (i.e. it carries a threshold).
func (c InputConfig) IsAxisAsButton() bool {
	return c.IsAnalog() && c.AnalogThreshold != nil
}

// Matches reports whether an observed event was produced by this
// input. Per spec, matching uses only (type, code, origin) -- the
// threshold only disambiguates synthesized press direction downstream.
func (c InputConfig) Matches(e InputEvent) bool {
	return c.Type == e.Type && c.Code == e.Code && c.Origin == e.Origin
}

// Signature is the (type, code, origin) key used to index the
// HandlerGraph.
type Signature struct {
	Type   EvType
	Code   EvCode
	Origin string
}

// Signature returns the dispatch key for this input.
func (c InputConfig) Signature() Signature {
	return Signature{Type: c.Type, Code: c.Code, Origin: c.Origin}
}

func (c InputConfig) key() string {
	t := -1
	if c.AnalogThreshold != nil {
		t = *c.AnalogThreshold
	}
	return fmt.Sprintf("%d:%d:%s:%d", c.Type, c.Code, c.Origin, t)
}

// InputCombination is an ordered, non-empty tuple of InputConfigs.
// Equality ignores the order of every element but the terminal
// (last) one: a+b+c is the same combination as b+a+c, but c alone
// decides which press completes it.
type InputCombination struct {
	configs []InputConfig
}

// NewCombination builds a combination from an ordered slice of
// configs; the last element is the terminal one.
func NewCombination(configs ...InputConfig) InputCombination {
	cp := make([]InputConfig, len(configs))
	copy(cp, configs)
	return InputCombination{configs: cp}
}

// Empty returns the empty-combination sentinel used for UI-only
// "unconfigured" rows. It must never be grabbed or matched.
func Empty() InputCombination { return InputCombination{} }

// IsEmpty reports whether this is the empty-combination sentinel.
func (c InputCombination) IsEmpty() bool { return len(c.configs) == 0 }

// Len returns the number of sub-inputs.
func (c InputCombination) Len() int { return len(c.configs) }

// Configs returns the combination's sub-inputs in their original
// (authoring) order.
func (c InputCombination) Configs() []InputConfig {
	out := make([]InputConfig, len(c.configs))
	copy(out, c.configs)
	return out
}

// Terminal returns the sub-input whose press completes the
// combination: the last element in authoring order.
func (c InputCombination) Terminal() (InputConfig, bool) {
	if c.IsEmpty() {
		return InputConfig{}, false
	}
	return c.configs[len(c.configs)-1], true
}

// AllButtonLike reports whether every sub-input resolves to a
// discrete press/release, i.e. is a key or a thresholded axis-as-
// button. Required for KeyMacro mappings.
func (c InputCombination) AllButtonLike() bool {
	for _, cfg := range c.configs {
		if cfg.Type == EvKey {
			continue
		}
		if cfg.IsAxisAsButton() {
			continue
		}
		return false
	}
	return true
}

// AnalogConfigs returns every sub-input that directly names an analog
// axis used as an axis (no threshold).
func (c InputCombination) AnalogConfigs() []InputConfig {
	var out []InputConfig
	for _, cfg := range c.configs {
		if cfg.IsAnalog() && cfg.AnalogThreshold == nil {
			out = append(out, cfg)
		}
	}
	return out
}

// Key returns a canonical, order-normalized string uniquely
// identifying this combination under the permutation-equivalence rule:
// every sub-input but the terminal is sorted into a stable order, and
// the terminal is appended last and marked so that two combinations
// sharing a terminal but differing in the other members never collide.
//
// Combinations longer than six sub-inputs are still supported (the
// comparison is canonical-ordering, not full permutation enumeration)
// but the caller is expected to log a warning at preset build time,
// matching the source's "keep the warning" behavior for pathological
// presets.
func (c InputCombination) Key() string {
	if c.IsEmpty() {
		return "∅"
	}
	terminal := c.configs[len(c.configs)-1]
	rest := append([]InputConfig(nil), c.configs[:len(c.configs)-1]...)
	sort.Slice(rest, func(i, j int) bool { return rest[i].key() < rest[j].key() })

	keys := make([]string, 0, len(rest)+1)
	for _, cfg := range rest {
		keys = append(keys, cfg.key())
	}
	keys = append(keys, "T:"+terminal.key())

	out := keys[0]
	for _, k := range keys[1:] {
		out += "|" + k
	}
	return out
}

// Equal reports whether c and o are the same combination under the
// permutation-equivalence rule (testable property 4).
func (c InputCombination) Equal(o InputCombination) bool {
	return c.Key() == o.Key()
}

// Signatures returns the dispatch signature of every sub-input,
// de-duplicated, in authoring order.
func (c InputCombination) Signatures() []Signature {
	seen := make(map[Signature]bool, len(c.configs))
	out := make([]Signature, 0, len(c.configs))
	for _, cfg := range c.configs {
		sig := cfg.Signature()
		if seen[sig] {
			continue
		}
		seen[sig] = true
		out = append(out, sig)
	}
	return out
}
