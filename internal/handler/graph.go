// Package handler's graph.go assembles a validated preset into the
// per-signature dispatch table the reader loop (internal/reader)
// drives: component G of SPEC_FULL.md, built on component H's
// handler/leaf primitives.
package handler

import (
	"fmt"
	"strings"
	"time"

	"github.com/input-remapper/inputremapperd/internal/axis"
	"github.com/input-remapper/inputremapperd/internal/event"
	"github.com/input-remapper/inputremapperd/internal/macro"
	"github.com/input-remapper/inputremapperd/internal/mapping"
)

// Writer is the union of every output capability a built graph's
// handlers need; *uinputdev.Registry satisfies it structurally.
type Writer interface {
	Write(e event.InputEvent, target string) error
}

// HandlerGraph dispatches one raw InputEvent to every handler
// registered for its signature, in registration order, stopping at
// the first Consumed result (Chain lets a later handler on the same
// signature still see the event; NotHandled is reserved for a future
// passthrough handler type, since every handler graph.go builds today
// always consumes what it is given).
type HandlerGraph struct {
	bySignature map[event.Signature][]Handler
}

// Dispatch runs e through the handlers registered for its signature,
// in order, stopping at the first Consumed. It reports whether any handler claimed the event (Consumed or
// Chain): the reader uses this to decide whether to also forward the
// raw event to the per-device passthrough uinput.
func (g *HandlerGraph) Dispatch(e event.InputEvent) bool {
	sig := event.Signature{Type: e.Type, Code: e.Code, Origin: e.Origin}
	handlers, ok := g.bySignature[sig]
	if !ok {
		return false
	}
	handled := false
	for _, h := range handlers {
		switch h.Handle(e) {
		case Consumed:
			return true
		case Chain:
			handled = true
			continue
		case NotHandled:
		}
	}
	return handled
}

// leafAdapter lets an AbsToBtnHandler/RelToBtnHandler's synthetic
// Press/Release feed a signature's HierarchyHandler as if the
// combination's terminal key had been pressed/released directly.
type leafAdapter struct {
	target *HierarchyHandler
	sig    event.Signature
}

func (a *leafAdapter) Press() {
	a.target.Handle(event.New(a.sig.Type, a.sig.Code, 1, a.sig.Origin))
}

func (a *leafAdapter) Release() {
	a.target.Handle(event.New(a.sig.Type, a.sig.Code, 0, a.sig.Origin))
}

// Build assembles a HandlerGraph from every valid mapping in p.
// catalog resolves abs axis ranges for analog transforms; writer is
// the injection's output registry; sched is the single scheduler the
// injection's macros and axis tickers/timers share; symbols resolves
// key-macro symbol names; vars is the macro engine's shared variable
// map. Invalid mappings are skipped; Build never fails outright, since
// a preset with one bad mapping should still serve the rest (matching
// spec.md §4.D's per-mapping, not per-preset, validation granularity).
func Build(p *mapping.Preset, catalog *Catalog, writer Writer, sched Scheduler, symbols macro.SymbolLookup, vars *macro.VarMap) (*HandlerGraph, error) {
	combosBySig := make(map[event.Signature][]*CombinationHandler)
	g := &HandlerGraph{bySignature: make(map[event.Signature][]Handler)}

	for _, m := range p.Valid() {
		switch m.Kind {
		case mapping.OutputKeyMacro:
			leaf, err := buildLeaf(m, writer, sched, symbols, vars)
			if err != nil {
				continue
			}
			combo := NewCombinationHandler(m.Combination, leaf)
			for _, sig := range m.Combination.Signatures() {
				combosBySig[sig] = append(combosBySig[sig], combo)
			}
		case mapping.OutputAnalog:
			if err := buildAnalog(m, catalog, writer, sched, g); err != nil {
				continue
			}
		}
	}

	for sig, combos := range combosBySig {
		hh := NewHierarchyHandler(combos)
		g.bySignature[sig] = append(g.bySignature[sig], hh)

		for _, cfg := range signatureConfigsNeedingLatch(combos, sig) {
			adapter := &leafAdapter{target: hh, sig: sig}
			g.bySignature[sig] = wireAxisLatch(g.bySignature[sig], cfg, catalog, adapter, sched)
		}
	}

	return g, nil
}

// buildLeaf resolves a key_macro mapping's symbol into either a plain
// KeyHandler (single key name) or a compiled macro.Engine (anything
// else), matching the original implementation's single "symbol" field
// serving both roles.
func buildLeaf(m *mapping.Mapping, writer Writer, sched Scheduler, symbols macro.SymbolLookup, vars *macro.VarMap) (Leaf, error) {
	sym := m.KeyMacro.Symbol
	if !looksLikeMacro(sym) {
		code, ok := symbols(sym)
		if !ok {
			return nil, fmt.Errorf("unknown symbol %q", sym)
		}
		return &KeyHandler{Code: code, Writer: writer, Target: m.TargetUinput, Origin: macroOrigin(m)}, nil
	}
	prog, err := macro.Compile(sym)
	if err != nil {
		return nil, fmt.Errorf("compiling macro %q: %w", sym, err)
	}
	return macro.NewEngine(prog, sched, writer, symbols, vars, m.TargetUinput, macroOrigin(m)), nil
}

// looksLikeMacro distinguishes a bare key name ("a", "KEY_A") from a
// macro expression: the grammar's only top-level forms besides a bare
// identifier use '(' to introduce arguments.
func looksLikeMacro(sym string) bool {
	return strings.ContainsAny(sym, "(.+")
}

func macroOrigin(m *mapping.Mapping) string {
	terminal, _ := m.Combination.Terminal()
	return terminal.Origin
}

// buildAnalog wires one analog mapping's single analog-defining input
// directly to the matching axis transform handler, registered under
// that input's signature.
func buildAnalog(m *mapping.Mapping, catalog *Catalog, writer Writer, sched Scheduler, g *HandlerGraph) error {
	analogConfigs := m.Combination.AnalogConfigs()
	if len(analogConfigs) != 1 {
		return fmt.Errorf("analog mapping must resolve exactly one analog input, got %d", len(analogConfigs))
	}
	in := analogConfigs[0]
	sig := in.Signature()
	params := axisParams(m)

	var h Handler
	switch {
	case in.Type == event.EvAbs && m.Analog.OutputType == event.EvAbs:
		src, _ := catalog.Source(in.Origin, int(in.Code))
		tgt := catalog.Target(m.TargetUinput, int(m.Analog.OutputCode))
		h = &AbsToAbsHandler{
			SourceMin: src.Min, SourceMax: src.Max,
			TargetMin: tgt.Min, TargetMax: tgt.Max,
			Params: params, OutputType: m.Analog.OutputType, OutputCode: m.Analog.OutputCode,
			Target: m.TargetUinput, Origin: in.Origin, Writer: writer,
		}
	case in.Type == event.EvAbs && m.Analog.OutputType == event.EvRel:
		src, _ := catalog.Source(in.Origin, int(in.Code))
		h = &AbsToRelHandler{
			SourceMin: src.Min, SourceMax: src.Max, Params: params,
			OutputType: m.Analog.OutputType, OutputCode: m.Analog.OutputCode,
			Target: m.TargetUinput, Origin: in.Origin, Writer: writer, Sched: sched,
		}
	case in.Type == event.EvRel && m.Analog.OutputType == event.EvAbs:
		tgt := catalog.Target(m.TargetUinput, int(m.Analog.OutputCode))
		h = &RelToAbsHandler{
			InputCutoff: m.Analog.RelToAbsInputCutoff,
			TargetMin:   tgt.Min, TargetMax: tgt.Max, Params: params,
			OutputType: m.Analog.OutputType, OutputCode: m.Analog.OutputCode,
			Target: m.TargetUinput, Origin: in.Origin, Writer: writer,
		}
	default:
		h = &RelToRelHandler{
			InputCutoff: m.Analog.RelToAbsInputCutoff,
			Params:      params, OutputType: m.Analog.OutputType, OutputCode: m.Analog.OutputCode,
			Target: m.TargetUinput, Origin: in.Origin, Writer: writer,
		}
	}
	g.bySignature[sig] = append(g.bySignature[sig], h)
	return nil
}

func axisParams(m *mapping.Mapping) axis.Params {
	return axis.Params{Deadzone: m.Analog.Deadzone, Expo: m.Analog.Expo, Gain: m.Analog.Gain}
}

// signatureConfigsNeedingLatch returns the first InputConfig among
// combos' sub-inputs at sig that carries an AnalogThreshold: an
// axis-as-button input that needs an Abs/RelToBtnHandler latch spliced
// in ahead of the combination dispatch, rather than being fed raw. At
// most one config is returned per signature, so every combination on
// sig shares that first config's threshold.
func signatureConfigsNeedingLatch(combos []*CombinationHandler, sig event.Signature) []event.InputConfig {
	var out []event.InputConfig
	seen := false
	for _, c := range combos {
		for _, cfg := range c.combination.Configs() {
			if cfg.Signature() != sig || !cfg.IsAxisAsButton() {
				continue
			}
			if seen {
				continue
			}
			seen = true
			out = append(out, cfg)
		}
	}
	return out
}

// wireAxisLatch replaces sig's direct HierarchyHandler registration
// with a latch handler (Abs or RelToBtnHandler) whose Leaf feeds the
// HierarchyHandler synthetically, and returns the new handler list for
// sig (the latch only, since raw samples must never reach the
// combination dispatch un-latched).
func wireAxisLatch(existing []Handler, cfg event.InputConfig, catalog *Catalog, adapter *leafAdapter, sched Scheduler) []Handler {
	threshold := 0
	if cfg.AnalogThreshold != nil {
		threshold = *cfg.AnalogThreshold
	}
	if cfg.Type == event.EvAbs {
		rng, ok := catalog.Source(cfg.Origin, int(cfg.Code))
		if !ok {
			rng = AxisRange{Min: -32768, Max: 32767}
		}
		return []Handler{&AbsToBtnHandler{
			Min: rng.Min, Max: rng.Max,
			ThresholdPercent: threshold,
			Leaf:             adapter,
			Sched:            sched,
		}}
	}
	return []Handler{&RelToBtnHandler{
		SpeedThreshold: threshold,
		ReleaseAfter:   100 * time.Millisecond,
		Leaf:           adapter,
		Sched:          sched,
	}}
}
