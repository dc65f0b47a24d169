package mapping

import (
	"testing"

	"github.com/input-remapper/inputremapperd/internal/event"
)

func keyConfig(code event.EvCode) event.InputConfig {
	cfg, err := event.NewInputConfig(event.EvKey, code, "origin-a", nil)
	if err != nil {
		panic(err)
	}
	return cfg
}

func TestValidateKeyMacroRejectsEmptySymbol(t *testing.T) {
	m := New(event.NewCombination(keyConfig(30)), "keyboard", OutputKeyMacro)
	m.KeyMacro = KeyMacroOutput{ReleaseTimeout: 1}
	if m.Validate() {
		t.Fatal("expected validation failure for empty symbol")
	}
	found := false
	for _, e := range m.Errors() {
		if e.Path == "key_macro.symbol" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a key_macro.symbol error, got %+v", m.Errors())
	}
}

func TestValidateKeyMacroAccepted(t *testing.T) {
	m := New(event.NewCombination(keyConfig(30)), "keyboard", OutputKeyMacro)
	m.KeyMacro = KeyMacroOutput{Symbol: "a", ReleaseTimeout: 0.3}
	if !m.Validate() {
		t.Fatalf("expected valid mapping, got errors: %+v", m.Errors())
	}
}

func TestValidateAnalogRangeChecks(t *testing.T) {
	threshold := 30
	absCfg, _ := event.NewInputConfig(event.EvAbs, 0, "origin-a", nil)
	_ = threshold
	m := New(event.NewCombination(absCfg), "mouse", OutputAnalog)
	m.Analog = AnalogOutput{OutputType: event.EvRel, OutputCode: 0, Gain: 1, Expo: 2, Deadzone: 0.95}
	if m.Validate() {
		t.Fatal("expected validation failure for out-of-range expo/deadzone")
	}
}

func TestValidateAnalogRequiresExactlyOneAnalogInput(t *testing.T) {
	absCfg, _ := event.NewInputConfig(event.EvAbs, 0, "origin-a", nil)
	m := New(event.NewCombination(keyConfig(30), absCfg), "mouse", OutputAnalog)
	m.Analog = AnalogOutput{OutputType: event.EvRel, OutputCode: 0, Gain: 1, Expo: 0, Deadzone: 0.1}
	if !m.Validate() {
		t.Fatalf("expected valid: one key input does not count as analog, got %+v", m.Errors())
	}
}

func TestKeyMacroRejectsAnalogAxisAsAxisInCombination(t *testing.T) {
	absCfg, _ := event.NewInputConfig(event.EvAbs, 0, "origin-a", nil)
	m := New(event.NewCombination(keyConfig(30), absCfg), "keyboard", OutputKeyMacro)
	m.KeyMacro = KeyMacroOutput{Symbol: "a", ReleaseTimeout: 0.3}
	if m.Validate() {
		t.Fatal("expected failure: combination is not all button-like")
	}
}

func TestPresetRejectsDuplicateCombination(t *testing.T) {
	p := NewPreset("test")
	m1 := New(event.NewCombination(keyConfig(30)), "keyboard", OutputKeyMacro)
	m1.KeyMacro = KeyMacroOutput{Symbol: "a", ReleaseTimeout: 0.3}
	m2 := New(event.NewCombination(keyConfig(30)), "keyboard", OutputKeyMacro)
	m2.KeyMacro = KeyMacroOutput{Symbol: "b", ReleaseTimeout: 0.3}

	if err := p.Add(m1); err != nil {
		t.Fatalf("unexpected error adding m1: %v", err)
	}
	if err := p.Add(m2); err == nil {
		t.Fatal("expected duplicate combination to be rejected")
	}
	if p.Len() != 1 {
		t.Fatalf("expected 1 mapping, got %d", p.Len())
	}
}

func TestPresetValidFiltersInvalid(t *testing.T) {
	p := NewPreset("test")
	valid := New(event.NewCombination(keyConfig(30)), "keyboard", OutputKeyMacro)
	valid.KeyMacro = KeyMacroOutput{Symbol: "a", ReleaseTimeout: 0.3}

	invalid := New(event.NewCombination(keyConfig(31)), "keyboard", OutputKeyMacro)
	// no symbol set: invalid, but still added (preset keeps invalid mappings)

	if err := p.Add(valid); err != nil {
		t.Fatal(err)
	}
	if err := p.Add(invalid); err != nil {
		t.Fatal(err)
	}
	if p.Len() != 2 {
		t.Fatalf("expected both mappings retained, got %d", p.Len())
	}
	if len(p.Valid()) != 1 {
		t.Fatalf("expected 1 valid mapping, got %d", len(p.Valid()))
	}
}
