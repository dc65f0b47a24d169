package mapping

import (
	"strings"
	"testing"
)

const samplePreset = `{
	"mappings": [
		{
			"input_combination": [{"type": 1, "code": 30, "origin_hash": "dev-a"}],
			"target_uinput": "keyboard",
			"kind": "key_macro",
			"symbol": "b",
			"release_timeout": 0.3
		},
		{
			"input_combination": [{"type": 3, "code": 0, "origin_hash": "dev-b"}],
			"target_uinput": "mouse",
			"kind": "analog",
			"output_type": 2,
			"output_code": 0,
			"gain": 1.0,
			"expo": 0.2,
			"deadzone": 0.1,
			"unknown_future_field": "ignored"
		}
	],
	"preset_name": "my preset"
}`

func TestLoadParsesBothKinds(t *testing.T) {
	preset, loadErrs, err := Load(strings.NewReader(samplePreset), "my-preset")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(loadErrs) != 0 {
		t.Fatalf("unexpected per-mapping errors: %v", loadErrs)
	}
	if preset.Len() != 2 {
		t.Fatalf("expected 2 mappings, got %d", preset.Len())
	}
	for _, m := range preset.Mappings() {
		if !m.Valid() {
			t.Errorf("expected mapping to validate, got errors: %+v", m.Errors())
		}
	}
}

func TestLoadSkipsMalformedMappingButKeepsRest(t *testing.T) {
	doc := `{"mappings": [
		{"input_combination": [], "target_uinput": "keyboard", "kind": "key_macro", "symbol": "a"},
		{"input_combination": [{"type": 1, "code": 30}], "target_uinput": "keyboard", "kind": "key_macro", "symbol": "a", "release_timeout": 0.3}
	]}`
	preset, loadErrs, err := Load(strings.NewReader(doc), "p")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(loadErrs) != 1 {
		t.Fatalf("expected exactly 1 load error for the empty combination, got %v", loadErrs)
	}
	if preset.Len() != 1 {
		t.Fatalf("expected the well-formed mapping to still load, got %d", preset.Len())
	}
}
