package mapping

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/input-remapper/inputremapperd/internal/event"
)

// jsonInputConfig is the on-disk shape of one InputConfig, matching
// spec.md §6: `{type, code, origin_hash?, analog_threshold?}`.
type jsonInputConfig struct {
	Type            int  `json:"type"`
	Code            int  `json:"code"`
	Origin          string `json:"origin_hash,omitempty"`
	AnalogThreshold *int `json:"analog_threshold,omitempty"`
}

// jsonMapping is the on-disk shape of one Mapping. Unknown fields are
// ignored by encoding/json by default, satisfying the "forward
// compatible" requirement without extra plumbing.
type jsonMapping struct {
	InputCombination []jsonInputConfig `json:"input_combination"`
	TargetUinput     string            `json:"target_uinput"`
	Kind             string            `json:"kind"`

	Symbol                 string  `json:"symbol,omitempty"`
	ReleaseCombinationKeys bool    `json:"release_combination_keys,omitempty"`
	ReleaseTimeout         float64 `json:"release_timeout,omitempty"`

	OutputType          int     `json:"output_type,omitempty"`
	OutputCode          int     `json:"output_code,omitempty"`
	Gain                float64 `json:"gain,omitempty"`
	Expo                float64 `json:"expo,omitempty"`
	Deadzone            float64 `json:"deadzone,omitempty"`
	RelToAbsInputCutoff float64 `json:"rel_to_abs_input_cutoff,omitempty"`
	ForceReleaseTimeout bool    `json:"force_release_timeout,omitempty"`
}

// jsonPreset is the top-level on-disk preset document: `{mappings:
// [...], ...metadata}`. Metadata keys are ignored by Load and not
// written by Save, so they do not survive a load/save round trip.
type jsonPreset struct {
	Mappings []jsonMapping          `json:"mappings"`
	Metadata map[string]interface{} `json:"-"`
}

// Load reads a preset document from r and returns a Preset with every
// mapping Validated. Malformed individual mappings are skipped with a
// logged-at-caller error rather than aborting the whole load, matching
// the original implementation's per-line tolerance in mapping.py's
// load().
func Load(r io.Reader, name string) (*Preset, []error, error) {
	var raw map[string]json.RawMessage
	dec := json.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return nil, nil, fmt.Errorf("mapping: decode preset: %w", err)
	}

	var doc jsonPreset
	if m, ok := raw["mappings"]; ok {
		if err := json.Unmarshal(m, &doc.Mappings); err != nil {
			return nil, nil, fmt.Errorf("mapping: decode mappings: %w", err)
		}
	}

	preset := NewPreset(name)
	var loadErrs []error
	for i, jm := range doc.Mappings {
		m, err := fromJSON(jm)
		if err != nil {
			loadErrs = append(loadErrs, fmt.Errorf("mapping[%d]: %w", i, err))
			continue
		}
		if err := preset.Add(m); err != nil {
			loadErrs = append(loadErrs, fmt.Errorf("mapping[%d]: %w", i, err))
		}
	}
	return preset, loadErrs, nil
}

// LoadFile opens path and calls Load, naming the preset after the
// file's base name (without extension).
func LoadFile(path string) (*Preset, []error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("mapping: open %s: %w", path, err)
	}
	defer f.Close()
	name := filepath.Base(path)
	name = name[:len(name)-len(filepath.Ext(name))]
	return Load(f, name)
}

func fromJSON(jm jsonMapping) (*Mapping, error) {
	if len(jm.InputCombination) == 0 {
		return nil, fmt.Errorf("empty input_combination")
	}
	configs := make([]event.InputConfig, 0, len(jm.InputCombination))
	for i, jc := range jm.InputCombination {
		cfg, err := event.NewInputConfig(event.EvType(jc.Type), event.EvCode(jc.Code), jc.Origin, jc.AnalogThreshold)
		if err != nil {
			return nil, fmt.Errorf("input_combination[%d]: %w", i, err)
		}
		configs = append(configs, cfg)
	}
	combination := event.NewCombination(configs...)

	var kind OutputKind
	switch jm.Kind {
	case string(OutputKeyMacro):
		kind = OutputKeyMacro
	case string(OutputAnalog):
		kind = OutputAnalog
	default:
		return nil, fmt.Errorf("unknown kind %q", jm.Kind)
	}

	m := New(combination, jm.TargetUinput, kind)
	switch kind {
	case OutputKeyMacro:
		m.KeyMacro = KeyMacroOutput{
			Symbol:                 jm.Symbol,
			ReleaseCombinationKeys: jm.ReleaseCombinationKeys,
			ReleaseTimeout:         jm.ReleaseTimeout,
		}
	case OutputAnalog:
		m.Analog = AnalogOutput{
			OutputType:          event.EvType(jm.OutputType),
			OutputCode:          event.EvCode(jm.OutputCode),
			Gain:                jm.Gain,
			Expo:                jm.Expo,
			Deadzone:            jm.Deadzone,
			RelToAbsInputCutoff: jm.RelToAbsInputCutoff,
			ForceReleaseTimeout: jm.ForceReleaseTimeout,
		}
	}
	m.Validate()
	return m, nil
}

func toJSON(m *Mapping) jsonMapping {
	jm := jsonMapping{TargetUinput: m.TargetUinput, Kind: string(m.Kind)}
	for _, c := range m.Combination.Configs() {
		jm.InputCombination = append(jm.InputCombination, jsonInputConfig{
			Type: int(c.Type), Code: int(c.Code), Origin: c.Origin, AnalogThreshold: c.AnalogThreshold,
		})
	}
	switch m.Kind {
	case OutputKeyMacro:
		jm.Symbol = m.KeyMacro.Symbol
		jm.ReleaseCombinationKeys = m.KeyMacro.ReleaseCombinationKeys
		jm.ReleaseTimeout = m.KeyMacro.ReleaseTimeout
	case OutputAnalog:
		jm.OutputType = int(m.Analog.OutputType)
		jm.OutputCode = int(m.Analog.OutputCode)
		jm.Gain = m.Analog.Gain
		jm.Expo = m.Analog.Expo
		jm.Deadzone = m.Analog.Deadzone
		jm.RelToAbsInputCutoff = m.Analog.RelToAbsInputCutoff
		jm.ForceReleaseTimeout = m.Analog.ForceReleaseTimeout
	}
	return jm
}

// Save writes p as the preset JSON document to path, atomically (via
// temp-file + rename), matching palaver's internal/config.Save pattern.
func Save(path string, p *Preset) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".preset-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	doc := struct {
		Mappings []jsonMapping `json:"mappings"`
	}{}
	for _, m := range p.Mappings() {
		doc.Mappings = append(doc.Mappings, toJSON(m))
	}

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "    ")
	if err := enc.Encode(doc); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, path)
}
