package injector

import (
	"encoding/json"
	"fmt"
	"os"
)

// AutoloadConfig is the autoload JSON file's shape: group_key -> preset
// name, plus whatever freeform global options a future caller adds
// (preserved verbatim, never interpreted here).
type AutoloadConfig struct {
	Entries map[string]string `json:"-"`
	Raw     map[string]json.RawMessage
}

// LoadAutoloadConfig reads path's group_key -> preset_name JSON object.
// A bare string value is the preset name directly; anything else is
// left in Raw for a future caller (global options live alongside the
// per-group entries in the same object, per spec.md §6).
func LoadAutoloadConfig(path string) (*AutoloadConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("injector: read autoload config %s: %w", path, err)
	}
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("injector: parse autoload config %s: %w", path, err)
	}
	cfg := &AutoloadConfig{Entries: map[string]string{}, Raw: raw}
	for key, v := range raw {
		var name string
		if err := json.Unmarshal(v, &name); err == nil {
			cfg.Entries[key] = name
		}
	}
	return cfg, nil
}

// Autoload starts an injection for every autoload entry whose device
// group is currently present, skipping the rest (spec.md §6's
// autoload() semantics). It returns the group keys it started.
func (s *Supervisor) Autoload(cfg *AutoloadConfig) ([]string, error) {
	groups, err := s.Groups()
	if err != nil {
		return nil, fmt.Errorf("injector: autoload: %w", err)
	}
	present := make(map[string]bool, len(groups))
	for _, g := range groups {
		present[g.Key] = true
	}

	var started []string
	for groupKey, presetName := range cfg.Entries {
		if !present[groupKey] {
			continue
		}
		if ok, err := s.Start(groupKey, presetName); err != nil || !ok {
			continue
		}
		started = append(started, groupKey)
	}
	return started, nil
}

// AutoloadSingle starts the autoload entry for one group key, if
// present in both cfg and the currently enumerated groups.
func (s *Supervisor) AutoloadSingle(cfg *AutoloadConfig, groupKey string) (bool, error) {
	presetName, ok := cfg.Entries[groupKey]
	if !ok {
		return false, fmt.Errorf("injector: autoload_single: no entry for group %q", groupKey)
	}
	groups, err := s.Groups()
	if err != nil {
		return false, fmt.Errorf("injector: autoload_single: %w", err)
	}
	for _, g := range groups {
		if g.Key == groupKey {
			return s.Start(groupKey, presetName)
		}
	}
	return false, nil
}
