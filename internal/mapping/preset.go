package mapping

import "fmt"

// Preset is a set of Mappings indexed by their input combination's
// permutation-equivalence key, per spec.md §4.D's invariant that no
// two mappings in a preset share a combination.
type Preset struct {
	Name     string
	mappings map[string]*Mapping
	order    []string
}

// NewPreset returns an empty, named Preset.
func NewPreset(name string) *Preset {
	return &Preset{Name: name, mappings: make(map[string]*Mapping)}
}

// Add inserts m, keyed by its combination. It returns an error if
// another mapping with an equivalent combination is already present;
// the caller decides whether to replace (via Remove then Add) or
// reject. Validate is called before insertion so Mappings() always
// reports the mapping's current validity.
func (p *Preset) Add(m *Mapping) error {
	key := m.Combination.Key()
	if _, exists := p.mappings[key]; exists {
		return fmt.Errorf("mapping: combination %q already mapped in preset %q", key, p.Name)
	}
	m.Validate()
	p.mappings[key] = m
	p.order = append(p.order, key)
	return nil
}

// Remove deletes the mapping bound to combination (if any).
func (p *Preset) Remove(combinationKey string) {
	if _, ok := p.mappings[combinationKey]; !ok {
		return
	}
	delete(p.mappings, combinationKey)
	for i, k := range p.order {
		if k == combinationKey {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
}

// Get returns the mapping bound to a combination key, if any.
func (p *Preset) Get(combinationKey string) (*Mapping, bool) {
	m, ok := p.mappings[combinationKey]
	return m, ok
}

// Mappings returns every mapping in insertion order, valid and
// invalid alike — invalid mappings are retained for display per
// spec.md §4.D, filtered out only when HandlerGraph building consumes
// this preset (see internal/handler).
func (p *Preset) Mappings() []*Mapping {
	out := make([]*Mapping, 0, len(p.order))
	for _, k := range p.order {
		out = append(out, p.mappings[k])
	}
	return out
}

// Valid returns only the mappings that passed Validate, in insertion
// order; this is the slice a HandlerGraph builder should consume.
func (p *Preset) Valid() []*Mapping {
	out := make([]*Mapping, 0, len(p.order))
	for _, k := range p.order {
		if m := p.mappings[k]; m.Valid() {
			out = append(out, m)
		}
	}
	return out
}

// Len reports the number of mappings, valid and invalid.
func (p *Preset) Len() int { return len(p.order) }
