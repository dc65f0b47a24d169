package handler

import "strconv"

// AxisRange is one absolute axis' reported [Min, Max], as read from a
// source device's EV_ABS capabilities or a target uinput's registered
// capabilities.
type AxisRange struct {
	Min, Max int32
}

// Catalog resolves the abs axis ranges a preset's analog mappings need
// on both sides of a transform: the source device's reported range
// (to normalize an incoming sample) and the target uinput's registered
// range (to denormalize an outgoing one). Built once per injection
// from the grabbed device's capabilities and the fixed uinput registry
// catalog.
type Catalog struct {
	sources map[string]AxisRange // keyed by source origin + code
	targets map[string]AxisRange // keyed by target uinput name + code
}

// NewCatalog builds an empty catalog; populate it with RegisterSource
// and RegisterTarget as devices and uinputs are discovered.
func NewCatalog() *Catalog {
	return &Catalog{sources: make(map[string]AxisRange), targets: make(map[string]AxisRange)}
}

func catalogKey(name string, code int) string {
	return name + ":" + strconv.Itoa(code)
}

// RegisterSource records the reported range of an abs axis on a
// physical source device.
func (c *Catalog) RegisterSource(origin string, code int, r AxisRange) {
	c.sources[catalogKey(origin, code)] = r
}

// RegisterTarget records the registered range of an abs axis on a
// target uinput.
func (c *Catalog) RegisterTarget(target string, code int, r AxisRange) {
	c.targets[catalogKey(target, code)] = r
}

// Source looks up a source axis' range.
func (c *Catalog) Source(origin string, code int) (AxisRange, bool) {
	r, ok := c.sources[catalogKey(origin, code)]
	return r, ok
}

// Target looks up a target axis' range, falling back to the signed
// 16-bit range conventional for synthetic uinput abs axes if the
// target never registered one explicitly.
func (c *Catalog) Target(target string, code int) AxisRange {
	if r, ok := c.targets[catalogKey(target, code)]; ok {
		return r
	}
	return AxisRange{Min: -32768, Max: 32767}
}
