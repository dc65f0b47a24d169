package macro

import "sync"

// VarMap is the process-wide, lock-protected variable map spec.md
// §4.F requires so that `set`/`add` coordinate across concurrent
// macros. One VarMap is shared by every macro compiled for a single
// injection.
type VarMap struct {
	mu   sync.Mutex
	vals map[string]float64
}

// NewVarMap returns an empty VarMap.
func NewVarMap() *VarMap {
	return &VarMap{vals: make(map[string]float64)}
}

// Get returns the current value of name, 0 if never set.
func (v *VarMap) Get(name string) float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.vals[name]
}

// Set assigns name = value.
func (v *VarMap) Set(name string, value float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.vals[name] = value
}

// Add increments name by delta and returns the new value.
func (v *VarMap) Add(name string, delta float64) float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.vals[name] += delta
	return v.vals[name]
}
