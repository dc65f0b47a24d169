package handler

import (
	"sort"

	"github.com/input-remapper/inputremapperd/internal/event"
)

// entry pairs a combination handler with its number of sub-inputs
// (size), by which the HierarchyHandler orders entries longest first.
type entry struct {
	combo *CombinationHandler
	size  int
}

// HierarchyHandler resolves the spec.md §4.H overlap rule: when several
// mapped combinations share a sub-input, the longest (most specific)
// combination gets first refusal on a press. If it completes, shorter
// combinations sharing that signature must not also fire; once a
// longer combination has actually gone active, a shorter one is still
// fed events so it can track its own bitset but has its own Press
// suppressed for as long as any longer sibling is active.
type HierarchyHandler struct {
	entries []entry
}

// NewHierarchyHandler builds a dispatcher for every combination handler
// registered against the same signature, ordered longest-first.
func NewHierarchyHandler(combos []*CombinationHandler) *HierarchyHandler {
	entries := make([]entry, len(combos))
	for i, c := range combos {
		entries[i] = entry{combo: c, size: len(c.signatures)}
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].size > entries[j].size })
	return &HierarchyHandler{entries: entries}
}

// Handle feeds e to every registered combination, longest first,
// suppressing a shorter combination's fresh Press whenever a longer
// sibling is already active.
func (h *HierarchyHandler) Handle(e event.InputEvent) Result {
	anyLongerActive := false
	for _, en := range h.entries {
		en.combo.Handle(e, anyLongerActive)
		if en.combo.Active() {
			anyLongerActive = true
		}
	}
	return Consumed
}
