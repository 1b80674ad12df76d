// Package split implements the allocation engine: a pure computation from a
// verified receipt, an item-to-participant assignment and a split
// configuration to a per-participant settlement breakdown whose shares sum
// to the receipt total exactly, to the minor currency unit.
package split

import (
	"fmt"
	"sort"
)

// ItemAssignment states who consumed one receipt item. Exactly one of
// Sharers or Weights must be set: Sharers splits the item equally among a
// set of participants, Weights splits it by relative positive integer
// weights (weights need not sum to the item quantity).
type ItemAssignment struct {
	Sharers []string       `json:"sharers,omitempty" yaml:"sharers,omitempty"`
	Weights map[string]int `json:"weights,omitempty" yaml:"weights,omitempty"`
}

// participantIDs returns the distinct participants named by the assignment.
func (a ItemAssignment) participantIDs() []string {
	if len(a.Sharers) > 0 {
		return a.Sharers
	}
	ids := make([]string, 0, len(a.Weights))
	for id := range a.Weights {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Assignment maps every receipt item ID to its ItemAssignment. Every item
// must have exactly one assignment before allocation; an item with no
// participants is a configuration error, not a zero-cost item.
type Assignment map[string]ItemAssignment

// validate checks one assignment entry in isolation.
func (a ItemAssignment) validate(itemName string) error {
	hasSharers := len(a.Sharers) > 0
	hasWeights := len(a.Weights) > 0
	if hasSharers && hasWeights {
		return fmt.Errorf("item %q has both sharers and weights", itemName)
	}
	seen := make(map[string]bool, len(a.Sharers))
	for _, id := range a.Sharers {
		if seen[id] {
			return fmt.Errorf("item %q lists participant %q twice", itemName, id)
		}
		seen[id] = true
	}
	for id, w := range a.Weights {
		if w <= 0 {
			return fmt.Errorf("item %q has non-positive weight %d for participant %q", itemName, w, id)
		}
	}
	return nil
}
