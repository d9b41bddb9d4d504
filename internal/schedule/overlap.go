package schedule

import "github.com/google/uuid"

// Overlaps reports whether candidate intersects any existing slot. A slot
// whose ID equals excludeID is skipped, so an in-place edit does not
// conflict with itself. Pass uuid.Nil to exclude nothing.
func Overlaps(candidate SlotRange, existing []Slot, excludeID uuid.UUID) bool {
	for i := range existing {
		if excludeID != uuid.Nil && existing[i].ID == excludeID {
			continue
		}
		if candidate.Intersects(existing[i].Range()) {
			return true
		}
	}
	return false
}

// FirstOverlap checks a batch of candidates against the existing slots and
// against the candidates accepted before each one, so a single request
// cannot smuggle in two ranges that collide with each other. Returns the
// index of the first colliding candidate, or -1.
func FirstOverlap(candidates []SlotRange, existing []Slot) int {
	for i, c := range candidates {
		if Overlaps(c, existing, uuid.Nil) {
			return i
		}
		for j := 0; j < i; j++ {
			if c.Intersects(candidates[j]) {
				return i
			}
		}
	}
	return -1
}
