package models

import (
	"errors"
	"fmt"
)

// Entity set validation errors.
var (
	ErrEmptySet    = errors.New("entity set is empty")
	ErrTargetCount = errors.New("entity set must contain exactly one target")
	ErrDuplicateID = errors.New("duplicate entity id")
)

// IDs returns the identities of entities in their current order.
func IDs(entities []Entity) []int {
	ids := make([]int, len(entities))
	for i, e := range entities {
		ids[i] = e.ID
	}
	return ids
}

// TargetIndex returns the 0-based position of the first target entity, or -1.
func TargetIndex(entities []Entity) int {
	for i, e := range entities {
		if e.Target {
			return i
		}
	}
	return -1
}

// ValidateSet checks that entities form a well-formed configuration:
// non-empty, unique IDs and exactly one target.
func ValidateSet(entities []Entity) error {
	if len(entities) == 0 {
		return ErrEmptySet
	}

	seen := make(map[int]bool, len(entities))
	targets := 0
	for _, e := range entities {
		if seen[e.ID] {
			return fmt.Errorf("%w: %d", ErrDuplicateID, e.ID)
		}
		seen[e.ID] = true
		if e.Target {
			targets++
		}
	}

	if targets != 1 {
		return fmt.Errorf("%w: found %d", ErrTargetCount, targets)
	}
	return nil
}
