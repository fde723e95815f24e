// Package models defines the data shared by the ordering engine and its surfaces.
package models

// Entity is an item whose presentation order is studied, such as a method
// handed to a fault-localization prompt. Entities are immutable after
// creation. ID doubles as the canonical position: ascending IDs form the
// ideal order.
type Entity struct {
	ID     int    `json:"id" yaml:"id" validate:"gte=0"`
	Label  string `json:"label" yaml:"label" validate:"required"`
	Target bool   `json:"target" yaml:"target"`

	// Strategy attributes. Precomputed, never derived from code analysis.
	Size         int     `json:"size,omitempty" yaml:"size" validate:"gte=0"`
	Distance     int     `json:"distance,omitempty" yaml:"distance" validate:"gte=0"`
	LearnedScore float64 `json:"learned_score,omitempty" yaml:"learned_score" validate:"gte=0,lte=1"`
}

// DisplayName returns the label with a marker for the target entity.
func (e Entity) DisplayName() string {
	if e.Target {
		return e.Label + " (target)"
	}
	return e.Label
}
