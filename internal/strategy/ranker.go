package strategy

import (
	"slices"

	"github.com/raphaelgruber/ordermatters/internal/models"
)

// Ranker holds a fixed entity set. Every ranking is derived from that set,
// never from a previous ranking, so strategies can be selected in any order.
type Ranker struct {
	source []models.Entity
}

// NewRanker copies entities into a new Ranker.
func NewRanker(entities []models.Entity) *Ranker {
	return &Ranker{source: slices.Clone(entities)}
}

// Rank applies s to the fixed set.
func (r *Ranker) Rank(s Strategy) Result {
	return Apply(r.source, s)
}

// RankAll applies every strategy to the fixed set.
func (r *Ranker) RankAll() []Result {
	return ApplyAll(r.source)
}

// Entities returns a copy of the fixed set in input order.
func (r *Ranker) Entities() []models.Entity {
	return slices.Clone(r.source)
}
