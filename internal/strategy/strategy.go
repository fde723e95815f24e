// Package strategy ranks a fixed entity set with one of a small number of
// total-order comparators and reports where the target entity lands.
package strategy

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/raphaelgruber/ordermatters/internal/models"
)

// Strategy selects a comparator.
type Strategy string

const (
	Unsorted           Strategy = "unsorted"
	BySizeDesc         Strategy = "by-size-desc"
	ByDistanceAsc      Strategy = "by-distance-asc"
	ByLearnedScoreDesc Strategy = "by-learned-score-desc"
)

// ErrUnknownStrategy is returned by Parse for names that match no strategy.
var ErrUnknownStrategy = errors.New("unknown strategy")

var aliases = map[string]Strategy{
	"none":      Unsorted,
	"baseline":  Unsorted,
	"size":      BySizeDesc,
	"loc":       BySizeDesc,
	"distance":  ByDistanceAsc,
	"callgraph": ByDistanceAsc,
	"learned":   ByLearnedScoreDesc,
	"depgraph":  ByLearnedScoreDesc,
}

var descriptions = map[Strategy]string{
	Unsorted:           "Input order, no reordering",
	BySizeDesc:         "Largest entities first (lines of code)",
	ByDistanceAsc:      "Closest to the failing test first (call-graph distance)",
	ByLearnedScoreDesc: "Highest learned relevance first (dependency-graph score)",
}

// All returns the strategies in display order.
func All() []Strategy {
	return []Strategy{Unsorted, BySizeDesc, ByDistanceAsc, ByLearnedScoreDesc}
}

// Parse resolves a strategy name or one of its short aliases.
func Parse(s string) (Strategy, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, st := range All() {
		if name == string(st) {
			return st, nil
		}
	}
	if st, ok := aliases[name]; ok {
		return st, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, s)
}

// Description returns a one-line explanation of s.
func (s Strategy) Description() string {
	return descriptions[s]
}

// Valid reports whether s is one of the known strategies.
func (s Strategy) Valid() bool {
	_, ok := descriptions[s]
	return ok
}

// Result is the outcome of ranking with one strategy.
// TargetRank is 1-based; 0 means the ranking is empty or has no target.
type Result struct {
	Strategy   Strategy        `json:"strategy"`
	Ranked     []models.Entity `json:"ranked"`
	TargetRank int             `json:"target_rank"`
}

// Apply ranks a copy of entities with s. entities is never modified.
// A malformed set (empty, duplicate ids, not exactly one target) or an
// unknown strategy yields an empty ranking with TargetRank 0.
func Apply(entities []models.Entity, s Strategy) Result {
	res := Result{Strategy: s, Ranked: []models.Entity{}}
	if models.ValidateSet(entities) != nil {
		return res
	}

	compare, ok := comparator(s)
	if !ok {
		return res
	}

	ranked := slices.Clone(entities)
	if compare != nil {
		// Stable sort keeps equal elements in input order.
		slices.SortStableFunc(ranked, compare)
	}

	res.Ranked = ranked
	res.TargetRank = models.TargetIndex(ranked) + 1
	return res
}

// ApplyAll ranks entities with every strategy, in display order.
func ApplyAll(entities []models.Entity) []Result {
	results := make([]Result, 0, len(All()))
	for _, s := range All() {
		results = append(results, Apply(entities, s))
	}
	return results
}

func comparator(s Strategy) (func(a, b models.Entity) int, bool) {
	switch s {
	case Unsorted:
		return nil, true
	case BySizeDesc:
		return func(a, b models.Entity) int { return cmp.Compare(b.Size, a.Size) }, true
	case ByDistanceAsc:
		return func(a, b models.Entity) int { return cmp.Compare(a.Distance, b.Distance) }, true
	case ByLearnedScoreDesc:
		return func(a, b models.Entity) int { return cmp.Compare(b.LearnedScore, a.LearnedScore) }, true
	}
	return nil, false
}
