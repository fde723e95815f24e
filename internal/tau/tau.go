// Package tau computes the Kendall Tau rank correlation of a permutation
// against the ascending ideal order [0, 1, 2, ...].
package tau

import "math"

// PairKind classifies a pair of positions.
type PairKind string

const (
	// Concordant pairs keep the relative order of the ideal ranking.
	Concordant PairKind = "concordant"
	// Discordant pairs invert it.
	Discordant PairKind = "discordant"
)

// Pair records the values at two positions i < j and how they compare.
type Pair struct {
	First  int      `json:"first"`
	Second int      `json:"second"`
	Kind   PairKind `json:"kind"`
}

// Result is the correlation of one sequence. It is always derived from
// the sequence that produced it and never stored on its own.
type Result struct {
	Score      float64 `json:"score"`
	Concordant int     `json:"concordant"`
	Discordant int     `json:"discordant"`
	Pairs      []Pair  `json:"pairs,omitempty"`
}

// Compute classifies every unordered pair of positions in ranking and
// returns the normalized score rounded to two decimals.
//
// Sequences shorter than two are vacuously perfect: score 1, no pairs.
// Equal values count as discordant; callers pass distinct identities.
func Compute(ranking []int) Result {
	n := len(ranking)
	if n < 2 {
		return Result{Score: 1}
	}

	total := n * (n - 1) / 2
	pairs := make([]Pair, 0, total)
	concordant, discordant := 0, 0

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			a, b := ranking[i], ranking[j]
			if a < b {
				concordant++
				pairs = append(pairs, Pair{First: a, Second: b, Kind: Concordant})
			} else {
				discordant++
				pairs = append(pairs, Pair{First: a, Second: b, Kind: Discordant})
			}
		}
	}

	return Result{
		Score:      Round2(float64(concordant-discordant) / float64(total)),
		Concordant: concordant,
		Discordant: discordant,
		Pairs:      pairs,
	}
}

// TotalPairs returns n(n-1)/2 for the sequence that produced r.
func (r Result) TotalPairs() int {
	return r.Concordant + r.Discordant
}

// DiscordantPairs returns only the pairs whose relative order is wrong.
func (r Result) DiscordantPairs() []Pair {
	out := make([]Pair, 0, r.Discordant)
	for _, p := range r.Pairs {
		if p.Kind == Discordant {
			out = append(out, p)
		}
	}
	return out
}

// Round2 rounds v to two decimal places. Negative zero is folded to zero.
func Round2(v float64) float64 {
	r := math.Round(v*100) / 100
	if r == 0 {
		return 0
	}
	return r
}
