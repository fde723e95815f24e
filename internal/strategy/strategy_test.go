package strategy

import (
	"testing"

	"github.com/raphaelgruber/ordermatters/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedSet() []models.Entity {
	return []models.Entity{
		{ID: 0, Label: "authMiddleware", Target: true, Size: 25, Distance: 1, LearnedScore: 0.95},
		{ID: 1, Label: "inputValidator", Size: 120, Distance: 2, LearnedScore: 0.60},
		{ID: 2, Label: "userProfile", Size: 450, Distance: 4, LearnedScore: 0.15},
		{ID: 3, Label: "dbConnection", Size: 300, Distance: 3, LearnedScore: 0.30},
	}
}

func labels(entities []models.Entity) []string {
	out := make([]string, len(entities))
	for i, e := range entities {
		out[i] = e.Label
	}
	return out
}

func TestApply(t *testing.T) {
	tests := []struct {
		strategy   Strategy
		wantOrder  []int
		wantTarget int
	}{
		{Unsorted, []int{0, 1, 2, 3}, 1},
		{BySizeDesc, []int{2, 3, 1, 0}, 4},
		{ByDistanceAsc, []int{0, 1, 3, 2}, 1},
		{ByLearnedScoreDesc, []int{0, 1, 3, 2}, 1},
	}

	for _, tt := range tests {
		t.Run(string(tt.strategy), func(t *testing.T) {
			got := Apply(fixedSet(), tt.strategy)

			assert.Equal(t, tt.strategy, got.Strategy)
			assert.Equal(t, tt.wantOrder, models.IDs(got.Ranked))
			assert.Equal(t, tt.wantTarget, got.TargetRank)
		})
	}
}

func TestApply_TiesKeepInputOrder(t *testing.T) {
	entities := []models.Entity{
		{ID: 0, Label: "a", Size: 10},
		{ID: 1, Label: "b", Size: 50, Target: true},
		{ID: 2, Label: "c", Size: 10},
		{ID: 3, Label: "d", Size: 50},
		{ID: 4, Label: "e", Size: 10},
	}

	got := Apply(entities, BySizeDesc)

	assert.Equal(t, []string{"b", "d", "a", "c", "e"}, labels(got.Ranked))
	assert.Equal(t, 1, got.TargetRank)

	got = Apply(entities, ByDistanceAsc)
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, labels(got.Ranked))
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	entities := fixedSet()
	Apply(entities, BySizeDesc)

	assert.Equal(t, fixedSet(), entities)
}

func TestApply_IsIdempotent(t *testing.T) {
	for _, s := range All() {
		first := Apply(fixedSet(), s)
		second := Apply(fixedSet(), s)
		assert.Equal(t, first, second, s)
	}
}

func TestApply_MalformedSet(t *testing.T) {
	tests := []struct {
		name     string
		entities []models.Entity
		strategy Strategy
	}{
		{"empty", nil, BySizeDesc},
		{"no target", []models.Entity{{ID: 0, Label: "a"}}, Unsorted},
		{"duplicate ids", []models.Entity{{ID: 0, Label: "a", Target: true}, {ID: 0, Label: "b"}}, Unsorted},
		{"unknown strategy", fixedSet(), Strategy("alphabetical")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(tt.entities, tt.strategy)
			assert.Empty(t, got.Ranked)
			assert.NotNil(t, got.Ranked)
			assert.Zero(t, got.TargetRank)
		})
	}
}

func TestRanker_StrategiesAreIndependent(t *testing.T) {
	r := NewRanker(fixedSet())

	direct := r.Rank(ByDistanceAsc)

	// Selecting other strategies first must not leak into the result.
	r.Rank(BySizeDesc)
	r.Rank(ByLearnedScoreDesc)
	afterOthers := r.Rank(ByDistanceAsc)

	assert.Equal(t, direct, afterOthers)
	assert.Equal(t, fixedSet(), r.Entities())
}

func TestRanker_RankAll(t *testing.T) {
	r := NewRanker(fixedSet())
	results := r.RankAll()

	require.Len(t, results, len(All()))
	for i, s := range All() {
		assert.Equal(t, s, results[i].Strategy)
		assert.Len(t, results[i].Ranked, 4)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Strategy
	}{
		{"unsorted", Unsorted},
		{"by-size-desc", BySizeDesc},
		{" By-Distance-Asc ", ByDistanceAsc},
		{"by-learned-score-desc", ByLearnedScoreDesc},
		{"loc", BySizeDesc},
		{"callgraph", ByDistanceAsc},
		{"depgraph", ByLearnedScoreDesc},
		{"none", Unsorted},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.Valid())
			assert.NotEmpty(t, got.Description())
		})
	}

	_, err := Parse("alphabetical")
	assert.ErrorIs(t, err, ErrUnknownStrategy)
	assert.False(t, Strategy("alphabetical").Valid())
}
