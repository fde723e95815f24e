package editor

import (
	"cmp"
	"math/rand"
	"slices"
	"time"

	"github.com/raphaelgruber/ordermatters/internal/models"
	"github.com/raphaelgruber/ordermatters/internal/tau"
)

// Editor holds one mutable sequence of entities for the lifetime of a
// session. It is not safe for concurrent use; owners serialize access.
type Editor struct {
	canonical []models.Entity
	items     []models.Entity
	rng       *rand.Rand
	result    tau.Result
}

// Option configures an Editor.
type Option func(*Editor)

// WithRand sets the source used by random resets.
func WithRand(rng *rand.Rand) Option {
	return func(e *Editor) {
		if rng != nil {
			e.rng = rng
		}
	}
}

// WithSeed makes random resets reproducible.
func WithSeed(seed int64) Option {
	return WithRand(rand.New(rand.NewSource(seed)))
}

// New creates an editor whose canonical order is seed sorted by ascending
// ID. The sequence starts in canonical order.
func New(seed []models.Entity, opts ...Option) *Editor {
	canonical := slices.Clone(seed)
	slices.SortStableFunc(canonical, func(a, b models.Entity) int {
		return cmp.Compare(a.ID, b.ID)
	})

	e := &Editor{
		canonical: canonical,
		items:     slices.Clone(canonical),
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.recompute()
	return e
}

// Apply performs op and returns the recomputed correlation.
func (e *Editor) Apply(op Op) tau.Result {
	e.items = apply(e.items, e.canonical, op, e.rng)
	e.recompute()
	return e.result
}

// MoveUp swaps the entity at index with the one before it.
// Index 0 and out-of-range indices are no-ops.
func (e *Editor) MoveUp(index int) tau.Result {
	return e.Apply(MoveUp(index))
}

// MoveDown swaps the entity at index with the one after it.
// The last index and out-of-range indices are no-ops.
func (e *Editor) MoveDown(index int) tau.Result {
	return e.Apply(MoveDown(index))
}

// Reset rearranges the sequence according to mode.
func (e *Editor) Reset(mode Mode) tau.Result {
	return e.Apply(Reset(mode))
}

// Items returns a copy of the current sequence.
func (e *Editor) Items() []models.Entity {
	return slices.Clone(e.items)
}

// IDs returns the identities of the current sequence.
func (e *Editor) IDs() []int {
	return models.IDs(e.items)
}

// Result returns the correlation of the current sequence.
func (e *Editor) Result() tau.Result {
	return e.result
}

// Len returns the number of entities.
func (e *Editor) Len() int {
	return len(e.items)
}

// TargetPosition returns the 1-based position of the target entity,
// or 0 when the configuration has none.
func (e *Editor) TargetPosition() int {
	return models.TargetIndex(e.items) + 1
}

func (e *Editor) recompute() {
	e.result = tau.Compute(e.IDs())
}
