// Package editor owns the interactive sequence: adjacent-swap moves and
// bulk resets over a fixed entity configuration, with the Kendall Tau
// result recomputed after every mutation.
package editor

import (
	"errors"
	"fmt"
	"math/rand"
	"slices"
	"strconv"
	"strings"
)

// Mode selects the order produced by a reset.
type Mode string

const (
	// ModePerfect restores canonical ascending order (target first).
	ModePerfect Mode = "perfect"
	// ModeWorst reverses canonical order (target last).
	ModeWorst Mode = "worst"
	// ModeRandom shuffles canonical order uniformly.
	ModeRandom Mode = "random"
)

// OpKind names a mutation.
type OpKind string

const (
	OpMoveUp   OpKind = "move_up"
	OpMoveDown OpKind = "move_down"
	OpReset    OpKind = "reset"
)

var (
	ErrUnknownMode = errors.New("unknown reset mode")
	ErrUnknownOp   = errors.New("unknown operation")
)

// Op is a single mutation of a sequence.
type Op struct {
	Kind  OpKind `json:"op"`
	Index int    `json:"index,omitempty"`
	Mode  Mode   `json:"mode,omitempty"`
}

// MoveUp swaps the entity at index with its predecessor.
func MoveUp(index int) Op { return Op{Kind: OpMoveUp, Index: index} }

// MoveDown swaps the entity at index with its successor.
func MoveDown(index int) Op { return Op{Kind: OpMoveDown, Index: index} }

// Reset replaces the sequence with the order selected by mode.
func Reset(mode Mode) Op { return Op{Kind: OpReset, Mode: mode} }

// Modes lists the reset modes in display order.
func Modes() []Mode {
	return []Mode{ModePerfect, ModeRandom, ModeWorst}
}

// ParseMode converts user input into a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModePerfect:
		return ModePerfect, nil
	case ModeWorst:
		return ModeWorst, nil
	case ModeRandom:
		return ModeRandom, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// ParseOp parses the compact CLI form of an operation:
// "up:2", "down:0", "reset:worst" (move_up/move_down are accepted too).
func ParseOp(s string) (Op, error) {
	name, arg, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return Op{}, fmt.Errorf("%w: %q (expected name:argument)", ErrUnknownOp, s)
	}

	switch strings.ToLower(name) {
	case "up", string(OpMoveUp):
		idx, err := strconv.Atoi(arg)
		if err != nil {
			return Op{}, fmt.Errorf("parse index %q: %w", arg, err)
		}
		return MoveUp(idx), nil
	case "down", string(OpMoveDown):
		idx, err := strconv.Atoi(arg)
		if err != nil {
			return Op{}, fmt.Errorf("parse index %q: %w", arg, err)
		}
		return MoveDown(idx), nil
	case string(OpReset):
		mode, err := ParseMode(arg)
		if err != nil {
			return Op{}, err
		}
		return Reset(mode), nil
	}
	return Op{}, fmt.Errorf("%w: %q", ErrUnknownOp, name)
}

// Mutate applies op to a plain identity sequence and returns a new one.
// The canonical order is current sorted ascending. Invalid indices, unknown
// kinds and unknown modes leave the sequence unchanged. rng may be nil.
func Mutate(current []int, op Op, rng *rand.Rand) []int {
	canonical := slices.Clone(current)
	slices.Sort(canonical)
	return apply(current, canonical, op, rng)
}

func apply[T any](current, canonical []T, op Op, rng *rand.Rand) []T {
	next := slices.Clone(current)

	switch op.Kind {
	case OpMoveUp:
		if op.Index > 0 && op.Index < len(next) {
			next[op.Index], next[op.Index-1] = next[op.Index-1], next[op.Index]
		}
	case OpMoveDown:
		if op.Index >= 0 && op.Index < len(next)-1 {
			next[op.Index], next[op.Index+1] = next[op.Index+1], next[op.Index]
		}
	case OpReset:
		if reset, ok := arrange(canonical, op.Mode, rng); ok {
			next = reset
		}
	}

	return next
}

func arrange[T any](canonical []T, mode Mode, rng *rand.Rand) ([]T, bool) {
	next := slices.Clone(canonical)

	switch mode {
	case ModePerfect:
	case ModeWorst:
		slices.Reverse(next)
	case ModeRandom:
		swap := func(i, j int) { next[i], next[j] = next[j], next[i] }
		if rng != nil {
			rng.Shuffle(len(next), swap)
		} else {
			rand.Shuffle(len(next), swap)
		}
	default:
		return nil, false
	}

	return next, true
}
