package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var errInvalidSequence = errors.New("invalid sequence")

// parseSequence reads distinct integers separated by commas or spaces,
// possibly spread over several arguments.
func parseSequence(args []string) ([]int, error) {
	fields := strings.FieldsFunc(strings.Join(args, " "), func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '[' || r == ']'
	})
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no values", errInvalidSequence)
	}

	seen := make(map[int]bool, len(fields))
	seq := make([]int, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not an integer", errInvalidSequence, f)
		}
		if seen[v] {
			return nil, fmt.Errorf("%w: duplicate value %d", errInvalidSequence, v)
		}
		seen[v] = true
		seq = append(seq, v)
	}
	return seq, nil
}

func formatSequence(seq []int) string {
	parts := make([]string, len(seq))
	for i, v := range seq {
		parts[i] = strconv.Itoa(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
