// Package segment splits a ranked item list into consecutive segments, the
// way a long context is broken into several shorter prompts, and reports
// where the target item ends up.
package segment

// Default split used by the segmentation view.
const (
	DefaultTotal  = 20
	DefaultSize   = 10
	DefaultTarget = 5

	MinSize = 2
	MaxSize = 20
)

// Config describes one split.
type Config struct {
	Total  int `json:"total" validate:"gte=0"`
	Size   int `json:"size" validate:"gte=1"`
	Target int `json:"target" validate:"gte=0"`
}

// DefaultConfig returns the 20-item, size-10, target-5 split.
func DefaultConfig() Config {
	return Config{Total: DefaultTotal, Size: DefaultSize, Target: DefaultTarget}
}

// Segment is a consecutive run of item numbers.
type Segment struct {
	Index     int   `json:"index"`
	Items     []int `json:"items"`
	HasTarget bool  `json:"has_target"`
}

// Result is a complete split. TargetSegment is 0-based and TargetPosition
// 1-based within that segment; they are -1 and 0 when the target is not
// one of the items.
type Result struct {
	Total          int       `json:"total"`
	Size           int       `json:"size"`
	Target         int       `json:"target"`
	Segments       []Segment `json:"segments"`
	TargetSegment  int       `json:"target_segment"`
	TargetPosition int       `json:"target_position"`
}

// Split numbers items 1..total and cuts them into runs of size. The last
// segment may be shorter. size is clamped to [1, total].
func Split(total, size, target int) Result {
	res := Result{
		Total:          total,
		Target:         target,
		Segments:       []Segment{},
		TargetSegment:  -1,
		TargetPosition: 0,
	}
	if total < 1 {
		return res
	}

	size = max(1, min(size, total))
	res.Size = size

	for start := 1; start <= total; start += size {
		end := min(start+size-1, total)
		seg := Segment{Index: len(res.Segments), Items: make([]int, 0, end-start+1)}
		for item := start; item <= end; item++ {
			seg.Items = append(seg.Items, item)
			if item == target {
				seg.HasTarget = true
				res.TargetSegment = seg.Index
				res.TargetPosition = item - start + 1
			}
		}
		res.Segments = append(res.Segments, seg)
	}

	return res
}

// Apply splits according to c.
func (c Config) Apply() Result {
	return Split(c.Total, c.Size, c.Target)
}

// Count returns the number of segments.
func (r Result) Count() int {
	return len(r.Segments)
}
