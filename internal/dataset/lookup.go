package dataset

import (
	"cmp"
	"math"
	"slices"
	"strings"
)

// NearestOrderBias returns the row whose tau bucket is closest to score.
// Equal distances resolve to the higher bucket.
func (d *Dataset) NearestOrderBias(score float64) (OrderBiasRow, bool) {
	if len(d.OrderBias) == 0 {
		return OrderBiasRow{}, false
	}

	best := d.OrderBias[0]
	bestDist := math.Abs(best.Tau - score)
	for _, row := range d.OrderBias[1:] {
		dist := math.Abs(row.Tau - score)
		if dist < bestDist || (dist == bestDist && row.Tau > best.Tau) {
			best, bestDist = row, dist
		}
	}
	return best, true
}

// BySegmentSize returns the row for an exact segment size.
func (d *Dataset) BySegmentSize(size int) (SegmentationRow, bool) {
	for _, row := range d.Segmentation {
		if row.SegmentSize == size {
			return row, true
		}
	}
	return SegmentationRow{}, false
}

// ByStrategy finds a strategy row by ranker strategy name or technique,
// case-insensitively.
func (d *Dataset) ByStrategy(name string) (StrategyRow, bool) {
	for _, row := range d.Strategies {
		if row.Strategy != "" && strings.EqualFold(row.Strategy, name) {
			return row, true
		}
	}
	for _, row := range d.Strategies {
		if strings.EqualFold(row.Technique, name) {
			return row, true
		}
	}
	return StrategyRow{}, false
}

// StrategiesByTop1 returns the strategy rows sorted by descending Top-1.
// The dataset's own order is left untouched.
func (d *Dataset) StrategiesByTop1() []StrategyRow {
	rows := slices.Clone(d.Strategies)
	slices.SortStableFunc(rows, func(a, b StrategyRow) int {
		return cmp.Compare(b.Top1, a.Top1)
	})
	return rows
}

// LeakageDrop returns how much accuracy renaming cost in each context.
func (d *Dataset) LeakageDrop() map[string]float64 {
	out := make(map[string]float64, len(d.Leakage))
	for _, row := range d.Leakage {
		out[row.Context] = row.Original - row.Renamed
	}
	return out
}
