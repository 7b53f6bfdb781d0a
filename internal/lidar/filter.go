package lidar

import (
	"fmt"
	"math"
)

// IntensityColumn is the payload column examined by FilterByIntensity.
const IntensityColumn = "intensity"

// GateWindow bounds a range filter by gate index into R(). Nil bounds
// are open.
type GateWindow struct {
	Min *int
	Max *int
}

// RangeWindow bounds a range filter by absolute range [m]. Nil bounds
// are open.
type RangeWindow struct {
	Min *float64
	Max *float64
}

// FilterByRange masks returns outside a range window by setting every
// payload value of the affected rows to NaN. The table's shape and axis
// values are unchanged. Exactly the rows at or beyond the window edges
// are masked: for a gate window, rows with range <= the min gate's
// center or >= the max gate's center; for an absolute window, rows with
// range < min or > max. A gate window takes precedence when both are
// given; neither is an error.
func (s *Scan) FilterByRange(gates *GateWindow, ranges *RangeWindow) error {
	if gates == nil && ranges == nil {
		return fmt.Errorf("specify a gate window or a range window")
	}
	if !s.tbl.Axes().Has(AxisRange) {
		return fmt.Errorf("%w: range", ErrMissingAxis)
	}
	rlevels := s.tbl.levels[AxisRange]
	if gates != nil {
		if gates.Min != nil {
			g := *gates.Min
			if g < 0 || g >= len(rlevels) {
				return fmt.Errorf("%w: gate %d of %d", ErrOutOfRange, g, len(rlevels))
			}
			minRange := rlevels[g]
			s.maskRows(func(i int) bool { return s.tbl.rng[i] <= minRange })
		}
		if gates.Max != nil {
			g := *gates.Max
			if g < 0 || g >= len(rlevels) {
				return fmt.Errorf("%w: gate %d of %d", ErrOutOfRange, g, len(rlevels))
			}
			maxRange := rlevels[g]
			s.maskRows(func(i int) bool { return s.tbl.rng[i] >= maxRange })
		}
		return nil
	}
	if ranges.Min != nil {
		minv := *ranges.Min
		s.maskRows(func(i int) bool { return s.tbl.rng[i] < minv })
	}
	if ranges.Max != nil {
		maxv := *ranges.Max
		s.maskRows(func(i int) bool { return s.tbl.rng[i] > maxv })
	}
	return nil
}

// FilterByIntensity masks rows whose intensity falls below min or above
// max by setting every payload value of those rows to NaN. Either bound
// may be nil. Rows already masked (NaN intensity) are left alone.
func (s *Scan) FilterByIntensity(min, max *float64) error {
	if min == nil && max == nil {
		return nil
	}
	col, ok := s.tbl.data[IntensityColumn]
	if !ok {
		return fmt.Errorf("no column %q in table", IntensityColumn)
	}
	if min != nil {
		minv := *min
		s.maskRows(func(i int) bool { return col[i] < minv })
	}
	if max != nil {
		maxv := *max
		s.maskRows(func(i int) bool { return col[i] > maxv })
	}
	return nil
}

// maskRows sets all payload columns to NaN at rows where pred is true.
func (s *Scan) maskRows(pred func(i int) bool) {
	n := s.tbl.Len()
	for i := 0; i < n; i++ {
		if !pred(i) {
			continue
		}
		for _, name := range s.tbl.columns {
			s.tbl.data[name][i] = math.NaN()
		}
	}
}
