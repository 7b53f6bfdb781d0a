// Package lidar provides the in-memory scan table for scanning lidar
// measurements, nearest-match slicing over range gates, azimuth and
// elevation, a polar-to-Cartesian coordinate transform, and a mean
// horizontal wind estimator for arc scans.
package lidar

import (
	"fmt"
	"math"
	"slices"
	"sort"
)

// Axis identifies one coordinate axis of a scan table key.
type Axis int

const (
	AxisRange Axis = iota
	AxisAzimuth
	AxisElevation
)

func (a Axis) String() string {
	switch a {
	case AxisRange:
		return "range"
	case AxisAzimuth:
		return "azimuth"
	case AxisElevation:
		return "elevation"
	default:
		return fmt.Sprintf("axis(%d)", int(a))
	}
}

// AxisSet is a bitmask of the key axes present in a scan table.
type AxisSet uint8

const (
	HasRange AxisSet = 1 << iota
	HasAzimuth
	HasElevation
)

// Has reports whether axis a is part of the set.
func (s AxisSet) Has(a Axis) bool {
	switch a {
	case AxisRange:
		return s&HasRange != 0
	case AxisAzimuth:
		return s&HasAzimuth != 0
	case AxisElevation:
		return s&HasElevation != 0
	default:
		return false
	}
}

// Names returns the present axis names in (range, azimuth, elevation) order.
func (s AxisSet) Names() []string {
	names := make([]string, 0, 3)
	for _, a := range []Axis{AxisRange, AxisAzimuth, AxisElevation} {
		if s.Has(a) {
			names = append(names, a.String())
		}
	}
	return names
}

func (s AxisSet) String() string {
	return fmt.Sprintf("%v", s.Names())
}

// Sample is a single scan return used to build a Table. Coordinate fields
// for axes absent from the table's key are ignored.
type Sample struct {
	Range     float64 // range gate center [m]
	Azimuth   float64 // compass bearing [deg]
	Elevation float64 // [deg]
	Values    map[string]float64
}

// Table is a columnar table of scalar lidar measurements keyed by a
// composite, unique key over up to three axes: range gate center,
// azimuth and elevation. Rows are sorted ascending by the present key
// axes. Missing payload values are NaN.
type Table struct {
	axes    AxisSet
	rng     []float64
	az      []float64
	el      []float64
	columns []string
	data    map[string][]float64
	levels  [3][]float64
}

// NewTable builds a sorted, key-validated table from samples. The key is
// the composite of the axes named in axes; duplicate keys are rejected.
// Payload columns are the union of all sample value names; a sample
// lacking a column contributes NaN.
func NewTable(axes AxisSet, samples []Sample) (*Table, error) {
	if axes == 0 {
		return nil, fmt.Errorf("%w: table needs at least one key axis", ErrBadAxes)
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("cannot build table from zero samples")
	}

	colSet := make(map[string]bool)
	for _, s := range samples {
		for name := range s.Values {
			colSet[name] = true
		}
	}
	columns := make([]string, 0, len(colSet))
	for name := range colSet {
		columns = append(columns, name)
	}
	sort.Strings(columns)

	order := make([]int, len(samples))
	for i := range order {
		order[i] = i
	}
	key := func(i int) [3]float64 {
		k := [3]float64{}
		if axes.Has(AxisRange) {
			k[0] = samples[i].Range
		}
		if axes.Has(AxisAzimuth) {
			k[1] = samples[i].Azimuth
		}
		if axes.Has(AxisElevation) {
			k[2] = samples[i].Elevation
		}
		return k
	}
	sort.SliceStable(order, func(a, b int) bool {
		ka, kb := key(order[a]), key(order[b])
		for d := 0; d < 3; d++ {
			if ka[d] != kb[d] {
				return ka[d] < kb[d]
			}
		}
		return false
	})
	for i := 1; i < len(order); i++ {
		if key(order[i-1]) == key(order[i]) {
			return nil, fmt.Errorf("duplicate key %v at sample %d", key(order[i]), order[i])
		}
	}

	t := &Table{
		axes:    axes,
		columns: columns,
		data:    make(map[string][]float64, len(columns)),
	}
	n := len(samples)
	if axes.Has(AxisRange) {
		t.rng = make([]float64, n)
	}
	if axes.Has(AxisAzimuth) {
		t.az = make([]float64, n)
	}
	if axes.Has(AxisElevation) {
		t.el = make([]float64, n)
	}
	for _, name := range columns {
		t.data[name] = make([]float64, n)
	}
	for i, src := range order {
		s := samples[src]
		if t.rng != nil {
			t.rng[i] = s.Range
		}
		if t.az != nil {
			t.az[i] = s.Azimuth
		}
		if t.el != nil {
			t.el[i] = s.Elevation
		}
		for _, name := range columns {
			v, ok := s.Values[name]
			if !ok {
				v = math.NaN()
			}
			t.data[name][i] = v
		}
	}
	t.levels[AxisRange] = distinctSorted(t.rng)
	t.levels[AxisAzimuth] = distinctSorted(t.az)
	t.levels[AxisElevation] = distinctSorted(t.el)
	return t, nil
}

// distinctSorted returns the sorted distinct values of vals.
func distinctSorted(vals []float64) []float64 {
	if vals == nil {
		return nil
	}
	out := slices.Clone(vals)
	sort.Float64s(out)
	return slices.Compact(out)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if len(t.columns) > 0 {
		return len(t.data[t.columns[0]])
	}
	switch {
	case t.rng != nil:
		return len(t.rng)
	case t.az != nil:
		return len(t.az)
	default:
		return len(t.el)
	}
}

// Axes returns the set of key axes present.
func (t *Table) Axes() AxisSet { return t.axes }

// Columns returns the payload column names in sorted order.
func (t *Table) Columns() []string { return slices.Clone(t.columns) }

// Column returns a copy of the named payload column, or false when the
// column does not exist.
func (t *Table) Column(name string) ([]float64, bool) {
	col, ok := t.data[name]
	if !ok {
		return nil, false
	}
	return slices.Clone(col), true
}

// Ranges returns a copy of the per-row range coordinates, or nil when the
// range axis is absent. Azimuths and Elevations behave the same way for
// their axes.
func (t *Table) Ranges() []float64 { return slices.Clone(t.rng) }

func (t *Table) Azimuths() []float64 { return slices.Clone(t.az) }

func (t *Table) Elevations() []float64 { return slices.Clone(t.el) }

// Levels returns a copy of the sorted distinct values along axis a, or
// nil when the axis is absent.
func (t *Table) Levels(a Axis) []float64 {
	if a < AxisRange || a > AxisElevation {
		return nil
	}
	return slices.Clone(t.levels[a])
}

// At returns row i as a Sample. Coordinate fields for absent axes are NaN.
func (t *Table) At(i int) Sample {
	s := Sample{
		Range:     math.NaN(),
		Azimuth:   math.NaN(),
		Elevation: math.NaN(),
		Values:    make(map[string]float64, len(t.columns)),
	}
	if t.rng != nil {
		s.Range = t.rng[i]
	}
	if t.az != nil {
		s.Azimuth = t.az[i]
	}
	if t.el != nil {
		s.Elevation = t.el[i]
	}
	for _, name := range t.columns {
		s.Values[name] = t.data[name][i]
	}
	return s
}

// Copy returns a deep copy of the table.
func (t *Table) Copy() *Table {
	rows := make([]int, t.Len())
	for i := range rows {
		rows[i] = i
	}
	return t.subset(rows, 0)
}

// subset builds an independent table from the given row indices, removing
// the axes in drop from the key. Row order is preserved, so callers must
// pass rows already sorted by the remaining key axes.
func (t *Table) subset(rows []int, drop AxisSet) *Table {
	out := &Table{
		axes:    t.axes &^ drop,
		columns: slices.Clone(t.columns),
		data:    make(map[string][]float64, len(t.columns)),
	}
	pick := func(src []float64) []float64 {
		if src == nil {
			return nil
		}
		dst := make([]float64, len(rows))
		for i, r := range rows {
			dst[i] = src[r]
		}
		return dst
	}
	if out.axes.Has(AxisRange) {
		out.rng = pick(t.rng)
	}
	if out.axes.Has(AxisAzimuth) {
		out.az = pick(t.az)
	}
	if out.axes.Has(AxisElevation) {
		out.el = pick(t.el)
	}
	for _, name := range t.columns {
		out.data[name] = pick(t.data[name])
	}
	out.levels[AxisRange] = distinctSorted(out.rng)
	out.levels[AxisAzimuth] = distinctSorted(out.az)
	out.levels[AxisElevation] = distinctSorted(out.el)
	return out
}
