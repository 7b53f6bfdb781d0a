package lidar

import (
	"fmt"
	"log"
	"math"
)

// ScanType labels the four supported scan geometries, derived from which
// key axes the table carries.
type ScanType int

const (
	// ScanVolumetric has range, azimuth and elevation axes.
	ScanVolumetric ScanType = iota
	// ScanVertical has no range axis (single implicit range).
	ScanVertical
	// ScanRHI has no azimuth axis (single azimuth, elevation sweep).
	ScanRHI
	// ScanPPI has no elevation axis (single elevation, azimuth sweep).
	ScanPPI
)

func (t ScanType) String() string {
	switch t {
	case ScanVolumetric:
		return "3D volumetric scan"
	case ScanVertical:
		return "vertical scan"
	case ScanRHI:
		return "RHI scan"
	case ScanPPI:
		return "PPI scan"
	default:
		return fmt.Sprintf("scan type(%d)", int(t))
	}
}

// Scan owns a scan table and answers nearest-match queries against it.
// Classification and range-gate geometry are fixed at construction and
// never change afterwards.
type Scan struct {
	tbl      *Table
	typ      ScanType
	gateSize float64 // 0 when the range axis is absent
	rmin     float64
	rmax     float64
	verbose  bool
	logger   *log.Logger
}

// ScanOption configures NewScan.
type ScanOption func(*Scan)

// WithVerbose enables informational logging of classification and
// nearest-match snapping.
func WithVerbose(v bool) ScanOption {
	return func(s *Scan) { s.verbose = v }
}

// WithLogger sets the logger used for verbose output.
func WithLogger(l *log.Logger) ScanOption {
	return func(s *Scan) { s.logger = l }
}

// WithGateSize fixes the expected range gate size [m]. Construction fails
// if the spacing observed in the table differs. Loaders that compute gate
// centers from a configured size use this to cross-check the table.
func WithGateSize(size float64) ScanOption {
	return func(s *Scan) { s.gateSize = size }
}

// NewScan classifies the table's axes into a scan type and validates its
// range-gate geometry. The scan takes ownership of tbl; callers must not
// use tbl afterwards.
func NewScan(tbl *Table, opts ...ScanOption) (*Scan, error) {
	s := &Scan{tbl: tbl, logger: log.Default()}
	for _, opt := range opts {
		opt(s)
	}

	typ, err := classifyAxes(tbl.Axes())
	if err != nil {
		return nil, err
	}
	s.typ = typ
	s.logf("[lidar] %s loaded", typ)

	if tbl.Axes().Has(AxisRange) {
		rlevels := tbl.levels[AxisRange]
		if len(rlevels) < 2 {
			if s.gateSize <= 0 {
				return nil, fmt.Errorf("cannot infer range gate size from %d range gate(s)", len(rlevels))
			}
		} else {
			dr := rlevels[1] - rlevels[0]
			if s.gateSize != 0 && s.gateSize != dr {
				return nil, fmt.Errorf("range gate size mismatch: configured %g m, table spacing %g m", s.gateSize, dr)
			}
			s.gateSize = dr
		}
		s.rmin = rlevels[0] - s.gateSize/2
		s.rmax = rlevels[len(rlevels)-1] + s.gateSize/2
	}
	return s, nil
}

// classifyAxes maps an axis set onto one of the four valid scan types.
func classifyAxes(axes AxisSet) (ScanType, error) {
	switch axes {
	case HasRange | HasAzimuth | HasElevation:
		return ScanVolumetric, nil
	case HasAzimuth | HasElevation:
		return ScanVertical, nil
	case HasRange | HasElevation:
		return ScanRHI, nil
	case HasRange | HasAzimuth:
		return ScanPPI, nil
	default:
		return 0, fmt.Errorf("%w: %v", ErrBadAxes, axes.Names())
	}
}

func (s *Scan) logf(format string, args ...any) {
	if s.verbose {
		s.logger.Printf(format, args...)
	}
}

// Type returns the scan classification.
func (s *Scan) Type() ScanType { return s.typ }

// IsRHI reports whether the scan is a single-azimuth elevation sweep.
func (s *Scan) IsRHI() bool { return s.typ == ScanRHI }

// IsPPI reports whether the scan is a single-elevation azimuth sweep.
func (s *Scan) IsPPI() bool { return s.typ == ScanPPI }

// Len returns the number of rows in the scan table.
func (s *Scan) Len() int { return s.tbl.Len() }

// GateSize returns the range gate size [m], or 0 for scans without a
// range axis.
func (s *Scan) GateSize() float64 { return s.gateSize }

// RMin returns the lower valid range bound (left edge of the first gate).
func (s *Scan) RMin() float64 { return s.rmin }

// RMax returns the exclusive upper valid range bound (right edge of the
// last gate).
func (s *Scan) RMax() float64 { return s.rmax }

// R returns the sorted distinct range gate centers, nil if absent.
func (s *Scan) R() []float64 { return s.tbl.Levels(AxisRange) }

// Az returns the sorted distinct azimuths, nil if absent.
func (s *Scan) Az() []float64 { return s.tbl.Levels(AxisAzimuth) }

// El returns the sorted distinct elevations, nil if absent.
func (s *Scan) El() []float64 { return s.tbl.Levels(AxisElevation) }

// Table returns an independent copy of the scan table.
func (s *Scan) Table() *Table { return s.tbl.Copy() }

// Get dispatches to GetRange, GetAzimuth or GetElevation for the first
// non-nil coordinate, in that order. All nil returns ErrNoQuery.
func (s *Scan) Get(r, az, el *float64) (*Table, error) {
	switch {
	case r != nil:
		return s.GetRange(*r)
	case az != nil:
		return s.GetAzimuth(*az)
	case el != nil:
		return s.GetElevation(*el)
	default:
		return nil, ErrNoQuery
	}
}

// GetRange returns a copy of the rows in the range gate containing r,
// keeping all key axes. Valid r lie in [RMin, RMax); each gate is the
// half-open interval [center-size/2, center+size/2).
func (s *Scan) GetRange(r float64) (*Table, error) {
	if !s.tbl.Axes().Has(AxisRange) {
		return nil, fmt.Errorf("%w: range", ErrMissingAxis)
	}
	if r < s.rmin {
		return nil, fmt.Errorf("%w: r < %g", ErrOutOfRange, s.rmin)
	}
	if r >= s.rmax {
		return nil, fmt.Errorf("%w: r >= %g", ErrOutOfRange, s.rmax)
	}

	rlevels := s.tbl.levels[AxisRange]
	idx := -1
	for i, c := range rlevels {
		if r == c {
			idx = i
			break
		}
	}
	var rsel float64
	if idx >= 0 {
		rsel = rlevels[idx]
		s.logf("[lidar] getting range gate %d between %g and %g", idx, rsel-s.gateSize/2, rsel+s.gateSize/2)
	} else {
		// First gate, in ascending order, whose right edge exceeds r.
		for i, c := range rlevels {
			if r < c+s.gateSize/2 {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, fmt.Errorf("%w: r >= %g", ErrOutOfRange, s.rmax)
		}
		rsel = rlevels[idx]
		r0, r1 := rsel-s.gateSize/2, rsel+s.gateSize/2
		if r < r0 || r >= r1 {
			return nil, fmt.Errorf("r=%g is not between %g and %g", r, r0, r1)
		}
		s.logf("[lidar] getting nearest range gate %d between %g and %g", idx, r0, r1)
	}

	rows := make([]int, 0, s.tbl.Len())
	for i, v := range s.tbl.rng {
		if v == rsel {
			rows = append(rows, i)
		}
	}
	return s.tbl.subset(rows, 0), nil
}

// GetAzimuth returns a copy of the cross-section at the azimuth nearest
// az, with the azimuth axis removed from the key. Valid az lie in
// [min azimuth, max azimuth] inclusive.
func (s *Scan) GetAzimuth(az float64) (*Table, error) {
	return s.getLevel(AxisAzimuth, HasAzimuth, az)
}

// GetElevation returns a copy of the cross-section at the elevation
// nearest el, with the elevation axis removed from the key. Valid el lie
// in [min elevation, max elevation] inclusive.
func (s *Scan) GetElevation(el float64) (*Table, error) {
	return s.getLevel(AxisElevation, HasElevation, el)
}

func (s *Scan) getLevel(a Axis, drop AxisSet, v float64) (*Table, error) {
	if !s.tbl.Axes().Has(a) {
		return nil, fmt.Errorf("%w: %s", ErrMissingAxis, a)
	}
	levels := s.tbl.levels[a]
	if v < levels[0] {
		return nil, fmt.Errorf("%w: %s < %g", ErrOutOfRange, a, levels[0])
	}
	if v > levels[len(levels)-1] {
		return nil, fmt.Errorf("%w: %s > %g", ErrOutOfRange, a, levels[len(levels)-1])
	}

	sel, exact := nearestLevel(levels, v)
	if !exact {
		s.logf("[lidar] getting nearest %s=%g deg", a, sel)
	}

	var coords []float64
	switch a {
	case AxisAzimuth:
		coords = s.tbl.az
	default:
		coords = s.tbl.el
	}
	rows := make([]int, 0, s.tbl.Len())
	for i, c := range coords {
		if c == sel {
			rows = append(rows, i)
		}
	}
	return s.tbl.subset(rows, drop), nil
}

// nearestLevel picks the level closest to v by absolute difference. Ties
// resolve to the first (lowest) candidate, which keeps repeated queries
// deterministic. exact reports whether v matched a level outright.
func nearestLevel(levels []float64, v float64) (sel float64, exact bool) {
	best := 0
	for i, c := range levels {
		if c == v {
			return c, true
		}
		if math.Abs(v-c) < math.Abs(v-levels[best]) {
			best = i
		}
	}
	return levels[best], false
}
