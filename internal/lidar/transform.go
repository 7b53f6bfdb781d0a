package lidar

import (
	"fmt"
	"math"

	"github.com/WildGenie/mmctools/internal/units"
)

// XYZOptions supplies constant coordinates for axes a table lacks and
// selects the numeric mode of the transform.
type XYZOptions struct {
	// Range is the constant range [m]; required for vertical scan data
	// without a range axis.
	Range *float64
	// Azimuth is the constant azimuth [deg]; required for RHI scan data
	// without an azimuth axis.
	Azimuth *float64
	// Elevation is the constant elevation [deg] for PPI scan data without
	// an elevation axis. Defaults to 0 when nil.
	Elevation *float64
	// SmallAngle invokes the small elevation angle approximation,
	// i.e. cos(x)~1 and sin(x)~x.
	SmallAngle bool
}

// CalcXYZ transforms scan data with range (gate center), azimuth and
// elevation coordinates to Cartesian x, y, z, one triple per table row.
// Azimuth is a compass bearing (0 deg = north, clockwise). The transform
// is pure; the table is not modified.
func CalcXYZ(t *Table, opts XYZOptions) (x, y, z []float64, err error) {
	axes := t.Axes()
	if !axes.Has(AxisRange) && opts.Range == nil {
		return nil, nil, nil, fmt.Errorf("%w: need a constant value for range", ErrMissingAxis)
	}
	if !axes.Has(AxisAzimuth) && opts.Azimuth == nil {
		return nil, nil, nil, fmt.Errorf("%w: need a constant value for azimuth", ErrMissingAxis)
	}
	elConst := 0.0
	if opts.Elevation != nil {
		elConst = *opts.Elevation
	}

	n := t.Len()
	x = make([]float64, n)
	y = make([]float64, n)
	z = make([]float64, n)
	for i := 0; i < n; i++ {
		var ri, azi, eli float64
		if axes.Has(AxisRange) {
			ri = t.rng[i]
		} else {
			ri = *opts.Range
		}
		if axes.Has(AxisAzimuth) {
			azi = t.az[i]
		} else {
			azi = *opts.Azimuth
		}
		if axes.Has(AxisElevation) {
			eli = t.el[i]
		} else {
			eli = elConst
		}
		x[i], y[i], z[i] = CalcXYZPoint(ri, azi, eli, opts.SmallAngle)
	}
	return x, y, z, nil
}

// CalcXYZPoint converts a single return at range r [m], compass azimuth
// [deg] and elevation [deg] into Cartesian sensor-frame coordinates:
// X=east, Y=north, Z=up.
func CalcXYZPoint(r, azimuthDeg, elevationDeg float64, smallAngle bool) (x, y, z float64) {
	az := units.Radians(units.CompassToMath(azimuthDeg))
	el := units.Radians(elevationDeg)
	if smallAngle {
		return r * math.Cos(az), r * math.Sin(az), r * el
	}
	return r * math.Cos(az) * math.Cos(el), r * math.Sin(az) * math.Cos(el), r * math.Sin(el)
}
