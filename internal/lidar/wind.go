package lidar

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/WildGenie/mmctools/internal/units"
)

// Wind is a mean horizontal wind estimate. Direction follows the
// meteorological convention: the bearing the wind blows FROM, in degrees
// clockwise from north, normalized to [0, 360).
type Wind struct {
	Speed     float64 // [m/s]
	Direction float64 // [deg]
}

// EstimateMeanWind estimates mean wind speed and direction from an arc
// scan. column names the radial (Doppler) velocity column of tbl. The
// scan must carry an azimuth axis; the elevation either comes from the
// table (and must then be a single repeated value) or from the explicit
// elevation argument for PPI data without an elevation axis.
//
// Rows with NaN radial velocity are excluded from the fit. The fit is a
// no-intercept least squares of vr against
//
//	comp1 = cos(el)*sin(az),  comp2 = cos(el)*cos(az)
//
// solving for the east (U0) and north (V0) wind components. Arcs that
// cannot determine both components (fewer than two usable observations,
// a single distinct azimuth, or an ill-conditioned system) fail with
// ErrInsufficientData instead of returning a silent best-effort result.
func EstimateMeanWind(tbl *Table, column string, elevation *float64) (Wind, error) {
	vr, ok := tbl.Column(column)
	if !ok {
		return Wind{}, fmt.Errorf("no column %q in table", column)
	}
	if !tbl.Axes().Has(AxisAzimuth) {
		return Wind{}, fmt.Errorf("%w: azimuth", ErrMissingAxis)
	}

	var elDeg []float64
	if tbl.Axes().Has(AxisElevation) {
		elDeg = tbl.el
		for _, e := range elDeg {
			if e != elDeg[0] {
				return Wind{}, fmt.Errorf("elevation varies across scan: %g and %g deg", elDeg[0], e)
			}
		}
	} else {
		if elevation == nil {
			return Wind{}, fmt.Errorf("%w: PPI scan, need to specify elevation", ErrMissingAxis)
		}
	}
	elAt := func(i int) float64 {
		if elDeg != nil {
			return elDeg[i]
		}
		return *elevation
	}

	var (
		comp1, comp2, obs []float64
		azSeen            = make(map[float64]bool)
	)
	for i, v := range vr {
		if math.IsNaN(v) {
			continue
		}
		az := units.Radians(tbl.az[i])
		el := units.Radians(elAt(i))
		comp1 = append(comp1, math.Cos(el)*math.Sin(az))
		comp2 = append(comp2, math.Cos(el)*math.Cos(az))
		obs = append(obs, v)
		azSeen[tbl.az[i]] = true
	}
	if len(obs) < 2 {
		return Wind{}, fmt.Errorf("%w: %d usable observation(s)", ErrInsufficientData, len(obs))
	}
	if len(azSeen) < 2 {
		return Wind{}, fmt.Errorf("%w: all observations share one azimuth", ErrInsufficientData)
	}

	lhs := mat.NewDense(len(obs), 2, nil)
	for i := range obs {
		lhs.Set(i, 0, comp1[i])
		lhs.Set(i, 1, comp2[i])
	}
	rhs := mat.NewVecDense(len(obs), obs)

	var qr mat.QR
	qr.Factorize(lhs)
	var sol mat.VecDense
	if err := qr.SolveVecTo(&sol, false, rhs); err != nil {
		return Wind{}, fmt.Errorf("%w: %v", ErrInsufficientData, err)
	}

	u0, v0 := sol.AtVec(0), sol.AtVec(1)
	return Wind{
		Speed:     math.Hypot(u0, v0),
		Direction: units.NormalizeDirection(180 + units.Degrees(math.Atan2(u0, v0))),
	}, nil
}
