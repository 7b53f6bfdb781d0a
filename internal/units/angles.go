package units

import "math"

// Radians converts an angle in degrees to radians.
func Radians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// Degrees converts an angle in radians to degrees.
func Degrees(rad float64) float64 {
	return rad * 180.0 / math.Pi
}

// CompassToMath converts a compass bearing (0 deg = north, clockwise
// positive) to a standard mathematical angle (0 deg = east,
// counter-clockwise positive). Both are in degrees.
func CompassToMath(bearingDeg float64) float64 {
	return 90.0 - bearingDeg
}

// NormalizeDirection folds a direction in degrees into [0, 360).
func NormalizeDirection(deg float64) float64 {
	d := math.Mod(deg, 360.0)
	if d < 0 {
		d += 360.0
	}
	return d
}
