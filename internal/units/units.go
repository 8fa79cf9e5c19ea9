// Package units provides shared constants and conversion helpers for device
// length units. Gesture samples arrive in device points; all rotation math
// runs in meters and radians.
package units

import "math"

// DefaultPointsPerMeter is the device constant relating screen points to
// physical meters for the reference device class.
const DefaultPointsPerMeter = 1360.0

// MetersFromPoints converts a length in device points to meters using the
// given device constant. A non-positive pointsPerMeter falls back to the
// default rather than producing Inf.
func MetersFromPoints(points, pointsPerMeter float64) float64 {
	if pointsPerMeter <= 0 {
		pointsPerMeter = DefaultPointsPerMeter
	}
	return points / pointsPerMeter
}

// PointsFromMeters converts a length in meters back to device points.
func PointsFromMeters(meters, pointsPerMeter float64) float64 {
	if pointsPerMeter <= 0 {
		pointsPerMeter = DefaultPointsPerMeter
	}
	return meters * pointsPerMeter
}

// RadiansFromDegrees converts an angle in degrees to radians.
func RadiansFromDegrees(deg float64) float64 {
	return deg * math.Pi / 180
}

// DegreesFromRadians converts an angle in radians to degrees.
func DegreesFromRadians(rad float64) float64 {
	return rad * 180 / math.Pi
}
