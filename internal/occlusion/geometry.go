package occlusion

import "math"

// BeamCount is the number of angular samples in one full scan.
const BeamCount = 360

// BeamToDegrees maps a beam index to its angle in degrees using a linear
// sweep from angleMinDeg across angleSpanDeg. The result is normalized into
// [-180, 180); every angle this package reports uses that convention, so
// printed ranges can be compared literally across runs.
func BeamToDegrees(beam int, angleMinDeg, angleSpanDeg float64) float64 {
	deg := angleMinDeg + float64(beam)*(angleSpanDeg/BeamCount)
	return NormalizeDegrees(deg)
}

// NormalizeDegrees wraps an angle into [-180, 180).
func NormalizeDegrees(deg float64) float64 {
	deg = math.Mod(deg+180, 360)
	if deg < 0 {
		deg += 360
	}
	return deg - 180
}

// CircularDistance returns the minimal beam separation between two indices
// on the 360-point ring: min(|a-b|, 360-|a-b|).
func CircularDistance(a, b int) int {
	d := a - b
	if d < 0 {
		d = -d
	}
	if d > BeamCount-d {
		d = BeamCount - d
	}
	return d
}

// Wraps reports whether a segment with the given inclusive endpoints crosses
// the 359 -> 0 boundary.
func Wraps(start, end int) bool {
	return end < start
}

// circularMidpoint returns the inclusive midpoint beam of a run that starts
// at start and spans width beams, wrapping past 359 if needed.
func circularMidpoint(start, width int) int {
	return (start + (width-1)/2) % BeamCount
}
