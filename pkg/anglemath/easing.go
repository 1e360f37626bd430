package anglemath

import "math"

// SmoothStep maps x within [min, max] onto a cubic 0..1 ramp.
func SmoothStep(x, min, max float64) float64 {
	if max == min {
		if x < min {
			return 0
		}
		return 1
	}
	x = math.Max(min, math.Min(max, x))
	v := (x - min) / (max - min)
	return -2*v*v*v + 3*v*v
}
