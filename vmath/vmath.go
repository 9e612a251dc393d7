package vmath

import (
	"math"
)

// Clamp limits v into [lo, hi]
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamp01 limits v into [0, 1]
func Clamp01(v float64) float64 {
	return Clamp(v, 0, 1)
}

// Lerp interpolates linearly between a and b
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// ExpLerp interpolates exponentially between a and b (both must be > 0)
// Used for perceptual quantities: filter cutoffs, frequencies
func ExpLerp(a, b, t float64) float64 {
	return a * math.Pow(b/a, t)
}

// Sanitize replaces NaN/Inf with fallback
func Sanitize(v, fallback float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return v
}
