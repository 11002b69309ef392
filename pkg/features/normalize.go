package features

import "math"

// Normalize a single value into the [min, max] range of its attribute
func normalizeValue(value, min, max float64, mode ClampMode) float64 {
	normalized := (value - min) / (max - min)
	if mode == Clamp {
		return math.Max(0, math.Min(1, normalized))
	}
	return normalized
}
