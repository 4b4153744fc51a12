package catalog

import "math"

// NormalizeVector returns a unit-length copy of v. The stored vectors are
// compared by dot product, so every embedding goes through here first.
// A zero vector stays zero.
func NormalizeVector(v []float32) []float32 {
	if len(v) == 0 {
		return v
	}

	norm := magnitude(v)
	result := make([]float32, len(v))
	if norm == 0 {
		return result
	}
	for i, val := range v {
		result[i] = val / norm
	}
	return result
}

func magnitude(v []float32) float32 {
	var sum float64
	for _, val := range v {
		sum += float64(val) * float64(val)
	}
	return float32(math.Sqrt(sum))
}
