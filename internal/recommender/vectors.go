package recommender

import "math"

// dotProduct computes the inner product of two equal-length vectors
func dotProduct(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func norm(a []float64) float64 {
	var sum float64
	for _, v := range a {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// cosineSimilarity returns the cosine of the angle between a and b,
// in [-1, 1]. Zero vectors yield 0.
func cosineSimilarity(a, b []float64) float64 {
	na := norm(a)
	nb := norm(b)
	if na == 0 || nb == 0 {
		return 0
	}
	sim := dotProduct(a, b) / (na * nb)
	// Clamp accumulated floating point error back into range
	if sim > 1 {
		sim = 1
	} else if sim < -1 {
		sim = -1
	}
	return sim
}
