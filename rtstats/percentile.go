// Package rtstats summarizes human response times and AI latencies into
// percentile reports.
package rtstats

import (
	"math"
	"sort"
)

// percentile computes the linear-interpolation percentile: rank i=(n-1)*q,
// interpolated between the floor and ceil ranks. Returns 0 for empty input.
func percentile(xs []float64, q float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)

	i := float64(len(sorted)-1) * q
	lo := int(math.Floor(i))
	hi := int(math.Ceil(i))
	if lo == hi {
		return sorted[lo]
	}
	f := i - float64(lo)
	return sorted[lo]*(1-f) + sorted[hi]*f
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
