package kpi

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Percentile returns the nearest-rank percentile of values: sort
// ascending, take the element at floor(p/100 * n), clamped to the last
// index. Returns nil for empty input. p is a percentage, e.g. 75 for the
// 75th percentile.
func Percentile(values []float64, p float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	idx := int(float64(len(sorted)) * p / 100.0)
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	if idx < 0 {
		idx = 0
	}
	v := sorted[idx]
	return &v
}

// Mean returns the arithmetic mean of values, or nil for empty input.
func Mean(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	m := stat.Mean(values, nil)
	return &m
}
