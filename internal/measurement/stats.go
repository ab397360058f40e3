package measurement

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

func meanOf(values []float64) float64 {
	return stat.Mean(values, nil)
}

// medianOf averages the middle pair for even-length series, matching the
// conventional sample median.
func medianOf(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
