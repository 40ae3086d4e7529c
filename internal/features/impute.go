package features

import (
	"slices"

	"github.com/smukkama/agrisense/internal/reading"
)

// Median returns the median of the known values. Even counts average
// the two middle values.
func Median(values []*float64) (float64, bool) {
	known := make([]float64, 0, len(values))
	for _, v := range values {
		if v != nil {
			known = append(known, *v)
		}
	}
	if len(known) == 0 {
		return 0, false
	}
	slices.Sort(known)
	mid := len(known) / 2
	if len(known)%2 == 1 {
		return known[mid], true
	}
	return (known[mid-1] + known[mid]) / 2, true
}

// column addresses one optional field of a row
type column[T any] func(*T) **float64

// impute fills every nil cell of each column with that column's median.
// A column with no known values is left untouched. The input is not
// modified.
func impute[T any](rows []T, cols []column[T]) []T {
	out := slices.Clone(rows)
	for _, col := range cols {
		values := make([]*float64, len(out))
		for i := range out {
			values[i] = *col(&out[i])
		}
		m, ok := Median(values)
		if !ok {
			continue
		}
		for i := range out {
			if cell := col(&out[i]); *cell == nil {
				*cell = reading.Float(m)
			}
		}
	}
	return out
}

var soilOptional = []column[reading.SoilReading]{
	func(r *reading.SoilReading) **float64 { return &r.Nitrogen },
	func(r *reading.SoilReading) **float64 { return &r.Phosphorus },
	func(r *reading.SoilReading) **float64 { return &r.EC },
}

var waterOptional = []column[reading.WaterReading]{
	func(r *reading.WaterReading) **float64 { return &r.Turbidity },
	func(r *reading.WaterReading) **float64 { return &r.DissolvedOxygen },
}

// ImputeSoil returns a copy of the soil table with missing nitrogen,
// phosphorus and EC replaced by their column medians
func ImputeSoil(rows []reading.SoilReading) []reading.SoilReading {
	return impute(rows, soilOptional)
}

// ImputeWater returns a copy of the water table with missing turbidity
// and dissolved oxygen replaced by their column medians
func ImputeWater(rows []reading.WaterReading) []reading.WaterReading {
	return impute(rows, waterOptional)
}
