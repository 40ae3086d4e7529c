package scoring

import (
	"math"

	"github.com/smukkama/agrisense/internal/crop"
)

// CropConditions are the field conditions a crop is matched against
type CropConditions struct {
	Nitrogen    float64
	Phosphorus  float64
	Potassium   float64
	PH          float64
	Temperature float64
	Season      crop.Season
}

// rangePoints awards inside points within [lo, hi], and near points when
// the value lies within nearWithin of the range midpoint.
func rangePoints(v, lo, hi float64, inside, near int, nearWithin float64) int {
	if v >= lo && v <= hi {
		return inside
	}
	if math.Abs(v-(lo+hi)/2) < nearWithin {
		return near
	}
	return 0
}

// CropFitness scores how well a crop suits the conditions, 0 to 110
func CropFitness(c CropConditions, t crop.Tolerance) int {
	score := rangePoints(c.Nitrogen, t.NMin, t.NMax, 25, 10, 30)
	score += rangePoints(c.Phosphorus, t.PMin, t.PMax, 20, 8, 20)
	score += rangePoints(c.Potassium, t.KMin, t.KMax, 20, 8, 25)
	score += rangePoints(c.PH, t.PHMin, t.PHMax, 20, 8, 1)
	if c.Temperature >= t.TempMin && c.Temperature <= t.TempMax {
		score += 15
	}
	if t.GrowsIn(c.Season) {
		score += 10
	}
	return score
}

// RecommendCrop returns the best-scoring crop. Ties go to the crop that
// appears first in the table.
func RecommendCrop(c CropConditions, table []crop.Tolerance) (crop.Tolerance, int, bool) {
	best, bestScore := -1, -1
	for i, t := range table {
		if s := CropFitness(c, t); s > bestScore {
			best, bestScore = i, s
		}
	}
	if best < 0 {
		return crop.Tolerance{}, 0, false
	}
	return table[best], bestScore, true
}
