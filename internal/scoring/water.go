package scoring

import (
	"fmt"
	"math"
	"strconv"

	"github.com/smukkama/agrisense/internal/reading"
)

// WaterQualityInput holds the five parameters of the quality rubric
type WaterQualityInput struct {
	PH              float64
	TDS             float64
	Turbidity       float64
	DissolvedOxygen float64
	Nitrate         float64
}

// Each parameter scores 20 points in its good tier, 10 in the fair tier.
var (
	waterPHLadder        = ladder{bands: []band{between(6.5, 8.5, 20), between(6.0, 9.0, 10)}}
	waterTDSLadder       = ladder{bands: []band{below(500, 20), below(1000, 10)}}
	waterTurbidityLadder = ladder{bands: []band{below(5, 20), below(10, 10)}}
	waterOxygenLadder    = ladder{bands: []band{above(6, 20), above(4, 10)}}
	waterNitrateLadder   = ladder{bands: []band{below(10, 20), below(45, 10)}}
)

// WaterQualityPoints sums the additive rubric, 0 to 100
func WaterQualityPoints(in WaterQualityInput) int {
	total := waterPHLadder.points(in.PH) +
		waterTDSLadder.points(in.TDS) +
		waterTurbidityLadder.points(in.Turbidity) +
		waterOxygenLadder.points(in.DissolvedOxygen) +
		waterNitrateLadder.points(in.Nitrate)
	return int(total)
}

// GradeForPoints maps rubric points to a letter grade
func GradeForPoints(points int) reading.Grade {
	switch {
	case points >= 80:
		return reading.GradeA
	case points >= 60:
		return reading.GradeB
	case points >= 40:
		return reading.GradeC
	case points >= 20:
		return reading.GradeD
	default:
		return reading.GradeF
	}
}

// GradeWater scores and grades a sample
func GradeWater(in WaterQualityInput) (int, reading.Grade) {
	points := WaterQualityPoints(in)
	return points, GradeForPoints(points)
}

// Treatment is the guidance attached to a quality grade
type Treatment struct {
	Status    string `json:"status"`
	Treatment string `json:"treatment"`
}

var treatments = map[reading.Grade]Treatment{
	reading.GradeA: {"Excellent", "No treatment needed. Safe for irrigation and livestock."},
	reading.GradeB: {"Good", "Basic filtration recommended. Suitable for most crops."},
	reading.GradeC: {"Moderate", "Sediment filtration + pH adjustment recommended. Monitor sensitive crops."},
	reading.GradeD: {"Poor", "Multi-stage treatment required: sedimentation, filtration, chemical treatment. Limit to tolerant crops."},
	reading.GradeF: {"Unsafe", "Do NOT use for irrigation. Full treatment required: reverse osmosis or advanced oxidation. Investigate contamination source."},
}

// TreatmentFor returns the treatment guidance for a grade
func TreatmentFor(g reading.Grade) (Treatment, bool) {
	t, ok := treatments[g]
	return t, ok
}

// irrigationLimit bounds one water parameter for irrigation use
type irrigationLimit struct {
	param  string
	unit   string
	min    float64
	hasMin bool
	max    float64
	value  func(*reading.WaterReading) float64
}

var irrigationLimits = [...]irrigationLimit{
	{param: "ph", min: 6.0, hasMin: true, max: 8.5, value: func(w *reading.WaterReading) float64 { return w.PH }},
	{param: "tds_ppm", unit: "ppm", max: 2000, value: func(w *reading.WaterReading) float64 { return w.TDS }},
	{param: "chloride_mg_l", unit: "mg/L", max: 350, value: func(w *reading.WaterReading) float64 { return w.Chloride }},
	{param: "sulfate_mg_l", unit: "mg/L", max: 400, value: func(w *reading.WaterReading) float64 { return w.Sulfate }},
	{param: "hardness_mg_l", unit: "mg/L", max: 500, value: func(w *reading.WaterReading) float64 { return w.Hardness }},
}

// Suitability is the verdict of the irrigation water check
type Suitability struct {
	Suitable       bool     `json:"suitable"`
	Issues         []string `json:"issues"`
	Recommendation string   `json:"recommendation"`
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// AssessIrrigationSuitability flags every parameter outside its limit.
// Water is suitable only when no parameter is flagged.
func AssessIrrigationSuitability(w *reading.WaterReading) (Suitability, error) {
	if w == nil {
		return Suitability{}, ErrNoReading
	}

	var issues []string
	for _, l := range irrigationLimits {
		v := l.value(w)
		if math.IsNaN(v) {
			continue
		}
		if v > l.max {
			issues = append(issues, fmt.Sprintf("%s (%s%s) exceeds limit (%s%s)",
				l.param, formatValue(v), l.unit, formatValue(l.max), l.unit))
		}
		if l.hasMin && v < l.min {
			issues = append(issues, fmt.Sprintf("%s (%s%s) below minimum (%s%s)",
				l.param, formatValue(v), l.unit, formatValue(l.min), l.unit))
		}
	}

	s := Suitability{
		Suitable:       len(issues) == 0,
		Issues:         issues,
		Recommendation: "Suitable for irrigation",
	}
	if !s.Suitable {
		s.Recommendation = "Treatment needed before irrigation"
	}
	return s, nil
}
