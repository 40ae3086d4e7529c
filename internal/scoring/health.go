package scoring

import (
	"errors"
	"math"

	"github.com/smukkama/agrisense/internal/reading"
)

// ErrNoReading is returned when a scoring function receives no input at all
var ErrNoReading = errors.New("no reading supplied")

// DefaultPH is assumed when a sample carries no pH value
const DefaultPH = 7.0

// SoilSample is the input of the soil scoring functions. Any field may be
// nil when the sensor did not report it.
type SoilSample struct {
	Nitrogen      *float64 `json:"nitrogen_mg_kg"`
	Phosphorus    *float64 `json:"phosphorus_mg_kg"`
	Potassium     *float64 `json:"potassium_mg_kg"`
	PH            *float64 `json:"ph"`
	OrganicMatter *float64 `json:"organic_matter_pct"`
	Moisture      *float64 `json:"moisture_pct"`
	EC            *float64 `json:"ec_mscm"`
}

// SampleFromReading converts a soil table row into a scoring sample
func SampleFromReading(r reading.SoilReading) *SoilSample {
	return &SoilSample{
		Nitrogen:      r.Nitrogen,
		Phosphorus:    r.Phosphorus,
		Potassium:     reading.Float(r.Potassium),
		PH:            reading.Float(r.PH),
		OrganicMatter: reading.Float(r.OrganicMatter),
		Moisture:      reading.Float(r.Moisture),
		EC:            r.EC,
	}
}

func (s *SoilSample) ph() float64 {
	if s.PH == nil {
		return DefaultPH
	}
	return *s.PH
}

// HealthCategory is the label derived from a health score
type HealthCategory string

const (
	Excellent HealthCategory = "Excellent"
	Good      HealthCategory = "Good"
	Fair      HealthCategory = "Fair"
	Poor      HealthCategory = "Poor"
)

// Health is the composite soil health result
type Health struct {
	Score    float64        `json:"score"`
	Category HealthCategory `json:"category"`
}

// nutrientCurve scores 10 points at the ideal value, decaying linearly
type nutrientCurve struct {
	ideal       float64
	sensitivity float64
}

func (c nutrientCurve) points(v float64) float64 {
	return math.Max(0, 10-math.Abs(v-c.ideal)/c.sensitivity)
}

var (
	nitrogenCurve   = nutrientCurve{ideal: 80, sensitivity: 8}
	phosphorusCurve = nutrientCurve{ideal: 45, sensitivity: 5}
	potassiumCurve  = nutrientCurve{ideal: 60, sensitivity: 6}

	phLadder = ladder{
		bands: []band{between(6.0, 7.5, 20), between(5.5, 8.0, 12), between(5.0, 8.5, 5)},
	}
	organicMatterLadder = ladder{
		bands:     []band{between(3.0, 6.0, 20), between(2.0, 8.0, 12)},
		otherwise: 5,
	}
	moistureLadder = ladder{
		bands:     []band{between(20, 45, 15), between(10, 60, 8)},
		otherwise: 3,
	}
	ecLadder = ladder{
		bands:     []band{between(0.5, 2.5, 15), between(0.2, 4.0, 8)},
		otherwise: 2,
	}
)

// curvePoints and ladderPoints award nothing for an unknown value
func curvePoints(c nutrientCurve, v *float64) float64 {
	if v == nil {
		return 0
	}
	return c.points(*v)
}

func ladderPoints(l ladder, v *float64) float64 {
	if v == nil {
		return 0
	}
	return l.points(*v)
}

// HealthScore computes the 100-point soil health rubric: NPK balance 30,
// pH 20, organic matter 20, moisture 15, electrical conductivity 15.
func HealthScore(s *SoilSample) (Health, error) {
	if s == nil {
		return Health{}, ErrNoReading
	}

	score := curvePoints(nitrogenCurve, s.Nitrogen) +
		curvePoints(phosphorusCurve, s.Phosphorus) +
		curvePoints(potassiumCurve, s.Potassium)
	score += phLadder.points(s.ph())
	score += ladderPoints(organicMatterLadder, s.OrganicMatter)
	score += ladderPoints(moistureLadder, s.Moisture)
	score += ladderPoints(ecLadder, s.EC)

	score = clamp(round(score, 1), 0, 100)
	return Health{Score: score, Category: CategorizeHealthScore(score)}, nil
}

// CategorizeHealthScore maps a score to its label. Boundaries are closed
// at 80, 60 and 40.
func CategorizeHealthScore(score float64) HealthCategory {
	switch {
	case score >= 80:
		return Excellent
	case score >= 60:
		return Good
	case score >= 40:
		return Fair
	default:
		return Poor
	}
}
