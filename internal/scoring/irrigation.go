package scoring

import (
	"math"

	"github.com/smukkama/agrisense/internal/zone"
)

// Fixed design constants of the irrigation need formula
const (
	EToMultiplier         = 5.0
	RainfallDiscount      = 0.8
	FieldCapacityFraction = 0.5
	MaxIrrigationMM       = 50.0
	DefaultFieldCapacity  = 35.0
)

var fieldCapacity = map[zone.SoilType]float64{
	zone.Loamy:     40,
	zone.Clay:      50,
	zone.Sandy:     20,
	zone.Silt:      45,
	zone.ClayLoam:  48,
	zone.SandyLoam: 28,
	zone.Peaty:     60,
}

// FieldCapacity returns the moisture percentage a soil type holds after
// drainage, or DefaultFieldCapacity for an unknown type.
func FieldCapacity(st zone.SoilType) float64 {
	if fc, ok := fieldCapacity[st]; ok {
		return fc
	}
	return DefaultFieldCapacity
}

// IrrigationInput aligns one soil reading with its weather aggregate
type IrrigationInput struct {
	SoilType    zone.SoilType
	MoisturePct float64
	EToMMDay    float64
	RainfallMM  float64
}

// MoistureDeficit is half the field capacity minus current moisture
func MoistureDeficit(st zone.SoilType, moisturePct float64) float64 {
	return FieldCapacity(st)*FieldCapacityFraction - moisturePct
}

// IrrigationNeed returns the water to apply in mm, clamped to [0, 50]
func IrrigationNeed(in *IrrigationInput) (float64, error) {
	if in == nil {
		return 0, ErrNoReading
	}
	need := MoistureDeficit(in.SoilType, in.MoisturePct) +
		in.EToMMDay*EToMultiplier -
		in.RainfallMM*RainfallDiscount
	return clamp(need, 0, MaxIrrigationMM), nil
}

// Priority ranks how urgently a zone needs water
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// PriorityForNeed classifies an average irrigation need in mm
func PriorityForNeed(avgNeedMM float64) Priority {
	switch {
	case avgNeedMM > 15:
		return PriorityHigh
	case avgNeedMM > 5:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// Frequency is the watering cadence recommended for a priority
func (p Priority) Frequency() string {
	switch p {
	case PriorityHigh:
		return "Daily"
	case PriorityMedium:
		return "Every 2 days"
	default:
		return "Every 3-4 days"
	}
}

// HeatIndex is a simplified Steadman regression on temperature and
// relative humidity, rounded to one decimal.
func HeatIndex(tempC, humidityPct float64) float64 {
	hi := 0.5 * (tempC + 61.0 + (tempC-68.0)*1.2 + humidityPct*0.094)
	return round(hi, 1)
}

// EvapotranspirationEstimate is a simplified reference ETo in mm/day,
// clamped to [0, 15] and rounded to two decimals.
func EvapotranspirationEstimate(tempC, humidityPct, solarWm2, windKmh float64) float64 {
	eto := 0.0023 * (tempC + 17.8) * math.Sqrt(math.Abs(solarWm2)+1) *
		(1 - humidityPct/100) * (1 + 0.01*windKmh)
	return round(clamp(eto, 0, 15), 2)
}
