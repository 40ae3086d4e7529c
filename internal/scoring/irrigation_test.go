package scoring

import (
	"errors"
	"math"
	"testing"

	"github.com/smukkama/agrisense/internal/crop"
	"github.com/smukkama/agrisense/internal/zone"
)

func need(t *testing.T, in IrrigationInput) float64 {
	t.Helper()
	v, err := IrrigationNeed(&in)
	if err != nil {
		t.Fatalf("IrrigationNeed failed: %v", err)
	}
	return v
}

func TestIrrigationNeed_Formula(t *testing.T) {
	// 40*0.5 - 10 + 2*5 - 5*0.8 = 16
	got := need(t, IrrigationInput{SoilType: zone.Loamy, MoisturePct: 10, EToMMDay: 2, RainfallMM: 5})
	if math.Abs(got-16) > 1e-9 {
		t.Errorf("Expected 16, got %v", got)
	}
}

func TestIrrigationNeed_Clamped(t *testing.T) {
	if got := need(t, IrrigationInput{SoilType: zone.Sandy, MoisturePct: 60, RainfallMM: 10}); got != 0 {
		t.Errorf("Expected lower clamp 0, got %v", got)
	}
	if got := need(t, IrrigationInput{SoilType: zone.Peaty, EToMMDay: 15}); got != MaxIrrigationMM {
		t.Errorf("Expected upper clamp 50, got %v", got)
	}
}

func TestIrrigationNeed_Monotonic(t *testing.T) {
	for _, st := range zone.SoilTypes() {
		prev := -1.0
		for eto := 0.0; eto <= 15; eto += 0.25 {
			v := need(t, IrrigationInput{SoilType: st, MoisturePct: 25, EToMMDay: eto, RainfallMM: 3})
			if v < prev {
				t.Fatalf("%s: need decreased with ETo at %v (%v < %v)", st, eto, v, prev)
			}
			if v < 0 || v > MaxIrrigationMM {
				t.Fatalf("%s: need %v out of range", st, v)
			}
			prev = v
		}

		prev = math.Inf(1)
		for rain := 0.0; rain <= 100; rain += 0.5 {
			v := need(t, IrrigationInput{SoilType: st, MoisturePct: 5, EToMMDay: 6, RainfallMM: rain})
			if v > prev {
				t.Fatalf("%s: need increased with rainfall at %v (%v > %v)", st, rain, v, prev)
			}
			prev = v
		}
	}
}

func TestIrrigationNeed_Nil(t *testing.T) {
	if _, err := IrrigationNeed(nil); !errors.Is(err, ErrNoReading) {
		t.Errorf("Expected ErrNoReading, got %v", err)
	}
}

func TestFieldCapacity(t *testing.T) {
	tests := []struct {
		st   zone.SoilType
		want float64
	}{
		{zone.Sandy, 20}, {zone.Clay, 50}, {zone.Peaty, 60},
		{zone.Loamy, 40}, {zone.ClayLoam, 48}, {zone.SandyLoam, 28}, {zone.Silt, 45},
		{zone.SoilType("Chalky"), DefaultFieldCapacity},
	}
	for _, tt := range tests {
		if got := FieldCapacity(tt.st); got != tt.want {
			t.Errorf("FieldCapacity(%s) = %v, want %v", tt.st, got, tt.want)
		}
	}
}

func TestPriorityForNeed(t *testing.T) {
	if p := PriorityForNeed(20); p != PriorityHigh || p.Frequency() != "Daily" {
		t.Errorf("Expected High/Daily, got %s/%s", p, p.Frequency())
	}
	if p := PriorityForNeed(10); p != PriorityMedium {
		t.Errorf("Expected Medium, got %s", p)
	}
	if p := PriorityForNeed(5); p != PriorityLow {
		t.Errorf("Expected Low at exactly 5, got %s", p)
	}
}

func TestHeatIndex(t *testing.T) {
	if got := HeatIndex(68, 0); got != 64.5 {
		t.Errorf("HeatIndex(68, 0) = %v, want 64.5", got)
	}
	if got := HeatIndex(20, 100); math.Abs(got-16.4) > 1e-9 {
		t.Errorf("HeatIndex(20, 100) = %v, want 16.4", got)
	}
}

func TestEvapotranspirationEstimate(t *testing.T) {
	// 0.0023 * 47.8 * sqrt(100) * 0.5 = 0.5497
	if got := EvapotranspirationEstimate(30, 50, 99, 0); math.Abs(got-0.55) > 1e-9 {
		t.Errorf("Expected 0.55, got %v", got)
	}
	if got := EvapotranspirationEstimate(30, 100, 800, 20); got != 0 {
		t.Errorf("Saturated air should give 0, got %v", got)
	}
	if got := EvapotranspirationEstimate(50, -2000, 10000, 100); got != 15 {
		t.Errorf("Expected upper clamp 15, got %v", got)
	}
	if got := EvapotranspirationEstimate(-40, 50, 500, 10); got != 0 {
		t.Errorf("Expected lower clamp 0, got %v", got)
	}
}

func TestCropFitness(t *testing.T) {
	rice, _ := crop.Lookup("Rice")
	c := CropConditions{Nitrogen: 100, Phosphorus: 50, Potassium: 60, PH: 6.0, Temperature: 25, Season: crop.Kharif}
	if got := CropFitness(c, rice); got != 110 {
		t.Errorf("Expected full fitness 110, got %d", got)
	}

	c.Nitrogen = 120 + 1 // outside, 21 from midpoint 100
	c.Season = crop.Rabi
	if got := CropFitness(c, rice); got != 10+20+20+20+15 {
		t.Errorf("Expected 85, got %d", got)
	}
}

func TestRecommendCrop(t *testing.T) {
	c := CropConditions{Nitrogen: 100, Phosphorus: 50, Potassium: 60, PH: 6.0, Temperature: 25, Season: crop.Kharif}
	best, score, ok := RecommendCrop(c, crop.All())
	if !ok || best.Name != "Rice" || score != 110 {
		t.Errorf("Expected Rice/110, got %s/%d", best.Name, score)
	}

	if _, _, ok := RecommendCrop(c, nil); ok {
		t.Error("Expected no recommendation from an empty table")
	}
}
