package scoring

import (
	"errors"
	"strings"
	"testing"

	"github.com/smukkama/agrisense/internal/reading"
)

func TestGradeWater_Examples(t *testing.T) {
	points, grade := GradeWater(WaterQualityInput{PH: 7.0, TDS: 300, Turbidity: 3, DissolvedOxygen: 7, Nitrate: 5})
	if points != 100 || grade != reading.GradeA {
		t.Errorf("Expected 100/A, got %d/%s", points, grade)
	}

	points, grade = GradeWater(WaterQualityInput{PH: 3.0, TDS: 2000, Turbidity: 50, DissolvedOxygen: 1, Nitrate: 100})
	if points != 0 || grade != reading.GradeF {
		t.Errorf("Expected 0/F, got %d/%s", points, grade)
	}
}

func TestWaterQualityPoints_TierBoundaries(t *testing.T) {
	base := WaterQualityInput{PH: 7.0, TDS: 300, Turbidity: 3, DissolvedOxygen: 7, Nitrate: 5}

	tests := []struct {
		name   string
		modify func(*WaterQualityInput)
		want   int
	}{
		{"pH 6.5 good", func(w *WaterQualityInput) { w.PH = 6.5 }, 100},
		{"pH 8.5 good", func(w *WaterQualityInput) { w.PH = 8.5 }, 100},
		{"pH 6.0 fair", func(w *WaterQualityInput) { w.PH = 6.0 }, 90},
		{"pH 9.0 fair", func(w *WaterQualityInput) { w.PH = 9.0 }, 90},
		{"pH 9.1 none", func(w *WaterQualityInput) { w.PH = 9.1 }, 80},
		{"TDS 500 fair", func(w *WaterQualityInput) { w.TDS = 500 }, 90},
		{"TDS 1000 none", func(w *WaterQualityInput) { w.TDS = 1000 }, 80},
		{"turbidity 5 fair", func(w *WaterQualityInput) { w.Turbidity = 5 }, 90},
		{"turbidity 10 none", func(w *WaterQualityInput) { w.Turbidity = 10 }, 80},
		{"DO 6 fair", func(w *WaterQualityInput) { w.DissolvedOxygen = 6 }, 90},
		{"DO 4 none", func(w *WaterQualityInput) { w.DissolvedOxygen = 4 }, 80},
		{"nitrate 10 fair", func(w *WaterQualityInput) { w.Nitrate = 10 }, 90},
		{"nitrate 45 none", func(w *WaterQualityInput) { w.Nitrate = 45 }, 80},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := base
			tt.modify(&in)
			if got := WaterQualityPoints(in); got != tt.want {
				t.Errorf("Expected %d points, got %d", tt.want, got)
			}
		})
	}
}

func TestGradeForPoints(t *testing.T) {
	tests := []struct {
		points int
		want   reading.Grade
	}{
		{100, reading.GradeA}, {80, reading.GradeA}, {70, reading.GradeB},
		{60, reading.GradeB}, {50, reading.GradeC}, {40, reading.GradeC},
		{30, reading.GradeD}, {20, reading.GradeD}, {10, reading.GradeF}, {0, reading.GradeF},
	}
	for _, tt := range tests {
		if got := GradeForPoints(tt.points); got != tt.want {
			t.Errorf("GradeForPoints(%d) = %s, want %s", tt.points, got, tt.want)
		}
	}
}

func TestTreatmentFor(t *testing.T) {
	for _, g := range []reading.Grade{reading.GradeA, reading.GradeB, reading.GradeC, reading.GradeD, reading.GradeF} {
		if _, ok := TreatmentFor(g); !ok {
			t.Errorf("No treatment for grade %s", g)
		}
	}
}

func cleanWater() *reading.WaterReading {
	return &reading.WaterReading{PH: 7.0, TDS: 300, Chloride: 50, Sulfate: 40, Hardness: 150}
}

func TestAssessIrrigationSuitability_Suitable(t *testing.T) {
	s, err := AssessIrrigationSuitability(cleanWater())
	if err != nil {
		t.Fatalf("AssessIrrigationSuitability failed: %v", err)
	}
	if !s.Suitable || len(s.Issues) != 0 || s.Recommendation != "Suitable for irrigation" {
		t.Errorf("Expected suitable water, got %+v", s)
	}
}

func TestAssessIrrigationSuitability_Issues(t *testing.T) {
	w := cleanWater()
	w.PH = 5.5
	w.TDS = 2500

	s, _ := AssessIrrigationSuitability(w)
	if s.Suitable {
		t.Fatal("Expected unsuitable water")
	}
	if len(s.Issues) != 2 {
		t.Fatalf("Expected 2 issues, got %v", s.Issues)
	}
	if s.Issues[0] != "ph (5.5) below minimum (6)" {
		t.Errorf("Unexpected pH issue: %q", s.Issues[0])
	}
	if s.Issues[1] != "tds_ppm (2500ppm) exceeds limit (2000ppm)" {
		t.Errorf("Unexpected TDS issue: %q", s.Issues[1])
	}
	if !strings.Contains(s.Recommendation, "Treatment") {
		t.Errorf("Unexpected recommendation %q", s.Recommendation)
	}
}

func TestAssessIrrigationSuitability_StrictAnd(t *testing.T) {
	checks := []func(*reading.WaterReading){
		func(w *reading.WaterReading) { w.PH = 8.6 },
		func(w *reading.WaterReading) { w.Chloride = 351 },
		func(w *reading.WaterReading) { w.Sulfate = 401 },
		func(w *reading.WaterReading) { w.Hardness = 501 },
	}
	for i, modify := range checks {
		w := cleanWater()
		modify(w)
		s, _ := AssessIrrigationSuitability(w)
		if s.Suitable || len(s.Issues) != 1 {
			t.Errorf("Check %d: a single violation should make water unsuitable, got %+v", i, s)
		}
	}

	w := cleanWater()
	w.Hardness = 500
	w.PH = 8.5
	if s, _ := AssessIrrigationSuitability(w); !s.Suitable {
		t.Errorf("Values at the limit should pass, got %v", s.Issues)
	}
}

func TestAssessIrrigationSuitability_Nil(t *testing.T) {
	if _, err := AssessIrrigationSuitability(nil); !errors.Is(err, ErrNoReading) {
		t.Errorf("Expected ErrNoReading, got %v", err)
	}
}
