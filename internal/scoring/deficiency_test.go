package scoring

import (
	"errors"
	"testing"
)

func balancedSample() *SoilSample {
	return &SoilSample{
		Nitrogen:   f(85),
		Phosphorus: f(45),
		Potassium:  f(60),
		PH:         f(6.5),
	}
}

func TestDiagnoseDeficiency_None(t *testing.T) {
	d, err := DiagnoseDeficiency(balancedSample())
	if err != nil {
		t.Fatalf("DiagnoseDeficiency failed: %v", err)
	}
	if d.Severity != OverallNone || len(d.Findings) != 0 || len(d.Recommendations) != 0 {
		t.Errorf("Expected clean diagnosis, got %+v", d)
	}
}

func TestDiagnoseDeficiency_CriticalNitrogen(t *testing.T) {
	s := balancedSample()
	s.Nitrogen = f(30)

	d, _ := DiagnoseDeficiency(s)
	if d.Severity != OverallCritical {
		t.Errorf("Expected overall critical, got %s", d.Severity)
	}
	if len(d.Findings) != 1 {
		t.Fatalf("Expected 1 finding, got %d", len(d.Findings))
	}
	got := d.Findings[0]
	if got.Kind != NitrogenDeficient || got.Severity != SeverityCritical || got.Label != "Nitrogen" || got.Value != 30 {
		t.Errorf("Unexpected finding: %+v", got)
	}
	if len(d.Recommendations) != len(Amendments(NitrogenDeficient)) {
		t.Errorf("Expected nitrogen amendments, got %d", len(d.Recommendations))
	}
}

func TestDiagnoseDeficiency_LowNitrogen(t *testing.T) {
	s := balancedSample()
	s.Nitrogen = f(50)

	d, _ := DiagnoseDeficiency(s)
	if d.Severity != OverallModerate {
		t.Errorf("Expected overall moderate, got %s", d.Severity)
	}
	if d.Findings[0].Severity != SeverityLow {
		t.Errorf("Expected Low, got %s", d.Findings[0].Severity)
	}
}

func TestDiagnoseDeficiency_Thresholds(t *testing.T) {
	tests := []struct {
		name     string
		n        float64
		flagged  bool
		severity Severity
	}{
		{"at moderate", 60, false, ""},
		{"just below moderate", 59.9, true, SeverityLow},
		{"at low", 40, true, SeverityLow},
		{"just below low", 39.9, true, SeverityCritical},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := balancedSample()
			s.Nitrogen = f(tt.n)
			d, _ := DiagnoseDeficiency(s)

			if d.Has(NitrogenDeficient) != tt.flagged {
				t.Fatalf("N=%v flagged=%v, want %v", tt.n, d.Has(NitrogenDeficient), tt.flagged)
			}
			if tt.flagged && d.Findings[0].Severity != tt.severity {
				t.Errorf("N=%v severity %s, want %s", tt.n, d.Findings[0].Severity, tt.severity)
			}
		})
	}
}

func TestDiagnoseDeficiency_CriticalIsUnion(t *testing.T) {
	s := balancedSample()
	s.Phosphorus = f(20) // Low
	s.Potassium = f(30)  // Low
	s.PH = f(8.4)        // Alkaline
	d, _ := DiagnoseDeficiency(s)
	if d.Severity != OverallModerate {
		t.Fatalf("Expected moderate before a critical nutrient, got %s", d.Severity)
	}

	s.Nitrogen = f(10)
	d, _ = DiagnoseDeficiency(s)
	if d.Severity != OverallCritical {
		t.Errorf("A single critical nutrient should make the diagnosis critical, got %s", d.Severity)
	}
	if len(d.Findings) != 4 {
		t.Errorf("Expected 4 findings, got %d", len(d.Findings))
	}
	want := len(Amendments(NitrogenDeficient)) + len(Amendments(PhosphorusDeficient)) +
		len(Amendments(PotassiumDeficient)) + len(Amendments(PHHigh))
	if len(d.Recommendations) != want {
		t.Errorf("Expected %d recommendations, got %d", want, len(d.Recommendations))
	}
}

func TestDiagnoseDeficiency_PH(t *testing.T) {
	tests := []struct {
		ph    float64
		kind  DeficiencyKind
		label string
	}{
		{5.4, PHLow, "pH (Acidic)"},
		{8.1, PHHigh, "pH (Alkaline)"},
	}
	for _, tt := range tests {
		s := balancedSample()
		s.PH = f(tt.ph)
		d, _ := DiagnoseDeficiency(s)
		if !d.Has(tt.kind) || d.Findings[0].Label != tt.label || d.Findings[0].Severity != SeverityImbalanced {
			t.Errorf("pH %v: unexpected diagnosis %+v", tt.ph, d)
		}
		if d.Severity != OverallModerate {
			t.Errorf("pH %v: expected moderate, got %s", tt.ph, d.Severity)
		}
	}

	for _, ph := range []float64{5.5, 8.0} {
		s := balancedSample()
		s.PH = f(ph)
		d, _ := DiagnoseDeficiency(s)
		if len(d.Findings) != 0 {
			t.Errorf("pH %v is within bounds and should not be flagged", ph)
		}
	}
}

func TestDiagnoseDeficiency_UnknownValues(t *testing.T) {
	s := &SoilSample{}
	d, err := DiagnoseDeficiency(s)
	if err != nil {
		t.Fatal(err)
	}
	if d.Severity != OverallNone {
		t.Errorf("Unknown values should not be diagnosed, got %+v", d)
	}

	if _, err := DiagnoseDeficiency(nil); !errors.Is(err, ErrNoReading) {
		t.Errorf("Expected ErrNoReading, got %v", err)
	}
}

func TestDiagnoseDeficiency_Idempotent(t *testing.T) {
	s := balancedSample()
	s.Nitrogen = f(35)
	s.PH = f(4.8)

	a, _ := DiagnoseDeficiency(s)
	b, _ := DiagnoseDeficiency(s)
	if len(a.Findings) != len(b.Findings) || a.Severity != b.Severity || len(a.Recommendations) != len(b.Recommendations) {
		t.Fatalf("Repeated diagnosis differs: %+v vs %+v", a, b)
	}
	for i := range a.Findings {
		if a.Findings[i] != b.Findings[i] {
			t.Errorf("Finding %d differs", i)
		}
	}
}

func TestAmendments_ReturnsCopy(t *testing.T) {
	a := Amendments(PHLow)
	a[0].Name = "changed"
	if Amendments(PHLow)[0].Name == "changed" {
		t.Error("Amendment table was mutated")
	}
}

func TestNutrientTier(t *testing.T) {
	tests := []struct {
		n    Nutrient
		v    float64
		want Severity
	}{
		{Nitrogen, 30, SeverityCritical},
		{Nitrogen, 50, SeverityLow},
		{Nitrogen, 70, SeverityModerate},
		{Nitrogen, 80, SeverityAdequate},
		{Phosphorus, 14, SeverityCritical},
		{Phosphorus, 39, SeverityModerate},
		{Potassium, 34, SeverityLow},
		{Potassium, 51, SeverityAdequate},
	}
	for _, tt := range tests {
		if got := NutrientTier(tt.n, tt.v); got != tt.want {
			t.Errorf("NutrientTier(%s, %v) = %s, want %s", tt.n, tt.v, got, tt.want)
		}
	}
}
