package diagnosis

import (
	"fmt"

	"github.com/smukkama/agrisense/internal/protocol"
	"github.com/smukkama/agrisense/internal/reading"
	"github.com/smukkama/agrisense/internal/scoring"
)

// Check is the outcome of one alert condition for one reading
type Check struct {
	Condition protocol.Condition
	Breached  bool
	Value     float64
	Severity  string
	Details   []string
}

// Summary is the latest diagnosis kept per subject
type Summary struct {
	Subject     string               `json:"subject"`
	Kind        protocol.Kind        `json:"kind"`
	ReadingTime string               `json:"reading_time"`
	Health      *scoring.Health      `json:"health,omitempty"`
	Deficiency  scoring.Overall      `json:"deficiency,omitempty"`
	Grade       reading.Grade        `json:"grade,omitempty"`
	Suitability *scoring.Suitability `json:"suitability,omitempty"`
	Checks      map[string]bool      `json:"breaches"`
}

// CheckSoil scores a soil reading for critical deficiencies and poor health
func CheckSoil(r reading.SoilReading) ([]Check, *Summary, error) {
	sample := scoring.SampleFromReading(r)

	diag, err := scoring.DiagnoseDeficiency(sample)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to diagnose deficiency: %w", err)
	}
	health, err := scoring.HealthScore(sample)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to score health: %w", err)
	}

	deficiency := Check{
		Condition: protocol.ConditionCriticalDeficiency,
		Breached:  diag.Severity == scoring.OverallCritical,
		Severity:  string(diag.Severity),
	}
	for _, f := range diag.Findings {
		if f.Severity != scoring.SeverityCritical {
			continue
		}
		// value of the first critical nutrient
		if deficiency.Details == nil {
			deficiency.Value = f.Value
		}
		deficiency.Details = append(deficiency.Details,
			fmt.Sprintf("%s %s (%s)", f.Label, reading.FormatFloat(f.Value), f.Severity))
	}

	poor := Check{
		Condition: protocol.ConditionPoorHealth,
		Breached:  health.Category == scoring.Poor,
		Value:     health.Score,
		Severity:  string(health.Category),
	}

	summary := &Summary{
		Subject:     string(r.ZoneID),
		Kind:        protocol.KindSoil,
		ReadingTime: r.Timestamp.Format(reading.TimestampLayout),
		Health:      &health,
		Deficiency:  diag.Severity,
		Checks: map[string]bool{
			string(deficiency.Condition): deficiency.Breached,
			string(poor.Condition):       poor.Breached,
		},
	}
	return []Check{deficiency, poor}, summary, nil
}

// CheckWater assesses a water reading for irrigation suitability
func CheckWater(r reading.WaterReading) ([]Check, *Summary, error) {
	suit, err := scoring.AssessIrrigationSuitability(&r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to assess suitability: %w", err)
	}

	unsuitable := Check{
		Condition: protocol.ConditionUnsuitableWater,
		Breached:  !suit.Suitable,
		Value:     r.TDS,
		Severity:  string(r.QualityGrade),
		Details:   suit.Issues,
	}

	summary := &Summary{
		Subject:     string(r.SourceType),
		Kind:        protocol.KindWater,
		ReadingTime: r.Timestamp.Format(reading.TimestampLayout),
		Grade:       r.QualityGrade,
		Suitability: &suit,
		Checks:      map[string]bool{string(unsuitable.Condition): unsuitable.Breached},
	}
	return []Check{unsuitable}, summary, nil
}
