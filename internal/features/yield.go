package features

import (
	"math"
	"time"

	"github.com/smukkama/agrisense/internal/reading"
	"github.com/smukkama/agrisense/internal/sampling"
	"github.com/smukkama/agrisense/internal/scoring"
)

// HealthBaseline is the health score at which the health factor is 1
const HealthBaseline = 70.0

// MinYield is the floor of a simulated yield in tons/ha
const MinYield = 0.1

// WeatherFactor blends a temperature factor peaking at 25°C (weight 0.6)
// with a rainfall-to-requirement ratio clipped to [0.3, 1.5] (weight 0.4).
// The result is clipped to [0.3, 1.3].
func WeatherFactor(tempC, rainfallMM, waterRequirementMM float64) float64 {
	tempFactor := 1 - math.Abs(tempC-25)/50
	rainFactor := 1.5
	if waterRequirementMM > 0 {
		rainFactor = sampling.Clamp(rainfallMM/waterRequirementMM, 0.3, 1.5)
	}
	return sampling.Clamp(tempFactor*0.6+rainFactor*0.4, 0.3, 1.3)
}

// YieldRow joins one soil reading with the weather of its month and a
// simulated yield outcome
type YieldRow struct {
	Soil               reading.SoilReading
	HealthScore        float64
	Crop               string
	ExpectedYield      float64
	WaterRequirementMM float64
	Weather            MonthlyWeather
	HealthFactor       float64
	WeatherFactor      float64
	ActualYield        float64
}

// YieldColumns is the exported column order of YieldRow
var YieldColumns = []string{
	"timestamp", "zone_id", "crop", "health_score",
	"nitrogen_mg_kg", "phosphorus_mg_kg", "potassium_mg_kg", "ph",
	"moisture_pct", "organic_matter_pct",
	"temperature_c_weather", "humidity_pct", "rainfall_mm", "solar_radiation_wm2",
	"expected_yield_tons_per_ha", "water_requirement_mm",
	"health_factor", "weather_factor", "actual_yield",
}

// BuildYield joins soil rows to monthly weather and simulates the yield
// as expected × health factor × weather factor × U(0.85, 1.15). The noise
// of row i comes from its own stream, so dropped rows do not shift the
// others.
func BuildYield(src sampling.Source, soil []reading.SoilReading, monthly []MonthlyWeather, crops Assignment) ([]YieldRow, error) {
	byMonth := make(map[time.Time]MonthlyWeather, len(monthly))
	for _, m := range monthly {
		byMonth[m.Month] = m
	}

	out := make([]YieldRow, 0, len(soil))
	for i, s := range soil {
		month, ok := byMonth[MonthOf(s.Timestamp)]
		if !ok {
			continue
		}
		health, err := scoring.HealthScore(scoring.SampleFromReading(s))
		if err != nil {
			return nil, err
		}
		c := crops[s.ZoneID]

		hf := health.Score / HealthBaseline
		wf := WeatherFactor(month.Temperature, month.Rainfall, c.WaterRequirementMM)
		noise := sampling.Uniform(src.Stream(sampling.DomainYield, i), 0.85, 1.15)
		actual := math.Max(MinYield, c.ExpectedYieldTonsPerHa*hf*wf*noise)

		out = append(out, YieldRow{
			Soil:               s,
			HealthScore:        health.Score,
			Crop:               c.Name,
			ExpectedYield:      c.ExpectedYieldTonsPerHa,
			WaterRequirementMM: c.WaterRequirementMM,
			Weather:            month,
			HealthFactor:       hf,
			WeatherFactor:      wf,
			ActualYield:        sampling.Round(actual, 2),
		})
	}
	return out, nil
}

// Values renders the row in YieldColumns order
func (r YieldRow) Values() []string {
	return []string{
		r.Soil.Timestamp.Format(reading.TimestampLayout),
		string(r.Soil.ZoneID),
		r.Crop,
		reading.FormatFloat(r.HealthScore),
		reading.FormatOptional(r.Soil.Nitrogen),
		reading.FormatOptional(r.Soil.Phosphorus),
		reading.FormatFloat(r.Soil.Potassium),
		reading.FormatFloat(r.Soil.PH),
		reading.FormatFloat(r.Soil.Moisture),
		reading.FormatFloat(r.Soil.OrganicMatter),
		reading.FormatFloat(r.Weather.Temperature),
		reading.FormatFloat(r.Weather.Humidity),
		reading.FormatFloat(r.Weather.Rainfall),
		reading.FormatFloat(r.Weather.SolarRadiation),
		reading.FormatFloat(r.ExpectedYield),
		reading.FormatFloat(r.WaterRequirementMM),
		reading.FormatFloat(r.HealthFactor),
		reading.FormatFloat(r.WeatherFactor),
		reading.FormatFloat(r.ActualYield),
	}
}
