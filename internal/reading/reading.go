package reading

import (
	"errors"
	"fmt"
	"time"

	"github.com/smukkama/agrisense/internal/zone"
)

// TimestampLayout is the table timestamp format
const TimestampLayout = "2006-01-02 15:04:05"

// SourceType is the origin of a water sample
type SourceType string

const (
	Borewell  SourceType = "Borewell"
	River     SourceType = "River"
	Canal     SourceType = "Canal"
	Rainwater SourceType = "Rainwater"
)

// Grade is the water quality letter grade
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeF Grade = "F"
)

var (
	ErrUnknownSource = errors.New("unknown source type")
	ErrUnknownGrade  = errors.New("unknown quality grade")
)

var sourceTypes = [...]SourceType{Borewell, River, Canal, Rainwater}

// SourceTypes returns every source type in canonical order
func SourceTypes() []SourceType {
	out := make([]SourceType, len(sourceTypes))
	copy(out, sourceTypes[:])
	return out
}

// ParseSourceType validates a source key
func ParseSourceType(s string) (SourceType, error) {
	for _, st := range sourceTypes {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSource, s)
}

// ParseGrade validates a quality grade letter
func ParseGrade(s string) (Grade, error) {
	switch g := Grade(s); g {
	case GradeA, GradeB, GradeC, GradeD, GradeF:
		return g, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownGrade, s)
}

// SoilReading is one soil sensor row. Nil pointers are sensor dropouts.
type SoilReading struct {
	Timestamp       time.Time     `json:"timestamp"`
	ZoneID          zone.ID       `json:"zone_id"`
	SoilType        zone.SoilType `json:"soil_type"`
	Nitrogen        *float64      `json:"nitrogen_mg_kg"`
	Phosphorus      *float64      `json:"phosphorus_mg_kg"`
	Potassium       float64       `json:"potassium_mg_kg"`
	PH              float64       `json:"ph"`
	OrganicMatter   float64       `json:"organic_matter_pct"`
	Moisture        float64       `json:"moisture_pct"`
	SoilTemperature float64       `json:"soil_temperature_c"`
	EC              *float64      `json:"ec_mscm"`
}

// WaterReading is one water quality row. Nil pointers are sensor dropouts.
type WaterReading struct {
	Timestamp        time.Time  `json:"timestamp"`
	SourceType       SourceType `json:"source_type"`
	PH               float64    `json:"ph"`
	TDS              float64    `json:"tds_ppm"`
	Turbidity        *float64   `json:"turbidity_ntu"`
	DissolvedOxygen  *float64   `json:"dissolved_oxygen_mg_l"`
	Hardness         float64    `json:"hardness_mg_l"`
	Chloride         float64    `json:"chloride_mg_l"`
	Sulfate          float64    `json:"sulfate_mg_l"`
	Nitrate          float64    `json:"nitrate_mg_l"`
	WaterTemperature float64    `json:"water_temperature_c"`
	QualityGrade     Grade      `json:"quality_grade"`
}

// WeatherReading is one weather station row
type WeatherReading struct {
	Timestamp      time.Time `json:"timestamp"`
	Temperature    float64   `json:"temperature_c"`
	Humidity       float64   `json:"humidity_pct"`
	Rainfall       float64   `json:"rainfall_mm"`
	WindSpeed      float64   `json:"wind_speed_kmh"`
	SolarRadiation float64   `json:"solar_radiation_wm2"`
	Pressure       float64   `json:"pressure_hpa"`
	UVIndex        int       `json:"uv_index"`
}

// Column orders of the exported tables
var (
	SoilColumns = []string{
		"timestamp", "zone_id", "soil_type",
		"nitrogen_mg_kg", "phosphorus_mg_kg", "potassium_mg_kg",
		"ph", "organic_matter_pct", "moisture_pct", "soil_temperature_c", "ec_mscm",
	}
	WaterColumns = []string{
		"timestamp", "source_type", "ph", "tds_ppm", "turbidity_ntu",
		"dissolved_oxygen_mg_l", "hardness_mg_l", "chloride_mg_l", "sulfate_mg_l",
		"nitrate_mg_l", "water_temperature_c", "quality_grade",
	}
	WeatherColumns = []string{
		"timestamp", "temperature_c", "humidity_pct", "rainfall_mm",
		"wind_speed_kmh", "solar_radiation_wm2", "pressure_hpa", "uv_index",
	}
)

// Float returns a pointer to v, for building readings with known values
func Float(v float64) *float64 {
	return &v
}
