package reading

import (
	"strconv"
)

// FormatFloat renders a value with the shortest exact representation
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatOptional renders a missing value as an empty cell
func FormatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return FormatFloat(*v)
}

// Values renders the row in SoilColumns order
func (r SoilReading) Values() []string {
	return []string{
		r.Timestamp.Format(TimestampLayout),
		string(r.ZoneID),
		string(r.SoilType),
		FormatOptional(r.Nitrogen),
		FormatOptional(r.Phosphorus),
		FormatFloat(r.Potassium),
		FormatFloat(r.PH),
		FormatFloat(r.OrganicMatter),
		FormatFloat(r.Moisture),
		FormatFloat(r.SoilTemperature),
		FormatOptional(r.EC),
	}
}

// Values renders the row in WaterColumns order
func (r WaterReading) Values() []string {
	return []string{
		r.Timestamp.Format(TimestampLayout),
		string(r.SourceType),
		FormatFloat(r.PH),
		FormatFloat(r.TDS),
		FormatOptional(r.Turbidity),
		FormatOptional(r.DissolvedOxygen),
		FormatFloat(r.Hardness),
		FormatFloat(r.Chloride),
		FormatFloat(r.Sulfate),
		FormatFloat(r.Nitrate),
		FormatFloat(r.WaterTemperature),
		string(r.QualityGrade),
	}
}

// Values renders the row in WeatherColumns order
func (r WeatherReading) Values() []string {
	return []string{
		r.Timestamp.Format(TimestampLayout),
		FormatFloat(r.Temperature),
		FormatFloat(r.Humidity),
		FormatFloat(r.Rainfall),
		FormatFloat(r.WindSpeed),
		FormatFloat(r.SolarRadiation),
		FormatFloat(r.Pressure),
		strconv.Itoa(r.UVIndex),
	}
}
