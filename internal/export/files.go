package export

import (
	"fmt"
	"path/filepath"

	"github.com/smukkama/agrisense/internal/crop"
	"github.com/smukkama/agrisense/internal/features"
	"github.com/smukkama/agrisense/internal/reading"
	"github.com/smukkama/agrisense/internal/zone"
)

// File names of the raw tables
const (
	SoilFile    = "soil_sensors.csv"
	WaterFile   = "water_quality.csv"
	WeatherFile = "weather_data.csv"
	CropFile    = "crop_database.csv"
)

// RawTables is the output of one generation run
type RawTables struct {
	Soil    []reading.SoilReading
	Water   []reading.WaterReading
	Weather []reading.WeatherReading
	Crops   []crop.Tolerance
}

// WriteRaw writes the four raw tables into dir
func WriteRaw(dir string, t *RawTables) error {
	if err := WriteCSVFile(filepath.Join(dir, SoilFile), reading.SoilColumns, t.Soil); err != nil {
		return err
	}
	if err := WriteCSVFile(filepath.Join(dir, WaterFile), reading.WaterColumns, t.Water); err != nil {
		return err
	}
	if err := WriteCSVFile(filepath.Join(dir, WeatherFile), reading.WeatherColumns, t.Weather); err != nil {
		return err
	}
	return WriteCSVFile(filepath.Join(dir, CropFile), crop.Columns, t.Crops)
}

// ReadRaw reads the sensor tables written by WriteRaw. The crop table is
// the built-in reference table.
func ReadRaw(dir string) (*RawTables, error) {
	soil, err := ReadFile(filepath.Join(dir, SoilFile), ReadSoil)
	if err != nil {
		return nil, err
	}
	water, err := ReadFile(filepath.Join(dir, WaterFile), ReadWater)
	if err != nil {
		return nil, err
	}
	weather, err := ReadFile(filepath.Join(dir, WeatherFile), ReadWeather)
	if err != nil {
		return nil, err
	}
	return &RawTables{Soil: soil, Water: water, Weather: weather, Crops: crop.All()}, nil
}

type assignmentRow struct {
	zone       zone.ID
	irrigation string
	yield      string
}

func (a assignmentRow) Values() []string {
	return []string{string(a.zone), a.irrigation, a.yield}
}

// WriteDataset writes every derived table as CSV into dir, and the zone
// summaries, crop assignments, monthly weather and crop table as sheets
// of the workbook file in dir.
func WriteDataset(dir, workbook string, ds *features.Dataset, crops []crop.Tolerance) error {
	tables := []struct {
		name  string
		write func(path string) error
	}{
		{"soil_features.csv", func(p string) error { return WriteCSVFile(p, features.SoilFeatureColumns, ds.Soil) }},
		{"water_features.csv", func(p string) error { return WriteCSVFile(p, features.WaterFeatureColumns, ds.Water) }},
		{"weather_features.csv", func(p string) error { return WriteCSVFile(p, features.WeatherFeatureColumns, ds.Weather) }},
		{"daily_weather.csv", func(p string) error { return WriteCSVFile(p, features.DailyWeatherColumns, ds.Daily) }},
		{"monthly_weather.csv", func(p string) error { return WriteCSVFile(p, features.MonthlyWeatherColumns, ds.Monthly) }},
		{"irrigation_dataset.csv", func(p string) error { return WriteCSVFile(p, features.IrrigationColumns, ds.Irrigation) }},
		{"yield_dataset.csv", func(p string) error { return WriteCSVFile(p, features.YieldColumns, ds.Yield) }},
		{"zone_summary.csv", func(p string) error { return WriteCSVFile(p, features.ZoneSummaryColumns, ds.Zones) }},
	}
	for _, t := range tables {
		if err := t.write(filepath.Join(dir, t.name)); err != nil {
			return fmt.Errorf("failed to write %s: %w", t.name, err)
		}
	}

	assignments := make([]assignmentRow, 0, zone.Count)
	for _, id := range zone.IDs() {
		assignments = append(assignments, assignmentRow{
			zone:       id,
			irrigation: ds.IrrigationCrops[id].Name,
			yield:      ds.YieldCrops[id].Name,
		})
	}

	return WriteWorkbook(filepath.Join(dir, workbook),
		SheetOf("zones", features.ZoneSummaryColumns, ds.Zones),
		SheetOf("assignments", []string{"zone_id", "irrigation_crop", "yield_crop"}, assignments),
		SheetOf("monthly_weather", features.MonthlyWeatherColumns, ds.Monthly),
		SheetOf("crops", crop.Columns, crops),
	)
}
