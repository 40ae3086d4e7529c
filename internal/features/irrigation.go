package features

import (
	"errors"
	"strconv"
	"time"

	"github.com/smukkama/agrisense/internal/crop"
	"github.com/smukkama/agrisense/internal/reading"
	"github.com/smukkama/agrisense/internal/sampling"
	"github.com/smukkama/agrisense/internal/scoring"
	"github.com/smukkama/agrisense/internal/zone"
)

// ErrNoCrops is returned when a pipeline stage needs a crop table and gets none
var ErrNoCrops = errors.New("crop table is empty")

// Assignment maps every zone to the crop grown there
type Assignment map[zone.ID]crop.Tolerance

// SampleCrops assigns zones a seeded sample of distinct crops. With fewer
// crops than zones the sample wraps around.
func SampleCrops(src sampling.Source, crops []crop.Tolerance) (Assignment, error) {
	if len(crops) == 0 {
		return nil, ErrNoCrops
	}
	perm := src.Stream(sampling.DomainCropAssign, 0).Perm(len(crops))
	k := min(zone.Count, len(crops))

	a := make(Assignment, zone.Count)
	for i, id := range zone.IDs() {
		a[id] = crops[perm[i%k]]
	}
	return a, nil
}

// CyclicCrops assigns zone i the crop at position i of the table
func CyclicCrops(crops []crop.Tolerance) (Assignment, error) {
	if len(crops) == 0 {
		return nil, ErrNoCrops
	}
	a := make(Assignment, zone.Count)
	for i, id := range zone.IDs() {
		a[id] = crops[i%len(crops)]
	}
	return a, nil
}

// IrrigationRow joins one soil reading with the weather of its day
type IrrigationRow struct {
	Soil               reading.SoilReading
	Crop               string
	WaterRequirementMM float64
	Weather            DailyWeather
	FieldCapacity      float64
	MoistureDeficit    float64
	IrrigationNeedMM   float64
}

// IrrigationColumns is the exported column order of IrrigationRow
var IrrigationColumns = []string{
	"timestamp", "zone_id", "soil_type", "crop", "moisture_pct", "soil_temperature_c", "ec_mscm",
	"temperature_c_weather", "humidity_pct", "rainfall_mm", "solar_radiation_wm2",
	"wind_speed_kmh", "evapotranspiration_est", "water_requirement_mm",
	"field_capacity", "moisture_deficit", "irrigation_need_mm",
}

// BuildIrrigation joins soil rows to daily weather on date. Soil rows
// whose day has no weather are dropped.
func BuildIrrigation(soil []reading.SoilReading, daily []DailyWeather, crops Assignment) ([]IrrigationRow, error) {
	byDate := make(map[time.Time]DailyWeather, len(daily))
	for _, d := range daily {
		byDate[d.Date] = d
	}

	out := make([]IrrigationRow, 0, len(soil))
	for _, s := range soil {
		day, ok := byDate[DayOf(s.Timestamp)]
		if !ok {
			continue
		}
		c := crops[s.ZoneID]

		need, err := scoring.IrrigationNeed(&scoring.IrrigationInput{
			SoilType:    s.SoilType,
			MoisturePct: s.Moisture,
			EToMMDay:    day.ETo,
			RainfallMM:  day.Rainfall,
		})
		if err != nil {
			return nil, err
		}

		out = append(out, IrrigationRow{
			Soil:               s,
			Crop:               c.Name,
			WaterRequirementMM: c.WaterRequirementMM,
			Weather:            day,
			FieldCapacity:      scoring.FieldCapacity(s.SoilType),
			MoistureDeficit:    scoring.MoistureDeficit(s.SoilType, s.Moisture),
			IrrigationNeedMM:   need,
		})
	}
	return out, nil
}

// Values renders the row in IrrigationColumns order
func (r IrrigationRow) Values() []string {
	return []string{
		r.Soil.Timestamp.Format(reading.TimestampLayout),
		string(r.Soil.ZoneID),
		string(r.Soil.SoilType),
		r.Crop,
		reading.FormatFloat(r.Soil.Moisture),
		reading.FormatFloat(r.Soil.SoilTemperature),
		reading.FormatOptional(r.Soil.EC),
		reading.FormatFloat(r.Weather.Temperature),
		reading.FormatFloat(r.Weather.Humidity),
		reading.FormatFloat(r.Weather.Rainfall),
		reading.FormatFloat(r.Weather.SolarRadiation),
		reading.FormatFloat(r.Weather.WindSpeed),
		reading.FormatFloat(r.Weather.ETo),
		reading.FormatFloat(r.WaterRequirementMM),
		reading.FormatFloat(r.FieldCapacity),
		reading.FormatFloat(r.MoistureDeficit),
		strconv.FormatFloat(r.IrrigationNeedMM, 'f', 2, 64),
	}
}
