package features

import (
	"slices"
	"strconv"
	"time"

	"github.com/smukkama/agrisense/internal/crop"
	"github.com/smukkama/agrisense/internal/reading"
	"github.com/smukkama/agrisense/internal/scoring"
)

// WeatherFeatures is a weather reading with its derived estimates
type WeatherFeatures struct {
	reading.WeatherReading
	HeatIndex float64
	ETo       float64
	Month     int
	Season    crop.Season
}

// WeatherFeatureColumns is the exported column order of WeatherFeatures
var WeatherFeatureColumns = slices.Concat(reading.WeatherColumns, []string{
	"heat_index", "evapotranspiration_est", "month", "season",
})

// BuildWeatherFeatures derives heat index, ETo and season for every row
func BuildWeatherFeatures(rows []reading.WeatherReading) []WeatherFeatures {
	out := make([]WeatherFeatures, len(rows))
	for i, r := range rows {
		out[i] = WeatherFeatures{
			WeatherReading: r,
			HeatIndex:      scoring.HeatIndex(r.Temperature, r.Humidity),
			ETo:            scoring.EvapotranspirationEstimate(r.Temperature, r.Humidity, r.SolarRadiation, r.WindSpeed),
			Month:          int(r.Timestamp.Month()),
			Season:         crop.SeasonForMonth(r.Timestamp.Month()),
		}
	}
	return out
}

// Values renders the row in WeatherFeatureColumns order
func (f WeatherFeatures) Values() []string {
	return slices.Concat(f.WeatherReading.Values(), []string{
		reading.FormatFloat(f.HeatIndex),
		reading.FormatFloat(f.ETo),
		strconv.Itoa(f.Month),
		string(f.Season),
	})
}

// DailyWeather is the aggregate of one calendar day. Rainfall is summed,
// everything else averaged.
type DailyWeather struct {
	Date           time.Time
	Temperature    float64
	Humidity       float64
	Rainfall       float64
	SolarRadiation float64
	WindSpeed      float64
	ETo            float64
	Readings       int
}

// DailyWeatherColumns is the exported column order of DailyWeather
var DailyWeatherColumns = []string{
	"date", "temperature_c", "humidity_pct", "rainfall_mm",
	"solar_radiation_wm2", "wind_speed_kmh", "evapotranspiration_est", "readings",
}

// Values renders the row in DailyWeatherColumns order
func (d DailyWeather) Values() []string {
	return []string{
		d.Date.Format(time.DateOnly),
		reading.FormatFloat(d.Temperature),
		reading.FormatFloat(d.Humidity),
		reading.FormatFloat(d.Rainfall),
		reading.FormatFloat(d.SolarRadiation),
		reading.FormatFloat(d.WindSpeed),
		reading.FormatFloat(d.ETo),
		strconv.Itoa(d.Readings),
	}
}

// MonthlyWeather is the aggregate of one calendar month
type MonthlyWeather struct {
	Month          time.Time
	Temperature    float64
	Humidity       float64
	Rainfall       float64
	SolarRadiation float64
	Readings       int
}

// MonthlyWeatherColumns is the exported column order of MonthlyWeather
var MonthlyWeatherColumns = []string{
	"year_month", "temperature_c", "humidity_pct", "rainfall_mm", "solar_radiation_wm2", "readings",
}

// Values renders the row in MonthlyWeatherColumns order
func (m MonthlyWeather) Values() []string {
	return []string{
		m.Month.Format("2006-01"),
		reading.FormatFloat(m.Temperature),
		reading.FormatFloat(m.Humidity),
		reading.FormatFloat(m.Rainfall),
		reading.FormatFloat(m.SolarRadiation),
		strconv.Itoa(m.Readings),
	}
}

// weatherSums accumulates one aggregation bucket
type weatherSums struct {
	temp, humidity, rain, solar, wind, eto float64
	n                                      int
}

func (s *weatherSums) add(w WeatherFeatures) {
	s.temp += w.Temperature
	s.humidity += w.Humidity
	s.rain += w.Rainfall
	s.solar += w.SolarRadiation
	s.wind += w.WindSpeed
	s.eto += w.ETo
	s.n++
}

func (s *weatherSums) mean(v float64) float64 {
	return v / float64(s.n)
}

// bucket groups rows by key and returns the keys in ascending order
func bucket(rows []WeatherFeatures, key func(time.Time) time.Time) ([]time.Time, map[time.Time]*weatherSums) {
	sums := make(map[time.Time]*weatherSums)
	var keys []time.Time
	for _, w := range rows {
		k := key(w.Timestamp)
		s, ok := sums[k]
		if !ok {
			s = &weatherSums{}
			sums[k] = s
			keys = append(keys, k)
		}
		s.add(w)
	}
	slices.SortFunc(keys, func(a, b time.Time) int { return a.Compare(b) })
	return keys, sums
}

// DayOf truncates a timestamp to its calendar date in its own location
func DayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// MonthOf truncates a timestamp to the first day of its month
func MonthOf(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

// AggregateDaily groups weather rows by calendar day
func AggregateDaily(rows []WeatherFeatures) []DailyWeather {
	keys, sums := bucket(rows, DayOf)
	out := make([]DailyWeather, len(keys))
	for i, k := range keys {
		s := sums[k]
		out[i] = DailyWeather{
			Date:           k,
			Temperature:    s.mean(s.temp),
			Humidity:       s.mean(s.humidity),
			Rainfall:       s.rain,
			SolarRadiation: s.mean(s.solar),
			WindSpeed:      s.mean(s.wind),
			ETo:            s.mean(s.eto),
			Readings:       s.n,
		}
	}
	return out
}

// AggregateMonthly groups weather rows by calendar month
func AggregateMonthly(rows []WeatherFeatures) []MonthlyWeather {
	keys, sums := bucket(rows, MonthOf)
	out := make([]MonthlyWeather, len(keys))
	for i, k := range keys {
		s := sums[k]
		out[i] = MonthlyWeather{
			Month:          k,
			Temperature:    s.mean(s.temp),
			Humidity:       s.mean(s.humidity),
			Rainfall:       s.rain,
			SolarRadiation: s.mean(s.solar),
			Readings:       s.n,
		}
	}
	return out
}
