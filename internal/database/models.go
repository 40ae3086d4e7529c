package database

import (
	"time"

	"github.com/google/uuid"

	"github.com/smukkama/agrisense/internal/reading"
)

// SoilRow is a soil reading with its origin in the generation run
type SoilRow struct {
	RunID uuid.UUID
	Seq   int
	reading.SoilReading
}

// WaterRow is a water reading with its origin in the generation run
type WaterRow struct {
	RunID uuid.UUID
	Seq   int
	reading.WaterReading
}

// WeatherRow is a weather reading with its origin in the generation run
type WeatherRow struct {
	RunID uuid.UUID
	Seq   int
	reading.WeatherReading
}

// ReadingBatch groups readings written in one transaction
type ReadingBatch struct {
	Soil    []SoilRow
	Water   []WaterRow
	Weather []WeatherRow
}

// Len returns the number of readings in the batch
func (b *ReadingBatch) Len() int {
	return len(b.Soil) + len(b.Water) + len(b.Weather)
}

// DailyWeather is one row of the daily weather rollup
type DailyWeather struct {
	Date          time.Time
	AvgTemp       float64
	MinTemp       float64
	MaxTemp       float64
	AvgHumidity   float64
	TotalRainfall float64
	AvgWind       float64
	AvgSolar      float64
	MaxUV         int
	SampleCount   int
	CreatedAt     time.Time
}

// AlertLog represents a logged alert event
type AlertLog struct {
	AlertID     int64
	Subject     string
	Kind        string
	Condition   string
	Severity    string
	BreachValue float64
	Details     string // JSON
	StartTime   time.Time
	EndTime     *time.Time
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

const (
	AlertStatusActive  = "ACTIVE"
	AlertStatusCleared = "CLEARED"
)
