// Package features turns the raw sensor tables into the derived datasets
// consumed by downstream models: imputed and enriched soil, water and
// weather rows, daily and monthly weather, the irrigation and yield
// datasets, and per-zone summaries.
package features

import (
	"fmt"

	"github.com/smukkama/agrisense/internal/crop"
	"github.com/smukkama/agrisense/internal/reading"
	"github.com/smukkama/agrisense/internal/sampling"
)

// Dataset holds every table the pipeline derives
type Dataset struct {
	Soil            []SoilFeatures
	Water           []WaterFeatures
	Weather         []WeatherFeatures
	Daily           []DailyWeather
	Monthly         []MonthlyWeather
	Irrigation      []IrrigationRow
	Yield           []YieldRow
	Zones           []ZoneSummary
	IrrigationCrops Assignment
	YieldCrops      Assignment
}

// Pipeline derives a Dataset from raw tables
type Pipeline struct {
	src   sampling.Source
	crops []crop.Tolerance
}

// NewPipeline creates a pipeline drawing crop assignments and yield noise
// from src
func NewPipeline(src sampling.Source, crops []crop.Tolerance) (*Pipeline, error) {
	if len(crops) == 0 {
		return nil, ErrNoCrops
	}
	return &Pipeline{src: src, crops: crops}, nil
}

// Run derives every feature table. The raw tables are not modified.
func (p *Pipeline) Run(soil []reading.SoilReading, water []reading.WaterReading, weather []reading.WeatherReading) (*Dataset, error) {
	cleanSoil := ImputeSoil(soil)
	cleanWater := ImputeWater(water)

	soilFeatures, err := BuildSoilFeatures(cleanSoil, p.crops)
	if err != nil {
		return nil, fmt.Errorf("failed to build soil features: %w", err)
	}
	waterFeatures, err := BuildWaterFeatures(cleanWater)
	if err != nil {
		return nil, fmt.Errorf("failed to build water features: %w", err)
	}
	weatherFeatures := BuildWeatherFeatures(weather)
	daily := AggregateDaily(weatherFeatures)
	monthly := AggregateMonthly(weatherFeatures)

	irrigationCrops, err := SampleCrops(p.src, p.crops)
	if err != nil {
		return nil, err
	}
	yieldCrops, err := CyclicCrops(p.crops)
	if err != nil {
		return nil, err
	}

	irrigation, err := BuildIrrigation(cleanSoil, daily, irrigationCrops)
	if err != nil {
		return nil, fmt.Errorf("failed to build irrigation dataset: %w", err)
	}
	yields, err := BuildYield(p.src, cleanSoil, monthly, yieldCrops)
	if err != nil {
		return nil, fmt.Errorf("failed to build yield dataset: %w", err)
	}

	return &Dataset{
		Soil:            soilFeatures,
		Water:           waterFeatures,
		Weather:         weatherFeatures,
		Daily:           daily,
		Monthly:         monthly,
		Irrigation:      irrigation,
		Yield:           yields,
		Zones:           SummarizeZones(soilFeatures, irrigation, yields, irrigationCrops, yieldCrops),
		IrrigationCrops: irrigationCrops,
		YieldCrops:      yieldCrops,
	}, nil
}
