package simulator

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/smukkama/agrisense/internal/reading"
	"github.com/smukkama/agrisense/internal/sampling"
	"github.com/smukkama/agrisense/internal/temporal"
)

// Weather generates weather station readings
type Weather struct {
	sim *Simulator
}

// Step returns the spacing between weather readings when n are generated
func Step(n int) time.Duration {
	if n <= 0 {
		return 0
	}
	return time.Duration(SpanHours/n) * time.Hour
}

// Generate returns n weather readings on a regular grid starting at the
// simulator start.
func (g *Weather) Generate(ctx context.Context, n int) ([]reading.WeatherReading, error) {
	if n <= 0 {
		return []reading.WeatherReading{}, nil
	}

	step := Step(n)
	out := make([]reading.WeatherReading, n)
	err := g.sim.parallel(ctx, n, func(i int) {
		ts := g.sim.start.Add(time.Duration(i) * step)
		out[i] = weatherRecord(g.sim.src.Stream(sampling.DomainWeather, i), ts)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate weather readings: %w", err)
	}
	return out, nil
}

func weatherRecord(r *rand.Rand, ts time.Time) reading.WeatherReading {
	f := temporal.At(ts)
	s, d, m := f.Seasonal, f.Diurnal, f.Monsoon

	temp := 15 + 20*s + 5*d + sampling.Normal(r, 0, 2)
	humidity := sampling.Clamp(60+25*(1-s)*(1-0.3*d)+sampling.Normal(r, 0, 8), 15, 100)

	// Both draws happen on every record so the stream stays aligned.
	rainfall := math.Max(0, sampling.Exponential(r, 5*m+0.5))
	if r.Float64() > 0.3+0.4*m {
		rainfall = 0
	}

	wind := math.Max(0, sampling.Weibull(r, 2)*8+3)
	solar := math.Max(0, 300*d*(0.7+0.3*s)*sampling.Uniform(r, 0.5, 1.2))
	pressure := sampling.Normal(r, 1013, 5)
	uv := math.Max(0, math.Round(8*d*s+sampling.Normal(r, 0, 1)))

	return reading.WeatherReading{
		Timestamp:      ts,
		Temperature:    sampling.Round(temp, 1),
		Humidity:       sampling.Round(humidity, 1),
		Rainfall:       sampling.Round(rainfall, 1),
		WindSpeed:      sampling.Round(wind, 1),
		SolarRadiation: sampling.Round(solar, 1),
		Pressure:       sampling.Round(pressure, 1),
		UVIndex:        int(sampling.Clamp(uv, 0, 12)),
	}
}
