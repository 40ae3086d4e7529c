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
	"github.com/smukkama/agrisense/internal/zone"
)

// SoilMissingRate is the dropout probability of nitrogen, phosphorus and EC
const SoilMissingRate = 0.03

// Soil generates soil sensor readings
type Soil struct {
	sim *Simulator
}

// Generate returns n soil readings sorted by timestamp
func (g *Soil) Generate(ctx context.Context, n int) ([]reading.SoilReading, error) {
	if n <= 0 {
		return []reading.SoilReading{}, nil
	}

	ts, err := g.sim.randomTimestamps(ctx, sampling.DomainSoilTime, n)
	if err != nil {
		return nil, err
	}

	out := make([]reading.SoilReading, n)
	err = g.sim.parallel(ctx, n, func(i int) {
		out[i] = soilRecord(g.sim.src.Stream(sampling.DomainSoil, i), ts[i])
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate soil readings: %w", err)
	}
	return out, nil
}

func soilRecord(r *rand.Rand, ts time.Time) reading.SoilReading {
	p := zone.At(r.IntN(zone.Count))
	f := temporal.At(ts)
	s := f.Seasonal

	organicBoost := 0.0
	if p.SoilType == zone.Peaty {
		organicBoost = 1
	}

	n := math.Max(5, p.BaseN*(0.7+0.6*s)+sampling.Normal(r, 0, 12))
	phos := math.Max(2, p.BaseP*(0.8+0.4*s)+sampling.Normal(r, 0, 8))
	rec := reading.SoilReading{
		Timestamp:       ts,
		ZoneID:          p.ID,
		SoilType:        p.SoilType,
		Nitrogen:        &n,
		Phosphorus:      &phos,
		Potassium:       math.Max(5, p.BaseK*(0.75+0.5*s)+sampling.Normal(r, 0, 10)),
		PH:              sampling.Clamp(p.BasePH+sampling.Normal(r, 0, 0.3), 4, 9),
		OrganicMatter:   sampling.Clamp(sampling.Normal(r, 3.5, 1.2)+organicBoost, 0.5, 12),
		Moisture:        sampling.Clamp(p.BaseMoisture*f.MoistureSeasonal+sampling.Normal(r, 0, 5), 2, 80),
		SoilTemperature: sampling.Clamp(15+15*s+sampling.Normal(r, 0, 3), 5, 45),
		EC:              reading.Float(sampling.Clamp(sampling.Normal(r, 1.5, 0.6), 0.1, 5)),
	}

	if sampling.Bernoulli(r, SoilMissingRate) {
		rec.Nitrogen = nil
	}
	if sampling.Bernoulli(r, SoilMissingRate) {
		rec.Phosphorus = nil
	}
	if sampling.Bernoulli(r, SoilMissingRate) {
		rec.EC = nil
	}
	return rec
}
