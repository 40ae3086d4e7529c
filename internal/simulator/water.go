package simulator

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/smukkama/agrisense/internal/reading"
	"github.com/smukkama/agrisense/internal/sampling"
	"github.com/smukkama/agrisense/internal/scoring"
	"github.com/smukkama/agrisense/internal/temporal"
)

// WaterMissingRate is the dropout probability of turbidity and dissolved oxygen
const WaterMissingRate = 0.02

// sourceWeights follows reading.SourceTypes order
var sourceWeights = []float64{0.35, 0.25, 0.25, 0.15}

// sourceBaseline is the typical chemistry of a water source
type sourceBaseline struct {
	ph, tds, turbidity, oxygen, hardness, chloride, sulfate, nitrate float64
}

var baselines = map[reading.SourceType]sourceBaseline{
	reading.Borewell:  {ph: 7.5, tds: 600, turbidity: 2, oxygen: 5, hardness: 250, chloride: 100, sulfate: 80, nitrate: 15},
	reading.River:     {ph: 7.0, tds: 350, turbidity: 15, oxygen: 7, hardness: 150, chloride: 50, sulfate: 40, nitrate: 25},
	reading.Canal:     {ph: 7.2, tds: 450, turbidity: 20, oxygen: 6, hardness: 180, chloride: 70, sulfate: 55, nitrate: 30},
	reading.Rainwater: {ph: 6.5, tds: 50, turbidity: 3, oxygen: 8, hardness: 30, chloride: 10, sulfate: 10, nitrate: 5},
}

// Water generates water quality readings
type Water struct {
	sim *Simulator
}

// Generate returns n water readings sorted by timestamp. The quality
// grade is computed from the unrounded values before dropouts.
func (g *Water) Generate(ctx context.Context, n int) ([]reading.WaterReading, error) {
	if n <= 0 {
		return []reading.WaterReading{}, nil
	}

	ts, err := g.sim.randomTimestamps(ctx, sampling.DomainWaterTime, n)
	if err != nil {
		return nil, err
	}

	sources := reading.SourceTypes()
	out := make([]reading.WaterReading, n)
	err = g.sim.parallel(ctx, n, func(i int) {
		out[i] = waterRecord(g.sim.src.Stream(sampling.DomainWater, i), ts[i], sources)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate water readings: %w", err)
	}
	return out, nil
}

func waterRecord(r *rand.Rand, ts time.Time, sources []reading.SourceType) reading.WaterReading {
	source := sources[sampling.Weighted(r, sourceWeights)]
	b := baselines[source]
	s := temporal.At(ts).Seasonal

	ph := sampling.Clamp(b.ph+sampling.Normal(r, 0, 0.4), 4.5, 9.5)
	tds := math.Max(10, b.tds+sampling.Normal(r, 0, b.tds*0.2))
	turbidity := math.Max(0.1, b.turbidity*(1+0.5*s)+sampling.Normal(r, 0, b.turbidity*0.3))
	oxygen := sampling.Clamp(b.oxygen+sampling.Normal(r, 0, 1.2), 1, 14)
	hardness := math.Max(10, b.hardness+sampling.Normal(r, 0, b.hardness*0.15))
	chloride := math.Max(1, b.chloride+sampling.Normal(r, 0, b.chloride*0.2))
	sulfate := math.Max(1, b.sulfate+sampling.Normal(r, 0, b.sulfate*0.2))
	nitrate := math.Max(0.5, b.nitrate*(1+0.3*s)+sampling.Normal(r, 0, b.nitrate*0.25))
	temp := sampling.Clamp(20+10*s+sampling.Normal(r, 0, 3), 8, 38)

	_, grade := scoring.GradeWater(scoring.WaterQualityInput{
		PH:              ph,
		TDS:             tds,
		Turbidity:       turbidity,
		DissolvedOxygen: oxygen,
		Nitrate:         nitrate,
	})

	rec := reading.WaterReading{
		Timestamp:        ts,
		SourceType:       source,
		PH:               sampling.Round(ph, 2),
		TDS:              sampling.Round(tds, 1),
		Turbidity:        reading.Float(sampling.Round(turbidity, 2)),
		DissolvedOxygen:  reading.Float(sampling.Round(oxygen, 2)),
		Hardness:         sampling.Round(hardness, 1),
		Chloride:         sampling.Round(chloride, 1),
		Sulfate:          sampling.Round(sulfate, 1),
		Nitrate:          sampling.Round(nitrate, 2),
		WaterTemperature: sampling.Round(temp, 1),
		QualityGrade:     grade,
	}

	if sampling.Bernoulli(r, WaterMissingRate) {
		rec.Turbidity = nil
	}
	if sampling.Bernoulli(r, WaterMissingRate) {
		rec.DissolvedOxygen = nil
	}
	return rec
}
