// Package sampling provides the explicitly seeded random source threaded
// through every simulator.
//
// A Source never hands out a shared generator. Each (domain, index) pair
// gets its own PCG stream, so a record's draws depend only on the seed and
// the record's position and never on how generation was chunked across
// workers.
package sampling

import (
	"math"
	"math/rand/v2"
)

// Domain separates the streams of different simulators and stages
type Domain uint64

const (
	DomainSoilTime Domain = iota + 1
	DomainSoil
	DomainWaterTime
	DomainWater
	DomainWeather
	DomainYield
	DomainCropAssign
)

// Source is an immutable seeded random source
type Source struct {
	seed uint64
}

// New creates a source for the given seed
func New(seed uint64) Source {
	return Source{seed: seed}
}

// Seed returns the seed the source was created with
func (s Source) Seed() uint64 {
	return s.seed
}

// Stream returns the generator for one record of one domain
func (s Source) Stream(domain Domain, index int) *rand.Rand {
	return rand.New(rand.NewPCG(s.seed, uint64(domain)<<48|uint64(index)))
}

// Normal draws from N(mean, sd)
func Normal(r *rand.Rand, mean, sd float64) float64 {
	return mean + sd*r.NormFloat64()
}

// Exponential draws from an exponential distribution with the given mean
func Exponential(r *rand.Rand, mean float64) float64 {
	return mean * r.ExpFloat64()
}

// Weibull draws from a unit-scale Weibull distribution with shape k
func Weibull(r *rand.Rand, k float64) float64 {
	u := r.Float64()
	return math.Pow(-math.Log1p(-u), 1/k)
}

// Uniform draws from [lo, hi)
func Uniform(r *rand.Rand, lo, hi float64) float64 {
	return lo + (hi-lo)*r.Float64()
}

// Bernoulli reports true with probability p
func Bernoulli(r *rand.Rand, p float64) bool {
	return r.Float64() < p
}

// Weighted picks an index according to weights that sum to 1.
// The last index absorbs rounding error.
func Weighted(r *rand.Rand, weights []float64) int {
	u := r.Float64()
	acc := 0.0
	for i, w := range weights {
		acc += w
		if u < acc {
			return i
		}
	}
	return len(weights) - 1
}

// Clamp limits v to [lo, hi]
func Clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

// Round rounds v to the given number of decimals, half away from zero
func Round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
