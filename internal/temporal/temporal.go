// Package temporal produces the seasonal and diurnal modulation factors
// shared by every simulator. All functions are pure.
package temporal

import (
	"math"
	"time"
)

const daysPerYear = 365.0

// Seasonal peaks mid-year (day ~171) and is used for nutrient and
// temperature drift. Range [0,1].
func Seasonal(dayOfYear int) float64 {
	return 0.5 + 0.5*math.Sin(2*math.Pi*float64(dayOfYear-80)/daysPerYear)
}

// Diurnal peaks mid-afternoon. Range [0,1].
func Diurnal(hour int) float64 {
	return 0.5 + 0.5*math.Sin(2*math.Pi*float64(hour-6)/24)
}

// MoistureSeasonal is the monsoon-driven moisture curve. It is phase
// shifted against Seasonal and floored at 0.1.
func MoistureSeasonal(dayOfYear int) float64 {
	m := 0.3 + 0.7*math.Sin(2*math.Pi*float64(dayOfYear-150)/daysPerYear)
	return math.Max(0.1, m)
}

// MonsoonIntensity is a Gaussian envelope centred on day 210
func MonsoonIntensity(dayOfYear int) float64 {
	z := float64(dayOfYear-210) / 40
	return math.Exp(-0.5 * z * z)
}

// Factors bundles every modulation factor for one timestamp
type Factors struct {
	DayOfYear        int
	Hour             int
	Seasonal         float64
	Diurnal          float64
	MoistureSeasonal float64
	Monsoon          float64
}

// At computes all factors for a timestamp
func At(t time.Time) Factors {
	doy := t.YearDay()
	hour := t.Hour()
	return Factors{
		DayOfYear:        doy,
		Hour:             hour,
		Seasonal:         Seasonal(doy),
		Diurnal:          Diurnal(hour),
		MoistureSeasonal: MoistureSeasonal(doy),
		Monsoon:          MonsoonIntensity(doy),
	}
}
