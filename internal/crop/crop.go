package crop

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// Season is an agricultural growing season
type Season string

const (
	Kharif    Season = "Kharif"
	Rabi      Season = "Rabi"
	Zaid      Season = "Zaid"
	Annual    Season = "Annual"
	YearRound Season = "Year-round"
)

var ErrUnknownCrop = errors.New("unknown crop")

// Tolerance holds the agronomic ranges of a crop
type Tolerance struct {
	Name                   string  `json:"crop_name"`
	NMin                   float64 `json:"nitrogen_min_mg_kg"`
	NMax                   float64 `json:"nitrogen_max_mg_kg"`
	PMin                   float64 `json:"phosphorus_min_mg_kg"`
	PMax                   float64 `json:"phosphorus_max_mg_kg"`
	KMin                   float64 `json:"potassium_min_mg_kg"`
	KMax                   float64 `json:"potassium_max_mg_kg"`
	PHMin                  float64 `json:"ph_min"`
	PHMax                  float64 `json:"ph_max"`
	WaterRequirementMM     float64 `json:"water_requirement_mm"`
	TempMin                float64 `json:"temperature_min_c"`
	TempMax                float64 `json:"temperature_max_c"`
	Season                 Season  `json:"growing_season"`
	ExpectedYieldTonsPerHa float64 `json:"expected_yield_tons_per_ha"`
}

// Columns is the exported column order of the reference table
var Columns = []string{
	"crop_name",
	"nitrogen_min_mg_kg", "nitrogen_max_mg_kg",
	"phosphorus_min_mg_kg", "phosphorus_max_mg_kg",
	"potassium_min_mg_kg", "potassium_max_mg_kg",
	"ph_min", "ph_max", "water_requirement_mm",
	"temperature_min_c", "temperature_max_c",
	"growing_season", "expected_yield_tons_per_ha",
}

func row(name string, nMin, nMax, pMin, pMax, kMin, kMax, phMin, phMax, water, tMin, tMax float64, season Season, yield float64) Tolerance {
	return Tolerance{
		Name:                   name,
		NMin:                   nMin,
		NMax:                   nMax,
		PMin:                   pMin,
		PMax:                   pMax,
		KMin:                   kMin,
		KMax:                   kMax,
		PHMin:                  phMin,
		PHMax:                  phMax,
		WaterRequirementMM:     water,
		TempMin:                tMin,
		TempMax:                tMax,
		Season:                 season,
		ExpectedYieldTonsPerHa: yield,
	}
}

var table = [...]Tolerance{
	row("Rice", 80, 120, 40, 60, 40, 80, 5.5, 7.0, 1200, 20, 35, Kharif, 4.5),
	row("Wheat", 60, 100, 30, 50, 30, 60, 6.0, 7.5, 450, 15, 25, Rabi, 3.5),
	row("Maize", 70, 120, 35, 55, 35, 70, 5.5, 7.5, 600, 18, 35, Kharif, 5.0),
	row("Soybean", 20, 40, 40, 60, 40, 60, 6.0, 7.0, 500, 20, 30, Kharif, 2.5),
	row("Cotton", 60, 100, 30, 50, 30, 50, 6.0, 8.0, 700, 20, 35, Kharif, 2.0),
	row("Sugarcane", 80, 150, 40, 70, 60, 100, 6.0, 8.0, 1500, 20, 38, Annual, 70.0),
	row("Potato", 60, 100, 50, 80, 60, 100, 5.5, 6.5, 500, 15, 25, Rabi, 25.0),
	row("Tomato", 80, 120, 50, 80, 60, 100, 6.0, 7.0, 600, 18, 30, YearRound, 30.0),
	row("Onion", 50, 80, 40, 60, 40, 60, 6.0, 7.5, 400, 15, 30, Rabi, 20.0),
	row("Groundnut", 20, 40, 40, 80, 30, 50, 6.0, 7.0, 500, 22, 35, Kharif, 2.0),
	row("Mustard", 40, 60, 20, 40, 20, 40, 6.0, 7.5, 300, 10, 25, Rabi, 1.8),
	row("Chickpea", 20, 30, 40, 60, 30, 50, 6.0, 8.0, 350, 10, 30, Rabi, 1.5),
	row("Pigeon Pea", 20, 40, 40, 60, 20, 40, 5.5, 7.5, 600, 20, 35, Kharif, 1.2),
	row("Barley", 50, 80, 25, 45, 25, 50, 6.0, 8.0, 400, 12, 25, Rabi, 3.0),
	row("Millet", 40, 60, 20, 35, 20, 40, 5.5, 7.5, 350, 25, 40, Kharif, 1.5),
	row("Sorghum", 50, 80, 25, 40, 25, 50, 5.5, 8.0, 450, 25, 40, Kharif, 2.5),
	row("Lentil", 20, 30, 40, 60, 25, 40, 6.0, 7.5, 300, 10, 25, Rabi, 1.2),
	row("Sunflower", 60, 90, 30, 50, 30, 60, 6.0, 7.5, 500, 18, 30, Kharif, 2.0),
	row("Sesame", 30, 50, 20, 40, 20, 40, 5.5, 8.0, 400, 25, 35, Kharif, 0.8),
	row("Jute", 50, 70, 25, 40, 25, 50, 5.5, 7.0, 1000, 25, 38, Kharif, 2.5),
	row("Tea", 70, 120, 30, 50, 40, 60, 4.5, 5.5, 1500, 15, 30, Annual, 2.0),
	row("Coffee", 60, 100, 30, 50, 50, 80, 6.0, 6.5, 1200, 15, 28, Annual, 1.5),
	row("Coconut", 50, 80, 30, 50, 80, 120, 5.5, 7.0, 1500, 20, 35, Annual, 8.0),
	row("Banana", 80, 120, 40, 60, 100, 150, 6.0, 7.5, 1200, 20, 35, Annual, 40.0),
	row("Mango", 60, 100, 30, 50, 50, 80, 5.5, 7.5, 800, 22, 38, Annual, 10.0),
	row("Turmeric", 60, 90, 30, 50, 80, 120, 5.5, 7.0, 1200, 20, 35, Kharif, 8.0),
	row("Ginger", 70, 100, 40, 60, 60, 90, 5.5, 6.5, 1500, 20, 30, Kharif, 5.0),
	row("Chili", 60, 100, 40, 60, 40, 60, 6.0, 7.0, 600, 20, 35, Kharif, 3.0),
	row("Garlic", 50, 80, 40, 60, 40, 60, 6.0, 7.5, 400, 12, 25, Rabi, 8.0),
	row("Cabbage", 80, 120, 40, 60, 60, 80, 6.0, 7.0, 400, 15, 25, Rabi, 30.0),
	row("Carrot", 50, 80, 40, 60, 50, 70, 6.0, 6.8, 400, 12, 25, Rabi, 25.0),
	row("Spinach", 60, 100, 40, 60, 50, 70, 6.0, 7.5, 350, 10, 25, Rabi, 15.0),
	row("Peas", 20, 30, 40, 60, 30, 50, 6.0, 7.5, 400, 10, 25, Rabi, 5.0),
	row("Cauliflower", 80, 120, 50, 70, 50, 80, 6.0, 7.0, 450, 15, 25, Rabi, 25.0),
	row("Brinjal", 60, 100, 40, 60, 50, 80, 5.5, 6.5, 500, 20, 35, YearRound, 20.0),
	row("Okra", 50, 80, 30, 50, 30, 50, 6.0, 7.0, 500, 22, 38, Kharif, 10.0),
	row("Cucumber", 50, 80, 40, 60, 50, 80, 5.5, 7.0, 500, 18, 35, Kharif, 15.0),
	row("Watermelon", 60, 80, 40, 60, 50, 80, 6.0, 7.0, 500, 22, 35, Kharif, 20.0),
	row("Papaya", 80, 120, 40, 60, 80, 120, 6.0, 7.0, 1200, 22, 35, Annual, 30.0),
	row("Guava", 50, 80, 30, 50, 40, 60, 5.5, 7.5, 800, 20, 35, Annual, 15.0),
}

// All returns a copy of the reference table in its canonical order
func All() []Tolerance {
	out := make([]Tolerance, len(table))
	copy(out, table[:])
	return out
}

// Names returns every crop name in table order
func Names() []string {
	names := make([]string, len(table))
	for i, t := range table {
		names[i] = t.Name
	}
	return names
}

// Lookup finds a crop by name
func Lookup(name string) (Tolerance, error) {
	for _, t := range table {
		if t.Name == name {
			return t, nil
		}
	}
	return Tolerance{}, fmt.Errorf("%w: %q", ErrUnknownCrop, name)
}

// SeasonForMonth maps a calendar month to the Indian cropping season
func SeasonForMonth(m time.Month) Season {
	switch m {
	case time.June, time.July, time.August, time.September:
		return Kharif
	case time.October, time.November, time.December, time.January, time.February:
		return Rabi
	default:
		return Zaid
	}
}

// GrowsIn reports whether the crop can be grown in the given season
func (t Tolerance) GrowsIn(s Season) bool {
	return t.Season == Annual || t.Season == YearRound || t.Season == s
}

// Values renders the row in Columns order
func (t Tolerance) Values() []string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	return []string{
		t.Name,
		f(t.NMin), f(t.NMax),
		f(t.PMin), f(t.PMax),
		f(t.KMin), f(t.KMax),
		f(t.PHMin), f(t.PHMax), f(t.WaterRequirementMM),
		f(t.TempMin), f(t.TempMax),
		string(t.Season), f(t.ExpectedYieldTonsPerHa),
	}
}
