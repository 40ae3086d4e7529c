package features

import (
	"math"
	"slices"
	"strconv"

	"github.com/smukkama/agrisense/internal/crop"
	"github.com/smukkama/agrisense/internal/reading"
	"github.com/smukkama/agrisense/internal/scoring"
)

// SoilFeatures is a soil reading with its derived agronomic features
type SoilFeatures struct {
	reading.SoilReading
	NPKRatio        float64
	NutrientTotal   float64
	Month           int
	Season          crop.Season
	Health          scoring.Health
	Diagnosis       scoring.Diagnosis
	NitrogenTier    scoring.Severity
	PhosphorusTier  scoring.Severity
	PotassiumTier   scoring.Severity
	RecommendedCrop string
	CropFitness     int
}

// SoilFeatureColumns is the exported column order of SoilFeatures
var SoilFeatureColumns = slices.Concat(reading.SoilColumns, []string{
	"npk_ratio", "nutrient_total", "month", "season",
	"health_score", "health_category",
	"n_deficient", "p_deficient", "k_deficient", "ph_imbalanced",
	"nitrogen_tier", "phosphorus_tier", "potassium_tier",
	"deficiency_severity", "recommended_crop", "crop_fitness",
})

// valueOr dereferences v, or returns NaN for a value imputation could not fill
func valueOr(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}

func tier(n scoring.Nutrient, v *float64) scoring.Severity {
	if v == nil {
		return ""
	}
	return scoring.NutrientTier(n, *v)
}

// BuildSoilFeatures derives features for every row. Rows are expected to
// be imputed already; crops is the table recommendations are drawn from.
func BuildSoilFeatures(rows []reading.SoilReading, crops []crop.Tolerance) ([]SoilFeatures, error) {
	out := make([]SoilFeatures, len(rows))
	for i, r := range rows {
		sample := scoring.SampleFromReading(r)
		health, err := scoring.HealthScore(sample)
		if err != nil {
			return nil, err
		}
		diagnosis, err := scoring.DiagnoseDeficiency(sample)
		if err != nil {
			return nil, err
		}

		n, p := valueOr(r.Nitrogen), valueOr(r.Phosphorus)
		season := crop.SeasonForMonth(r.Timestamp.Month())

		f := SoilFeatures{
			SoilReading:    r,
			NPKRatio:       n / (p + r.Potassium + 1e-6),
			NutrientTotal:  n + p + r.Potassium,
			Month:          int(r.Timestamp.Month()),
			Season:         season,
			Health:         health,
			Diagnosis:      diagnosis,
			NitrogenTier:   tier(scoring.Nitrogen, r.Nitrogen),
			PhosphorusTier: tier(scoring.Phosphorus, r.Phosphorus),
			PotassiumTier:  tier(scoring.Potassium, reading.Float(r.Potassium)),
		}

		best, fitness, ok := scoring.RecommendCrop(scoring.CropConditions{
			Nitrogen:    n,
			Phosphorus:  p,
			Potassium:   r.Potassium,
			PH:          r.PH,
			Temperature: r.SoilTemperature,
			Season:      season,
		}, crops)
		if ok {
			f.RecommendedCrop = best.Name
			f.CropFitness = fitness
		}
		out[i] = f
	}
	return out, nil
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// Values renders the row in SoilFeatureColumns order
func (f SoilFeatures) Values() []string {
	d := f.Diagnosis
	return slices.Concat(f.SoilReading.Values(), []string{
		reading.FormatFloat(f.NPKRatio),
		reading.FormatFloat(f.NutrientTotal),
		strconv.Itoa(f.Month),
		string(f.Season),
		reading.FormatFloat(f.Health.Score),
		string(f.Health.Category),
		flag(d.Has(scoring.NitrogenDeficient)),
		flag(d.Has(scoring.PhosphorusDeficient)),
		flag(d.Has(scoring.PotassiumDeficient)),
		flag(d.Has(scoring.PHLow) || d.Has(scoring.PHHigh)),
		string(f.NitrogenTier),
		string(f.PhosphorusTier),
		string(f.PotassiumTier),
		string(d.Severity),
		f.RecommendedCrop,
		strconv.Itoa(f.CropFitness),
	})
}
