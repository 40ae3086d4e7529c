package features

import (
	"slices"
	"strconv"
	"strings"

	"github.com/smukkama/agrisense/internal/reading"
	"github.com/smukkama/agrisense/internal/scoring"
)

// WaterFeatures is a water reading with its derived features
type WaterFeatures struct {
	reading.WaterReading
	TDSTurbidityRatio float64
	IonBalance        float64
	Month             int
	Suitability       scoring.Suitability
	TreatmentStatus   string
}

// WaterFeatureColumns is the exported column order of WaterFeatures
var WaterFeatureColumns = slices.Concat(reading.WaterColumns, []string{
	"tds_turbidity_ratio", "ion_balance", "month",
	"irrigation_suitable", "irrigation_issues", "treatment_status",
})

// BuildWaterFeatures derives features for every row. Rows are expected
// to be imputed already.
func BuildWaterFeatures(rows []reading.WaterReading) ([]WaterFeatures, error) {
	out := make([]WaterFeatures, len(rows))
	for i := range rows {
		r := rows[i]
		suitability, err := scoring.AssessIrrigationSuitability(&r)
		if err != nil {
			return nil, err
		}
		treatment, _ := scoring.TreatmentFor(r.QualityGrade)

		out[i] = WaterFeatures{
			WaterReading:      r,
			TDSTurbidityRatio: r.TDS / (valueOr(r.Turbidity) + 1e-6),
			IonBalance:        r.Chloride + r.Sulfate + r.Nitrate,
			Month:             int(r.Timestamp.Month()),
			Suitability:       suitability,
			TreatmentStatus:   treatment.Status,
		}
	}
	return out, nil
}

// Values renders the row in WaterFeatureColumns order
func (f WaterFeatures) Values() []string {
	return slices.Concat(f.WaterReading.Values(), []string{
		reading.FormatFloat(f.TDSTurbidityRatio),
		reading.FormatFloat(f.IonBalance),
		strconv.Itoa(f.Month),
		flag(f.Suitability.Suitable),
		strings.Join(f.Suitability.Issues, "; "),
		f.TreatmentStatus,
	})
}
