package scoring

// Nutrient is one of the primary soil macronutrients
type Nutrient string

const (
	Nitrogen   Nutrient = "Nitrogen"
	Phosphorus Nutrient = "Phosphorus"
	Potassium  Nutrient = "Potassium"
)

// Severity grades a single finding
type Severity string

const (
	SeverityCritical   Severity = "Critical"
	SeverityLow        Severity = "Low"
	SeverityModerate   Severity = "Moderate"
	SeverityAdequate   Severity = "Adequate"
	SeverityImbalanced Severity = "Imbalanced"
)

// Overall is the severity of a whole diagnosis
type Overall string

const (
	OverallNone     Overall = "none"
	OverallModerate Overall = "moderate"
	OverallCritical Overall = "critical"
)

// DeficiencyKind keys the amendment table
type DeficiencyKind string

const (
	NitrogenDeficient   DeficiencyKind = "N_deficient"
	PhosphorusDeficient DeficiencyKind = "P_deficient"
	PotassiumDeficient  DeficiencyKind = "K_deficient"
	PHLow               DeficiencyKind = "pH_low"
	PHHigh              DeficiencyKind = "pH_high"
)

// Thresholds are the tier boundaries of one nutrient in mg/kg
type Thresholds struct {
	Low      float64 `json:"low"`
	Moderate float64 `json:"moderate"`
	Adequate float64 `json:"adequate"`
}

// pH outside [PHLowLimit, PHHighLimit] is flagged as imbalanced
const (
	PHLowLimit  = 5.5
	PHHighLimit = 8.0
)

type nutrientRule struct {
	nutrient   Nutrient
	kind       DeficiencyKind
	thresholds Thresholds
	value      func(*SoilSample) *float64
}

var nutrientRules = [...]nutrientRule{
	{Nitrogen, NitrogenDeficient, Thresholds{Low: 40, Moderate: 60, Adequate: 80}, func(s *SoilSample) *float64 { return s.Nitrogen }},
	{Phosphorus, PhosphorusDeficient, Thresholds{Low: 15, Moderate: 25, Adequate: 40}, func(s *SoilSample) *float64 { return s.Phosphorus }},
	{Potassium, PotassiumDeficient, Thresholds{Low: 25, Moderate: 35, Adequate: 50}, func(s *SoilSample) *float64 { return s.Potassium }},
}

// NutrientThresholds returns the tier boundaries of a nutrient
func NutrientThresholds(n Nutrient) (Thresholds, bool) {
	for _, r := range nutrientRules {
		if r.nutrient == n {
			return r.thresholds, true
		}
	}
	return Thresholds{}, false
}

// NutrientTier places a value in the four-way severity scale
func NutrientTier(n Nutrient, v float64) Severity {
	t, ok := NutrientThresholds(n)
	if !ok {
		return ""
	}
	switch {
	case v < t.Low:
		return SeverityCritical
	case v < t.Moderate:
		return SeverityLow
	case v < t.Adequate:
		return SeverityModerate
	default:
		return SeverityAdequate
	}
}

// Amendment is a recommended soil treatment
type Amendment struct {
	Name   string `json:"amendment"`
	Dosage string `json:"dosage"`
	Timing string `json:"timing"`
}

var amendments = map[DeficiencyKind][]Amendment{
	NitrogenDeficient: {
		{"Urea (46-0-0)", "60-100 kg/ha", "Split application: 50% at sowing, 50% at 30 days"},
		{"Ammonium Sulfate (21-0-0-24S)", "120-180 kg/ha", "Pre-sowing or side-dress"},
		{"Neem-coated Urea", "60-100 kg/ha", "Slow release, apply at sowing"},
	},
	PhosphorusDeficient: {
		{"DAP (18-46-0)", "50-80 kg/ha", "Apply at sowing as basal dose"},
		{"SSP (0-16-0)", "150-250 kg/ha", "Basal application"},
		{"Rock Phosphate", "200-400 kg/ha", "Pre-sowing, works best in acidic soils"},
	},
	PotassiumDeficient: {
		{"MOP - Muriate of Potash (0-0-60)", "40-80 kg/ha", "Basal or split application"},
		{"SOP - Sulfate of Potash (0-0-50)", "50-100 kg/ha", "For chloride-sensitive crops"},
		{"Wood Ash", "500-1000 kg/ha", "Pre-sowing, also raises pH"},
	},
	PHLow: {
		{"Agricultural Lime (CaCO₃)", "2-4 tons/ha", "Apply 2-3 months before sowing"},
		{"Dolomite Lime", "1.5-3 tons/ha", "Also supplies Mg, apply before plowing"},
	},
	PHHigh: {
		{"Gypsum (CaSO₄)", "2-5 tons/ha", "Apply before plowing season"},
		{"Sulfur (Elemental)", "200-500 kg/ha", "Apply and incorporate into soil"},
		{"Organic Matter / Compost", "10-20 tons/ha", "Regular annual application"},
	},
}

// Amendments returns a copy of the recommendations for a deficiency kind
func Amendments(kind DeficiencyKind) []Amendment {
	src := amendments[kind]
	out := make([]Amendment, len(src))
	copy(out, src)
	return out
}

// Finding is one flagged deficiency or imbalance
type Finding struct {
	Kind     DeficiencyKind `json:"kind"`
	Label    string         `json:"nutrient"`
	Value    float64        `json:"value"`
	Severity Severity       `json:"severity"`
}

// Diagnosis is the nutrient deficiency report of one sample
type Diagnosis struct {
	Findings        []Finding   `json:"deficiencies"`
	Recommendations []Amendment `json:"recommendations"`
	Severity        Overall     `json:"severity"`
}

// Has reports whether the diagnosis contains a finding of the given kind
func (d Diagnosis) Has(kind DeficiencyKind) bool {
	for _, f := range d.Findings {
		if f.Kind == kind {
			return true
		}
	}
	return false
}

// DiagnoseDeficiency flags N/P/K below their moderate threshold and pH
// outside [5.5, 8.0]. Unknown nutrients are not diagnosed; an unknown pH
// is taken as DefaultPH.
func DiagnoseDeficiency(s *SoilSample) (Diagnosis, error) {
	if s == nil {
		return Diagnosis{}, ErrNoReading
	}

	d := Diagnosis{Severity: OverallNone}
	critical := false

	for _, rule := range nutrientRules {
		v := rule.value(s)
		if v == nil || *v >= rule.thresholds.Moderate {
			continue
		}
		severity := SeverityLow
		if *v < rule.thresholds.Low {
			severity = SeverityCritical
			critical = true
		}
		d.Findings = append(d.Findings, Finding{
			Kind:     rule.kind,
			Label:    string(rule.nutrient),
			Value:    *v,
			Severity: severity,
		})
		d.Recommendations = append(d.Recommendations, Amendments(rule.kind)...)
	}

	ph := s.ph()
	switch {
	case ph < PHLowLimit:
		d.Findings = append(d.Findings, Finding{Kind: PHLow, Label: "pH (Acidic)", Value: ph, Severity: SeverityImbalanced})
		d.Recommendations = append(d.Recommendations, Amendments(PHLow)...)
	case ph > PHHighLimit:
		d.Findings = append(d.Findings, Finding{Kind: PHHigh, Label: "pH (Alkaline)", Value: ph, Severity: SeverityImbalanced})
		d.Recommendations = append(d.Recommendations, Amendments(PHHigh)...)
	}

	switch {
	case critical:
		d.Severity = OverallCritical
	case len(d.Findings) > 0:
		d.Severity = OverallModerate
	}

	return d, nil
}
