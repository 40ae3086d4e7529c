package features

import (
	"strconv"

	"github.com/smukkama/agrisense/internal/reading"
	"github.com/smukkama/agrisense/internal/sampling"
	"github.com/smukkama/agrisense/internal/scoring"
	"github.com/smukkama/agrisense/internal/zone"
)

// RecentWindow is the number of latest irrigation rows a zone's schedule
// is based on
const RecentWindow = 30

// ZoneSummary condenses one zone's soil, irrigation and yield rows
type ZoneSummary struct {
	Zone            zone.ID
	SoilType        zone.SoilType
	Readings        int
	AvgHealthScore  float64
	AvgMoisture     float64
	AvgPH           float64
	DeficiencyRate  float64
	CriticalRate    float64
	RecommendedCrop string
	IrrigationCrop  string
	AvgNeedMM       float64
	MaxNeedMM       float64
	Priority        scoring.Priority
	YieldCrop       string
	AvgYield        float64
}

// ZoneSummaryColumns is the exported column order of ZoneSummary
var ZoneSummaryColumns = []string{
	"zone_id", "soil_type", "readings", "avg_health_score", "avg_moisture", "avg_ph",
	"deficiency_rate", "critical_rate", "recommended_crop",
	"irrigation_crop", "avg_need_mm", "max_need_mm", "priority", "recommended_frequency",
	"yield_crop", "avg_yield",
}

type zoneAcc struct {
	n, deficient, critical int
	health, moisture, ph   float64
	crops                  map[string]int
	needs                  []float64
	yield                  float64
	yields                 int
}

// SummarizeZones produces one summary per zone in zone order. Irrigation
// and yield rows must be in timestamp order; the schedule uses the last
// RecentWindow irrigation rows of each zone.
func SummarizeZones(soil []SoilFeatures, irrigation []IrrigationRow, yields []YieldRow, irrigationCrops, yieldCrops Assignment) []ZoneSummary {
	acc := make(map[zone.ID]*zoneAcc, zone.Count)
	for _, id := range zone.IDs() {
		acc[id] = &zoneAcc{crops: make(map[string]int)}
	}

	for _, s := range soil {
		a, ok := acc[s.ZoneID]
		if !ok {
			continue
		}
		a.n++
		a.health += s.Health.Score
		a.moisture += s.Moisture
		a.ph += s.PH
		if len(s.Diagnosis.Findings) > 0 {
			a.deficient++
		}
		if s.Diagnosis.Severity == scoring.OverallCritical {
			a.critical++
		}
		if s.RecommendedCrop != "" {
			a.crops[s.RecommendedCrop]++
		}
	}
	for _, r := range irrigation {
		if a, ok := acc[r.Soil.ZoneID]; ok {
			a.needs = append(a.needs, r.IrrigationNeedMM)
		}
	}
	for _, y := range yields {
		if a, ok := acc[y.Soil.ZoneID]; ok {
			a.yield += y.ActualYield
			a.yields++
		}
	}

	out := make([]ZoneSummary, 0, zone.Count)
	for _, p := range zone.All() {
		a := acc[p.ID]
		s := ZoneSummary{
			Zone:            p.ID,
			SoilType:        p.SoilType,
			Readings:        a.n,
			RecommendedCrop: mostFrequent(a.crops),
			IrrigationCrop:  irrigationCrops[p.ID].Name,
			YieldCrop:       yieldCrops[p.ID].Name,
			Priority:        scoring.PriorityLow,
		}
		if a.n > 0 {
			n := float64(a.n)
			s.AvgHealthScore = sampling.Round(a.health/n, 1)
			s.AvgMoisture = sampling.Round(a.moisture/n, 1)
			s.AvgPH = sampling.Round(a.ph/n, 2)
			s.DeficiencyRate = sampling.Round(float64(a.deficient)/n, 3)
			s.CriticalRate = sampling.Round(float64(a.critical)/n, 3)
		}
		if len(a.needs) > 0 {
			recent := a.needs[max(0, len(a.needs)-RecentWindow):]
			sum, peak := 0.0, 0.0
			for _, v := range recent {
				sum += v
				peak = max(peak, v)
			}
			avg := sum / float64(len(recent))
			s.AvgNeedMM = sampling.Round(avg, 1)
			s.MaxNeedMM = sampling.Round(peak, 1)
			s.Priority = scoring.PriorityForNeed(avg)
		}
		if a.yields > 0 {
			s.AvgYield = sampling.Round(a.yield/float64(a.yields), 2)
		}
		out = append(out, s)
	}
	return out
}

// mostFrequent returns the most common key; ties go to the smaller name
func mostFrequent(counts map[string]int) string {
	best, bestN := "", 0
	for k, n := range counts {
		if n > bestN || (n == bestN && k < best) {
			best, bestN = k, n
		}
	}
	return best
}

// Values renders the row in ZoneSummaryColumns order
func (s ZoneSummary) Values() []string {
	return []string{
		string(s.Zone),
		string(s.SoilType),
		strconv.Itoa(s.Readings),
		reading.FormatFloat(s.AvgHealthScore),
		reading.FormatFloat(s.AvgMoisture),
		reading.FormatFloat(s.AvgPH),
		reading.FormatFloat(s.DeficiencyRate),
		reading.FormatFloat(s.CriticalRate),
		s.RecommendedCrop,
		s.IrrigationCrop,
		reading.FormatFloat(s.AvgNeedMM),
		reading.FormatFloat(s.MaxNeedMM),
		string(s.Priority),
		s.Priority.Frequency(),
		s.YieldCrop,
		reading.FormatFloat(s.AvgYield),
	}
}
