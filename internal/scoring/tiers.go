package scoring

import "math"

// band is an interval worth a fixed number of points. Bounds are closed
// unless marked open; infinite bounds express one-sided thresholds.
type band struct {
	lo, hi         float64
	openLo, openHi bool
	points         float64
}

func (b band) contains(v float64) bool {
	if math.IsNaN(v) {
		return false
	}
	if v < b.lo || (b.openLo && v == b.lo) {
		return false
	}
	if v > b.hi || (b.openHi && v == b.hi) {
		return false
	}
	return true
}

func between(lo, hi, points float64) band {
	return band{lo: lo, hi: hi, points: points}
}

func below(hi, points float64) band {
	return band{lo: math.Inf(-1), hi: hi, openHi: true, points: points}
}

func above(lo, points float64) band {
	return band{lo: lo, hi: math.Inf(1), openLo: true, points: points}
}

// ladder evaluates bands in order and falls through to otherwise
type ladder struct {
	bands     []band
	otherwise float64
}

func (l ladder) points(v float64) float64 {
	for _, b := range l.bands {
		if b.contains(v) {
			return b.points
		}
	}
	return l.otherwise
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

func round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
