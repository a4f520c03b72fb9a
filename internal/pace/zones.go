package pace

import "math"

// Zone is one intensity band. For pace zones Low/High are seconds per km
// (Low is the faster bound); for HR zones they are beats per minute.
type Zone struct {
	Number int    `json:"zone"`
	Name   string `json:"name"`
	Low    int    `json:"low"`
	High   int    `json:"high"`
}

type zoneFactor struct {
	name      string
	low, high float64
}

// Pace zones: slower paces (more seconds per km) get lower zone numbers.
var paceZoneFactors = []zoneFactor{
	{"Recovery", 1.25, 1.40},
	{"Easy", 1.10, 1.25},
	{"Tempo", 0.98, 1.10},
	{"Threshold", 0.92, 0.98},
	{"VO2max", 0.82, 0.92},
}

// HR zones: lower heart rates get lower zone numbers.
var hrZoneFactors = []zoneFactor{
	{"Recovery", 0.65, 0.75},
	{"Easy", 0.75, 0.85},
	{"Tempo", 0.85, 0.92},
	{"Threshold", 0.92, 1.00},
	{"VO2max", 1.00, 1.08},
}

// Scale multiplies v by f and rounds to the nearest integer, halves away
// from zero.
func Scale(v, f float64) int {
	return int(math.Round(v * f))
}

// PaceZones derives the five pace zones from a threshold pace. Non-positive
// thresholds give degenerate bounds; callers validate.
func PaceZones(thresholdSecPerKm float64) []Zone {
	return buildZones(thresholdSecPerKm, paceZoneFactors)
}

// HRZones derives the five heart-rate zones from a threshold heart rate.
func HRZones(thresholdBpm int) []Zone {
	return buildZones(float64(thresholdBpm), hrZoneFactors)
}

func buildZones(threshold float64, factors []zoneFactor) []Zone {
	zones := make([]Zone, len(factors))
	for i, f := range factors {
		zones[i] = Zone{
			Number: i + 1,
			Name:   f.name,
			Low:    Scale(threshold, f.low),
			High:   Scale(threshold, f.high),
		}
	}
	return zones
}
