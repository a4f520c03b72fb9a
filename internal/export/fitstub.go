package export

import (
	"encoding/json"
	"math"
	"regexp"

	"spartan/trainer/internal/domain"
)

// FITWorkout mirrors a FIT workout definition message in JSON. Values use
// FIT units: milliseconds for time, centimeters for distance and
// millimeters per second for speed targets.
type FITWorkout struct {
	FileType      string    `json:"fileType"`
	WorkoutName   string    `json:"workoutName"`
	Sport         string    `json:"sport"`
	SubSport      string    `json:"subSport"`
	NumValidSteps int       `json:"numValidSteps"`
	Steps         []FITStep `json:"steps"`
}

type FITStep struct {
	MessageIndex     int    `json:"messageIndex"`
	WorkoutStepName  string `json:"workoutStepName"`
	DurationType     string `json:"durationType"`
	DurationValue    int    `json:"durationValue"`
	TargetType       string `json:"targetType"`
	TargetValue      int    `json:"targetValue"`
	CustomTargetLow  int    `json:"customTargetLow"`
	CustomTargetHigh int    `json:"customTargetHigh"`
	Intensity        string `json:"intensity"`
}

// Stub enum names.
const (
	fitTargetSpeed     = "SPEED"
	fitTargetHeartRate = "HEART_RATE"
	fitTargetOpen      = "OPEN"

	fitIntensityWarmup = "WARMUP"
	fitIntensityRest   = "REST"
	fitIntensityActive = "ACTIVE"

	fitDurationTime     = "TIME"
	fitDurationDistance = "DISTANCE"

	fitSubSportTrack  = "TRACK"
	fitSubSportStreet = "STREET"
)

var whitespace = regexp.MustCompile(`\s+`)

// WorkoutName builds the FIT workout name, e.g. "2025-01-06_Tempo_Run".
func WorkoutName(s domain.Session) string {
	return s.SessionDate + "_" + whitespace.ReplaceAllString(s.Title, "_")
}

// ToFITWorkouts maps sessions to FIT workout definitions, one per session.
func ToFITWorkouts(sessions []domain.Session) []FITWorkout {
	out := make([]FITWorkout, 0, len(sessions))
	for _, s := range sessions {
		w := FITWorkout{
			FileType:      "WORKOUT",
			WorkoutName:   WorkoutName(s),
			Sport:         "RUNNING",
			SubSport:      fitSubSportStreet,
			NumValidSteps: len(s.Steps),
			Steps:         make([]FITStep, 0, len(s.Steps)),
		}
		if s.SessionType == domain.SessionInterval {
			w.SubSport = fitSubSportTrack
		}
		for _, st := range s.Steps {
			w.Steps = append(w.Steps, toFITStep(st))
		}
		out = append(out, w)
	}
	return out
}

// ToFITStub renders the FIT-shaped JSON placeholder document.
func ToFITStub(sessions []domain.Session) ([]byte, error) {
	return json.MarshalIndent(ToFITWorkouts(sessions), "", "  ")
}

func toFITStep(st domain.Step) FITStep {
	fs := FITStep{
		MessageIndex:    st.StepOrder,
		WorkoutStepName: string(st.StepType),
		DurationType:    fitDurationTime,
		DurationValue:   st.DurationValue * 1000,
		TargetType:      fitTargetOpen,
		Intensity:       fitIntensityActive,
	}
	if st.StepNotes != nil && *st.StepNotes != "" {
		fs.WorkoutStepName = *st.StepNotes
	}
	if st.DurationType == domain.DurationDistance {
		fs.DurationType = fitDurationDistance
		fs.DurationValue = st.DurationValue * 100
	}

	switch {
	case positive(st.TargetPaceLowSecPerKm) || positive(st.TargetPaceHighSecPerKm):
		slow, fast := paceBounds(st)
		fs.TargetType = fitTargetSpeed
		// The slow end of the pace band is the low end of the speed band.
		fs.CustomTargetLow = speedMillimetersPerSecond(slow)
		fs.CustomTargetHigh = speedMillimetersPerSecond(fast)
	case positive(st.TargetHrLowBpm) || positive(st.TargetHrHighBpm):
		fs.TargetType = fitTargetHeartRate
		fs.CustomTargetLow, fs.CustomTargetHigh = hrBounds(st)
	}

	switch st.StepType {
	case domain.StepWarmup, domain.StepCooldown:
		fs.Intensity = fitIntensityWarmup
	case domain.StepRecover:
		fs.Intensity = fitIntensityRest
	}
	return fs
}

// paceBounds returns (slowest, fastest) sec/km. A missing bound falls back
// to the one that is present.
func paceBounds(st domain.Step) (slow, fast int) {
	lo, hi := value(st.TargetPaceLowSecPerKm), value(st.TargetPaceHighSecPerKm)
	if lo <= 0 {
		lo = hi
	}
	if hi <= 0 {
		hi = lo
	}
	return hi, lo
}

func hrBounds(st domain.Step) (low, high int) {
	low, high = value(st.TargetHrLowBpm), value(st.TargetHrHighBpm)
	if low <= 0 {
		low = high
	}
	if high <= 0 {
		high = low
	}
	return low, high
}

// speedMillimetersPerSecond converts sec/km to mm/s.
func speedMillimetersPerSecond(secPerKm int) int {
	if secPerKm <= 0 {
		return 0
	}
	return int(math.Round(1000 / float64(secPerKm) * 1000))
}

func positive(p *int) bool { return p != nil && *p > 0 }

func value(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
