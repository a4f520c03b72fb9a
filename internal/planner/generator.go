// Package planner turns an athlete's availability and thresholds into a
// dated, periodized calendar of structured running sessions.
//
// Generation is pure: it reads no clock and keeps no state, so equal inputs
// always produce equal plans.
package planner

import (
	"slices"
	"strings"
	"time"

	"spartan/trainer/internal/domain"
)

// Thresholds used when the athlete profile leaves them unset.
const (
	DefaultThresholdPaceSecPerKm = 330 // 5:30 /km
	DefaultThresholdHrBpm        = 165
)

const (
	recoveryWeekEvery = 4 // weeks 4, 8, 12... (1-indexed)

	longRunRecoveryScale = 0.6
	qualityRecoveryScale = 0.7
	easyRecoveryScale    = 0.6
	easyNormalScale      = 0.8
)

// Input is everything the generator needs. StartDate and RaceDate are
// calendar dates; their time-of-day is ignored. Zero thresholds fall back to
// the defaults.
type Input struct {
	StartDate             time.Time
	RaceDate              time.Time
	Availability          domain.AvailabilityProfile
	ThresholdPaceSecPerKm float64
	ThresholdHrBpm        int
}

// Result is a generated plan together with the degenerate-input states that
// shaped it.
type Result struct {
	Sessions   []domain.Session
	Layout     DayLayout
	TotalWeeks int

	// NoAvailableDays is set when no day was flagged available; Sessions is empty.
	NoAvailableDays bool
	// HorizonClamped is set when the race is less than a whole week after the
	// start date, so the horizon was raised to one week.
	HorizonClamped bool

	ThresholdPaceSecPerKm float64
	ThresholdHrBpm        int
}

// Generate builds the full session calendar from StartDate through RaceDate.
func Generate(in Input) Result {
	start, race := civilDate(in.StartDate), civilDate(in.RaceDate)

	res := Result{
		ThresholdPaceSecPerKm: in.ThresholdPaceSecPerKm,
		ThresholdHrBpm:        in.ThresholdHrBpm,
	}
	if res.ThresholdPaceSecPerKm <= 0 {
		res.ThresholdPaceSecPerKm = DefaultThresholdPaceSecPerKm
	}
	if res.ThresholdHrBpm <= 0 {
		res.ThresholdHrBpm = DefaultThresholdHrBpm
	}

	weeks := wholeWeeksBetween(start, race)
	res.TotalWeeks = max(1, weeks)
	res.HorizonClamped = weeks < 1

	res.Layout = ClassifyDays(in.Availability)
	if res.Layout.Empty() {
		res.NoAvailableDays = true
		res.Sessions = []domain.Session{}
		return res
	}

	tp, thr := res.ThresholdPaceSecPerKm, res.ThresholdHrBpm
	layout := res.Layout
	avail := in.Availability
	inHorizon := func(d time.Time) bool {
		return !d.Before(start) && !d.After(race)
	}

	var sessions []domain.Session
	for week := 0; week < res.TotalWeeks; week++ {
		weekStart := start.AddDate(0, 0, 7*week)
		phase := float64(week) / float64(res.TotalWeeks)
		recovery := week%recoveryWeekEvery == recoveryWeekEvery-1

		if d := dateForDay(weekStart, layout.LongRunDay); inHorizon(d) {
			mins := minutesFor(avail, layout.LongRunDay, fallbackLongRunMinutes)
			if recovery {
				mins = scaleMinutes(mins, longRunRecoveryScale)
			}
			sessions = append(sessions, LongRun(d, mins, tp, thr, phase))
		}

		rotation := qualityRotation(phase)
		for i, day := range layout.QualityDays {
			d := dateForDay(weekStart, day)
			if !inHorizon(d) {
				continue
			}
			mins := minutesFor(avail, day, fallbackQualityMinutes)
			if recovery {
				mins = scaleMinutes(mins, qualityRecoveryScale)
			}
			sessions = append(sessions, buildQuality(rotation[i%len(rotation)], d, mins, tp, thr))
		}

		for _, day := range layout.EasyDays {
			d := dateForDay(weekStart, day)
			if !inHorizon(d) {
				continue
			}
			scale := easyNormalScale
			if recovery {
				scale = easyRecoveryScale
			}
			mins := scaleMinutes(minutesFor(avail, day, fallbackEasyMinutes), scale)
			sessions = append(sessions, EasyRun(d, mins, tp, thr))
		}
	}

	slices.SortStableFunc(sessions, func(a, b domain.Session) int {
		return strings.Compare(a.SessionDate, b.SessionDate)
	})
	if sessions == nil {
		sessions = []domain.Session{}
	}
	res.Sessions = sessions
	return res
}

// GeneratePlan returns only the sorted sessions of Generate.
func GeneratePlan(in Input) []domain.Session {
	return Generate(in).Sessions
}

// qualityRotation picks the quality session mix for a point in the plan:
// tempo early, intervals and tempo mid-block, intervals and race
// simulations close to the race.
func qualityRotation(phase float64) []domain.SessionType {
	switch {
	case phase < 0.3:
		return []domain.SessionType{domain.SessionTempo}
	case phase < 0.7:
		return []domain.SessionType{domain.SessionInterval, domain.SessionTempo}
	default:
		return []domain.SessionType{domain.SessionInterval, domain.SessionRaceSim}
	}
}

func buildQuality(t domain.SessionType, d time.Time, mins int, tp float64, thr int) domain.Session {
	switch t {
	case domain.SessionInterval:
		return IntervalSession(d, mins, tp, thr)
	case domain.SessionRaceSim:
		return RaceSimulation(d, mins, tp, thr)
	default:
		return TempoRun(d, mins, tp, thr)
	}
}

func scaleMinutes(mins int, f float64) int {
	return roundNonNegative(float64(mins) * f)
}

// civilDate drops the time of day, keeping the calendar date as seen in t's
// location.
func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// wholeWeeksBetween counts complete weeks from start to end, truncated
// towards zero.
func wholeWeeksBetween(start, end time.Time) int {
	days := int(end.Sub(start).Hours() / 24)
	return days / 7
}

// dateForDay resolves a day key inside the Monday-based week containing
// weekStart.
func dateForDay(weekStart time.Time, day domain.DayKey) time.Time {
	monday := weekStart.AddDate(0, 0, -domain.DayKeyOf(weekStart).Index())
	return monday.AddDate(0, 0, day.Index())
}
