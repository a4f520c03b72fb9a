package planner

import (
	"fmt"
	"math"
	"time"

	"spartan/trainer/internal/domain"
	"spartan/trainer/internal/pace"
)

const (
	structuredWarmupSec   = 600
	structuredCooldownSec = 300
	longRunCooldownSec    = 600

	easyOverheadCapSec = 300
	easyOverheadShare  = 0.15

	tempoShare = 0.7

	intervalWorkSec       = 120
	intervalSecondsPerRep = 240
	minIntervalReps       = 3
	maxIntervalReps       = 8
	minIntervalRecovery   = 30
)

type band struct{ low, high int }

func paceBand(tp float64, lo, hi float64) *band {
	return &band{pace.Scale(tp, lo), pace.Scale(tp, hi)}
}

func hrBand(thr int, lo, hi float64) *band {
	return &band{pace.Scale(float64(thr), lo), pace.Scale(float64(thr), hi)}
}

// roundNonNegative rounds to the nearest integer, never below zero.
func roundNonNegative(s float64) int {
	return max(0, int(math.Round(s)))
}

func makeStep(order int, typ domain.StepType, sec float64, p, h *band, note string) domain.Step {
	st := domain.Step{
		StepOrder:     order,
		StepType:      typ,
		DurationType:  domain.DurationTime,
		DurationValue: roundNonNegative(sec),
	}
	if p != nil {
		lo, hi := p.low, p.high
		st.TargetPaceLowSecPerKm, st.TargetPaceHighSecPerKm = &lo, &hi
	}
	if h != nil {
		lo, hi := h.low, h.high
		st.TargetHrLowBpm, st.TargetHrHighBpm = &lo, &hi
	}
	if note != "" {
		st.StepNotes = &note
	}
	return st
}

func newSession(date time.Time, title string, typ domain.SessionType, target domain.PrimaryTarget, notes string, steps []domain.Step) domain.Session {
	return domain.Session{
		SessionDate:   date.Format(domain.DateLayout),
		Title:         title,
		SessionType:   typ,
		PrimaryTarget: target,
		Notes:         notes,
		Steps:         steps,
	}
}

func paceHint(b *band) string {
	return fmt.Sprintf("Work pace %s-%s /km.", pace.SecPerKmToDisplay(b.low), pace.SecPerKmToDisplay(b.high))
}

// EasyRun is a zone 2 run with proportional warmup and cooldown.
func EasyRun(date time.Time, minutes int, tp float64, thr int) domain.Session {
	total := float64(minutes * 60)
	overhead := math.Min(easyOverheadCapSec, total*easyOverheadShare)
	main := total - 2*overhead
	work := paceBand(tp, 1.15, 1.25)

	return newSession(date, "Easy Run", domain.SessionEasy, domain.TargetHR,
		"Keep it conversational. Zone 2 effort. "+paceHint(work),
		[]domain.Step{
			makeStep(0, domain.StepWarmup, overhead, nil, hrBand(thr, 0.65, 0.75), "Easy warmup"),
			makeStep(1, domain.StepWork, main, work, hrBand(thr, 0.75, 0.85), "Easy pace, Zone 2"),
			makeStep(2, domain.StepCooldown, overhead, nil, nil, "Walk/easy jog"),
		})
}

// LongRun is the weekly endurance run. phase only changes the notes.
func LongRun(date time.Time, minutes int, tp float64, thr int, phase float64) domain.Session {
	main := float64(minutes*60 - structuredWarmupSec - longRunCooldownSec)
	work := paceBand(tp, 1.10, 1.25)

	notes := "Build endurance. Stay in Zone 2 throughout."
	if phase > 0.5 {
		notes = "Build endurance. Include some tempo segments in the last third."
	}
	return newSession(date, "Long Run", domain.SessionLong, domain.TargetHR,
		notes+" "+paceHint(work),
		[]domain.Step{
			makeStep(0, domain.StepWarmup, structuredWarmupSec, nil, hrBand(thr, 0.65, 0.75), "Easy warmup"),
			makeStep(1, domain.StepWork, main, work, hrBand(thr, 0.75, 0.85), "Steady, Zone 2"),
			makeStep(2, domain.StepCooldown, longRunCooldownSec, nil, nil, "Easy cooldown"),
		})
}

// TempoRun spends 70% of the main block at tempo after an easy transition
// of half the remainder.
func TempoRun(date time.Time, minutes int, tp float64, thr int) domain.Session {
	main := float64(minutes*60 - structuredWarmupSec - structuredCooldownSec)
	tempo := math.Round(main * tempoShare)
	transition := math.Round((main - tempo) / 2)
	work := paceBand(tp, 0.98, 1.05)

	return newSession(date, "Tempo Run", domain.SessionTempo, domain.TargetPace,
		"Comfortably hard. Zone 3-4 effort. "+paceHint(work),
		[]domain.Step{
			makeStep(0, domain.StepWarmup, structuredWarmupSec, nil, nil, "Easy warmup with strides"),
			makeStep(1, domain.StepWork, transition, paceBand(tp, 1.10, 1.20), nil, "Easy transition"),
			makeStep(2, domain.StepWork, tempo, work, hrBand(thr, 0.88, 0.95), "Tempo effort"),
			makeStep(3, domain.StepCooldown, structuredCooldownSec, nil, nil, "Cool down"),
		})
}

// intervalPlan picks the rep count and jog recovery for the time left after
// warmup and cooldown. Reps drop (down to two) while recovery would be
// shorter than minIntervalRecovery; a recovery that still cannot fit is
// clamped to zero.
func intervalPlan(remaining int) (reps, recovery int) {
	reps = min(max(remaining/intervalSecondsPerRep, minIntervalReps), maxIntervalReps)
	recoveryFor := func(r int) int {
		return int(math.Round(float64(remaining-r*intervalWorkSec) / float64(r-1)))
	}
	recovery = recoveryFor(reps)
	for recovery < minIntervalRecovery && reps > 2 {
		reps--
		recovery = recoveryFor(reps)
	}
	return reps, max(0, recovery)
}

// IntervalSession is 2-minute reps at VO2max pace with jog recoveries.
func IntervalSession(date time.Time, minutes int, tp float64, thr int) domain.Session {
	remaining := minutes*60 - structuredWarmupSec - structuredCooldownSec
	reps, recovery := intervalPlan(remaining)
	work := paceBand(tp, 0.85, 0.92)
	effort := hrBand(thr, 0.92, 1.02)

	steps := make([]domain.Step, 0, 2*reps+1)
	steps = append(steps, makeStep(0, domain.StepWarmup, structuredWarmupSec, nil, nil, "Easy warmup with 4 strides"))
	order := 1
	for i := 0; i < reps; i++ {
		steps = append(steps, makeStep(order, domain.StepWork, intervalWorkSec, work, effort, fmt.Sprintf("Rep %d/%d", i+1, reps)))
		order++
		if i < reps-1 {
			steps = append(steps, makeStep(order, domain.StepRecover, float64(recovery), nil, nil, "Easy jog recovery"))
			order++
		}
	}
	steps = append(steps, makeStep(order, domain.StepCooldown, structuredCooldownSec, nil, nil, "Cool down"))

	return newSession(date, fmt.Sprintf("%dx%dmin Intervals", reps, intervalWorkSec/60), domain.SessionInterval, domain.TargetPace,
		"Hard intervals with jog recovery. Push Zone 4-5. "+paceHint(work), steps)
}

// RaceSimulation splits the main block 40/40/20 across an easy start, race
// pace and a push finish.
func RaceSimulation(date time.Time, minutes int, tp float64, thr int) domain.Session {
	main := float64(minutes*60 - structuredWarmupSec - structuredCooldownSec)
	racePace := paceBand(tp, 0.95, 1.05)

	return newSession(date, "Race Simulation", domain.SessionRaceSim, domain.TargetPace,
		"Practice race pace and nutrition strategy. "+paceHint(racePace),
		[]domain.Step{
			makeStep(0, domain.StepWarmup, structuredWarmupSec, nil, nil, "Easy warmup"),
			makeStep(1, domain.StepWork, main*0.4, paceBand(tp, 1.05, 1.15), nil, "Easy start"),
			makeStep(2, domain.StepWork, main*0.4, racePace, nil, "Race pace"),
			makeStep(3, domain.StepWork, main*0.2, paceBand(tp, 0.88, 0.95), nil, "Push finish"),
			makeStep(4, domain.StepCooldown, structuredCooldownSec, nil, nil, "Cool down"),
		})
}
