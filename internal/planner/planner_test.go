package planner

import (
	"reflect"
	"testing"
	"time"

	"spartan/trainer/internal/domain"
)

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return d
}

func availability(minutes map[domain.DayKey]int, longRun domain.DayKey, avoidWeekend bool) domain.AvailabilityProfile {
	days := make(map[domain.DayKey]bool, len(minutes))
	for d := range minutes {
		days[d] = true
	}
	return domain.AvailabilityProfile{
		DaysAvailable:       days,
		MaxMinutesByDay:     minutes,
		PreferredLongRunDay: longRun,
		WeekendLongRunAvoid: avoidWeekend,
	}
}

func totalSeconds(s domain.Session) int {
	sum := 0
	for _, st := range s.Steps {
		sum += st.DurationValue
	}
	return sum
}

func TestClassifyDays(t *testing.T) {
	tests := []struct {
		name        string
		avail       domain.AvailabilityProfile
		wantLong    domain.DayKey
		wantQuality []domain.DayKey
		wantEasy    []domain.DayKey
	}{
		{
			name:        "preferred day kept",
			avail:       availability(map[domain.DayKey]int{domain.Mon: 45, domain.Wed: 45, domain.Fri: 90}, domain.Fri, true),
			wantLong:    domain.Fri,
			wantQuality: []domain.DayKey{domain.Mon, domain.Wed},
		},
		{
			name:        "unavailable preference falls back to last day",
			avail:       availability(map[domain.DayKey]int{domain.Tue: 60, domain.Thu: 30, domain.Sat: 120}, domain.Sun, false),
			wantLong:    domain.Sat,
			wantQuality: []domain.DayKey{domain.Tue},
			wantEasy:    []domain.DayKey{domain.Thu},
		},
		{
			name:        "weekend avoided",
			avail:       availability(map[domain.DayKey]int{domain.Mon: 30, domain.Thu: 60, domain.Sun: 120}, domain.Sun, true),
			wantLong:    domain.Thu,
			wantQuality: []domain.DayKey{domain.Sun},
			wantEasy:    []domain.DayKey{domain.Mon},
		},
		{
			name:     "weekend kept when nothing else is free",
			avail:    availability(map[domain.DayKey]int{domain.Sat: 60, domain.Sun: 120}, domain.Sun, true),
			wantLong: domain.Sun,
			// Saturday has 60 minutes so it is a quality day.
			wantQuality: []domain.DayKey{domain.Sat},
		},
		{
			name: "at most two quality days, first come",
			avail: availability(map[domain.DayKey]int{
				domain.Mon: 40, domain.Tue: 60, domain.Wed: 50, domain.Thu: 90, domain.Sat: 120,
			}, domain.Sat, false),
			wantLong:    domain.Sat,
			wantQuality: []domain.DayKey{domain.Tue, domain.Wed},
			wantEasy:    []domain.DayKey{domain.Mon, domain.Thu},
		},
		{
			name:        "missing budget counts as 45 minutes",
			avail:       availability(map[domain.DayKey]int{domain.Tue: 0, domain.Sun: 100}, domain.Sun, false),
			wantLong:    domain.Sun,
			wantQuality: []domain.DayKey{domain.Tue},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyDays(tt.avail)
			if got.LongRunDay != tt.wantLong {
				t.Errorf("long run day: got %q, want %q", got.LongRunDay, tt.wantLong)
			}
			if !reflect.DeepEqual(got.QualityDays, tt.wantQuality) {
				t.Errorf("quality days: got %v, want %v", got.QualityDays, tt.wantQuality)
			}
			if !reflect.DeepEqual(got.EasyDays, tt.wantEasy) {
				t.Errorf("easy days: got %v, want %v", got.EasyDays, tt.wantEasy)
			}
		})
	}
}

func TestClassifyDaysEmpty(t *testing.T) {
	got := ClassifyDays(domain.AvailabilityProfile{})
	if !got.Empty() || got.QualityDays != nil || got.EasyDays != nil {
		t.Fatalf("expected empty layout, got %+v", got)
	}
}

func TestGenerateScenarioA(t *testing.T) {
	res := Generate(Input{
		StartDate:    date(t, "2025-01-06"),
		RaceDate:     date(t, "2025-01-20"),
		Availability: availability(map[domain.DayKey]int{domain.Mon: 45, domain.Wed: 45, domain.Fri: 90}, domain.Fri, true),
	})
	if res.TotalWeeks != 2 {
		t.Fatalf("total weeks: got %d, want 2", res.TotalWeeks)
	}
	want := []struct {
		date string
		typ  domain.SessionType
	}{
		{"2025-01-06", domain.SessionTempo},
		{"2025-01-08", domain.SessionTempo},
		{"2025-01-10", domain.SessionLong},
		{"2025-01-13", domain.SessionInterval},
		{"2025-01-15", domain.SessionTempo},
		{"2025-01-17", domain.SessionLong},
	}
	if len(res.Sessions) != len(want) {
		t.Fatalf("got %d sessions, want %d", len(res.Sessions), len(want))
	}
	for i, w := range want {
		s := res.Sessions[i]
		if s.SessionDate != w.date || s.SessionType != w.typ {
			t.Errorf("session %d: got %s %s, want %s %s", i, s.SessionDate, s.SessionType, w.date, w.typ)
		}
	}
	if res.ThresholdPaceSecPerKm != DefaultThresholdPaceSecPerKm || res.ThresholdHrBpm != DefaultThresholdHrBpm {
		t.Errorf("defaults not applied: %v %v", res.ThresholdPaceSecPerKm, res.ThresholdHrBpm)
	}
}

func TestGenerateScenarioBEmptyAvailability(t *testing.T) {
	res := Generate(Input{
		StartDate: date(t, "2025-01-06"),
		RaceDate:  date(t, "2025-06-01"),
		Availability: domain.AvailabilityProfile{
			DaysAvailable:   map[domain.DayKey]bool{domain.Mon: false, domain.Sun: false},
			MaxMinutesByDay: map[domain.DayKey]int{domain.Mon: 60},
		},
		ThresholdPaceSecPerKm: 300,
	})
	if !res.NoAvailableDays {
		t.Fatalf("expected NoAvailableDays")
	}
	if res.Sessions == nil || len(res.Sessions) != 0 {
		t.Fatalf("expected empty non-nil sessions, got %v", res.Sessions)
	}
}

func TestIntervalSessionScenarioC(t *testing.T) {
	s := IntervalSession(date(t, "2025-02-03"), 30, 330, 165)
	if len(s.Steps) != 7 {
		t.Fatalf("got %d steps, want 7", len(s.Steps))
	}
	var work, recover int
	for _, st := range s.Steps {
		switch st.StepType {
		case domain.StepWork:
			work++
			if st.DurationValue != 120 {
				t.Errorf("work step %d: duration %d, want 120", st.StepOrder, st.DurationValue)
			}
		case domain.StepRecover:
			recover++
			if st.DurationValue != 270 {
				t.Errorf("recover step %d: duration %d, want 270", st.StepOrder, st.DurationValue)
			}
		}
	}
	if work != 3 || recover != 2 {
		t.Fatalf("got %d work / %d recover steps, want 3 / 2", work, recover)
	}
	if s.Title != "3x2min Intervals" {
		t.Errorf("title: got %q", s.Title)
	}
	if *s.Steps[1].StepNotes != "Rep 1/3" {
		t.Errorf("first rep label: got %q", *s.Steps[1].StepNotes)
	}
}

func TestIntervalRecoveryNeverNegative(t *testing.T) {
	tests := []struct {
		minutes      int
		wantReps     int
		wantRecovery int
	}{
		{45, 7, 160},
		{60, 8, 249},
		{20, 2, 60},
		{15, 2, 0},
		{5, 2, 0},
	}
	for _, tt := range tests {
		reps, recovery := intervalPlan(tt.minutes*60 - 900)
		if reps != tt.wantReps || recovery != tt.wantRecovery {
			t.Errorf("%d min: got reps=%d recovery=%d, want %d/%d", tt.minutes, reps, recovery, tt.wantReps, tt.wantRecovery)
		}
		s := IntervalSession(date(t, "2025-02-03"), tt.minutes, 330, 165)
		for _, st := range s.Steps {
			if st.DurationValue < 0 {
				t.Errorf("%d min: negative duration in step %d", tt.minutes, st.StepOrder)
			}
		}
	}
}

func TestGenerateScenarioDRecoveryWeek(t *testing.T) {
	res := Generate(Input{
		StartDate:    date(t, "2025-01-06"),
		RaceDate:     date(t, "2025-02-24"),
		Availability: availability(map[domain.DayKey]int{domain.Tue: 50, domain.Thu: 40, domain.Fri: 90}, domain.Fri, false),
	})
	if res.TotalWeeks != 7 {
		t.Fatalf("total weeks: got %d, want 7", res.TotalWeeks)
	}
	longRuns := map[string]domain.Session{}
	easy := map[string]domain.Session{}
	for _, s := range res.Sessions {
		switch s.SessionType {
		case domain.SessionLong:
			longRuns[s.SessionDate] = s
		case domain.SessionEasy:
			easy[s.SessionDate] = s
		}
	}
	if got := totalSeconds(longRuns["2025-01-10"]); got != 90*60 {
		t.Errorf("week 0 long run: got %ds, want %ds", got, 90*60)
	}
	if got := totalSeconds(longRuns["2025-01-31"]); got != 54*60 {
		t.Errorf("week 3 long run: got %ds, want %ds", got, 54*60)
	}
	// Easy runs are 80% normally (32 min) and 60% in recovery weeks (24 min).
	if got := totalSeconds(easy["2025-01-09"]); got != 32*60 {
		t.Errorf("week 0 easy run: got %ds, want %ds", got, 32*60)
	}
	if got := totalSeconds(easy["2025-01-30"]); got != 24*60 {
		t.Errorf("week 3 easy run: got %ds, want %ds", got, 24*60)
	}
}

func TestGenerateLatePhaseMix(t *testing.T) {
	res := Generate(Input{
		StartDate:    date(t, "2025-01-06"),
		RaceDate:     date(t, "2025-03-17"),
		Availability: availability(map[domain.DayKey]int{domain.Tue: 60, domain.Thu: 60, domain.Sun: 120}, domain.Sun, false),
	})
	// Week 8 of 10 (phase 0.8): intervals on Tuesday, race simulation on Thursday.
	byDate := map[string]domain.SessionType{}
	for _, s := range res.Sessions {
		byDate[s.SessionDate] = s.SessionType
	}
	if byDate["2025-03-04"] != domain.SessionInterval {
		t.Errorf("2025-03-04: got %q, want interval", byDate["2025-03-04"])
	}
	if byDate["2025-03-06"] != domain.SessionRaceSim {
		t.Errorf("2025-03-06: got %q, want race_sim", byDate["2025-03-06"])
	}
}

func TestGenerateInvariants(t *testing.T) {
	in := Input{
		StartDate: date(t, "2025-01-09"), // Thursday
		RaceDate:  date(t, "2025-04-13"),
		Availability: availability(map[domain.DayKey]int{
			domain.Mon: 30, domain.Tue: 60, domain.Wed: 45, domain.Thu: 40, domain.Sat: 150,
		}, domain.Sat, true),
		ThresholdPaceSecPerKm: 290,
		ThresholdHrBpm:        172,
	}
	res := Generate(in)
	if len(res.Sessions) == 0 {
		t.Fatalf("expected sessions")
	}
	prev := ""
	for _, s := range res.Sessions {
		if s.SessionDate < "2025-01-09" || s.SessionDate > "2025-04-13" {
			t.Errorf("session %s outside plan window", s.SessionDate)
		}
		if s.SessionDate < prev {
			t.Errorf("sessions not sorted: %s after %s", s.SessionDate, prev)
		}
		prev = s.SessionDate
		for i, st := range s.Steps {
			if st.StepOrder != i {
				t.Errorf("%s %s: step %d has order %d", s.SessionDate, s.Title, i, st.StepOrder)
			}
			if st.DurationValue < 0 {
				t.Errorf("%s %s: negative duration", s.SessionDate, s.Title)
			}
			if st.TargetPaceLowSecPerKm != nil && *st.TargetPaceLowSecPerKm > *st.TargetPaceHighSecPerKm {
				t.Errorf("%s %s: pace low > high", s.SessionDate, s.Title)
			}
		}
	}

	again := Generate(in)
	if !reflect.DeepEqual(res.Sessions, again.Sessions) {
		t.Fatalf("generation is not deterministic")
	}
}

func TestGenerateHorizonClamped(t *testing.T) {
	res := Generate(Input{
		StartDate:    date(t, "2025-01-06"),
		RaceDate:     date(t, "2025-01-10"),
		Availability: availability(map[domain.DayKey]int{domain.Tue: 45, domain.Sat: 90}, domain.Sat, false),
	})
	if !res.HorizonClamped || res.TotalWeeks != 1 {
		t.Fatalf("expected clamped single week, got weeks=%d clamped=%v", res.TotalWeeks, res.HorizonClamped)
	}
	// Saturday falls after the race; only Tuesday's session remains.
	if len(res.Sessions) != 1 || res.Sessions[0].SessionDate != "2025-01-07" {
		t.Fatalf("unexpected sessions: %+v", res.Sessions)
	}
}

func TestBuilderShapes(t *testing.T) {
	d := date(t, "2025-01-07")

	easy := EasyRun(d, 24, 330, 165)
	if got := []int{easy.Steps[0].DurationValue, easy.Steps[1].DurationValue, easy.Steps[2].DurationValue}; !reflect.DeepEqual(got, []int{216, 1008, 216}) {
		t.Errorf("easy durations: got %v", got)
	}
	if *easy.Steps[1].TargetPaceLowSecPerKm != 379 || *easy.Steps[1].TargetPaceHighSecPerKm != 413 {
		t.Errorf("easy pace band: got %d-%d", *easy.Steps[1].TargetPaceLowSecPerKm, *easy.Steps[1].TargetPaceHighSecPerKm)
	}
	if easy.PrimaryTarget != domain.TargetHR {
		t.Errorf("easy primary target: got %q", easy.PrimaryTarget)
	}

	tempo := TempoRun(d, 45, 330, 165)
	if got := []int{tempo.Steps[0].DurationValue, tempo.Steps[1].DurationValue, tempo.Steps[2].DurationValue, tempo.Steps[3].DurationValue}; !reflect.DeepEqual(got, []int{600, 270, 1260, 300}) {
		t.Errorf("tempo durations: got %v", got)
	}

	race := RaceSimulation(d, 60, 330, 165)
	if len(race.Steps) != 5 {
		t.Fatalf("race sim steps: got %d", len(race.Steps))
	}
	if got := []int{race.Steps[1].DurationValue, race.Steps[2].DurationValue, race.Steps[3].DurationValue}; !reflect.DeepEqual(got, []int{1080, 1080, 540}) {
		t.Errorf("race sim split: got %v", got)
	}

	early := LongRun(d, 90, 330, 165, 0.2)
	late := LongRun(d, 90, 330, 165, 0.8)
	if early.Notes == late.Notes {
		t.Errorf("long run notes should depend on phase")
	}
	if len(early.Steps) != len(late.Steps) {
		t.Errorf("phase must not change long run structure")
	}
}
